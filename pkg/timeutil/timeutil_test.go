package timeutil

import (
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00"},
		{5, "00:00:05"},
		{65, "00:01:05"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{595, "00:09:55"},
		{-83, "-00:01:23"},
		{86400, "24:00:00"},
	}

	for _, c := range cases {
		if got := FormatTime(c.seconds); got != c.want {
			t.Errorf("FormatTime(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestFormatTimeShort(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{90, "01:30"},
		{-61, "-01:01"},
		{3600, "60:00"},
	}

	for _, c := range cases {
		if got := FormatTimeShort(c.seconds); got != c.want {
			t.Errorf("FormatTimeShort(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestFormatOverrun(t *testing.T) {
	if got := FormatOverrun(83); got != "+00:01:23" {
		t.Errorf("FormatOverrun(83) = %q, want %q", got, "+00:01:23")
	}
	// Callers pass the (negative) remaining value directly.
	if got := FormatOverrun(-83); got != "+00:01:23" {
		t.Errorf("FormatOverrun(-83) = %q, want %q", got, "+00:01:23")
	}
}

func TestMinuteSecondRoundTrip(t *testing.T) {
	// seconds -> minutes -> seconds truncates, but the reverse direction
	// must round-trip exactly for every whole minute count.
	for m := 0; m <= 600; m++ {
		if got := SecondsToMinutes(MinutesToSeconds(m)); got != m {
			t.Fatalf("SecondsToMinutes(MinutesToSeconds(%d)) = %d", m, got)
		}
	}

	if got := SecondsToMinutes(119); got != 1 {
		t.Errorf("SecondsToMinutes(119) = %d, want 1", got)
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2025, 3, 15, 0, 0, 1, 0, time.UTC)

	if !SameDay(morning, evening) {
		t.Error("expected same calendar date regardless of time of day")
	}
	if SameDay(evening, nextDay) {
		t.Error("expected different calendar dates")
	}
}

func TestLastNDays(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)
	days := LastNDays(7, now)

	if len(days) != 7 {
		t.Fatalf("got %d days, want 7", len(days))
	}
	if got := FormatDate(days[0]); got != "2025-03-08" {
		t.Errorf("oldest day = %s, want 2025-03-08", got)
	}
	if got := FormatDate(days[6]); got != "2025-03-14" {
		t.Errorf("newest day = %s, want 2025-03-14", got)
	}
}

func TestCompletionPercentage(t *testing.T) {
	cases := []struct {
		completed, inProgress, want int
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 3, 0},
		{2, 1, 67},
		{1, 2, 33},
	}

	for _, c := range cases {
		if got := CompletionPercentage(c.completed, c.inProgress); got != c.want {
			t.Errorf("CompletionPercentage(%d, %d) = %d, want %d",
				c.completed, c.inProgress, got, c.want)
		}
	}
}

func TestPlanFactPercentage(t *testing.T) {
	if _, ok := PlanFactPercentage(0, 100); ok {
		t.Error("expected no percentage without a planned budget")
	}
	if got, ok := PlanFactPercentage(600, 0); !ok || got != 0 {
		t.Errorf("PlanFactPercentage(600, 0) = %d, %v; want 0, true", got, ok)
	}
	if got, ok := PlanFactPercentage(600, 1200); !ok || got != 50 {
		t.Errorf("PlanFactPercentage(600, 1200) = %d, %v; want 50, true", got, ok)
	}
}
