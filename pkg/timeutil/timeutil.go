package timeutil

import (
	"fmt"
	"math"
	"time"
)

// FormatTime formats a duration in seconds as HH:MM:SS.
// Negative durations get a leading minus sign.
func FormatTime(seconds int) string {
	prefix := ""
	if seconds < 0 {
		prefix = "-"
		seconds = -seconds
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	return fmt.Sprintf("%s%02d:%02d:%02d", prefix, hours, minutes, secs)
}

// FormatTimeShort formats a duration in seconds as MM:SS.
// Negative durations get a leading minus sign.
func FormatTimeShort(seconds int) string {
	prefix := ""
	if seconds < 0 {
		prefix = "-"
		seconds = -seconds
	}

	return fmt.Sprintf("%s%02d:%02d", prefix, seconds/60, seconds%60)
}

// FormatOverrun formats the number of seconds a countdown has run past its
// budget as a signed overrun string, e.g. +00:01:23.
func FormatOverrun(seconds int) string {
	if seconds < 0 {
		seconds = -seconds
	}
	return "+" + FormatTime(seconds)
}

// MinutesToSeconds converts minutes to seconds.
func MinutesToSeconds(minutes int) int {
	return minutes * 60
}

// SecondsToMinutes converts seconds to whole minutes, truncating.
func SecondsToMinutes(seconds int) int {
	return seconds / 60
}

// FormatDate formats a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// StartOfDay returns the given time truncated to midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of the given time's day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// SameDay reports whether two times fall on the same calendar date.
// Time of day is ignored.
func SameDay(a, b time.Time) bool {
	return FormatDate(a) == FormatDate(b)
}

// IsToday reports whether the given time falls on today's date.
func IsToday(t time.Time) bool {
	return SameDay(t, time.Now())
}

// IsPastDate reports whether the given time falls on a date before today.
func IsPastDate(t time.Time) bool {
	return StartOfDay(t).Before(StartOfDay(time.Now()))
}

// LastNDays returns the start of each of the last n days ending with the
// day of now, oldest first.
func LastNDays(n int, now time.Time) []time.Time {
	days := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, StartOfDay(now.AddDate(0, 0, -i)))
	}
	return days
}

// CompletionPercentage computes the rounded percentage of completed tasks
// out of completed plus in-progress tasks.
func CompletionPercentage(completed, inProgress int) int {
	total := completed + inProgress
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// PlanFactPercentage computes the rounded planned-versus-actual ratio as a
// percentage. It returns false when no budget was planned.
func PlanFactPercentage(expectedTime, actualTime int) (int, bool) {
	if expectedTime == 0 {
		return 0, false
	}
	if actualTime == 0 {
		return 0, true
	}
	return int(math.Round(float64(expectedTime) / float64(actualTime) * 100)), true
}
