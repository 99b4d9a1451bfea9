package board

import (
	"reflect"
	"testing"
	"time"

	"monodo/pkg/task"
)

func ts(h int) *time.Time {
	v := time.Date(2025, 3, 14, h, 0, 0, 0, time.UTC)
	return &v
}

func TestSortColumnDefaultInProgress(t *testing.T) {
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: "idle-new", Status: task.StatusInProgress, UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "running", Status: task.StatusInProgress, StartTime: ts(10), UpdatedAt: base.Add(3 * time.Hour)},
		{ID: "idle-old", Status: task.StatusInProgress, UpdatedAt: base},
		{ID: "elsewhere", Status: task.StatusBacklog},
	}

	got := SortColumn(tasks, task.StatusInProgress, SortDefault, nil)
	want := []string{"running", "idle-old", "idle-new"}
	assertIDs(t, got, want)
}

func TestSortColumnDefaultBacklog(t *testing.T) {
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: "old", Status: task.StatusBacklog, CreatedAt: base},
		{ID: "new", Status: task.StatusBacklog, CreatedAt: base.Add(time.Hour)},
	}

	got := SortColumn(tasks, task.StatusBacklog, SortDefault, nil)
	assertIDs(t, got, []string{"new", "old"})
}

func TestSortColumnPriority(t *testing.T) {
	tasks := []task.Task{
		{ID: "low-1", Status: task.StatusBacklog, Priority: task.PriorityLow},
		{ID: "high", Status: task.StatusBacklog, Priority: task.PriorityHigh},
		{ID: "low-2", Status: task.StatusBacklog, Priority: task.PriorityLow},
	}

	got := SortColumn(tasks, task.StatusBacklog, SortPriority, nil)
	// Stable: low-1 keeps its place ahead of low-2.
	assertIDs(t, got, []string{"high", "low-1", "low-2"})
}

func TestSortColumnCategoryUncategorizedFirst(t *testing.T) {
	tasks := []task.Task{
		{ID: "work", Status: task.StatusBacklog, Category: &task.Category{Name: "Work"}},
		{ID: "none", Status: task.StatusBacklog},
		{ID: "admin", Status: task.StatusBacklog, Category: &task.Category{Name: "admin"}},
	}

	got := SortColumn(tasks, task.StatusBacklog, SortCategory, nil)
	assertIDs(t, got, []string{"none", "admin", "work"})
}

func TestSortColumnTimestampsMissingLast(t *testing.T) {
	tasks := []task.Task{
		{ID: "later", Status: task.StatusBacklog, StartTime: ts(12)},
		{ID: "unset", Status: task.StatusBacklog},
		{ID: "early", Status: task.StatusBacklog, StartTime: ts(8)},
	}

	got := SortColumn(tasks, task.StatusBacklog, SortStartTime, nil)
	assertIDs(t, got, []string{"early", "later", "unset"})

	end := []task.Task{
		{ID: "unset", Status: task.StatusCompleted},
		{ID: "early", Status: task.StatusCompleted, EndTime: ts(8)},
		{ID: "later", Status: task.StatusCompleted, EndTime: ts(12)},
	}
	got = SortColumn(end, task.StatusCompleted, SortEndTime, nil)
	// Descending, but the missing timestamp still sorts last.
	assertIDs(t, got, []string{"later", "early", "unset"})
}

func TestSortColumnExpectedTimeMissingAsZero(t *testing.T) {
	tasks := []task.Task{
		{ID: "big", Status: task.StatusBacklog, ExpectedTime: 900},
		{ID: "none", Status: task.StatusBacklog},
		{ID: "small", Status: task.StatusBacklog, ExpectedTime: 60},
	}

	got := SortColumn(tasks, task.StatusBacklog, SortExpectedTimeAsc, nil)
	assertIDs(t, got, []string{"none", "small", "big"})

	got = SortColumn(tasks, task.StatusBacklog, SortExpectedTimeDesc, nil)
	assertIDs(t, got, []string{"big", "small", "none"})
}

func TestSortColumnCustom(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Status: task.StatusBacklog},
		{ID: "b", Status: task.StatusBacklog},
		{ID: "c", Status: task.StatusBacklog},
	}

	got := SortColumn(tasks, task.StatusBacklog, SortCustom, []string{"c", "a"})
	// Unlisted ids follow the listed ones in incoming order.
	assertIDs(t, got, []string{"c", "a", "b"})
}

func TestSortModeCycle(t *testing.T) {
	m := SortDefault
	for range Modes {
		m = m.Next()
	}
	if m != SortDefault {
		t.Errorf("cycle did not return to default, ended at %s", m)
	}
	if SortMode("bogus").Next() != SortDefault {
		t.Error("unknown mode should reset to default")
	}
}

func TestReconcileOrder(t *testing.T) {
	tasks := []task.Task{{ID: "b"}, {ID: "c"}, {ID: "d"}}

	got := ReconcileOrder([]string{"a", "b", "c"}, tasks)
	if want := []string{"b", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReconcileOrder = %v, want %v", got, want)
	}
}

func TestMoveID(t *testing.T) {
	cases := []struct {
		name  string
		id    string
		index int
		want  []string
	}{
		{"to front", "c", 0, []string{"c", "a", "b"}},
		{"to middle", "a", 1, []string{"b", "a", "c"}},
		{"past end appends", "a", 9, []string{"b", "c", "a"}},
		{"unknown id unchanged", "x", 0, []string{"a", "b", "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MoveID([]string{"a", "b", "c"}, tc.id, tc.index)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("MoveID = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDragWithinColumn(t *testing.T) {
	orders := Orders{task.StatusBacklog: {"a", "b", "c"}}
	tk := task.Task{ID: "c", Status: task.StatusBacklog}

	if err := Drag(orders, tk, task.StatusBacklog, 0, false); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(orders[task.StatusBacklog], want) {
		t.Errorf("order = %v, want %v", orders[task.StatusBacklog], want)
	}
}

func TestDragCrossColumn(t *testing.T) {
	orders := Orders{
		task.StatusBacklog:    {"a", "b"},
		task.StatusInProgress: {"x"},
	}
	tk := task.Task{ID: "a", Status: task.StatusBacklog}

	if err := Drag(orders, tk, task.StatusInProgress, 0, false); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	if want := []string{"b"}; !reflect.DeepEqual(orders[task.StatusBacklog], want) {
		t.Errorf("source order = %v, want %v", orders[task.StatusBacklog], want)
	}
	if want := []string{"a", "x"}; !reflect.DeepEqual(orders[task.StatusInProgress], want) {
		t.Errorf("dest order = %v, want %v", orders[task.StatusInProgress], want)
	}
}

func TestDragRejectedLeavesOrdersUntouched(t *testing.T) {
	orders := Orders{
		task.StatusCompleted: {"a"},
		task.StatusBacklog:   {"b"},
	}
	tk := task.Task{ID: "a", Status: task.StatusCompleted}

	err := Drag(orders, tk, task.StatusBacklog, 0, false)
	if err == nil {
		t.Fatal("completed to backlog must be rejected")
	}
	if !reflect.DeepEqual(orders[task.StatusCompleted], []string{"a"}) ||
		!reflect.DeepEqual(orders[task.StatusBacklog], []string{"b"}) {
		t.Errorf("orders mutated on rejected drag: %v", orders)
	}
}

func TestDragCompletionNeedsActiveTimer(t *testing.T) {
	orders := Orders{
		task.StatusInProgress: {"a"},
		task.StatusCompleted:  {},
	}

	idle := task.Task{ID: "a", Status: task.StatusInProgress}
	if err := Drag(orders, idle, task.StatusCompleted, -1, false); err == nil {
		t.Fatal("completion without a running timer must be rejected")
	}

	running := idle
	running.StartTime = ts(10)
	if err := Drag(orders, running, task.StatusCompleted, -1, false); err != nil {
		t.Fatalf("completion with running timer rejected: %v", err)
	}
	if want := []string{"a"}; !reflect.DeepEqual(orders[task.StatusCompleted], want) {
		t.Errorf("dest order = %v, want %v", orders[task.StatusCompleted], want)
	}
}

func TestWeeklyCompletion(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	tasks := []task.Task{
		{Day: day(0), Status: task.StatusCompleted},
		{Day: day(-2), Status: task.StatusBacklog},
		{Day: day(-6), Status: task.StatusCompleted},
		{Day: day(-6), Status: task.StatusInProgress},
		// Outside the window.
		{Day: day(-7), Status: task.StatusCompleted},
		{Day: day(1), Status: task.StatusBacklog},
	}

	if got := WeeklyCompletion(tasks, now); got != 50 {
		t.Errorf("WeeklyCompletion = %d, want 50", got)
	}
	if got := WeeklyCompletion(nil, now); got != 0 {
		t.Errorf("empty set = %d, want 0", got)
	}
}

func assertIDs(t *testing.T, tasks []task.Task, want []string) {
	t.Helper()
	got := make([]string, len(tasks))
	for i := range tasks {
		got[i] = tasks[i].ID
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}
