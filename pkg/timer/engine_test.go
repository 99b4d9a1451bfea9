package timer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"monodo/pkg/store"
	"monodo/pkg/task"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newEngineWithStore(t *testing.T) (*Engine, *store.LocalStore, *fakeClock) {
	t.Helper()

	s, err := store.NewLocalStore(filepath.Join(t.TempDir(), "local.json"))
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)}
	e := NewEngine(s, WithClock(clock), WithTickInterval(0))
	t.Cleanup(e.Close)
	return e, s, clock
}

func mustCreate(t *testing.T, s *store.LocalStore, nt store.NewTask) task.Task {
	t.Helper()
	created, err := s.CreateTask(context.Background(), nt)
	if err != nil {
		t.Fatal(err)
	}
	return created
}

// Scenario: countdown task with a 600 second budget. After five ticks the
// display shows the remaining budget and the store holds five seconds.
func TestCountdownTicksAndPersists(t *testing.T) {
	e, s, _ := newEngineWithStore(t)
	ctx := context.Background()

	tk := mustCreate(t, s, store.NewTask{
		Title: "budgeted", Status: task.StatusInProgress, ExpectedTime: 600,
	})

	if err := e.Start(ctx, tk.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if mode, ok := e.Mode(tk.ID); !ok || mode != Countdown {
		t.Fatalf("mode = %v, %v; want Countdown", mode, ok)
	}

	for i := 0; i < 5; i++ {
		e.Tick(tk.ID)
	}
	e.Sync()

	if got := e.Display(tk.ID); got != "00:09:55" {
		t.Errorf("display = %q, want 00:09:55", got)
	}

	persisted, err := s.GetTask(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if persisted.ActualTime != 5 {
		t.Errorf("persisted actualTime = %d, want 5", persisted.ActualTime)
	}
	if !persisted.HasActiveTimer() {
		t.Error("task should hold the active timer")
	}
}

func TestCountdownOverrunDisplay(t *testing.T) {
	e, s, _ := newEngineWithStore(t)
	ctx := context.Background()

	tk := mustCreate(t, s, store.NewTask{
		Title: "short budget", Status: task.StatusInProgress, ExpectedTime: 3,
	})
	if err := e.Start(ctx, tk.ID); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		e.Tick(tk.ID)
	}

	if got := e.Display(tk.ID); got != "+00:00:02" {
		t.Errorf("display = %q, want +00:00:02", got)
	}
}

func TestStopwatchModeWhenTimeAlreadySpent(t *testing.T) {
	e, s, _ := newEngineWithStore(t)
	ctx := context.Background()

	tk := mustCreate(t, s, store.NewTask{
		Title: "resumed", Status: task.StatusInProgress, ExpectedTime: 600, ActualTime: 30,
	})
	if err := e.Start(ctx, tk.ID); err != nil {
		t.Fatal(err)
	}

	if mode, _ := e.Mode(tk.ID); mode != Stopwatch {
		t.Errorf("mode = %v, want Stopwatch once actualTime > 0", mode)
	}
	e.Tick(tk.ID)
	if got := e.Display(tk.ID); got != "00:00:31" {
		t.Errorf("display = %q, want 00:00:31", got)
	}
}

// Scenario: starting task B while task A runs force-stops A. A keeps its
// accumulated time with both timer fields cleared; B holds the slot.
func TestStartForceStopsPreviousTimer(t *testing.T) {
	e, s, clock := newEngineWithStore(t)
	ctx := context.Background()

	var notices []string
	e.notify = func(msg string) { notices = append(notices, msg) }

	a := mustCreate(t, s, store.NewTask{Title: "a", Status: task.StatusInProgress})
	b := mustCreate(t, s, store.NewTask{Title: "b", Status: task.StatusInProgress})

	if err := e.Start(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	e.Tick(a.ID)
	e.Tick(a.ID)
	e.Sync()

	clock.now = clock.now.Add(time.Minute)
	if err := e.Start(ctx, b.ID); err != nil {
		t.Fatalf("Start b: %v", err)
	}

	gotA, err := s.GetTask(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotA.StartTime != nil || gotA.EndTime != nil {
		t.Errorf("task a timer fields not cleared: start=%v end=%v", gotA.StartTime, gotA.EndTime)
	}
	if gotA.ActualTime != 2 {
		t.Errorf("task a actualTime = %d, want 2 preserved", gotA.ActualTime)
	}

	gotB, err := s.GetTask(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotB.StartTime == nil || !gotB.StartTime.Equal(clock.now) {
		t.Errorf("task b startTime = %v, want %v", gotB.StartTime, clock.now)
	}

	if e.ActiveTask() != b.ID {
		t.Errorf("active task = %q, want %q", e.ActiveTask(), b.ID)
	}
	if len(notices) != 1 || notices[0] != "previous timer stopped" {
		t.Errorf("notices = %v", notices)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	e, s, _ := newEngineWithStore(t)
	ctx := context.Background()

	tk := mustCreate(t, s, store.NewTask{Title: "t", Status: task.StatusInProgress})
	if err := e.Start(ctx, tk.ID); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		e.Tick(tk.ID)
	}

	if err := e.Stop(ctx, tk.ID); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	first, err := s.GetTask(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Stop(ctx, tk.ID); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	second, err := s.GetTask(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}

	if first.ActualTime != 3 || second.ActualTime != 3 {
		t.Errorf("actualTime after stops = %d, %d; want 3, 3", first.ActualTime, second.ActualTime)
	}
	if second.StartTime != nil || second.EndTime != nil {
		t.Error("timer fields should stay cleared")
	}
	if e.ActiveTask() != "" {
		t.Errorf("active task = %q, want empty", e.ActiveTask())
	}
}

// Pausing suspends accrual entirely: no display movement, no persisted
// increments.
func TestPauseSuspendsAccrual(t *testing.T) {
	e, s, _ := newEngineWithStore(t)
	ctx := context.Background()

	tk := mustCreate(t, s, store.NewTask{Title: "t", Status: task.StatusInProgress})
	if err := e.Start(ctx, tk.ID); err != nil {
		t.Fatal(err)
	}

	e.Tick(tk.ID)
	e.Tick(tk.ID)
	e.Pause(tk.ID)
	e.Tick(tk.ID)
	e.Tick(tk.ID)
	e.Resume(tk.ID)
	e.Tick(tk.ID)
	e.Sync()

	if got := e.Elapsed(tk.ID); got != 3 {
		t.Errorf("elapsed = %d, want 3 (paused ticks ignored)", got)
	}
	persisted, err := s.GetTask(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if persisted.ActualTime != 3 {
		t.Errorf("persisted actualTime = %d, want 3", persisted.ActualTime)
	}
	// Pause/resume never touch the persisted timer fields.
	if !persisted.HasActiveTimer() {
		t.Error("startTime should remain set across pause/resume")
	}
}

func TestCompleteMovesTaskToCompleted(t *testing.T) {
	e, s, clock := newEngineWithStore(t)
	ctx := context.Background()

	tk := mustCreate(t, s, store.NewTask{Title: "t", Status: task.StatusInProgress})
	if err := e.Start(ctx, tk.ID); err != nil {
		t.Fatal(err)
	}
	e.Tick(tk.ID)
	e.Tick(tk.ID)

	clock.now = clock.now.Add(2 * time.Second)
	if err := e.Complete(ctx, tk.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, err := s.GetTask(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", got.Status)
	}
	if got.ActualTime != 2 {
		t.Errorf("actualTime = %d, want 2", got.ActualTime)
	}
	if got.EndTime == nil || !got.EndTime.Equal(clock.now) {
		t.Errorf("endTime = %v, want %v", got.EndTime, clock.now)
	}
	if got.CompletedAt == nil {
		t.Error("completedAt not set")
	}
	if e.ActiveTask() != "" {
		t.Error("active slot not released after completion")
	}
}

// failingStore rejects updates on demand so Start failures can be
// observed.
type failingStore struct {
	store.Store
	failUpdates bool
}

func (f *failingStore) UpdateTask(ctx context.Context, id string, ch store.TaskChanges) (task.Task, error) {
	if f.failUpdates {
		return task.Task{}, &task.TransientError{Err: errors.New("write refused")}
	}
	return f.Store.UpdateTask(ctx, id, ch)
}

// A failed Start must not flip local state to running and must never leave
// two tasks active.
func TestFailedStartLeavesStateUnchanged(t *testing.T) {
	local, err := store.NewLocalStore(filepath.Join(t.TempDir(), "local.json"))
	if err != nil {
		t.Fatal(err)
	}
	flaky := &failingStore{Store: local}
	e := NewEngine(flaky, WithTickInterval(0))
	defer e.Close()
	ctx := context.Background()

	tk := mustCreate(t, local, store.NewTask{Title: "t", Status: task.StatusInProgress})

	flaky.failUpdates = true
	if err := e.Start(ctx, tk.ID); err == nil {
		t.Fatal("expected Start to fail")
	}

	if e.ActiveTask() != "" {
		t.Errorf("active task = %q after failed start", e.ActiveTask())
	}
	if e.SessionState(tk.ID) != Stopped {
		t.Error("session should not be running after failed start")
	}

	got, err := local.GetTask(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.HasActiveTimer() {
		t.Error("store shows an active timer after failed start")
	}
}

// The invariant must hold after every completed Start: walk a sequence of
// starts across tasks and check the store never holds two active timers.
func TestSingleActiveTimerInvariant(t *testing.T) {
	e, s, _ := newEngineWithStore(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		tk := mustCreate(t, s, store.NewTask{Title: title, Status: task.StatusInProgress})
		ids = append(ids, tk.ID)
	}

	for _, id := range []string{ids[0], ids[1], ids[2], ids[0]} {
		if err := e.Start(ctx, id); err != nil {
			t.Fatalf("Start %s: %v", id, err)
		}

		tasks, err := s.ListTasks(ctx, store.Filter{})
		if err != nil {
			t.Fatal(err)
		}
		active := 0
		for i := range tasks {
			if tasks[i].HasActiveTimer() {
				active++
			}
		}
		if active != 1 {
			t.Fatalf("%d tasks hold an active timer after starting %s", active, id)
		}
	}
}

func TestStartIsNoOpWhenAlreadyRunning(t *testing.T) {
	e, s, _ := newEngineWithStore(t)
	ctx := context.Background()

	tk := mustCreate(t, s, store.NewTask{Title: "t", Status: task.StatusInProgress})
	if err := e.Start(ctx, tk.ID); err != nil {
		t.Fatal(err)
	}
	e.Tick(tk.ID)

	if err := e.Start(ctx, tk.ID); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if got := e.Elapsed(tk.ID); got != 1 {
		t.Errorf("elapsed = %d, want session preserved with 1", got)
	}
}
