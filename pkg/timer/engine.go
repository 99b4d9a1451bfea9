// Package timer implements the per-task countdown/stopwatch controller.
// At most one task system-wide may hold a running timer; the engine owns
// that slot explicitly and serializes every claim on it.
package timer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"monodo/pkg/store"
	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

// DisplayMode is how a session renders its time. It is chosen once when
// the session starts and held fixed, so the display cannot flap between
// modes mid-session.
type DisplayMode int

const (
	// Stopwatch counts up from the accumulated time.
	Stopwatch DisplayMode = iota
	// Countdown counts down from the planned budget, switching to a
	// signed overrun display past zero.
	Countdown
)

// State of one task's timer session.
type State int

const (
	Stopped State = iota
	Running
	Paused
)

// session tracks one task's in-memory timer accounting. Its actual counter
// is the source of truth between successful writes.
type session struct {
	taskID   string
	mode     DisplayMode
	state    State
	expected int
	actual   int

	writer   *taskWriter
	stopTick chan struct{}
}

// Engine drives every task timer. All mutations of the active-timer slot
// go through its mutex, so two concurrent Start calls can never both claim
// it.
type Engine struct {
	mu sync.Mutex

	store    store.Store
	clock    Clock
	logger   *slog.Logger
	interval time.Duration
	role     task.Role
	notify   func(string)

	active   string
	sessions map[string]*session
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTickInterval overrides the one-second accounting tick. A zero
// interval disables the internal ticker; ticks must then be driven
// externally.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithRole sets the capability used for the completion transition.
func WithRole(r task.Role) Option {
	return func(e *Engine) { e.role = r }
}

// WithNotifier registers a callback for transient user-facing notices,
// such as "previous timer stopped".
func WithNotifier(fn func(string)) Option {
	return func(e *Engine) { e.notify = fn }
}

// NewEngine creates a timer engine writing through the given store.
func NewEngine(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		clock:    SystemClock(),
		logger:   slog.Default(),
		interval: time.Second,
		role:     task.RoleUser,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ActiveTask returns the id of the task currently holding the timer slot,
// or "" when none does.
func (e *Engine) ActiveTask() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Start claims the active-timer slot for the given task. If another task
// holds it, that task is force-stopped first: its accumulated time is
// persisted and its startTime cleared, and the notifier is told. Only then
// is this task's startTime set. A failed persist leaves local timer state
// unchanged, so the single-active-timer invariant holds after every Start
// that returns.
func (e *Engine) Start(ctx context.Context, taskID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("timer engine closed")
	}
	if e.active == taskID {
		if s := e.sessions[taskID]; s != nil && s.state == Paused {
			s.state = Running
		}
		return nil
	}

	if e.active != "" {
		if err := e.forceStopLocked(ctx, e.active); err != nil {
			return err
		}
		if e.notify != nil {
			e.notify("previous timer stopped")
		}
	}

	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	now := e.clock.Now()
	_, err = e.store.UpdateTask(ctx, taskID, store.TaskChanges{
		StartTime: store.SetTime(now),
		EndTime:   store.ClearTime(),
	})
	if err != nil {
		return err
	}

	s := e.sessions[taskID]
	if s == nil {
		s = &session{
			taskID:   taskID,
			expected: t.ExpectedTime,
			actual:   t.ActualTime,
			writer:   newTaskWriter(),
			stopTick: make(chan struct{}),
		}
		// Countdown only when a budget exists and nothing has been spent
		// yet; the choice sticks for the whole session.
		if t.ExpectedTime > 0 && t.ActualTime == 0 {
			s.mode = Countdown
		}
		e.sessions[taskID] = s

		go s.writer.loop(
			func(v int) error { return e.persistActual(taskID, v) },
			func(err error) {
				e.logger.Warn("tick write failed, will retry on next tick",
					"task", taskID, "error", err)
			},
		)
		if e.interval > 0 {
			go e.tickLoop(s)
		}
	}

	s.state = Running
	e.active = taskID
	return nil
}

func (e *Engine) persistActual(taskID string, v int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := e.store.UpdateTask(ctx, taskID, store.TaskChanges{ActualTime: &v})
	return err
}

func (e *Engine) tickLoop(s *session) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.Tick(s.taskID)
		case <-s.stopTick:
			return
		}
	}
}

// Tick advances the accounting for one task by one second. It does nothing
// unless the session is running: a paused timer accrues no time, on screen
// or in the store. The write-through is handed to the per-task writer and
// never blocks.
func (e *Engine) Tick(taskID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessions[taskID]
	if s == nil || s.state != Running {
		return
	}
	s.actual++
	s.writer.put(s.actual)
}

// Pause suspends the accounting tick. No persisted field changes.
func (e *Engine) Pause(taskID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s := e.sessions[taskID]; s != nil && s.state == Running {
		s.state = Paused
	}
}

// Resume continues a paused session.
func (e *Engine) Resume(taskID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s := e.sessions[taskID]; s != nil && s.state == Paused {
		s.state = Running
	}
}

// forceStopLocked persists the session's accumulated time and clears both
// timer fields. Callers hold e.mu.
func (e *Engine) forceStopLocked(ctx context.Context, taskID string) error {
	s := e.sessions[taskID]
	if s == nil {
		return nil
	}

	// Let any in-flight tick write land first so it cannot clobber the
	// final value.
	s.writer.wait()

	_, err := e.store.UpdateTask(ctx, taskID, store.TaskChanges{
		ActualTime: &s.actual,
		StartTime:  store.ClearTime(),
		EndTime:    store.ClearTime(),
	})
	if err != nil {
		return err
	}

	e.dropSessionLocked(s)
	if e.active == taskID {
		e.active = ""
	}
	return nil
}

func (e *Engine) dropSessionLocked(s *session) {
	close(s.stopTick)
	s.writer.close()
	delete(e.sessions, s.taskID)
}

// Stop ends the task's timer without completing it: the accumulated time
// is persisted and startTime and endTime are both cleared, leaving the
// task resumable later. Stopping a task with no session is a no-op, so a
// double Stop persists the same value twice.
func (e *Engine) Stop(ctx context.Context, taskID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.forceStopLocked(ctx, taskID)
}

// Complete persists the accumulated time and moves the task to COMPLETED
// with endTime set to now. The transition runs through the status
// validator; on any failure the session keeps running unchanged.
func (e *Engine) Complete(ctx context.Context, taskID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessions[taskID]
	if s == nil {
		return fmt.Errorf("no timer session for task %s", taskID)
	}

	s.writer.wait()

	_, err := e.store.UpdateTask(ctx, taskID, store.TaskChanges{ActualTime: &s.actual})
	if err != nil {
		return err
	}

	now := e.clock.Now()
	_, err = e.store.UpdateTaskStatus(ctx, taskID, store.StatusChange{
		Status:      task.StatusCompleted,
		EndTime:     &now,
		CompletedAt: &now,
		Role:        e.role,
	})
	if err != nil {
		return err
	}

	e.dropSessionLocked(s)
	if e.active == taskID {
		e.active = ""
	}
	return nil
}

// Display renders the task's current timer value: remaining budget for a
// countdown (switching to +HH:MM:SS once overrun), elapsed time for a
// stopwatch. Tasks without a session show their stored elapsed time.
func (e *Engine) Display(taskID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessions[taskID]
	if s == nil {
		return timeutil.FormatTime(0)
	}
	if s.mode == Countdown {
		remaining := s.expected - s.actual
		if remaining <= 0 {
			return timeutil.FormatOverrun(remaining)
		}
		return timeutil.FormatTime(remaining)
	}
	return timeutil.FormatTime(s.actual)
}

// Elapsed returns the session's in-memory accumulated seconds, falling
// back to zero when no session exists.
func (e *Engine) Elapsed(taskID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s := e.sessions[taskID]; s != nil {
		return s.actual
	}
	return 0
}

// Mode returns the session's display mode.
func (e *Engine) Mode(taskID string) (DisplayMode, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessions[taskID]
	if s == nil {
		return Stopwatch, false
	}
	return s.mode, true
}

// SessionState returns the session's state, or Stopped when none exists.
func (e *Engine) SessionState(taskID string) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s := e.sessions[taskID]; s != nil {
		return s.state
	}
	return Stopped
}

// Sync blocks until every pending elapsed-time write has flushed.
func (e *Engine) Sync() {
	e.mu.Lock()
	writers := make([]*taskWriter, 0, len(e.sessions))
	for _, s := range e.sessions {
		writers = append(writers, s.writer)
	}
	e.mu.Unlock()

	for _, w := range writers {
		w.wait()
	}
}

// Close shuts down every session's ticker and writer without persisting.
// The board calls it when the timer display goes away so no orphaned
// goroutine keeps writing to a task nobody is looking at.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	for _, s := range e.sessions {
		close(s.stopTick)
		s.writer.close()
	}
	e.sessions = make(map[string]*session)
	e.active = ""
}
