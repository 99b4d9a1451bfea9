package timer

import (
	"sync"
)

// taskWriter serializes elapsed-time writes for one task. Ticks hand it the
// full cumulative value; a single goroutine flushes the latest one, so a
// slow write never blocks the tick cadence and an older value can never
// land after a newer one.
type taskWriter struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending int
	dirty   bool
	busy    bool
	closed  bool
}

func newTaskWriter() *taskWriter {
	w := &taskWriter{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// put records the latest cumulative value to persist. Values put while a
// write is in flight coalesce; only the newest is written.
func (w *taskWriter) put(v int) {
	w.mu.Lock()
	w.pending = v
	w.dirty = true
	w.cond.Broadcast()
	w.mu.Unlock()
}

// loop drains pending values through persist until close. A failed persist
// is reported through onError; the value is superseded by the next tick.
func (w *taskWriter) loop(persist func(int) error, onError func(error)) {
	w.mu.Lock()
	for {
		for !w.dirty && !w.closed {
			w.cond.Wait()
		}
		if !w.dirty && w.closed {
			break
		}

		v := w.pending
		w.dirty = false
		w.busy = true
		w.mu.Unlock()

		err := persist(v)

		w.mu.Lock()
		w.busy = false
		w.cond.Broadcast()
		if err != nil && onError != nil {
			onError(err)
		}
	}
	w.mu.Unlock()
}

// wait blocks until no write is pending or in flight. Stop and Complete
// call it before their own final write so a stale tick value cannot land
// afterwards.
func (w *taskWriter) wait() {
	w.mu.Lock()
	for w.dirty || w.busy {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

// close shuts the loop down after the current flush.
func (w *taskWriter) close() {
	w.mu.Lock()
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
}
