// Package debounce delays a call until its caller has gone quiet.
package debounce

import (
	"sync"
	"time"
)

// Timer runs a function once the caller has been idle for the configured
// delay. Scheduling again replaces the pending call. A Timer has a single
// owner; the zero value is not usable, use New.
type Timer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
}

// New creates a timer with the given idle period.
func New(delay time.Duration) *Timer {
	return &Timer{delay: delay}
}

// Schedule arms the timer for fn, cancelling any call not yet started.
func (t *Timer) Schedule(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	t.pending = fn
	t.timer = time.AfterFunc(t.delay, func() { t.fire(gen) })
}

// Cancel drops the pending call and reports whether there was one.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	had := t.pending != nil
	t.stopLocked()
	t.gen++
	return had
}

// Pending reports whether a call is armed.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.pending == nil {
		t.mu.Unlock()
		return
	}
	fn := t.pending
	t.pending = nil
	t.timer = nil
	t.mu.Unlock()

	fn()
}

func (t *Timer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = nil
}
