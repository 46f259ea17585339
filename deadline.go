package decodex

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// DeadlineTimer is a wall-clock timer that asserts Cancelled after a
// configured duration, with Pause/Resume so an interactive prompt does not
// consume the search budget. It implements DeadlinePauser so an
// InteractiveConfirmer can drive it directly.
type DeadlineTimer struct {
	clock    clockz.Clock
	duration time.Duration

	mu        sync.Mutex
	deadline  time.Time
	paused    bool
	remaining time.Duration
	elapsed   bool
	cancelled bool
}

// NewDeadlineTimer builds a timer for duration using the real wall clock.
// Call Start to begin counting down.
func NewDeadlineTimer(duration time.Duration) *DeadlineTimer {
	return &DeadlineTimer{clock: clockz.RealClock, duration: duration}
}

// WithClock swaps in a fake clock, the same deterministic-time injection
// point pipz's connectors expose.
func (d *DeadlineTimer) WithClock(clock clockz.Clock) *DeadlineTimer {
	d.clock = clock
	return d
}

// Start begins the countdown from now.
func (d *DeadlineTimer) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deadline = d.clock.Now().Add(d.duration)
}

// Pause freezes the remaining time, so time spent waiting on a human does
// not count against the budget.
func (d *DeadlineTimer) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.paused {
		return
	}
	d.paused = true
	d.remaining = d.deadline.Sub(d.clock.Now())
}

// Resume restarts the countdown from the remaining time captured at Pause.
func (d *DeadlineTimer) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.paused {
		return
	}
	d.paused = false
	d.deadline = d.clock.Now().Add(d.remaining)
}

// Cancel asserts cancellation immediately, independent of elapsed time —
// used for a first-hit result or a user interrupt.
func (d *DeadlineTimer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelled = true
}

// Cancelled reports whether the search should stop: either Cancel was
// called, or the deadline has elapsed while unpaused.
func (d *DeadlineTimer) Cancelled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelled {
		return true
	}
	if d.paused {
		return false
	}
	if !d.deadline.IsZero() && !d.clock.Now().Before(d.deadline) {
		d.elapsed = true
		return true
	}
	return false
}

// DeadlineElapsed reports whether Cancelled returned true specifically
// because the wall-clock deadline passed, as opposed to an explicit Cancel
// (used to decide whether to emit SignalSearchDeadlineElapsed vs. a plain
// first-hit success).
func (d *DeadlineTimer) DeadlineElapsed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.elapsed
}
