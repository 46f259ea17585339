package decodex

import (
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestDeadlineTimerCancelledAfterDuration(t *testing.T) {
	clock := clockz.NewFakeClock()
	timer := NewDeadlineTimer(5 * time.Second).WithClock(clock)
	timer.Start()

	if timer.Cancelled() {
		t.Fatal("expected the timer not to be cancelled immediately after Start")
	}

	clock.Advance(3 * time.Second)
	if timer.Cancelled() {
		t.Fatal("expected the timer not to be cancelled before its deadline")
	}

	clock.Advance(3 * time.Second)
	if !timer.Cancelled() {
		t.Fatal("expected the timer to be cancelled once its deadline has elapsed")
	}
	if !timer.DeadlineElapsed() {
		t.Error("expected DeadlineElapsed to report true for a wall-clock timeout")
	}
}

func TestDeadlineTimerExplicitCancelDoesNotReportDeadlineElapsed(t *testing.T) {
	clock := clockz.NewFakeClock()
	timer := NewDeadlineTimer(5 * time.Second).WithClock(clock)
	timer.Start()
	timer.Cancel()

	if !timer.Cancelled() {
		t.Fatal("expected Cancel to assert cancellation immediately")
	}
	if timer.DeadlineElapsed() {
		t.Error("expected an explicit Cancel not to be reported as a deadline elapse")
	}
}

func TestDeadlineTimerPauseFreezesRemainingTime(t *testing.T) {
	clock := clockz.NewFakeClock()
	timer := NewDeadlineTimer(5 * time.Second).WithClock(clock)
	timer.Start()

	clock.Advance(4 * time.Second)
	timer.Pause()

	// Simulate a long human-facing prompt: this would blow well past the
	// original 5-second deadline if it were not paused.
	clock.Advance(time.Hour)
	if timer.Cancelled() {
		t.Fatal("expected a paused timer never to report cancellation, however much time passes")
	}

	timer.Resume()
	if timer.Cancelled() {
		t.Fatal("expected ~1 second of remaining budget to still be available immediately after Resume")
	}

	clock.Advance(2 * time.Second)
	if !timer.Cancelled() {
		t.Fatal("expected the timer to be cancelled once the remaining budget elapses after Resume")
	}
}

func TestDeadlineTimerDoublePauseIsIdempotent(t *testing.T) {
	clock := clockz.NewFakeClock()
	timer := NewDeadlineTimer(5 * time.Second).WithClock(clock)
	timer.Start()
	clock.Advance(2 * time.Second)
	timer.Pause()
	remainingAfterFirstPause := timer.remaining
	clock.Advance(time.Second) // should have no effect since paused
	timer.Pause()              // second Pause must be a no-op
	if timer.remaining != remainingAfterFirstPause {
		t.Errorf("expected a second Pause call to leave remaining unchanged, got %v want %v", timer.remaining, remainingAfterFirstPause)
	}
}
