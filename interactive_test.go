package decodex

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingPrompter struct {
	calls int32
	delay time.Duration
	fn    func(recognizerName, candidate string) (bool, error)
}

func (p *countingPrompter) Prompt(ctx context.Context, recognizerName string, candidate string) (bool, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.fn != nil {
		return p.fn(recognizerName, candidate)
	}
	return true, nil
}

func TestInteractiveConfirmerDedupesRepeatedCandidate(t *testing.T) {
	prompter := &countingPrompter{}
	c := NewInteractiveConfirmer(prompter, nil)

	accepted, err := c.Confirm(context.Background(), "english-classifier", "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !accepted {
		t.Fatal("expected the first confirmation to be accepted")
	}

	accepted, err = c.Confirm(context.Background(), "english-classifier", "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !accepted {
		t.Error("expected the cached decision to be returned")
	}

	if got := atomic.LoadInt32(&prompter.calls); got != 1 {
		t.Errorf("expected exactly one human-facing prompt for a repeated identical candidate, got %d", got)
	}
}

func TestInteractiveConfirmerCollapsesConcurrentIdenticalCandidates(t *testing.T) {
	prompter := &countingPrompter{delay: 20 * time.Millisecond}
	c := NewInteractiveConfirmer(prompter, nil)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]bool, workers)
	errs := make([]error, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Confirm(context.Background(), "english-classifier", "same candidate text")
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: unexpected error: %v", i, err)
		}
		if !results[i] {
			t.Errorf("worker %d: expected acceptance", i)
		}
	}

	if got := atomic.LoadInt32(&prompter.calls); got != 1 {
		t.Errorf("expected singleflight to collapse concurrent identical-candidate confirms into one Prompt call, got %d calls", got)
	}
}

func TestInteractiveConfirmerDoesNotCollapseDistinctCandidates(t *testing.T) {
	prompter := &countingPrompter{}
	c := NewInteractiveConfirmer(prompter, nil)

	c.Confirm(context.Background(), "english-classifier", "candidate one")
	c.Confirm(context.Background(), "english-classifier", "candidate two")

	if got := atomic.LoadInt32(&prompter.calls); got != 2 {
		t.Errorf("expected two distinct candidates to each get their own prompt, got %d calls", got)
	}
}

func TestInteractiveConfirmerRejectionIsCached(t *testing.T) {
	prompter := &countingPrompter{fn: func(string, string) (bool, error) { return false, nil }}
	c := NewInteractiveConfirmer(prompter, nil)

	accepted, err := c.Confirm(context.Background(), "english-classifier", "noise")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted {
		t.Fatal("expected rejection")
	}

	c.Confirm(context.Background(), "english-classifier", "noise")
	if got := atomic.LoadInt32(&prompter.calls); got != 1 {
		t.Errorf("expected a rejection to be cached too, got %d calls", got)
	}
}

type pauseTracker struct {
	paused, resumed int32
}

func (p *pauseTracker) Pause()  { atomic.AddInt32(&p.paused, 1) }
func (p *pauseTracker) Resume() { atomic.AddInt32(&p.resumed, 1) }

func TestInteractiveConfirmerPausesDeadlineAroundPrompt(t *testing.T) {
	tracker := &pauseTracker{}
	c := NewInteractiveConfirmer(&countingPrompter{}, tracker)

	c.Confirm(context.Background(), "english-classifier", "text")

	if atomic.LoadInt32(&tracker.paused) != 1 || atomic.LoadInt32(&tracker.resumed) != 1 {
		t.Errorf("expected exactly one Pause/Resume pair around the prompt, got paused=%d resumed=%d", tracker.paused, tracker.resumed)
	}
}

func TestInteractiveConfirmerConfirmedMatches(t *testing.T) {
	c := NewInteractiveConfirmer(&countingPrompter{}, nil)
	if !c.ConfirmedMatches("anything") {
		t.Error("expected ConfirmedMatches to be permissive before any confirmation has happened")
	}

	c.Confirm(context.Background(), "english-classifier", "the winning text")
	if !c.ConfirmedMatches("the winning text") {
		t.Error("expected ConfirmedMatches to match the confirmed candidate")
	}
	if c.ConfirmedMatches("a different candidate") {
		t.Error("expected ConfirmedMatches to reject a losing parallel candidate")
	}
}
