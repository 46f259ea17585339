package decodex

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/zoobzio/capitan"
)

// Prompter is the human-facing collaborator an InteractiveConfirmer drives:
// given a recognizer name and candidate text, it asks the operator whether
// the text is plaintext and returns their answer.
type Prompter interface {
	Prompt(ctx context.Context, recognizerName string, candidate string) (accepted bool, err error)
}

// PrompterFunc adapts a plain function to Prompter.
type PrompterFunc func(ctx context.Context, recognizerName string, candidate string) (bool, error)

// Prompt implements Prompter.
func (f PrompterFunc) Prompt(ctx context.Context, recognizerName string, candidate string) (bool, error) {
	return f(ctx, recognizerName, candidate)
}

// InteractiveConfirmer arbitrates interactive confirmation across parallel
// workers: a process-wide mutex ensures at most one prompt is outstanding,
// a dedup map returns a prior decision instead of re-prompting for the same
// (recognizerName, text) key, and a confirmed-text slot records the
// canonical accepted text so a parallel worker's alternative candidate
// cannot race it to the result sink.
//
// A DeadlinePauser is consulted around every prompt so that time spent
// waiting on a human does not count against the search deadline.
type InteractiveConfirmer struct {
	prompter Prompter
	pauser   DeadlinePauser

	inflight singleflight.Group // collapses concurrent Confirm calls for the same key into one Prompt call
	promptMu sync.Mutex         // serializes the actual human-facing Prompt call across distinct keys

	mu           sync.Mutex // guards the fields below, held only for map/slot bookkeeping, never across a Prompt call
	dedup        map[string]bool
	confirmed    string
	hasConfirmed bool
}

// DeadlinePauser is the minimal contract InteractiveConfirmer needs from the
// deadline timer: pause while a human is being asked, resume once they
// answer.
type DeadlinePauser interface {
	Pause()
	Resume()
}

// NewInteractiveConfirmer builds a confirmer around prompter. pauser may be
// nil, in which case prompts do not pause any deadline (useful in tests
// that drive interactive confirmation without a live timer).
func NewInteractiveConfirmer(prompter Prompter, pauser DeadlinePauser) *InteractiveConfirmer {
	return &InteractiveConfirmer{
		prompter: prompter,
		pauser:   pauser,
		dedup:    make(map[string]bool),
	}
}

func dedupKey(recognizerName, candidate string) string {
	return recognizerName + "\x00" + candidate
}

// Confirm asks the operator whether candidate is plaintext, deduplicating
// against any prior prompt for the same (recognizerName, candidate) pair
// and recording the canonical confirmed text on acceptance.
func (c *InteractiveConfirmer) Confirm(ctx context.Context, recognizerName string, candidate string) (bool, error) {
	key := dedupKey(recognizerName, candidate)

	if decision, ok := c.priorDecision(key); ok {
		return decision, nil
	}

	v, err, _ := c.inflight.Do(key, func() (interface{}, error) {
		if decision, ok := c.priorDecision(key); ok {
			return decision, nil
		}
		return c.doPrompt(ctx, recognizerName, candidate, key)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (c *InteractiveConfirmer) priorDecision(key string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	decision, ok := c.dedup[key]
	return decision, ok
}

// doPrompt performs the actual human-facing prompt, serialized against
// every other key via promptMu so at most one prompt is ever outstanding.
func (c *InteractiveConfirmer) doPrompt(ctx context.Context, recognizerName, candidate, key string) (bool, error) {
	c.promptMu.Lock()
	defer c.promptMu.Unlock()

	if c.pauser != nil {
		c.pauser.Pause()
	}
	capitan.Info(ctx, SignalInteractivePrompt, FieldRecognizer.Field(recognizerName))
	accepted, err := c.prompter.Prompt(ctx, recognizerName, candidate)
	if c.pauser != nil {
		c.pauser.Resume()
	}
	if err != nil {
		return false, newSearchError(ErrRecognizerFailed, "interactive", candidate, err)
	}

	c.mu.Lock()
	c.dedup[key] = accepted
	if accepted {
		c.confirmed = candidate
		c.hasConfirmed = true
	}
	c.mu.Unlock()

	return accepted, nil
}

// ConfirmedMatches reports whether text normalize-equals the confirmed-text
// slot. Used by the engine to reject a result from a parallel worker that
// raced the interactively-confirmed candidate and lost.
func (c *InteractiveConfirmer) ConfirmedMatches(candidate string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasConfirmed {
		return true // no interactive confirmation has happened yet; nothing to compare against
	}
	return strings.TrimSpace(c.confirmed) == strings.TrimSpace(candidate)
}
