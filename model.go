// Package decodex implements an automated multi-layer decoding engine: given
// an opaque string, it discovers a sequence of reversible transformations
// (encodings and classical ciphers) that turn it into recognizable
// plaintext. Discovery is a best-first graph search over candidate
// transformation chains, guided by a heuristic that prefers short, "natural"
// chains.
//
// The engine treats individual transformations and recognizers as opaque
// collaborators behind the Transformation and Recognizer interfaces; this
// package owns the search engine, the cost/heuristic model, and the
// recognition orchestrator that ties recognizers together.
package decodex

import (
	"fmt"
	"strings"

	"github.com/vantyr/decodex/internal/text"
)

// TagIsEncoder is the distinguished kind tag: its presence classifies a
// transformation as an encoder, its absence as a cipher.
const TagIsEncoder = "is-encoder"

// TagReciprocal marks a transformation as self-inverse (e.g. ROT13). The
// engine will not apply a reciprocal transformation immediately after
// itself within the same chain.
const TagReciprocal = "reciprocal"

// TransformationDescriptor is the immutable, process-long identity of a
// transformation: a stable name, its kind tags, a popularity prior in
// [0,1], and human-facing metadata. Two descriptors with the same Name are
// considered the same transformation.
type TransformationDescriptor struct {
	Name        string
	KindTags    map[string]struct{}
	Popularity  float64
	Description string
	Link        string
}

// IsEncoder reports whether the descriptor carries TagIsEncoder.
func (d TransformationDescriptor) IsEncoder() bool {
	_, ok := d.KindTags[TagIsEncoder]
	return ok
}

// IsReciprocal reports whether the descriptor carries TagReciprocal.
func (d TransformationDescriptor) IsReciprocal() bool {
	_, ok := d.KindTags[TagReciprocal]
	return ok
}

// NewDescriptor builds a TransformationDescriptor from a slice of tags for
// convenient construction by catalog implementations.
func NewDescriptor(name string, popularity float64, description, link string, tags ...string) TransformationDescriptor {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return TransformationDescriptor{
		Name:        name,
		KindTags:    set,
		Popularity:  popularity,
		Description: description,
		Link:        link,
	}
}

// TransformationStep is an immutable record of one transformation attempt
// that produced a candidate output. Ownership: created by the node that
// produced it, cloned into result paths.
type TransformationStep struct {
	TransformationName string
	InputText          string
	OutputText         string
	Key                string // optional, e.g. a Caesar shift
	RecognizerName     string // set iff a recognizer confirmed OutputText
	Success            bool   // true iff a recognizer (possibly interactive) confirmed OutputText

	// IsEncoder denormalizes the producing transformation's descriptor tag
	// onto the step itself, so the cost model can walk a Chain without a
	// live catalog lookup (a chain read back from the persistent cache, for
	// instance, has no catalog at all).
	IsEncoder bool
}

// Chain is an ordered sequence of TransformationSteps from the root input to
// the current text. Its zero value is an empty chain (depth 0). Chain is
// immutable; Append always returns a new Chain, so a SearchNode's chain
// prefix can be shared safely across concurrently expanded children.
type Chain struct {
	steps []TransformationStep
}

// NewChain returns an empty chain.
func NewChain() Chain { return Chain{} }

// Depth returns the number of steps, i.e. the chain's length.
func (c Chain) Depth() int { return len(c.steps) }

// Steps returns the chain's steps in order. The returned slice must not be
// mutated by the caller.
func (c Chain) Steps() []TransformationStep { return c.steps }

// Last returns the final step and true, or the zero step and false if the
// chain is empty.
func (c Chain) Last() (TransformationStep, bool) {
	if len(c.steps) == 0 {
		return TransformationStep{}, false
	}
	return c.steps[len(c.steps)-1], true
}

// Append returns a new Chain with step appended, enforcing the adjacency
// invariant: step.InputText must equal the current chain's output text (or,
// for an empty chain, step.InputText may be anything — it is the root
// input). Append is the only way to grow a Chain, which is what lets
// Validate below be a property of construction rather than a runtime check
// callers might skip.
func (c Chain) Append(step TransformationStep) (Chain, error) {
	if last, ok := c.Last(); ok && last.OutputText != step.InputText {
		return c, fmt.Errorf("decodex: chain adjacency violated: step %q input %q does not match previous output %q",
			step.TransformationName, text.Truncate(step.InputText, 40), text.Truncate(last.OutputText, 40))
	}
	steps := make([]TransformationStep, len(c.steps)+1)
	copy(steps, c.steps)
	steps[len(c.steps)] = step
	return Chain{steps: steps}, nil
}

// CipherCount returns how many of the chain's steps are cipher steps.
func (c Chain) CipherCount() int {
	n := 0
	for _, s := range c.steps {
		if !s.IsEncoder {
			n++
		}
	}
	return n
}

// Validate checks the chain-consistency invariant: for every
// adjacent pair of steps, step[i].OutputText == step[i+1].InputText, the
// first step's InputText equals originalInput, and the last step's
// OutputText equals reportedPlaintext. A Chain built exclusively through
// Append already satisfies adjacency; Validate is the belt-and-suspenders
// check the engine runs immediately before handing a chain to a Sink, since
// an incorrect plaintext must never be emitted.
func (c Chain) Validate(originalInput, reportedPlaintext string) error {
	if len(c.steps) == 0 {
		if originalInput != reportedPlaintext {
			return fmt.Errorf("decodex: empty chain but input %q != reported plaintext %q", originalInput, reportedPlaintext)
		}
		return nil
	}
	if c.steps[0].InputText != originalInput {
		return fmt.Errorf("decodex: chain's first input %q != original input %q", text.Truncate(c.steps[0].InputText, 40), text.Truncate(originalInput, 40))
	}
	for i := 0; i+1 < len(c.steps); i++ {
		if c.steps[i].OutputText != c.steps[i+1].InputText {
			return fmt.Errorf("decodex: chain broken between step %d and %d", i, i+1)
		}
	}
	last := c.steps[len(c.steps)-1]
	if last.OutputText != reportedPlaintext {
		return fmt.Errorf("decodex: last step output %q != reported plaintext %q", text.Truncate(last.OutputText, 40), text.Truncate(reportedPlaintext, 40))
	}
	return nil
}

// String renders the chain as a human-readable arrow diagram, e.g.
// "base64 -> caesar(3)". Used only for diagnostics and logging.
func (c Chain) String() string {
	var b strings.Builder
	for i, s := range c.steps {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(s.TransformationName)
		if s.Key != "" {
			b.WriteString("(")
			b.WriteString(s.Key)
			b.WriteString(")")
		}
	}
	return b.String()
}

// SearchNode is a unit of work in the frontier: the current text, the chain
// that produced it, its depth, its g/h/f costs, the transformations still
// to be tried at this text, and whether a recognizer has already confirmed
// it as plaintext. Ownership: owned by the frontier; moved out on
// extraction; cloned only when descendants are produced.
type SearchNode struct {
	Text                   string
	NodeChain              Chain
	Depth                  int
	PathCost               float64
	Heuristic              float64
	TotalCost              float64
	PendingTransformations []TransformationDescriptor
	IsResult               bool

	seq int // insertion sequence, used for FIFO tie-breaking in the frontier
}

// CostBreakdown is a diagnostic-only, per-node accounting of how PathCost
// and Heuristic were derived. It is never required for correctness — the
// engine's decisions depend only on the scalar TotalCost — but it is what
// CostBreakdown.String, DiagnosticsNode and RenderChain render for
// introspection and logging.
type CostBreakdown struct {
	TransformationName string
	StepCost           float64
	CipherEscalation   float64
	DepthPenalty       float64
	Entropy            float64
	Quality            float64
	SuccessRatePrior   float64
	CipherHint         float64
	PathCost           float64
	Heuristic          float64
	TotalCost          float64
}

func (b CostBreakdown) String() string {
	return fmt.Sprintf(
		"%s: step=%.3f cipherEsc=%.3f depth=%.3f | entropy=%.3f quality=%.3f prior=%.3f hint=%.3f | g=%.3f h=%.3f f=%.3f",
		b.TransformationName, b.StepCost, b.CipherEscalation, b.DepthPenalty,
		b.Entropy, b.Quality, b.SuccessRatePrior, b.CipherHint,
		b.PathCost, b.Heuristic, b.TotalCost,
	)
}
