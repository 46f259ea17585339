package decodex

import "context"

// TransformationResult is what a Transformation.Apply call returns: zero or
// more candidate outputs, an optional key (e.g. a Caesar shift), the
// recognizer confirmation if one of the candidates was checked and
// confirmed, and Success — true iff and only if a recognizer (including any
// interactive confirmation) confirmed one of CandidateOutputs as plaintext.
type TransformationResult struct {
	CandidateOutputs []string
	Key              string
	Confirmation     RecognitionResult
	Success          bool
}

// Transformation is the external, opaque collaborator contract for a single
// reversible transformation (an encoding or a classical cipher). decodex
// never inspects how a Transformation decides its candidates; it only reads
// Descriptor() for cost/heuristic bookkeeping and calls Apply to expand a
// search node.
type Transformation interface {
	// Descriptor returns this transformation's stable, process-long identity.
	Descriptor() TransformationDescriptor
	// Apply attempts the transformation against text, using recognizer to
	// check candidate outputs for plaintext (including interactive
	// confirmation, if the recognizer implementation performs it).
	Apply(ctx context.Context, text string, recognizer Recognizer) (TransformationResult, error)
}

// TransformationFunc adapts a plain function to the Transformation
// interface, the same "wrap a func as a first-class value" shape as pipz's
// Apply/Transform/Effect adapters — here there is exactly one shape to
// adapt because Transformation has exactly one behavioral method.
type TransformationFunc struct {
	descriptor TransformationDescriptor
	fn         func(ctx context.Context, text string, recognizer Recognizer) (TransformationResult, error)
}

// NewTransformationFunc builds a Transformation from a descriptor and a
// plain function. This is the adapter catalog implementations are expected
// to use rather than hand-rolling a type per transformation.
func NewTransformationFunc(descriptor TransformationDescriptor, fn func(ctx context.Context, text string, recognizer Recognizer) (TransformationResult, error)) Transformation {
	return TransformationFunc{descriptor: descriptor, fn: fn}
}

// Descriptor implements Transformation.
func (t TransformationFunc) Descriptor() TransformationDescriptor { return t.descriptor }

// Apply implements Transformation.
func (t TransformationFunc) Apply(ctx context.Context, text string, recognizer Recognizer) (result TransformationResult, err error) {
	defer recoverFromPanic(&err, t.descriptor.Name, text)
	return t.fn(ctx, text, recognizer)
}

// checkUnusable implements the acceptance filter's cheapness gate: length
// <= 2, or too much non-printable / invisible content, or too low a
// string-quality score. It is checked before a candidate output is even
// considered for insertion into the visited set.
func checkUnusable(s string) bool {
	if runeLen(s) <= 2 {
		return true
	}
	if nonPrintableFraction(s) > 0.30 {
		return true
	}
	if stringQuality(s) < 0.2 {
		return true
	}
	if invisibleFraction(s) > 0.50 {
		return true
	}
	return false
}
