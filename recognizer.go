package decodex

import "context"

// RecognitionResult is what a Recognizer returns for one candidate text: a
// verdict on whether it looks like plaintext, the name of the recognizer
// that produced the verdict (for TransformationStep.RecognizerName), and an
// optional confidence in [0,1] for recognizers that produce one (regex and
// wordlist hits report 1.0; the classifier reports a graded score).
type RecognitionResult struct {
	Confirmed  bool
	Name       string
	Confidence float64
	Reason     string
}

// Recognizer is the external, opaque collaborator contract for deciding
// whether a candidate string is human-readable plaintext. decodex ships an
// orchestrator (orchestrator.go) that composes several Recognizers behind a
// single Recognizer, in the same "many collaborators behind one interface"
// shape pipz uses for Fallback and Switch.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, text string) (RecognitionResult, error)
}

// RecognizerFunc adapts a plain function to the Recognizer interface.
type RecognizerFunc struct {
	name string
	fn   func(ctx context.Context, text string) (RecognitionResult, error)
}

// NewRecognizerFunc builds a Recognizer from a name and a plain function.
func NewRecognizerFunc(name string, fn func(ctx context.Context, text string) (RecognitionResult, error)) Recognizer {
	return RecognizerFunc{name: name, fn: fn}
}

// Name implements Recognizer.
func (r RecognizerFunc) Name() string { return r.name }

// Recognize implements Recognizer.
func (r RecognizerFunc) Recognize(ctx context.Context, text string) (result RecognitionResult, err error) {
	defer recoverFromPanic(&err, r.name, text)
	return r.fn(ctx, text)
}

// MLRecognizer is an optional, higher-cost Recognizer backed by a language
// model. It is never part of the mandatory recognition cascade; an
// orchestrator only consults one after every cheaper stage has declined, and
// only when the caller configured one (llm.New, for instance).
type MLRecognizer interface {
	Recognizer
	// Budget reports the maximum number of calls an Orchestrator makes to
	// this recognizer over the Orchestrator's lifetime (the count is not
	// reset between searches); once it is used up, the orchestrator skips
	// this stage.
	Budget() int
}
