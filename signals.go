package decodex

import "github.com/zoobzio/capitan"

// Signal definitions for engine lifecycle events, following the same
// "<subsystem>.<event>" naming convention as the connector library this
// engine's observability stack is drawn from.
var (
	SignalSearchStarted = capitan.NewSignal(
		"search.started",
		"A top-level search began for a new input",
	)
	SignalSearchResultFound = capitan.NewSignal(
		"search.result-found",
		"A recognizer confirmed a candidate output as plaintext",
	)
	SignalSearchDeadlineElapsed = capitan.NewSignal(
		"search.deadline-elapsed",
		"The deadline timer asserted cancellation before a result was confirmed",
	)
	SignalSearchExhausted = capitan.NewSignal(
		"search.exhausted",
		"The frontier drained without any confirmed plaintext",
	)
	SignalVisitedPruned = capitan.NewSignal(
		"visited.pruned",
		"The visited set exceeded its threshold and was pruned to its top half by quality",
	)
	SignalTransformationFailed = capitan.NewSignal(
		"transformation.failed",
		"A transformation returned an error (recorded as a statistical failure), or one of its outputs could not be appended to the chain",
	)
	SignalInteractivePrompt = capitan.NewSignal(
		"interactive.prompt",
		"The interactive confirmer asked the operator to accept or reject a candidate",
	)
)

// Field keys used alongside the signals above.
var (
	FieldInput          = capitan.NewStringKey("input")
	FieldPlaintext      = capitan.NewStringKey("plaintext")
	FieldChain          = capitan.NewStringKey("chain")
	FieldRecognizer     = capitan.NewStringKey("recognizer")
	FieldTransformation = capitan.NewStringKey("transformation")
	FieldDepth          = capitan.NewIntKey("depth")
	FieldFrontierSize   = capitan.NewIntKey("frontier_size")
	FieldVisitedSize    = capitan.NewIntKey("visited_size")
)
