package decodex

import (
	"context"
	"log/slog"
	"regexp"
	"sync"

	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"

	"github.com/vantyr/decodex/internal/text"
)

// Sensitivity is the discrete dial on the English classifier trading false
// positives against false negatives.
type Sensitivity int

const (
	SensitivityLow Sensitivity = iota
	SensitivityMedium
	SensitivityHigh
)

// Classifier is the pluggable English-likelihood recognizer stage. decodex
// ships a quadgram-based implementation (quadgram.go); callers may supply
// their own (an LLM-backed one, for instance) as long as it honors
// Sensitivity.
type Classifier interface {
	Classify(ctx context.Context, normalized string, sensitivity Sensitivity) (confidence float64, ok bool)
}

// Wordlist is the two-tier lookup contract the recognition cascade requires: a bloom filter
// that may false-positive but never false-negatives, backing an
// authoritative dictionary consulted only on a bloom hit.
type Wordlist interface {
	MightContain(word string) bool
	Contains(word string) bool
}

// PatternLibrary recognizes structured formats (IPs, URLs, emails, API
// keys, cryptocurrency addresses, …) independent of the English classifier.
type PatternLibrary interface {
	Match(text string) (description string, ok bool)
}

// OrchestratorConfig configures the ordered recognition cascade.
type OrchestratorConfig struct {
	Regex                       *regexp.Regexp
	Wordlist                    Wordlist
	PatternLibrary              PatternLibrary
	Classifier                  Classifier
	EnglishSensitivityOverrides map[string]Sensitivity
	Interactive                 *InteractiveConfirmer

	// MLRecognizer is consulted only after every cheaper stage above has
	// declined, and only up to its own Budget calls per Orchestrator
	// lifetime — a true plugin: unset, it changes nothing about the
	// cascade's ordinary behavior.
	MLRecognizer MLRecognizer

	// Log overrides the orchestrator's structured logger. Defaults to
	// slog.Default() when unset.
	Log *slog.Logger
}

// Orchestrator composes the recognizer stack behind a single Recognizer,
// running stages in strict priority order, mirroring pipz's Fallback except
// that here "falling back" is partly gated by configuration rather than by
// error: a configured regex or wordlist stage decides alone and disables
// every stage below it, while the pattern library and the English
// classifier end the cascade only on a hit and otherwise pass to the next
// stage.
type Orchestrator struct {
	cfg     OrchestratorConfig
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	log     *slog.Logger

	mlCallsMu   sync.Mutex
	mlCallsUsed int
}

// NewOrchestrator builds an Orchestrator from cfg. cfg.Regex arrives already
// compiled; a pattern that does not compile is rejected earlier, by
// config.Validate and by wire.New.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{cfg: cfg, metrics: newMetrics(), tracer: newTracer(), log: log}
}

// Metrics returns the orchestrator's metric registry.
func (o *Orchestrator) Metrics() *metricz.Registry { return o.metrics }

// Logger returns the orchestrator's structured logger.
func (o *Orchestrator) Logger() *slog.Logger { return o.log }

// Interactive returns the configured InteractiveConfirmer, or nil if none was
// set — the engine consults this to reject a result whose plaintext lost a
// race against the interactively-confirmed candidate.
func (o *Orchestrator) Interactive() *InteractiveConfirmer { return o.cfg.Interactive }

// Tracer returns the orchestrator's tracer.
func (o *Orchestrator) Tracer() *tracez.Tracer { return o.tracer }

// Name implements Recognizer, satisfying Transformation.Apply's recognizer
// parameter — a Transformation only ever sees the orchestrator as a whole,
// never an individual recognizer stage.
func (o *Orchestrator) Name() string { return "orchestrator" }

// stepRecognizer scopes an Orchestrator to a single producing transformation,
// so the sensitivity policy (ciphers default to low, everything else to
// medium) and EnglishSensitivityOverrides see the descriptor that actually
// generated the candidate, instead of the anonymous "" / isEncoder=true
// Recognize passes.
type stepRecognizer struct {
	orchestrator       *Orchestrator
	transformationName string
	isEncoder          bool
}

// Name implements Recognizer.
func (r stepRecognizer) Name() string { return r.orchestrator.Name() }

// Recognize implements Recognizer, routing through RecognizeStep with this
// transformation's name and encoder-ness.
func (r stepRecognizer) Recognize(ctx context.Context, s string) (RecognitionResult, error) {
	return r.orchestrator.RecognizeStep(ctx, s, r.transformationName, r.isEncoder)
}

// ForStep returns a Recognizer scoped to descriptor, for the engine to pass
// into Transformation.Apply so a cipher's own candidates are judged at low
// sensitivity (or whatever EnglishSensitivityOverrides names for it) rather
// than the cascade's generic default.
func (o *Orchestrator) ForStep(descriptor TransformationDescriptor) Recognizer {
	return stepRecognizer{orchestrator: o, transformationName: descriptor.Name, isEncoder: descriptor.IsEncoder()}
}

// IsPreRecognizedPlaintext is the fast path used before search begins: it
// runs the same cascade Recognize does, discarding provenance.
func (o *Orchestrator) IsPreRecognizedPlaintext(ctx context.Context, s string) bool {
	result, err := o.Recognize(ctx, s)
	return err == nil && result.Confirmed
}

// Recognize implements Recognizer: regex, then wordlist, then pattern
// library, then English classifier; a configured regex or wordlist stage
// gates everything below it, the later stages end the cascade only on a
// hit; sensitivity defaults to medium, low for a caller-identified
// cipher step (transformationIsEncoder passed via RecognizeStep).
func (o *Orchestrator) Recognize(ctx context.Context, s string) (RecognitionResult, error) {
	return o.RecognizeStep(ctx, s, "", true)
}

// RecognizeStep is Recognize plus the extra context the sensitivity
// policy needs: the transformation name (for EnglishSensitivityOverrides)
// and whether that transformation is an encoder (ciphers default to low
// sensitivity, everything else to medium).
func (o *Orchestrator) RecognizeStep(ctx context.Context, s string, transformationName string, isEncoder bool) (RecognitionResult, error) {
	ctx, span := o.tracer.StartSpan(ctx, SpanRecognize)
	defer span.Finish()
	o.metrics.Counter(MetricRecognizerCalls).Inc()

	if o.cfg.Regex != nil {
		if o.cfg.Regex.MatchString(s) {
			return o.confirm(ctx, s, RecognitionResult{Confirmed: true, Name: "regex", Confidence: 1, Reason: "regex match"})
		}
		return RecognitionResult{Name: "regex"}, nil
	}

	if o.cfg.Wordlist != nil {
		if o.cfg.Wordlist.MightContain(s) && o.cfg.Wordlist.Contains(s) {
			return o.confirm(ctx, s, RecognitionResult{Confirmed: true, Name: "wordlist", Confidence: 1, Reason: "dictionary hit"})
		}
		return RecognitionResult{Name: "wordlist"}, nil
	}

	if o.cfg.PatternLibrary != nil {
		if description, ok := o.cfg.PatternLibrary.Match(s); ok {
			return o.confirm(ctx, s, RecognitionResult{Confirmed: true, Name: "pattern-library", Confidence: 1, Reason: description})
		}
	}

	if o.cfg.Classifier != nil {
		normalized := text.NormalizeForClassifier(s)
		if text.Len(normalized) < 2 {
			return RecognitionResult{Name: "english-classifier"}, nil
		}
		sensitivity := o.sensitivityFor(transformationName, isEncoder)
		if confidence, ok := o.cfg.Classifier.Classify(ctx, normalized, sensitivity); ok {
			return o.confirm(ctx, s, RecognitionResult{Confirmed: true, Name: "english-classifier", Confidence: confidence, Reason: "classifier accept"})
		}
	}

	if o.cfg.MLRecognizer != nil && o.consumeMLBudget() {
		result, err := o.cfg.MLRecognizer.Recognize(ctx, s)
		if err != nil {
			o.log.Warn("ML recognizer call failed", slog.String("recognizer", o.cfg.MLRecognizer.Name()), slog.String("error", err.Error()))
			return RecognitionResult{Name: o.cfg.MLRecognizer.Name()}, nil
		}
		if result.Confirmed {
			return o.confirm(ctx, s, result)
		}
	}

	return RecognitionResult{Name: "none"}, nil
}

// consumeMLBudget reports whether one more MLRecognizer call is still
// within its configured Budget, atomically reserving it if so.
func (o *Orchestrator) consumeMLBudget() bool {
	o.mlCallsMu.Lock()
	defer o.mlCallsMu.Unlock()
	if o.mlCallsUsed >= o.cfg.MLRecognizer.Budget() {
		return false
	}
	o.mlCallsUsed++
	return true
}

// sensitivityFor applies the sensitivity policy: an explicit override
// wins, else ciphers get low, everything else gets medium.
func (o *Orchestrator) sensitivityFor(transformationName string, isEncoder bool) Sensitivity {
	if o.cfg.EnglishSensitivityOverrides != nil {
		if s, ok := o.cfg.EnglishSensitivityOverrides[transformationName]; ok {
			return s
		}
	}
	if !isEncoder {
		return SensitivityLow
	}
	return SensitivityMedium
}

// confirm routes a would-be-confirmed result through interactive
// arbitration when one is configured; otherwise it passes through
// unchanged.
func (o *Orchestrator) confirm(ctx context.Context, s string, result RecognitionResult) (RecognitionResult, error) {
	o.log.Debug("recognizer confirmed candidate",
		slog.String("recognizer", result.Name), slog.String("text", text.Truncate(s, 60)))
	if o.cfg.Interactive == nil {
		return result, nil
	}
	accepted, err := o.cfg.Interactive.Confirm(ctx, result.Name, s)
	if err != nil {
		return RecognitionResult{}, err
	}
	if !accepted {
		return RecognitionResult{Name: result.Name}, nil
	}
	return result, nil
}
