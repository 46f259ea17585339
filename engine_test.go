package decodex

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

type equalsClassifier struct{ want string }

func (c equalsClassifier) Classify(_ context.Context, normalized string, _ Sensitivity) (float64, bool) {
	return 1, normalized == c.want
}

func newRevealTransformation() Transformation {
	descriptor := NewDescriptor("reveal", 0.9, "strips a fixed ENC: prefix", "", TagIsEncoder)
	return NewTransformationFunc(descriptor, func(ctx context.Context, in string, recognizer Recognizer) (TransformationResult, error) {
		if !strings.HasPrefix(in, "ENC:") {
			return TransformationResult{}, nil
		}
		output := strings.TrimPrefix(in, "ENC:")
		result, err := recognizer.Recognize(ctx, output)
		if err != nil {
			return TransformationResult{}, err
		}
		return TransformationResult{
			CandidateOutputs: []string{output},
			Confirmation:     result,
			Success:          result.Confirmed,
		}, nil
	})
}

func TestEngineSearchFindsPlaintext(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newRevealTransformation())

	orchestrator := NewOrchestrator(OrchestratorConfig{Classifier: equalsClassifier{want: "secret"}})
	engine := NewEngine(registry, orchestrator)

	sink := NewSingleShotSink()
	timer := NewDeadlineTimer(5 * time.Second).WithClock(clockz.NewFakeClock())
	timer.Start()

	engine.Search(context.Background(), "ENC:secret", timer, sink)

	result, ok := sink.Result()
	if !ok {
		t.Fatal("expected the search to find a confirmed plaintext")
	}
	if result.Plaintext != "secret" {
		t.Errorf("expected plaintext %q, got %q", "secret", result.Plaintext)
	}
	if result.NodeChain.Depth() != 1 {
		t.Errorf("expected a one-step chain, got depth %d", result.NodeChain.Depth())
	}
	if err := result.NodeChain.Validate("ENC:secret", "secret"); err != nil {
		t.Errorf("expected the result chain to validate, got %v", err)
	}
}

func TestEngineSearchPreRecognizedInputShortCircuits(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newRevealTransformation())
	orchestrator := NewOrchestrator(OrchestratorConfig{Classifier: equalsClassifier{want: "already plaintext"}})
	engine := NewEngine(registry, orchestrator)

	sink := NewSingleShotSink()
	timer := NewDeadlineTimer(5 * time.Second).WithClock(clockz.NewFakeClock())
	timer.Start()

	engine.Search(context.Background(), "already plaintext", timer, sink)

	result, ok := sink.Result()
	if !ok {
		t.Fatal("expected a result for input that is already plaintext")
	}
	if result.NodeChain.Depth() != 0 {
		t.Errorf("expected an empty chain for pre-recognized input, got depth %d", result.NodeChain.Depth())
	}
	if result.RecognizerName != "pre-recognized" {
		t.Errorf("expected recognizer name %q, got %q", "pre-recognized", result.RecognizerName)
	}
}

func TestEngineSearchTerminatesOnElapsedDeadline(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newRevealTransformation())
	orchestrator := NewOrchestrator(OrchestratorConfig{Classifier: equalsClassifier{want: "never matches anything"}})
	engine := NewEngine(registry, orchestrator)

	clock := clockz.NewFakeClock()
	timer := NewDeadlineTimer(time.Second).WithClock(clock)
	timer.Start()
	clock.Advance(2 * time.Second) // deadline is already in the past before Search even begins

	done := make(chan struct{})
	sink := NewSingleShotSink()
	go func() {
		engine.Search(context.Background(), "ENC:secret", timer, sink)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Search to return promptly once its deadline has already elapsed")
	}

	if _, ok := sink.Result(); ok {
		t.Error("expected no result once the deadline elapsed before any candidate could be confirmed")
	}
}

func TestEngineSearchNoBackToBackReciprocal(t *testing.T) {
	var applyCalls int
	descriptor := NewDescriptor("rot13", 0.5, "", "", TagReciprocal)
	rot13 := NewTransformationFunc(descriptor, func(ctx context.Context, in string, recognizer Recognizer) (TransformationResult, error) {
		applyCalls++
		return TransformationResult{CandidateOutputs: []string{in + "x"}}, nil
	})

	registry := NewRegistry()
	registry.Register(rot13)
	orchestrator := NewOrchestrator(OrchestratorConfig{})
	engine := NewEngine(registry, orchestrator)

	node := SearchNode{
		Text:                   "abc",
		PendingTransformations: []TransformationDescriptor{descriptor},
	}
	node.NodeChain, _ = node.NodeChain.Append(TransformationStep{TransformationName: "rot13", InputText: "orig", OutputText: "abc"})

	engine.expandNode(context.Background(), node, NewVisitedSet())

	if applyCalls != 0 {
		t.Errorf("expected Apply not to be called for a reciprocal transformation immediately following itself, got %d calls", applyCalls)
	}
}

func TestEngineResultAdmissibleRejectsStaleInteractiveWinner(t *testing.T) {
	confirmer := NewInteractiveConfirmer(PrompterFunc(func(_ context.Context, _, _ string) (bool, error) {
		return true, nil // accepts every distinct candidate it's asked about
	}), nil)
	orchestrator := NewOrchestrator(OrchestratorConfig{Interactive: confirmer})
	engine := NewEngine(NewRegistry(), orchestrator)

	if _, err := confirmer.Confirm(context.Background(), "english-classifier", "first winner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := confirmer.Confirm(context.Background(), "english-classifier", "second winner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if engine.resultAdmissible("first winner") {
		t.Error("expected the earlier confirmation to be rejected once a later candidate overwrote the confirmed slot")
	}
	if !engine.resultAdmissible("second winner") {
		t.Error("expected the most recently confirmed candidate to remain admissible")
	}
}

func TestEngineResultAdmissibleWithoutInteractiveConfirmerAlwaysAdmits(t *testing.T) {
	engine := NewEngine(NewRegistry(), NewOrchestrator(OrchestratorConfig{}))
	if !engine.resultAdmissible("anything") {
		t.Error("expected no configured interactive confirmer to admit every result")
	}
}

func TestEngineExpandNodeLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	registry := NewRegistry()
	registry.Register(newRevealTransformation())
	orchestrator := NewOrchestrator(OrchestratorConfig{Classifier: equalsClassifier{want: "never matches"}})
	engine := NewEngine(registry, orchestrator, WithLogger(log))

	engine.expandNode(context.Background(), SearchNode{Text: "ENC:secret"}, NewVisitedSet())

	output := buf.String()
	if !strings.Contains(output, "expanding node") {
		t.Errorf("expected a node-expansion debug log, got: %s", output)
	}
}

func TestEnginePruneVisitedIfNeededLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	engine := NewEngine(NewRegistry(), NewOrchestrator(OrchestratorConfig{}), WithLogger(log))

	visited := NewVisitedSetWithThreshold(1)
	visited.InsertIfAbsent("one")
	visited.InsertIfAbsent("two")

	engine.pruneVisitedIfNeeded(context.Background(), visited, 0)

	output := buf.String()
	if !strings.Contains(output, "pruned visited set") {
		t.Errorf("expected a prune debug log, got: %s", output)
	}
	if got := engine.metrics.Counter(MetricVisitedPrunes).Value(); got != 1 {
		t.Errorf("expected MetricVisitedPrunes to be incremented once, got %v", got)
	}
}

func TestEnginePruneVisitedIfNeededNoOpBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	engine := NewEngine(NewRegistry(), NewOrchestrator(OrchestratorConfig{}), WithLogger(log))
	visited := NewVisitedSet()
	visited.InsertIfAbsent("one")

	engine.pruneVisitedIfNeeded(context.Background(), visited, 0)

	if strings.Contains(buf.String(), "pruned visited set") {
		t.Error("expected no prune log when the visited set is below threshold")
	}
	if got := engine.metrics.Counter(MetricVisitedPrunes).Value(); got != 0 {
		t.Errorf("expected MetricVisitedPrunes to stay at zero, got %v", got)
	}
}

func TestEngineSearchUTF8InputNeverPanics(t *testing.T) {
	inputs := []string{
		"héllo wörld",
		"日本語のテキスト",
		"🎉🎊🎈 emoji soup 🎈🎊🎉",
		string([]rune{0x200b, 0x200c, 'a', 'b'}),
	}

	registry := NewRegistry()
	registry.Register(newRevealTransformation())
	orchestrator := NewOrchestrator(OrchestratorConfig{Classifier: equalsClassifier{want: "never matches"}})

	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Search(%q) panicked: %v", in, r)
				}
			}()
			engine := NewEngine(registry, orchestrator)
			clock := clockz.NewFakeClock()
			timer := NewDeadlineTimer(time.Second).WithClock(clock)
			timer.Start()
			clock.Advance(2 * time.Second)
			engine.Search(context.Background(), in, timer, NewSingleShotSink())
		}()
	}
}
