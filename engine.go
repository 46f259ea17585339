package decodex

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"

	"github.com/vantyr/decodex/internal/text"
)

// Engine drives the best-first search: extract a batch from the frontier,
// expand it fork-join in parallel, ingest confirmed results, push children
// and continuation nodes, prune the visited set, and repeat until the
// frontier drains, the deadline elapses, cancellation is asserted, or (in
// single-result mode) a result is confirmed.
type Engine struct {
	registry     *Registry
	orchestrator *Orchestrator
	stats        *Stats
	cipherHint   CipherHinter
	log          *slog.Logger
	metrics      *metricz.Registry
	tracer       *tracez.Tracer

	depthPenalty          float64
	decoderBatchSize      int
	parallelBatch         int
	collectAll            bool
	initialPruneThreshold int
}

// Metrics returns the engine's metric registry, for callers that want to
// export counters (nodes expanded, results found, prunes) to their own
// observability stack.
func (e *Engine) Metrics() *metricz.Registry { return e.metrics }

// Tracer returns the engine's tracer.
func (e *Engine) Tracer() *tracez.Tracer { return e.tracer }

// Logger returns the engine's structured logger, for callers (wire.Decode's
// cache lookup, in particular) that want to log at the same Debug level and
// through the same handler the engine's own node-expansion and prune events
// use.
func (e *Engine) Logger() *slog.Logger { return e.log }

// EngineOption configures an Engine at construction; wire.New uses these
// options to translate a parsed config.Config into engine wiring.
type EngineOption func(*Engine)

// WithCipherHint installs an optional structured-cipher-identification
// collaborator consulted by the heuristic.
func WithCipherHint(hint CipherHinter) EngineOption {
	return func(e *Engine) { e.cipherHint = hint }
}

// WithLogger overrides the engine's structured logger.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithCollectAll switches the engine to collect-all mode.
func WithCollectAll(collectAll bool) EngineOption {
	return func(e *Engine) { e.collectAll = collectAll }
}

// WithInitialPruneThreshold overrides the visited set's starting prune
// ceiling (visitedPruneInitial, 10000, if unset or non-positive). The
// ceiling still shrinks with search depth and floors at visitedPruneFloor
// (or at the starting ceiling itself, when that is lower); this only moves
// where it starts.
func WithInitialPruneThreshold(threshold int) EngineOption {
	return func(e *Engine) { e.initialPruneThreshold = threshold }
}

// WithDepthPenalty overrides the default depth penalty (0.5).
func WithDepthPenalty(penalty float64) EngineOption {
	return func(e *Engine) { e.depthPenalty = penalty }
}

// WithBatchSizes overrides the default decoder batch size (5) and parallel
// batch size (10).
func WithBatchSizes(decoderBatchSize, parallelBatch int) EngineOption {
	return func(e *Engine) {
		if decoderBatchSize > 0 {
			e.decoderBatchSize = decoderBatchSize
		}
		if parallelBatch > 0 {
			e.parallelBatch = parallelBatch
		}
	}
}

// NewEngine builds an Engine over registry and orchestrator with sensible
// defaults, applying any opts.
func NewEngine(registry *Registry, orchestrator *Orchestrator, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:         registry,
		orchestrator:     orchestrator,
		stats:            NewStats(),
		log:              slog.Default(),
		metrics:          newMetrics(),
		tracer:           newTracer(),
		depthPenalty:     0.5,
		decoderBatchSize: 5,
		parallelBatch:    10,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) heuristicParams() heuristicParams {
	return heuristicParams{stats: e.stats, cipherHint: e.cipherHint}
}

// Search runs the main loop over input, reporting results to sink and
// stopping when timer asserts cancellation.
func (e *Engine) Search(ctx context.Context, input string, timer *DeadlineTimer, sink Sink) {
	ctx, span := e.tracer.StartSpan(ctx, SpanSearch)
	span.SetTag(TagInput, text.Truncate(input, 60))
	defer span.Finish()

	capitan.Info(ctx, SignalSearchStarted, FieldInput.Field(input))
	defer sink.Close()

	if e.orchestrator.IsPreRecognizedPlaintext(ctx, input) {
		sink.Send(Result{Plaintext: input, NodeChain: NewChain(), RecognizerName: "pre-recognized"})
		return
	}

	frontier := NewFrontier()
	visited := NewVisitedSetWithThreshold(e.initialPruneThreshold)

	root := SearchNode{
		Text:                   input,
		NodeChain:              NewChain(),
		Depth:                  0,
		PathCost:               0,
		Heuristic:              heuristic(input, NewChain(), e.heuristicParams()),
		PendingTransformations: rankedDescriptors(RankCandidates(ctx, input, NewChain(), e.registry.Descriptors(), e.depthPenalty, e.heuristicParams())),
	}
	root.TotalCost = root.PathCost + root.Heuristic
	frontier.Push(root)
	visited.InsertIfAbsent(input)

	for {
		if timer.Cancelled() {
			e.finish(ctx, timer)
			return
		}
		if frontier.IsEmpty() {
			capitan.Info(ctx, SignalSearchExhausted, FieldInput.Field(input))
			e.finish(ctx, timer)
			return
		}

		batchSize := e.parallelBatch
		if s := frontier.Size(); s < batchSize {
			batchSize = s
		}
		batch := frontier.PopBatch(batchSize)

		children, continuations, results, ok := e.expandBatch(ctx, timer, batch, visited)
		if !ok {
			e.finish(ctx, timer)
			return
		}

		for _, res := range results {
			e.metrics.Counter(MetricResultsFound).Inc()
			capitan.Info(ctx, SignalSearchResultFound,
				FieldChain.Field(res.NodeChain.String()), FieldRecognizer.Field(res.RecognizerName))
			if !e.collectAll {
				timer.Cancel()
				sink.Send(res)
				return
			}
			sink.Send(res)
		}

		for _, child := range children {
			frontier.Push(child)
		}
		for _, cont := range continuations {
			frontier.Push(cont)
		}

		maxDepth := 0
		for _, child := range children {
			if child.Depth > maxDepth {
				maxDepth = child.Depth
			}
		}
		e.pruneVisitedIfNeeded(ctx, visited, maxDepth)
	}
}

// pruneVisitedIfNeeded evicts the bottom half of visited by quality once it
// exceeds its dynamic threshold for maxDepth, recording the eviction as a
// metric, a capitan signal, and a Debug log line.
func (e *Engine) pruneVisitedIfNeeded(ctx context.Context, visited *VisitedSet, maxDepth int) {
	if visited.Size() <= visited.Threshold(maxDepth) {
		return
	}
	visited.PruneIfNeeded(maxDepth)
	e.metrics.Counter(MetricVisitedPrunes).Inc()
	capitan.Info(ctx, SignalVisitedPruned, FieldVisitedSize.Field(visited.Size()), FieldDepth.Field(maxDepth))
	e.log.Debug("pruned visited set", slog.Int("visited_size", visited.Size()), slog.Int("depth", maxDepth))
}

// expandBatch forks one goroutine per node in batch (fork-join over the
// batch, join before any child touches the frontier), returning every
// accepted child, continuation node, and confirmed result across the whole
// batch. ok is false if cancellation was already asserted when the batch
// began; a node whose goroutine starts after cancellation is skipped.
func (e *Engine) expandBatch(ctx context.Context, timer *DeadlineTimer, batch []SearchNode, visited *VisitedSet) (children, continuations []SearchNode, results []Result, ok bool) {
	if timer.Cancelled() {
		return nil, nil, nil, false
	}

	ctx, span := e.tracer.StartSpan(ctx, SpanBatchExpand)
	span.SetTag(TagBatchSize, strconv.Itoa(len(batch)))
	defer span.Finish()

	type outcome struct {
		children     []SearchNode
		continuation *SearchNode
		results      []Result
	}
	outcomes := make([]outcome, len(batch))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, node := range batch {
		i, node := i, node
		group.Go(func() error {
			if timer.Cancelled() {
				return nil
			}
			e.metrics.Counter(MetricNodesExpanded).Inc()
			c, cont, r := e.expandNode(groupCtx, node, visited)
			outcomes[i] = outcome{children: c, continuation: cont, results: r}
			return nil
		})
	}
	_ = group.Wait() // expandNode never returns an error; failures are recorded as Stats, not propagated

	for _, o := range outcomes {
		children = append(children, o.children...)
		if o.continuation != nil {
			continuations = append(continuations, *o.continuation)
		}
		results = append(results, o.results...)
	}
	return children, continuations, results, true
}

// expandNode applies node's next decoderBatchSize pending transformations,
// runs the acceptance filter on every candidate output, and builds the
// resulting children, an optional continuation node, and any confirmed
// results.
func (e *Engine) expandNode(ctx context.Context, node SearchNode, visited *VisitedSet) ([]SearchNode, *SearchNode, []Result) {
	e.log.Debug("expanding node",
		slog.Int("depth", node.Depth), slog.Int("pending", len(node.PendingTransformations)),
		slog.String("text", text.Truncate(node.Text, 60)))

	pending := node.PendingTransformations
	batchCount := e.decoderBatchSize
	if batchCount > len(pending) {
		batchCount = len(pending)
	}
	batch := pending[:batchCount]
	remaining := pending[batchCount:]

	var children []SearchNode
	var results []Result

	for _, descriptor := range batch {
		t, ok := e.registry.Get(descriptor.Name)
		if !ok {
			continue
		}
		if last, hasLast := node.NodeChain.Last(); hasLast && descriptor.IsReciprocal() && last.TransformationName == descriptor.Name {
			continue // no back-to-back reciprocal application
		}

		result, err := t.Apply(ctx, node.Text, e.orchestrator.ForStep(descriptor))
		if err != nil {
			e.stats.RecordFailure(descriptor.Name)
			capitan.Warn(ctx, SignalTransformationFailed, FieldTransformation.Field(descriptor.Name))
			continue
		}
		if len(result.CandidateOutputs) == 0 {
			e.stats.RecordFailure(descriptor.Name)
			continue
		}
		e.stats.RecordSuccess(descriptor.Name)

		for _, output := range result.CandidateOutputs {
			if checkUnusable(output) {
				continue
			}
			if !visited.InsertIfAbsent(output) {
				continue
			}

			step := TransformationStep{
				TransformationName: descriptor.Name,
				InputText:          node.Text,
				OutputText:         output,
				Key:                result.Key,
				IsEncoder:          descriptor.IsEncoder(),
				Success:            result.Success,
			}
			if result.Success {
				step.RecognizerName = result.Confirmation.Name
			}

			childChain, err := node.NodeChain.Append(step)
			if err != nil {
				capitan.Warn(ctx, SignalTransformationFailed, FieldTransformation.Field(descriptor.Name))
				continue
			}

			child := SearchNode{
				Text:                   output,
				NodeChain:              childChain,
				Depth:                  node.Depth + 1,
				PathCost:               PathCost(childChain, e.depthPenalty),
				PendingTransformations: rankedDescriptors(RankCandidates(ctx, output, childChain, e.registry.Descriptors(), e.depthPenalty, e.heuristicParams())),
			}
			child.Heuristic = heuristic(output, childChain, e.heuristicParams())
			child.TotalCost = child.PathCost + child.Heuristic

			if result.Success {
				child.IsResult = true
				if err := childChain.Validate(rootInput(node), output); err == nil && e.resultAdmissible(output) {
					results = append(results, Result{Plaintext: output, NodeChain: childChain, RecognizerName: step.RecognizerName})
				}
			}
			children = append(children, child)
		}
	}

	var continuation *SearchNode
	if len(remaining) > 0 {
		continuation = &SearchNode{
			Text:                   node.Text,
			NodeChain:              node.NodeChain,
			Depth:                  node.Depth,
			PathCost:               node.PathCost + 0.05,
			Heuristic:              node.Heuristic,
			PendingTransformations: remaining,
		}
		continuation.TotalCost = continuation.PathCost + continuation.Heuristic
	}

	return children, continuation, results
}

// resultAdmissible reports whether plaintext may be emitted as a search
// result: once an InteractiveConfirmer has accepted a candidate, every other
// in-flight worker's confirmed output must normalize-match that same text,
// so a parallel worker cannot race the human-confirmed candidate to the sink
// with a different, unconfirmed-by-the-human string.
func (e *Engine) resultAdmissible(plaintext string) bool {
	interactive := e.orchestrator.Interactive()
	if interactive == nil {
		return true
	}
	return interactive.ConfirmedMatches(plaintext)
}

// rootInput walks a chain prefix back to the original input; for the root
// node itself (empty chain) the caller's Text field already is the root
// input, but for any node reached via at least one step the chain's first
// step InputText is authoritative.
func rootInput(node SearchNode) string {
	if len(node.NodeChain.Steps()) == 0 {
		return node.Text
	}
	return node.NodeChain.Steps()[0].InputText
}

// finish handles every path that ends a search without ingesting a
// first-hit result inline: the caller's Sink.Close (deferred in Search)
// communicates "no result" — a SingleShotSink's Result() reports ok=false
// since Send was never called, and a CollectAllSink's Results() simply
// reflects whatever it already accumulated.
func (e *Engine) finish(ctx context.Context, timer *DeadlineTimer) {
	if timer.DeadlineElapsed() {
		capitan.Info(ctx, SignalSearchDeadlineElapsed)
	}
}

// rankedDescriptors flattens RankCandidates' output back down to the plain
// descriptor ordering SearchNode.PendingTransformations stores.
func rankedDescriptors(ranked []RankedCandidate) []TransformationDescriptor {
	out := make([]TransformationDescriptor, len(ranked))
	for i, r := range ranked {
		out[i] = r.Descriptor
	}
	return out
}
