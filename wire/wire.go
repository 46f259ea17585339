// Package wire assembles a decodex.Engine and its supporting Cache from a
// config.Config: the one place that knows about both the engine's
// interfaces and the config package's concrete loaders, so neither has to
// depend on the other.
package wire

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/vantyr/decodex"
	"github.com/vantyr/decodex/cachestore"
	"github.com/vantyr/decodex/config"
	"github.com/vantyr/decodex/transform/catalog"
	"github.com/vantyr/decodex/wordlist"
)

// Built is everything New assembles: the engine, its cache (NopCache if
// none was configured), and the wordlist store (nil unless configured),
// kept around so the caller can start its hot-reload watch or close it on
// shutdown.
type Built struct {
	Engine       *decodex.Engine
	Cache        decodex.Cache
	Orchestrator *decodex.Orchestrator
	Wordlist     *wordlist.Store
	CollectAll   bool
	cacheStore   *cachestore.Store
}

// Close releases any resources New opened (the cache database, the
// wordlist watch).
func (b *Built) Close() error {
	if b.Wordlist != nil {
		b.Wordlist.StopWatching()
	}
	if b.cacheStore != nil {
		return b.cacheStore.Close()
	}
	return nil
}

// New builds a fully wired Engine from cfg: catalog transformations
// registered, the recognition cascade configured from cfg's regex/wordlist/
// pattern-library/classifier settings, and a persistent cache if
// cfg.CacheDatabasePath is set.
func New(ctx context.Context, cfg config.Config) (*Built, error) {
	registry := decodex.NewRegistry()
	catalog.RegisterAll(registry)

	orchCfg := decodex.OrchestratorConfig{
		PatternLibrary: decodex.NewDefaultPatternLibrary(),
		Classifier:     decodex.NewQuadgramClassifier(),
	}

	if cfg.Regex != "" {
		re, err := regexp.Compile(cfg.Regex)
		if err != nil {
			slog.Error("invalid regex in configuration", slog.String("regex", cfg.Regex), slog.String("error", err.Error()))
			return nil, fmt.Errorf("decodex: wire: invalid regex %q: %w", cfg.Regex, err)
		}
		orchCfg.Regex = re
	}

	var store *wordlist.Store
	if cfg.WordlistSource != "" {
		var err error
		store, err = wordlist.Load(cfg.WordlistSource)
		if err != nil {
			slog.Error("failed to load wordlist", slog.String("source", cfg.WordlistSource), slog.String("error", err.Error()))
			return nil, err
		}
		orchCfg.Wordlist = store
	}

	if len(cfg.EnglishSensitivityOverrides) > 0 {
		overrides := make(map[string]decodex.Sensitivity, len(cfg.EnglishSensitivityOverrides))
		for name, level := range cfg.EnglishSensitivityOverrides {
			parsed, err := config.ParseSensitivity(level)
			if err != nil {
				slog.Error("invalid sensitivity override", slog.String("transformation", name), slog.String("level", level))
				return nil, err
			}
			overrides[name] = decodex.Sensitivity(parsed)
		}
		orchCfg.EnglishSensitivityOverrides = overrides
	}

	if cfg.InteractiveConfirmation {
		orchCfg.Interactive = decodex.NewInteractiveConfirmer(
			decodex.PrompterFunc(func(ctx context.Context, recognizerName, candidate string) (bool, error) {
				return false, nil // a caller wanting real prompts supplies its own Prompter via a follow-up wiring step
			}),
			nil,
		)
	}

	orchestrator := decodex.NewOrchestrator(orchCfg)

	engine := decodex.NewEngine(registry, orchestrator,
		decodex.WithCollectAll(cfg.CollectAll),
		decodex.WithDepthPenalty(cfg.DepthPenalty),
		decodex.WithBatchSizes(cfg.DecoderBatchSize, cfg.ParallelBatchSize),
		decodex.WithInitialPruneThreshold(cfg.InitialPruneThreshold),
	)

	presets, err := config.LoadPresets(cfg.PresetsFile)
	if err != nil {
		slog.Error("failed to load presets", slog.String("path", cfg.PresetsFile), slog.String("error", err.Error()))
		return nil, err
	}
	if len(presets) > 0 {
		engine.SeedFrontier(presets)
	}

	var cache decodex.Cache = decodex.NopCache{}
	var cs *cachestore.Store
	if cfg.CacheDatabasePath != "" {
		cs, err = cachestore.Open(ctx, cfg.CacheDatabasePath, 0)
		if err != nil {
			slog.Error("failed to open cache database", slog.String("path", cfg.CacheDatabasePath), slog.String("error", err.Error()))
			return nil, err
		}
		cache = cs.AsCache()
	}

	return &Built{
		Engine:       engine,
		Cache:        cache,
		Orchestrator: orchestrator,
		Wordlist:     store,
		CollectAll:   cfg.CollectAll,
		cacheStore:   cs,
	}, nil
}

// Decode runs the full look-aside-cache-then-search flow: a cache hit
// short-circuits before any transformation runs; a search success is
// written back to the cache. correlationID is a fresh UUID per call,
// threaded through trace spans by the caller if it wants request-scoped
// tracing.
//
// When b.CollectAll is set, Decode still reports only the first confirmed
// result the sink received — the cache and this single-result signature both
// assume one canonical answer per input — but drives the search with a
// CollectAllSink so a collect-all-configured Engine actually accumulates
// every candidate rather than losing the rest to a SingleShotSink silently
// dropping every Send after the first. Callers that want every candidate
// should call DecodeAll instead.
func Decode(ctx context.Context, b *Built, input string, timer *decodex.DeadlineTimer) (decodex.Result, bool, string, error) {
	correlationID := uuid.NewString()

	if cached, ok, err := b.Cache.Lookup(ctx, input); err != nil {
		return decodex.Result{}, false, correlationID, err
	} else if ok {
		recordCacheEvent(b, true, correlationID)
		return cached, true, correlationID, nil
	}
	recordCacheEvent(b, false, correlationID)

	results := runSearch(ctx, b, input, timer)
	if len(results) == 0 {
		return decodex.Result{}, false, correlationID, nil
	}

	result := results[0]
	if err := b.Cache.Store(ctx, input, result); err != nil {
		return result, true, correlationID, err
	}
	return result, true, correlationID, nil
}

// DecodeAll runs the same look-aside-cache-then-search flow as Decode but
// returns every confirmed result — meaningful only when b.CollectAll is set;
// otherwise the search still stops at (and this still returns) the first
// hit. A cache hit short-circuits to a single-element slice, same as Decode.
func DecodeAll(ctx context.Context, b *Built, input string, timer *decodex.DeadlineTimer) ([]decodex.Result, string, error) {
	correlationID := uuid.NewString()

	if cached, ok, err := b.Cache.Lookup(ctx, input); err != nil {
		return nil, correlationID, err
	} else if ok {
		recordCacheEvent(b, true, correlationID)
		return []decodex.Result{cached}, correlationID, nil
	}
	recordCacheEvent(b, false, correlationID)

	results := runSearch(ctx, b, input, timer)
	if len(results) == 0 {
		return nil, correlationID, nil
	}
	if err := b.Cache.Store(ctx, input, results[0]); err != nil {
		return results, correlationID, err
	}
	return results, correlationID, nil
}

// recordCacheEvent increments the engine's cache hit/miss counter and logs
// the outcome at Debug, giving MetricCacheHits/MetricCacheMisses their only
// live increment site: the cache itself lives outside the engine, in the
// cachestore package, so nothing inside a Search call ever sees a lookup.
func recordCacheEvent(b *Built, hit bool, correlationID string) {
	if hit {
		b.Engine.Metrics().Counter(decodex.MetricCacheHits).Inc()
		b.Engine.Logger().Debug("cache hit", slog.String("correlation_id", correlationID))
		return
	}
	b.Engine.Metrics().Counter(decodex.MetricCacheMisses).Inc()
	b.Engine.Logger().Debug("cache miss", slog.String("correlation_id", correlationID))
}

// runSearch drives b.Engine.Search with the sink shape matching b.CollectAll.
func runSearch(ctx context.Context, b *Built, input string, timer *decodex.DeadlineTimer) []decodex.Result {
	timer.Start()
	if b.CollectAll {
		sink := decodex.NewCollectAllSink()
		b.Engine.Search(ctx, input, timer, sink)
		return sink.Results()
	}

	sink := decodex.NewSingleShotSink()
	b.Engine.Search(ctx, input, timer, sink)
	if result, ok := sink.Result(); ok {
		return []decodex.Result{result}
	}
	return nil
}
