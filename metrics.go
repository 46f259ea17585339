package decodex

import "github.com/zoobzio/metricz"

// Metric keys for search engine observability.
const (
	MetricNodesExpanded   = metricz.Key("search.nodes_expanded.total")
	MetricResultsFound    = metricz.Key("search.results_found.total")
	MetricVisitedPrunes   = metricz.Key("search.visited_prunes.total")
	MetricCacheHits       = metricz.Key("search.cache_hits.total")
	MetricCacheMisses     = metricz.Key("search.cache_misses.total")
	MetricRecognizerCalls = metricz.Key("recognize.calls.total")
)

// newMetrics builds a fresh registry seeded with the counters Engine and
// Orchestrator report against, so Metrics() never returns an empty
// registry a caller has to know to populate first.
func newMetrics() *metricz.Registry {
	registry := metricz.New()
	for _, key := range []metricz.Key{
		MetricNodesExpanded, MetricResultsFound, MetricVisitedPrunes,
		MetricCacheHits, MetricCacheMisses, MetricRecognizerCalls,
	} {
		registry.Counter(key)
	}
	return registry
}
