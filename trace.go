package decodex

import "github.com/zoobzio/tracez"

// Span names for search engine tracing.
const (
	SpanSearch      = tracez.Key("search.run")
	SpanBatchExpand = tracez.Key("search.batch_expand")
	SpanRecognize   = tracez.Key("recognize.cascade")
	SpanCacheLookup = tracez.Key("search.cache_lookup")
)

// Span tags for search engine tracing.
const (
	TagInput      = tracez.Tag("search.input")
	TagBatchSize  = tracez.Tag("search.batch_size")
	TagResultName = tracez.Tag("search.recognizer")
	TagCacheHit   = tracez.Tag("search.cache_hit")
)

// newTracer builds a fresh tracer for an Engine or Orchestrator instance.
func newTracer() *tracez.Tracer { return tracez.New() }
