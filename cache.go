package decodex

import "context"

// Cache is the look-aside contract the facade's Decode consults before
// running a search and writes on a confirmed result. The engine itself
// never sees a Cache — it has no cache-bypass logic of its own because it
// is never invoked when a lookup already hit.
type Cache interface {
	// Lookup returns a previously confirmed result for input, if any.
	Lookup(ctx context.Context, input string) (Result, bool, error)
	// Store records a confirmed result for input.
	Store(ctx context.Context, input string, result Result) error
}

// NopCache is a Cache that never hits and never stores, the default when
// no persistent cache is configured.
type NopCache struct{}

func (NopCache) Lookup(ctx context.Context, input string) (Result, bool, error) {
	return Result{}, false, nil
}

func (NopCache) Store(ctx context.Context, input string, result Result) error { return nil }

var _ Cache = NopCache{}
