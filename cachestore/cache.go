package cachestore

import (
	"context"

	"github.com/vantyr/decodex"
)

// AsCache adapts Store to decodex.Cache, translating between the store's
// richer Entry and the facade's plain Result.
func (s *Store) AsCache() decodex.Cache {
	return cacheAdapter{store: s}
}

type cacheAdapter struct {
	store *Store
}

func (c cacheAdapter) Lookup(ctx context.Context, input string) (decodex.Result, bool, error) {
	entry, ok, err := c.store.Lookup(ctx, input)
	if err != nil || !ok {
		return decodex.Result{}, false, err
	}
	return decodex.Result{
		Plaintext:      entry.DecodedText,
		NodeChain:      entry.Chain,
		RecognizerName: entry.RecognizerName,
	}, true, nil
}

func (c cacheAdapter) Store(ctx context.Context, input string, result decodex.Result) error {
	return c.store.Upsert(ctx, Entry{
		InputText:      input,
		DecodedText:    result.Plaintext,
		Chain:          result.NodeChain,
		RecognizerName: result.RecognizerName,
	})
}

var _ decodex.Cache = cacheAdapter{}
