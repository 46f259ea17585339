package cachestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vantyr/decodex"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(context.Background(), path, 0)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func buildChain(t *testing.T) decodex.Chain {
	t.Helper()
	chain, err := decodex.NewChain().Append(decodex.TransformationStep{
		TransformationName: "base64",
		InputText:          "aGVsbG8=",
		OutputText:         "hello",
	})
	if err != nil {
		t.Fatalf("failed to build chain fixture: %v", err)
	}
	return chain
}

func TestLookupMissReturnsFalse(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.Lookup(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected a miss for an input never upserted")
	}
}

func TestUpsertThenLookupRoundTrips(t *testing.T) {
	store := openTestStore(t)
	chain := buildChain(t)

	entry := Entry{
		InputText:      "aGVsbG8=",
		DecodedText:    "hello",
		Chain:          chain,
		RecognizerName: "english-classifier",
		Key:            "",
		LatencyMillis:  42,
	}
	if err := store.Upsert(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error upserting: %v", err)
	}

	got, ok, err := store.Lookup(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("unexpected error looking up: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after upsert")
	}
	if got.DecodedText != "hello" {
		t.Errorf("expected decoded text %q, got %q", "hello", got.DecodedText)
	}
	if got.RecognizerName != "english-classifier" {
		t.Errorf("expected recognizer name to round-trip, got %q", got.RecognizerName)
	}
	if got.LatencyMillis != 42 {
		t.Errorf("expected latency to round-trip, got %d", got.LatencyMillis)
	}
	if len(got.Chain.Steps()) != 1 || got.Chain.Steps()[0].TransformationName != "base64" {
		t.Errorf("expected the chain to round-trip through JSON, got %+v", got.Chain.Steps())
	}
	if got.ID == "" {
		t.Error("expected Upsert to assign a ULID when Entry.ID is empty")
	}
}

func TestUpsertOverwritesExistingEntry(t *testing.T) {
	store := openTestStore(t)
	chain := buildChain(t)

	if err := store.Upsert(context.Background(), Entry{InputText: "key", DecodedText: "first", Chain: chain}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Upsert(context.Background(), Entry{InputText: "key", DecodedText: "second", Chain: chain}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := store.Lookup(context.Background(), "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.DecodedText != "second" {
		t.Errorf("expected the second upsert to overwrite the first, got %q", got.DecodedText)
	}
}

func TestLookupServesFromFrontCacheWithoutTouchingDB(t *testing.T) {
	store := openTestStore(t)
	chain := buildChain(t)

	if err := store.Upsert(context.Background(), Entry{InputText: "hot", DecodedText: "value", Chain: chain}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// First lookup populates (and already sits in) the LRU front cache from
	// the Upsert call itself. Close the underlying DB and confirm the LRU
	// alone still serves the hit.
	if err := store.db.Close(); err != nil {
		t.Fatalf("failed to close db: %v", err)
	}

	got, ok, err := store.Lookup(context.Background(), "hot")
	if err != nil {
		t.Fatalf("expected the front cache to serve the lookup without touching the closed DB: %v", err)
	}
	if !ok || got.DecodedText != "value" {
		t.Errorf("expected a front-cache hit with value %q, got %+v (ok=%v)", "value", got, ok)
	}
}
