// Package cachestore implements decodex's persistent look-aside cache: a
// SQLite-backed table keyed by input text, fronted by an in-process LRU so
// a hot input never round-trips through the database. The engine never
// owns or schedules this I/O; callers look the input up before Search and
// write the result back on success.
package cachestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"
	"github.com/segmentio/encoding/json"
	_ "modernc.org/sqlite"

	"github.com/vantyr/decodex"
)

// Entry is one cached search outcome.
type Entry struct {
	ID             string
	InputText      string
	DecodedText    string
	Chain          decodex.Chain
	RecognizerName string
	Key            string
	LatencyMillis  int64
	CreatedAt      time.Time
}

// chainWire is Entry.Chain's on-disk representation: TransformationStep is
// already a plain struct, so this only needs to carry the slice through
// segmentio/encoding/json without exposing Chain's unexported field.
type chainWire struct {
	Steps []decodex.TransformationStep `json:"steps"`
}

// Store is the persistent cache: SQLite table for durability, LRU for hot
// reads, ULID identifiers for cache rows so entries sort by insertion time
// without a separate autoincrement column.
type Store struct {
	db      *sql.DB
	front   *lru.Cache[string, Entry]
	entropy *ulid.MonotonicEntropy
}

// Open opens (creating if necessary) a SQLite database at path, enables WAL
// mode, and initializes the cache schema. frontSize bounds the in-process
// LRU; 0 selects a sensible default.
func Open(ctx context.Context, path string, frontSize int) (*Store, error) {
	if frontSize <= 0 {
		frontSize = 512
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("decodex: cachestore open: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("decodex: cachestore wal: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	front, err := lru.New[string, Entry](frontSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("decodex: cachestore lru: %w", err)
	}

	return &Store{
		db:      db,
		front:   front,
		entropy: ulid.Monotonic(ulidReader{}, 0),
	}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS decode_cache (
	id TEXT PRIMARY KEY,
	input_text TEXT UNIQUE NOT NULL,
	decoded_text TEXT NOT NULL,
	chain_json TEXT NOT NULL,
	recognizer_name TEXT NOT NULL,
	cache_key TEXT,
	latency_millis INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Lookup returns the cached entry for input, if any.
func (s *Store) Lookup(ctx context.Context, input string) (Entry, bool, error) {
	if entry, ok := s.front.Get(input); ok {
		return entry, true, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_text, decoded_text, chain_json, recognizer_name, cache_key, latency_millis, created_at
		 FROM decode_cache WHERE input_text = ?`, input)

	var (
		entry     Entry
		chainJSON string
		createdAt string
	)
	if err := row.Scan(&entry.ID, &entry.InputText, &entry.DecodedText, &chainJSON, &entry.RecognizerName, &entry.Key, &entry.LatencyMillis, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("decodex: cachestore lookup: %w", err)
	}

	var wire chainWire
	if err := json.Unmarshal([]byte(chainJSON), &wire); err != nil {
		return Entry{}, false, fmt.Errorf("decodex: cachestore decode chain: %w", err)
	}
	chain := decodex.NewChain()
	for _, step := range wire.Steps {
		var err error
		chain, err = chain.Append(step)
		if err != nil {
			return Entry{}, false, fmt.Errorf("decodex: cachestore rebuild chain: %w", err)
		}
	}
	entry.Chain = chain

	if createdAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			entry.CreatedAt = t
		}
	}

	s.front.Add(input, entry)
	return entry, true, nil
}

// Upsert writes or overwrites the cache row for entry.InputText.
func (s *Store) Upsert(ctx context.Context, entry Entry) error {
	wire := chainWire{Steps: entry.Chain.Steps()}
	chainJSON, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("decodex: cachestore encode chain: %w", err)
	}

	if entry.ID == "" {
		entry.ID = ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decode_cache (id, input_text, decoded_text, chain_json, recognizer_name, cache_key, latency_millis, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(input_text) DO UPDATE SET
			decoded_text=excluded.decoded_text,
			chain_json=excluded.chain_json,
			recognizer_name=excluded.recognizer_name,
			cache_key=excluded.cache_key,
			latency_millis=excluded.latency_millis,
			created_at=excluded.created_at
	`, entry.ID, entry.InputText, entry.DecodedText, string(chainJSON), entry.RecognizerName, entry.Key, entry.LatencyMillis, entry.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("decodex: cachestore upsert: %w", err)
	}

	s.front.Add(entry.InputText, entry)
	return nil
}

// ulidReader is a fixed, non-cryptographic entropy source: cache-row IDs
// only need to be locally unique and monotonic, not unpredictable.
type ulidReader struct{}

func (ulidReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(i * 2654435761 % 256)
	}
	return len(p), nil
}
