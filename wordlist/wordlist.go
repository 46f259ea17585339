// Package wordlist implements the two-tier dictionary lookup the
// recognition orchestrator's wordlist stage requires: a bloom-filter
// membership test (may false-positive, never false-negatives) backing an
// authoritative on-disk dictionary, with optional hot-reload when the
// dictionary file changes on disk.
package wordlist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fsnotify/fsnotify"

	"github.com/vantyr/decodex"
)

// falsePositiveRate bounds the bloom filter's false-positive probability;
// the authoritative dictionary lookup on every positive absorbs the rest.
const falsePositiveRate = 0.001

// snapshot is the immutable pair the store swaps atomically on reload: a
// bloom filter and the authoritative set it was built from.
type snapshot struct {
	filter *bloom.BloomFilter
	words  map[string]struct{}
}

// Store is a decodex.Wordlist backed by a dictionary file, rebuilt whenever
// the file changes on disk. Reads never block a concurrent reload: readers
// see either the old or the new snapshot, never a half-built one.
type Store struct {
	path    string
	current atomic.Pointer[snapshot]

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Load reads path (one word per line, '#'-prefixed lines and blank lines
// ignored) and returns a ready Store. An unreadable or invalid file is a
// configuration error, per the recognition orchestrator's fatal-on-bad-
// wordlist failure mode — this constructor does not silently degrade.
func Load(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) reload() error {
	f, err := os.Open(s.path)
	if err != nil {
		return decodexConfigError(s.path, err)
	}
	defer f.Close()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !isValidUTF8Line(line) {
			return decodexConfigError(s.path, fmt.Errorf("invalid UTF-8 on line %q", line))
		}
		words[strings.ToLower(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return decodexConfigError(s.path, err)
	}

	filter := bloom.NewWithEstimates(uint(len(words))+1, falsePositiveRate)
	for w := range words {
		filter.AddString(w)
	}

	s.current.Store(&snapshot{filter: filter, words: words})
	return nil
}

func isValidUTF8Line(s string) bool {
	for _, r := range s {
		if r == '�' {
			return false
		}
	}
	return true
}

func decodexConfigError(path string, cause error) error {
	return fmt.Errorf("decodex: wordlist %q: %w", path, cause)
}

// MightContain implements decodex.Wordlist.
func (s *Store) MightContain(word string) bool {
	snap := s.current.Load()
	return snap.filter.TestString(strings.ToLower(word))
}

// Contains implements decodex.Wordlist: the authoritative check, only
// meaningful after a MightContain positive.
func (s *Store) Contains(word string) bool {
	snap := s.current.Load()
	_, ok := snap.words[strings.ToLower(word)]
	return ok
}

// Size returns the number of words in the current dictionary snapshot.
func (s *Store) Size() int {
	return len(s.current.Load().words)
}

// WatchForChanges starts an fsnotify watch on the dictionary file's
// directory, reloading the store whenever the file is written or renamed
// into place. Reload and watcher errors are passed to onReloadError (when
// it is non-nil) and otherwise ignored — the store
// keeps serving its last-known-good snapshot rather than going dark on a
// transient bad write.
func (s *Store) WatchForChanges(ctx context.Context, onReloadError func(error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("decodex: wordlist watch: %w", err)
	}
	if err := watcher.Add(dirOf(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("decodex: wordlist watch: %w", err)
	}
	s.watcher = watcher
	s.done = make(chan struct{})

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.reload(); err != nil && onReloadError != nil {
					onReloadError(err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onReloadError != nil {
					onReloadError(err)
				}
			}
		}
	}()
	return nil
}

// StopWatching stops any active fsnotify watch started by WatchForChanges.
func (s *Store) StopWatching() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.watcher = nil
}

func dirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "."
	}
	return path[:i]
}

var _ decodex.Wordlist = (*Store)(nil)
