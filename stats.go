package decodex

import (
	"math"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// decayHalfLife is the time constant of the exponential decay applied to a
// transformation's recorded success rate: an observation loses half its
// weight in this window, so the prior tracks recent behavior more than
// behavior from many searches ago.
const decayHalfLife = 10 * time.Minute

type statEntry struct {
	rate      float64
	updatedAt time.Time
}

// Stats tracks an exponentially-decayed success rate per transformation
// name, consulted by heuristic() as a multiplicative discount. It is a
// process-wide singleton by convention (one Stats per Engine, shared across
// concurrent searches), the same "create once, reuse, mutex-guarded state"
// shape as pipz's CircuitBreaker, generalized from a single
// closed/open/half-open state machine to a per-key decayed float.
type Stats struct {
	mu      sync.Mutex
	clock   clockz.Clock
	entries map[string]statEntry
}

// NewStats returns an empty Stats using the real wall clock.
func NewStats() *Stats {
	return &Stats{clock: clockz.RealClock, entries: make(map[string]statEntry)}
}

// WithClock swaps in a fake clock for deterministic decay tests, the same
// injection point pipz's connectors expose via WithClock.
func (s *Stats) WithClock(clock clockz.Clock) *Stats {
	s.clock = clock
	return s
}

// RecordSuccess folds a success observation for name into its decayed rate.
func (s *Stats) RecordSuccess(name string) { s.record(name, 1.0) }

// RecordFailure folds a failure observation for name into its decayed rate.
func (s *Stats) RecordFailure(name string) { s.record(name, 0.0) }

func (s *Stats) record(name string, observation float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	prev, ok := s.entries[name]
	if !ok {
		s.entries[name] = statEntry{rate: observation, updatedAt: now}
		return
	}
	weight := decayWeight(now.Sub(prev.updatedAt))
	s.entries[name] = statEntry{
		rate:      prev.rate*weight + observation*(1-weight),
		updatedAt: now,
	}
}

// SuccessRate returns the current decayed success rate for name in [0,1],
// or 0.5 (no opinion) if name has never been observed.
func (s *Stats) SuccessRate(name string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[name]
	if !ok {
		return 0.5
	}
	// The rate itself does not decay toward zero on read; only new
	// observations are weighted against elapsed time. The read takes the
	// same mutex as the writers.
	return entry.rate
}

// decayWeight returns the weight given to the previous observation after
// elapsed time has passed, per the half-life defined by decayHalfLife.
func decayWeight(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 1
	}
	halfLives := float64(elapsed) / float64(decayHalfLife)
	return math.Exp2(-halfLives)
}
