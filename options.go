package metrosim

import (
	"log"
	"math/rand/v2"
	"time"
)

// DefaultDwell is how long a train holds a platform on each visit.
const DefaultDwell = 100 * time.Millisecond

// Option applies configuration to a Simulation via the functional options pattern.
type Option func(*Simulation)

// WithDwell sets how long trains stay at each station.
func WithDwell(d time.Duration) Option {
	return func(s *Simulation) {
		if d >= 0 {
			s.dwell = d
		}
	}
}

// WithSeed makes passenger train choices reproducible. Thread interleaving
// still varies between runs.
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		s.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	}
}

// WithRand supplies the random source passengers pick trains with.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) {
		s.rng = r
	}
}

// WithLogger routes diagnostics (routing errors, watchdog progress) to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPublisher forwards every logged event to p as it is appended.
func WithPublisher(p Publisher) Option {
	return func(s *Simulation) {
		s.publisher = p
	}
}

// WithTimeout bounds the whole run. When it expires Run fails with
// ErrStalled naming the actors that had not finished.
func WithTimeout(d time.Duration) Option {
	return func(s *Simulation) {
		s.timeout = d
	}
}

// WithStallTimeout enables the watchdog: if no event is logged for d the run
// is cancelled with ErrStalled.
func WithStallTimeout(d time.Duration) Option {
	return func(s *Simulation) {
		s.stallTimeout = d
	}
}

// WithWatchdogInterval sets how often the watchdog samples progress.
// Defaults to a quarter of the stall timeout.
func WithWatchdogInterval(d time.Duration) Option {
	return func(s *Simulation) {
		s.watchInterval = d
	}
}
