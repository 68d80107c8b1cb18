package metrosim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Simulation owns everything a run shares: the topology, one LineMonitor per
// line, the occupancy table and the event log. Actors receive the same
// *Simulation; there is no package-level state.
type Simulation struct {
	topo     *Topology
	log      *EventLog
	state    *StationState
	monitors map[string]*LineMonitor

	// remaining counts passengers still travelling. Trains read it between
	// round trips without holding any monitor.
	remaining atomic.Int64
	ran       atomic.Bool

	dwell         time.Duration
	timeout       time.Duration
	stallTimeout  time.Duration
	watchInterval time.Duration
	logger        *log.Logger
	publisher     Publisher

	rngMu sync.Mutex
	rng   *rand.Rand

	statusMu sync.Mutex
	status   map[string]string
	phases   map[TrainID]TrainPhase
}

// New validates topo and prepares a run. Nothing starts until Run.
func New(topo *Topology, opts ...Option) (*Simulation, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		topo:     topo,
		monitors: make(map[string]*LineMonitor, len(topo.Lines)),
		dwell:    DefaultDwell,
		logger:   log.New(os.Stderr, "metrosim: ", log.LstdFlags),
		status:   make(map[string]string),
		phases:   make(map[TrainID]TrainPhase),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s.log = NewEventLog(s.publisher)
	s.state = NewStationState(topo)
	for _, line := range topo.LineNames() {
		m, err := NewLineMonitor(topo, line, s.state, s.log)
		if err != nil {
			return nil, err
		}
		s.monitors[line] = m
	}
	return s, nil
}

// Simulate runs topo to completion and returns the frozen event log.
func Simulate(ctx context.Context, topo *Topology, opts ...Option) ([]Event, error) {
	s, err := New(topo, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Run(ctx); err != nil {
		return s.Events(), err
	}
	return s.Events(), nil
}

// Run starts one goroutine per train and per passenger and blocks until they
// have all finished. Passengers finish when their itinerary is exhausted;
// trains finish at the end of the first round trip after the last passenger
// is done, or after exactly one round trip when there are no passengers.
//
// The first actor error cancels every other actor and is returned. A run cut
// short by WithTimeout or the watchdog returns an error wrapping ErrStalled.
// The log is frozen when Run returns. Run may only be called once.
func (s *Simulation) Run(ctx context.Context) error {
	if !s.ran.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	defer s.log.Freeze()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, s.timeout,
			fmt.Errorf("%w: run did not complete within %v", ErrStalled, s.timeout))
		defer cancel()
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if s.stallTimeout > 0 {
		wd := NewWatchdog(s.log, s.stallTimeout, s.watchInterval, s.logger, s.unfinished)
		go wd.Run(ctx, cancel)
		defer wd.Stop()
	}

	s.remaining.Store(int64(len(s.topo.Passengers)))
	g, gctx := errgroup.WithContext(ctx)

	for _, line := range s.topo.LineNames() {
		m := s.monitors[line]
		for n := 1; n <= s.topo.Trains[line]; n++ {
			g.Go(func() error {
				return s.runTrain(gctx, m, n)
			})
		}
	}
	for _, name := range s.topo.PassengerNames() {
		itinerary := s.topo.Passengers[name]
		g.Go(func() error {
			return s.runPassenger(gctx, name, itinerary)
		})
	}

	err := g.Wait()
	if err == nil {
		return nil
	}
	if cause := context.Cause(ctx); cause != nil && errors.Is(cause, ErrStalled) {
		return fmt.Errorf("%w (unfinished: %s)", cause, strings.Join(s.unfinished(), "; "))
	}
	return err
}

// Topology returns the topology the simulation was built from.
func (s *Simulation) Topology() *Topology { return s.topo }

// Log returns the run's event log.
func (s *Simulation) Log() *EventLog { return s.log }

// Events returns a copy of everything logged so far.
func (s *Simulation) Events() []Event { return s.log.Events() }

// State returns the shared station table.
func (s *Simulation) State() *StationState { return s.state }

// Phase reports where train id is in its round trip. It is zero before the
// train starts and Terminated once it has finished its last trip.
func (s *Simulation) Phase(id TrainID) TrainPhase {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.phases[id]
}

// Occupancy returns line -> station -> train for every occupied station.
// Each line is read under its own monitor; lines are not read atomically
// with respect to each other.
func (s *Simulation) Occupancy() map[string]map[string]int {
	out := make(map[string]map[string]int, len(s.monitors))
	for line, m := range s.monitors {
		snap := m.Snapshot()
		byStation := make(map[string]int)
		for i, train := range snap {
			if train != 0 {
				byStation[m.stations[i]] = train
			}
		}
		out[line] = byStation
	}
	return out
}

// Remaining returns the number of passengers still travelling.
func (s *Simulation) Remaining() int { return int(s.remaining.Load()) }

// pickTrain returns a uniformly random train number in 1..n.
func (s *Simulation) pickTrain(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.IntN(n) + 1
}

func (s *Simulation) setPhase(id TrainID, p TrainPhase) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.phases[id] = p
}

func (s *Simulation) setStatus(actor, status string) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	if status == "" {
		delete(s.status, actor)
		return
	}
	s.status[actor] = status
}

// unfinished describes every actor that has not finished its work. Actors
// that fail keep their last status so a stalled run can name them.
func (s *Simulation) unfinished() []string {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	out := make([]string, 0, len(s.status))
	for actor, status := range s.status {
		out = append(out, actor+" "+status)
	}
	sort.Strings(out)
	return out
}
