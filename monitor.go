package metrosim

import (
	"context"
	"fmt"
	"sync"
)

// LineMonitor arbitrates the stations of one line. A single mutex guards
// every occupancy slot of the line; each station has one condition trains
// wait on for the platform to clear, and one condition per train number that
// passengers wait on for that particular train to arrive.
//
// All waits re-test their predicate after waking, since a broadcast wakes
// every waiter on a condition and the scheduler decides who runs first.
type LineMonitor struct {
	line     string
	stations []string
	index    map[string]int
	trains   int
	log      *EventLog

	mu            sync.Mutex
	slots         []*slot
	trainCond     []*sync.Cond
	passengerCond [][]*sync.Cond // [station][train-1]
}

// NewLineMonitor builds the monitor for one line of the topology. Conditions
// are allocated for every (station, train) pair up front.
func NewLineMonitor(topo *Topology, line string, state *StationState, log *EventLog) (*LineMonitor, error) {
	stations, ok := topo.Lines[line]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownLine, line)
	}
	trains := topo.Trains[line]
	if trains < 1 {
		return nil, fmt.Errorf("%w: line %q has %d trains", ErrInvalidTopology, line, trains)
	}
	m := &LineMonitor{
		line:          line,
		stations:      stations,
		index:         make(map[string]int, len(stations)),
		trains:        trains,
		log:           log,
		slots:         make([]*slot, len(stations)),
		trainCond:     make([]*sync.Cond, len(stations)),
		passengerCond: make([][]*sync.Cond, len(stations)),
	}
	for i, station := range stations {
		sl, err := state.slot(station, line)
		if err != nil {
			return nil, err
		}
		m.index[station] = i
		m.slots[i] = sl
		m.trainCond[i] = sync.NewCond(&m.mu)
		m.passengerCond[i] = make([]*sync.Cond, trains)
		for n := range m.passengerCond[i] {
			m.passengerCond[i][n] = sync.NewCond(&m.mu)
		}
	}
	return m, nil
}

// Line returns the name of the line this monitor guards.
func (m *LineMonitor) Line() string { return m.line }

func (m *LineMonitor) lookup(station string, train int) (int, error) {
	i, ok := m.index[station]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not on line %q", ErrUnknownStation, station, m.line)
	}
	if train < 1 || train > m.trains {
		return 0, fmt.Errorf("%w: line %q has trains 1..%d, got %d", ErrUnknownTrain, m.line, m.trains, train)
	}
	return i, nil
}

// wakeOnCancel broadcasts every condition of the line once ctx is done so
// blocked waiters can observe the cancellation. The returned func
// unregisters the callback.
func (m *LineMonitor) wakeOnCancel(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i := range m.trainCond {
			m.trainCond[i].Broadcast()
			for _, c := range m.passengerCond[i] {
				c.Broadcast()
			}
		}
	})
}

// EnterStation blocks until no train of this line occupies station, then
// claims it for train, logs the arrival and wakes the passengers waiting for
// that train there.
func (m *LineMonitor) EnterStation(ctx context.Context, station string, train int) error {
	i, err := m.lookup(station, train)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stop := m.wakeOnCancel(ctx)
	defer stop()

	for m.slots[i].train != 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.trainCond[i].Wait()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.slots[i].train = train
	if _, err := m.log.Append(TrainEvent(Enter, m.line, train, station)); err != nil {
		return err
	}
	m.passengerCond[i][train-1].Broadcast()
	return nil
}

// LeaveStation logs the departure, frees the station and wakes the trains
// queued behind it. Leaving a station the train does not hold is a contract
// violation.
func (m *LineMonitor) LeaveStation(station string, train int) error {
	i, err := m.lookup(station, train)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if got := m.slots[i].train; got != train {
		return fmt.Errorf("train %s %d leaving %q held by train %d", m.line, train, station, got)
	}
	if _, err := m.log.Append(TrainEvent(Leave, m.line, train, station)); err != nil {
		return err
	}
	m.slots[i].train = 0
	m.trainCond[i].Broadcast()
	return nil
}

// Board blocks until train is standing at station and records passenger
// boarding it.
func (m *LineMonitor) Board(ctx context.Context, passenger, station string, train int) error {
	return m.rendezvous(ctx, Board, passenger, station, train)
}

// Alight blocks until train reaches station and records passenger getting
// off there.
func (m *LineMonitor) Alight(ctx context.Context, passenger, station string, train int) error {
	return m.rendezvous(ctx, Alight, passenger, station, train)
}

func (m *LineMonitor) rendezvous(ctx context.Context, action Action, passenger, station string, train int) error {
	i, err := m.lookup(station, train)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stop := m.wakeOnCancel(ctx)
	defer stop()

	for m.slots[i].train != train {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.passengerCond[i][train-1].Wait()
	}
	_, err = m.log.Append(PassengerEvent(action, passenger, m.line, train, station))
	return err
}

// Occupant returns the train currently at station, zero when empty.
func (m *LineMonitor) Occupant(station string) (int, error) {
	i, ok := m.index[station]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not on line %q", ErrUnknownStation, station, m.line)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[i].train, nil
}

// Snapshot returns the occupant of every station of the line, in line order,
// read under one acquisition of the monitor.
func (m *LineMonitor) Snapshot() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.slots))
	for i, sl := range m.slots {
		out[i] = sl.train
	}
	return out
}
