package metrosim

import (
	"fmt"
	"sort"
	"sync"
)

// slot holds the train number occupying one (station, line) pair, zero when
// empty. It is only read or written under that line's monitor.
type slot struct {
	train int
}

// StationState is the shared occupancy table plus the advisory set of
// passengers standing on each platform.
//
// The slot maps are built once and never modified afterwards, so lookups need
// no lock; each slot belongs to exactly one line and is guarded by that
// line's LineMonitor. The waiting sets have their own lock because nothing
// safety-critical reads them.
type StationState struct {
	slots map[string]map[string]*slot

	waitMu  sync.Mutex
	waiting map[string]map[string]struct{}
}

// NewStationState sizes the table from the topology and places every
// passenger at the first stop of their itinerary.
func NewStationState(topo *Topology) *StationState {
	s := &StationState{
		slots:   make(map[string]map[string]*slot),
		waiting: make(map[string]map[string]struct{}),
	}
	for line, stations := range topo.Lines {
		for _, station := range stations {
			if s.slots[station] == nil {
				s.slots[station] = make(map[string]*slot)
				s.waiting[station] = make(map[string]struct{})
			}
			s.slots[station][line] = &slot{}
		}
	}
	for name, itinerary := range topo.Passengers {
		if len(itinerary) > 0 && s.waiting[itinerary[0]] != nil {
			s.waiting[itinerary[0]][name] = struct{}{}
		}
	}
	return s
}

func (s *StationState) slot(station, line string) (*slot, error) {
	byLine, ok := s.slots[station]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStation, station)
	}
	sl, ok := byLine[line]
	if !ok {
		return nil, fmt.Errorf("%w: station %q is not on line %q", ErrUnknownStation, station, line)
	}
	return sl, nil
}

// Depart removes a passenger from a platform.
func (s *StationState) Depart(station, passenger string) {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	delete(s.waiting[station], passenger)
}

// Arrive puts a passenger on a platform.
func (s *StationState) Arrive(station, passenger string) {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	if set, ok := s.waiting[station]; ok {
		set[passenger] = struct{}{}
	}
}

// Waiting returns the sorted names of passengers on a platform.
func (s *StationState) Waiting(station string) []string {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	names := make([]string, 0, len(s.waiting[station]))
	for name := range s.waiting[station] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
