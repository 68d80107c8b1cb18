package display

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/comalice/metrosim"
)

// State is the occupancy grid after some prefix of the event log.
type State struct {
	topo    *metrosim.Topology
	waiting map[string]map[string]bool         // station -> passengers
	trains  map[string]map[string]map[int]bool // station -> line -> trains
	riders  map[metrosim.TrainID]map[string]bool
	seq     uint64
}

// NewState returns the grid before the first event: every train in its
// depot and every passenger at the first stop of their itinerary.
func NewState(topo *metrosim.Topology) *State {
	s := &State{
		topo:    topo,
		waiting: make(map[string]map[string]bool),
		trains:  make(map[string]map[string]map[int]bool),
		riders:  make(map[metrosim.TrainID]map[string]bool),
	}
	for line, stations := range topo.Lines {
		for _, station := range stations {
			if s.trains[station] == nil {
				s.trains[station] = make(map[string]map[int]bool)
				s.waiting[station] = make(map[string]bool)
			}
			s.trains[station][line] = make(map[int]bool)
		}
	}
	for name, itinerary := range topo.Passengers {
		if set := s.waiting[itinerary[0]]; set != nil {
			set[name] = true
		}
	}
	return s
}

// Apply advances the grid by one event.
func (s *State) Apply(e metrosim.Event) error {
	byLine, ok := s.trains[e.Station]
	if !ok {
		return fmt.Errorf("seq %d: %w %q", e.Seq, metrosim.ErrUnknownStation, e.Station)
	}
	trains, ok := byLine[e.Line]
	if !ok {
		return fmt.Errorf("seq %d: %w: %q does not stop at %q", e.Seq, metrosim.ErrUnknownLine, e.Line, e.Station)
	}
	id := e.TrainID()
	switch e.Action {
	case metrosim.Enter:
		trains[e.Train] = true
	case metrosim.Leave:
		delete(trains, e.Train)
	case metrosim.Board:
		delete(s.waiting[e.Station], e.Passenger)
		if s.riders[id] == nil {
			s.riders[id] = make(map[string]bool)
		}
		s.riders[id][e.Passenger] = true
	case metrosim.Alight:
		delete(s.riders[id], e.Passenger)
		s.waiting[e.Station][e.Passenger] = true
	default:
		return fmt.Errorf("seq %d: unknown action %d", e.Seq, int(e.Action))
	}
	s.seq = e.Seq
	return nil
}

// Seq is the sequence number of the last event applied.
func (s *State) Seq() uint64 { return s.seq }

// Waiting returns the passengers on a platform, sorted.
func (s *State) Waiting(station string) []string {
	return sortedKeys(s.waiting[station])
}

// Riders returns the passengers aboard a train, sorted.
func (s *State) Riders(id metrosim.TrainID) []string {
	return sortedKeys(s.riders[id])
}

// TrainsAt returns the trains of line standing at station, in number order.
func (s *State) TrainsAt(station, line string) []int {
	set := s.trains[station][line]
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Render writes the grid: one block per line in name order, one row per
// station.
func (s *State) Render(w io.Writer) error {
	var b bytes.Buffer
	for _, line := range s.topo.LineNames() {
		b.WriteString(line)
		b.WriteByte('\n')
		for _, station := range s.topo.Lines[line] {
			var people strings.Builder
			for _, p := range s.Waiting(station) {
				people.WriteString(p)
				people.WriteByte(' ')
			}
			var trains strings.Builder
			for _, n := range s.TrainsAt(station, line) {
				id := metrosim.TrainID{Line: line, Number: n}
				trains.WriteString("[" + id.String())
				for _, p := range s.Riders(id) {
					trains.WriteString(" " + p)
				}
				trains.WriteString("]")
			}
			fmt.Fprintf(&b, "  %25s %10s %-10s\n", station, people.String(), trains.String())
		}
	}
	b.WriteByte('\n')
	_, err := w.Write(b.Bytes())
	return err
}

func (s *State) String() string {
	var b strings.Builder
	_ = s.Render(&b)
	return b.String()
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
