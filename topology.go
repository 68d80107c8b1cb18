package metrosim

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"
)

// Topology is the static description of a run: which stations each line
// serves, how many trains cycle each line, and where each passenger goes.
// It is constructed once before any actor starts and is never mutated.
type Topology struct {
	Lines      map[string][]string `json:"lines" yaml:"lines"`
	Trains     map[string]int      `json:"trains" yaml:"trains"`
	Passengers map[string][]string `json:"passengers,omitempty" yaml:"passengers,omitempty"`
}

// Validate checks the static shape of the topology:
//   - at least one line, each with two or more distinct stations
//   - line and passenger names are single words, and station names have no
//     leading, trailing or repeated spaces, so every event reads back from
//     its text form
//   - every line has a positive train count and every count names a line
//   - every itinerary has two or more stations, no station repeated back to back,
//     and only stations some line serves
//
// Whether consecutive itinerary stops share a line is left to the run, where
// an unroutable hop is logged and skipped.
func (t *Topology) Validate() error {
	if t == nil || len(t.Lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrInvalidTopology)
	}
	known := make(map[string]bool)
	for _, line := range t.LineNames() {
		stations := t.Lines[line]
		if err := checkWord("line", line); err != nil {
			return err
		}
		if len(stations) < 2 {
			return fmt.Errorf("%w: line %q needs at least 2 stations, has %d", ErrInvalidTopology, line, len(stations))
		}
		seen := make(map[string]bool, len(stations))
		for _, s := range stations {
			if err := checkStation(line, s); err != nil {
				return err
			}
			if seen[s] {
				return fmt.Errorf("%w: line %q visits %q twice", ErrInvalidTopology, line, s)
			}
			seen[s] = true
			known[s] = true
		}
		n, ok := t.Trains[line]
		if !ok {
			return fmt.Errorf("%w: line %q has no train count", ErrInvalidTopology, line)
		}
		if n < 1 {
			return fmt.Errorf("%w: line %q has %d trains", ErrInvalidTopology, line, n)
		}
	}
	for line := range t.Trains {
		if _, ok := t.Lines[line]; !ok {
			return fmt.Errorf("%w: train count for %w %q", ErrInvalidTopology, ErrUnknownLine, line)
		}
	}
	for _, name := range t.PassengerNames() {
		itinerary := t.Passengers[name]
		if err := checkWord("passenger", name); err != nil {
			return err
		}
		if len(itinerary) < 2 {
			return fmt.Errorf("%w: passenger %q needs at least 2 stops, has %d", ErrInvalidTopology, name, len(itinerary))
		}
		for i, s := range itinerary {
			if !known[s] {
				return fmt.Errorf("%w: passenger %q: %w %q", ErrInvalidTopology, name, ErrUnknownStation, s)
			}
			if i > 0 && itinerary[i-1] == s {
				return fmt.Errorf("%w: passenger %q stays at %q between stops %d and %d", ErrInvalidTopology, name, s, i-1, i)
			}
		}
	}
	return nil
}

func checkWord(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty %s name", ErrInvalidTopology, kind)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return fmt.Errorf("%w: %s name %q contains whitespace", ErrInvalidTopology, kind, name)
	}
	return nil
}

func checkStation(line, s string) error {
	if s == "" {
		return fmt.Errorf("%w: line %q has an empty station name", ErrInvalidTopology, line)
	}
	if s != strings.Join(strings.Fields(s), " ") {
		return fmt.Errorf("%w: line %q: station %q has leading, trailing or repeated spaces", ErrInvalidTopology, line, s)
	}
	return nil
}

// LineNames returns line names in sorted order.
func (t *Topology) LineNames() []string {
	names := make([]string, 0, len(t.Lines))
	for name := range t.Lines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PassengerNames returns passenger names in sorted order.
func (t *Topology) PassengerNames() []string {
	names := make([]string, 0, len(t.Passengers))
	for name := range t.Passengers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stations returns every station served by any line, sorted.
func (t *Topology) Stations() []string {
	set := make(map[string]struct{})
	for _, stations := range t.Lines {
		for _, s := range stations {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// HasPassengers reports whether the passenger population is non-empty.
func (t *Topology) HasPassengers() bool {
	return len(t.Passengers) > 0
}

// LineFor returns the first line, in name order, that serves both stations.
func (t *Topology) LineFor(from, to string) (string, error) {
	for _, line := range t.LineNames() {
		stations := t.Lines[line]
		if slices.Contains(stations, from) && slices.Contains(stations, to) {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: %q -> %q", ErrNoCommonLine, from, to)
}

// ForwardWalk is the station order of the outbound leg.
func (t *Topology) ForwardWalk(line string) []string {
	return slices.Clone(t.Lines[line])
}

// ReverseLeg is the station order of the return leg. The far terminus was
// just visited by the forward leg and is never repeated. When passengers are
// present the home terminus is dropped too, because the next forward leg
// starts there; without passengers the train finishes at home and stops.
func (t *Topology) ReverseLeg(line string, hasPassengers bool) []string {
	rev := slices.Clone(t.Lines[line])
	slices.Reverse(rev)
	if len(rev) < 2 {
		return nil
	}
	if hasPassengers {
		return rev[1 : len(rev)-1]
	}
	return rev[1:]
}

// RoundTrip is one forward leg followed by one reverse leg.
func (t *Topology) RoundTrip(line string, hasPassengers bool) []string {
	return append(t.ForwardWalk(line), t.ReverseLeg(line, hasPassengers)...)
}

// PingPong returns the first n stations of the endless forward-then-reverse
// walk over the line.
func (t *Topology) PingPong(line string, n int) []string {
	stations := t.Lines[line]
	if len(stations) < 2 || n <= 0 {
		return nil
	}
	period := 2 * (len(stations) - 1)
	out := make([]string, n)
	for i := range out {
		p := i % period
		if p >= len(stations) {
			p = period - p
		}
		out[i] = stations[p]
	}
	return out
}
