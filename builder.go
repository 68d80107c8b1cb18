package metrosim

import (
	"fmt"
	"slices"
)

// TopologyBuilder provides a fluent API for constructing a Topology without
// spelling out the three maps by hand.
type TopologyBuilder struct {
	lines      map[string][]string
	trains     map[string]int
	passengers map[string][]string
	errs       []error
}

// NewTopologyBuilder creates an empty builder.
func NewTopologyBuilder() *TopologyBuilder {
	return &TopologyBuilder{
		lines:      make(map[string][]string),
		trains:     make(map[string]int),
		passengers: make(map[string][]string),
	}
}

// Line declares a line and its ordered stations. The train count defaults to
// one until Trains overrides it.
func (b *TopologyBuilder) Line(name string, stations ...string) *TopologyBuilder {
	if _, exists := b.lines[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("line %q declared twice", name))
		return b
	}
	b.lines[name] = slices.Clone(stations)
	if _, ok := b.trains[name]; !ok {
		b.trains[name] = 1
	}
	return b
}

// Trains sets the number of trains cycling a line.
func (b *TopologyBuilder) Trains(line string, n int) *TopologyBuilder {
	b.trains[line] = n
	return b
}

// Passenger declares a passenger and the stops they visit in order.
func (b *TopologyBuilder) Passenger(name string, itinerary ...string) *TopologyBuilder {
	if _, exists := b.passengers[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("passenger %q declared twice", name))
		return b
	}
	b.passengers[name] = slices.Clone(itinerary)
	return b
}

// Build validates and returns the topology.
func (b *TopologyBuilder) Build() (*Topology, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTopology, b.errs[0])
	}
	t := &Topology{
		Lines:      b.lines,
		Trains:     b.trains,
		Passengers: b.passengers,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustBuild is Build for fixtures known to be valid.
func (b *TopologyBuilder) MustBuild() *Topology {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
