// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/metrosim"
)

// GenGridTopology creates a network of n lines with stations each. Line i
// shares its last station with the first station of line i+1, so passengers
// can ride the whole chain by transferring at each junction.
func GenGridTopology(lines, stations, trains, passengers int) *metrosim.Topology {
	if lines < 1 {
		lines = 1
	}
	if stations < 2 {
		stations = 2
	}
	if trains < 1 {
		trains = 1
	}
	b := metrosim.NewTopologyBuilder()
	names := make([][]string, lines)
	for i := range names {
		names[i] = make([]string, stations)
		for j := range names[i] {
			names[i][j] = fmt.Sprintf("s%d_%d", i, j)
		}
		if i > 0 {
			names[i][0] = names[i-1][stations-1]
		}
		line := fmt.Sprintf("L%d", i)
		b.Line(line, names[i]...).Trains(line, trains)
	}
	for p := 0; p < passengers; p++ {
		var itinerary []string
		for i := range names {
			if i == 0 {
				itinerary = append(itinerary, names[i][0])
			}
			itinerary = append(itinerary, names[i][stations-1])
		}
		if p%2 == 1 {
			for l, r := 0, len(itinerary)-1; l < r; l, r = l+1, r-1 {
				itinerary[l], itinerary[r] = itinerary[r], itinerary[l]
			}
		}
		b.Passenger(fmt.Sprintf("p%d", p), itinerary...)
	}
	return b.MustBuild()
}

// GenTraceYAML runs topo without dwell and returns its event log as YAML.
func GenTraceYAML(topo *metrosim.Topology) ([]byte, []metrosim.Event, error) {
	events, err := metrosim.Simulate(context.Background(), topo, metrosim.WithDwell(0))
	if err != nil {
		return nil, nil, err
	}
	data, err := yaml.Marshal(events)
	if err != nil {
		return nil, nil, err
	}
	return data, events, nil
}
