// Package testutil holds shared fixtures for metrosim tests: canned
// topologies, a fluent trace builder and a bounded simulation runner.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/comalice/metrosim"
)

// ScenarioA is one line A-B-C with a single train and nobody travelling.
func ScenarioA() *metrosim.Topology {
	return metrosim.NewTopologyBuilder().
		Line("L", "A", "B", "C").
		MustBuild()
}

// ScenarioB is a two-station line with one passenger riding end to end.
func ScenarioB() *metrosim.Topology {
	return metrosim.NewTopologyBuilder().
		Line("L", "A", "B").
		Passenger("p", "A", "B").
		MustBuild()
}

// ScenarioC has two lines with no station in common and a passenger whose
// only hop crosses between them.
func ScenarioC() *metrosim.Topology {
	return metrosim.NewTopologyBuilder().
		Line("Red", "A", "B").
		Line("Blue", "C", "D").
		Passenger("lost", "A", "C").
		MustBuild()
}

// TwoStations is the shortest legal line with one train and no passengers.
func TwoStations() *metrosim.Topology {
	return metrosim.NewTopologyBuilder().
		Line("S", "X", "Y").
		MustBuild()
}

// Metro is a small multi-line network with transfers and several trains per
// line.
func Metro() *metrosim.Topology {
	return metrosim.NewTopologyBuilder().
		Line("Red", "Shady Grove", "Rockville", "Metro Center", "Union Station").
		Line("Blue", "Franconia", "Pentagon", "Metro Center", "Stadium").
		Line("Green", "Branch", "Navy Yard", "Union Station").
		Trains("Red", 2).
		Trains("Blue", 3).
		Trains("Green", 1).
		Passenger("alice", "Shady Grove", "Metro Center", "Stadium").
		Passenger("bob", "Franconia", "Metro Center", "Union Station", "Branch").
		Passenger("carol", "Navy Yard", "Union Station").
		Passenger("dave", "Stadium", "Pentagon", "Franconia").
		MustBuild()
}

// QuietLogger discards simulation diagnostics.
func QuietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// Simulate runs topo with a short dwell and a hard timeout so a liveness bug
// fails the test instead of hanging it. Extra options override the defaults.
func Simulate(t testing.TB, topo *metrosim.Topology, opts ...metrosim.Option) []metrosim.Event {
	t.Helper()
	base := []metrosim.Option{
		metrosim.WithDwell(time.Millisecond),
		metrosim.WithTimeout(30 * time.Second),
		metrosim.WithLogger(QuietLogger()),
	}
	events, err := metrosim.Simulate(context.Background(), topo, append(base, opts...)...)
	if err != nil {
		t.Fatalf("simulation failed: %v", err)
	}
	return events
}
