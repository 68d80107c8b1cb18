package testutil

import "github.com/comalice/metrosim"

// TraceBuilder assembles an event log by hand, numbering events in the order
// they are added.
type TraceBuilder struct {
	events []metrosim.Event
}

// NewTrace starts an empty trace.
func NewTrace() *TraceBuilder {
	return &TraceBuilder{}
}

func (b *TraceBuilder) add(e metrosim.Event) *TraceBuilder {
	e.Seq = uint64(len(b.events) + 1)
	b.events = append(b.events, e)
	return b
}

// Enter appends "Train <line> <n> entering <station>".
func (b *TraceBuilder) Enter(line string, n int, station string) *TraceBuilder {
	return b.add(metrosim.TrainEvent(metrosim.Enter, line, n, station))
}

// Leave appends "Train <line> <n> leaving <station>".
func (b *TraceBuilder) Leave(line string, n int, station string) *TraceBuilder {
	return b.add(metrosim.TrainEvent(metrosim.Leave, line, n, station))
}

// Visit appends an Enter immediately followed by its Leave.
func (b *TraceBuilder) Visit(line string, n int, station string) *TraceBuilder {
	return b.Enter(line, n, station).Leave(line, n, station)
}

// Walk visits each station in order.
func (b *TraceBuilder) Walk(line string, n int, stations ...string) *TraceBuilder {
	for _, s := range stations {
		b.Visit(line, n, s)
	}
	return b
}

// Board appends "<p> boarding train <line> <n> at <station>".
func (b *TraceBuilder) Board(passenger, line string, n int, station string) *TraceBuilder {
	return b.add(metrosim.PassengerEvent(metrosim.Board, passenger, line, n, station))
}

// Alight appends "<p> leaving train <line> <n> at <station>".
func (b *TraceBuilder) Alight(passenger, line string, n int, station string) *TraceBuilder {
	return b.add(metrosim.PassengerEvent(metrosim.Alight, passenger, line, n, station))
}

// Events returns the built log.
func (b *TraceBuilder) Events() []metrosim.Event {
	out := make([]metrosim.Event, len(b.events))
	copy(out, b.events)
	return out
}

// RoundTrips appends trips complete round trips of one train, the way the
// simulation drives it.
func (b *TraceBuilder) RoundTrips(topo *metrosim.Topology, line string, n, trips int) *TraceBuilder {
	for i := 0; i < trips; i++ {
		b.Walk(line, n, topo.RoundTrip(line, topo.HasPassengers())...)
	}
	return b
}
