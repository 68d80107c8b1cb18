package verify

import (
	"fmt"
	"slices"

	"github.com/comalice/metrosim"
)

// MaxViolations caps how many violation messages a Result keeps; the rest
// are only counted.
const MaxViolations = 20

// Verifier evaluates the safety properties of a log against one topology.
type Verifier struct {
	Topology *metrosim.Topology
}

// New creates a verifier for topo.
func New(topo *metrosim.Topology) *Verifier {
	return &Verifier{Topology: topo}
}

// Check evaluates every property and returns one Result each.
func Check(topo *metrosim.Topology, events []metrosim.Event) Report {
	return New(topo).Check(events)
}

// Verify is the overall verdict of Check.
func Verify(topo *metrosim.Topology, events []metrosim.Event) bool {
	return Check(topo, events).Passed()
}

// Check evaluates every property over events.
func (v *Verifier) Check(events []metrosim.Event) Report {
	tr := newTrace(v.Topology, events)
	report := Report{Results: make([]Result, 0, len(Properties))}
	for _, p := range Properties {
		report.Results = append(report.Results, checkProperty(p, tr))
	}
	return report
}

// checkProperty evaluates a single property.
func checkProperty(p Property, tr *trace) Result {
	res := Result{Property: p}
	var c collector
	switch p {
	case InitialStation:
		checkInitialStation(tr, &c)
	case EnterLeavePairing:
		checkEnterLeavePairing(tr, &c)
	case MutualExclusion:
		checkMutualExclusion(tr, &c)
	case ItineraryCompletion:
		checkItineraryCompletion(tr, &c)
	case RoundTripShape:
		if tr.topo.HasPassengers() {
			res.Passed, res.Skipped = true, true
			return res
		}
		checkRoundTripShape(tr, &c)
	case RendezvousValidity:
		checkRendezvousValidity(tr, &c)
	case NoPhantomDeparture:
		checkNoPhantomDeparture(tr, &c)
	case PathContinuity:
		checkPathContinuity(tr, &c)
	default:
		c.addf("unknown property %d", int(p))
	}
	res.Passed = c.total == 0
	res.Violations = c.msgs
	res.Truncated = c.total - len(c.msgs)
	return res
}

// trace is the log split by actor. The per-actor slices keep log order.
type trace struct {
	topo       *metrosim.Topology
	events     []metrosim.Event
	trains     map[metrosim.TrainID][]metrosim.Event
	passengers map[string][]metrosim.Event
}

func newTrace(topo *metrosim.Topology, events []metrosim.Event) *trace {
	tr := &trace{
		topo:       topo,
		events:     events,
		trains:     make(map[metrosim.TrainID][]metrosim.Event),
		passengers: make(map[string][]metrosim.Event),
	}
	for _, e := range events {
		if e.Action.IsTrain() {
			id := e.TrainID()
			tr.trains[id] = append(tr.trains[id], e)
		} else {
			tr.passengers[e.Passenger] = append(tr.passengers[e.Passenger], e)
		}
	}
	return tr
}

// topologyTrains lists every train the topology declares, by line then number.
func (tr *trace) topologyTrains() []metrosim.TrainID {
	var ids []metrosim.TrainID
	for _, line := range tr.topo.LineNames() {
		for n := 1; n <= tr.topo.Trains[line]; n++ {
			ids = append(ids, metrosim.TrainID{Line: line, Number: n})
		}
	}
	return ids
}

// loggedTrains lists every train seen in the log, sorted.
func (tr *trace) loggedTrains() []metrosim.TrainID {
	ids := make([]metrosim.TrainID, 0, len(tr.trains))
	for id := range tr.trains {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b metrosim.TrainID) int {
		if a.Line != b.Line {
			if a.Line < b.Line {
				return -1
			}
			return 1
		}
		return a.Number - b.Number
	})
	return ids
}

type collector struct {
	msgs  []string
	total int
}

func (c *collector) addf(format string, args ...any) {
	c.total++
	if len(c.msgs) < MaxViolations {
		c.msgs = append(c.msgs, fmt.Sprintf(format, args...))
	}
}
