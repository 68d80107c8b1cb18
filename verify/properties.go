package verify

import (
	"slices"

	"github.com/comalice/metrosim"
)

func checkInitialStation(tr *trace, c *collector) {
	for _, id := range tr.topologyTrains() {
		first := tr.topo.Lines[id.Line][0]
		events := tr.trains[id]
		if len(events) == 0 {
			c.addf("train %s never entered a station", id)
			continue
		}
		e := events[0]
		if e.Action != metrosim.Enter || e.Station != first {
			c.addf("train %s started with %q (seq %d), want entering %s", id, e, e.Seq, first)
		}
	}
}

// A trailing Enter with no Leave is accepted: the train may still have been
// standing at the platform when the log was taken.
func checkEnterLeavePairing(tr *trace, c *collector) {
	for _, id := range tr.loggedTrains() {
		events := tr.trains[id]
		for i, e := range events {
			if i%2 == 0 {
				if e.Action != metrosim.Enter {
					c.addf("train %s: seq %d %q, expected an enter", id, e.Seq, e)
				}
				continue
			}
			prev := events[i-1]
			if e.Action != metrosim.Leave {
				c.addf("train %s: seq %d %q, expected leaving %s", id, e.Seq, e, prev.Station)
				continue
			}
			if e.Station != prev.Station {
				c.addf("train %s: seq %d leaves %s but entered %s at seq %d", id, e.Seq, e.Station, prev.Station, prev.Seq)
			}
		}
	}
}

func checkMutualExclusion(tr *trace, c *collector) {
	type key struct{ line, station string }
	held := make(map[key]metrosim.Event)
	for _, e := range tr.events {
		if !e.Action.IsTrain() {
			continue
		}
		k := key{e.Line, e.Station}
		switch e.Action {
		case metrosim.Enter:
			if other, ok := held[k]; ok && other.Train != e.Train {
				c.addf("seq %d: train %s entered %s while train %s held it since seq %d",
					e.Seq, e.TrainID(), e.Station, other.TrainID(), other.Seq)
			}
			held[k] = e
		case metrosim.Leave:
			if other, ok := held[k]; ok && other.Train == e.Train {
				delete(held, k)
			}
		}
	}
}

func checkItineraryCompletion(tr *trace, c *collector) {
	for _, name := range tr.topo.PassengerNames() {
		itinerary := tr.topo.Passengers[name]
		final := itinerary[len(itinerary)-1]
		events := tr.passengers[name]
		if len(events) == 0 {
			c.addf("passenger %s never travelled, want to reach %s", name, final)
			continue
		}
		last := events[len(events)-1]
		if last.Action != metrosim.Alight || last.Station != final {
			c.addf("passenger %s ended with %q (seq %d), want leaving a train at %s", name, last, last.Seq, final)
		}
	}
}

// Each visit contributes its station twice, once for entering and once for
// leaving, so the expected sequence is every round-trip station doubled.
func checkRoundTripShape(tr *trace, c *collector) {
	for _, id := range tr.topologyTrains() {
		var trip []string
		for _, s := range tr.topo.RoundTrip(id.Line, false) {
			trip = append(trip, s, s)
		}
		events := tr.trains[id]
		got := make([]string, len(events))
		for i, e := range events {
			got[i] = e.Station
		}
		if len(got) == 0 || len(got)%len(trip) != 0 {
			c.addf("train %s visited %v, want whole round trips of %v", id, got, trip)
			continue
		}
		for i := 0; i < len(got); i += len(trip) {
			if !slices.Equal(got[i:i+len(trip)], trip) {
				c.addf("train %s round trip %d visited %v, want %v", id, i/len(trip)+1, got[i:i+len(trip)], trip)
				break
			}
		}
	}
}

func checkRendezvousValidity(tr *trace, c *collector) {
	present := make(map[string]map[metrosim.TrainID]bool)
	for _, e := range tr.events {
		id := e.TrainID()
		switch e.Action {
		case metrosim.Enter:
			if present[e.Station] == nil {
				present[e.Station] = make(map[metrosim.TrainID]bool)
			}
			present[e.Station][id] = true
		case metrosim.Leave:
			delete(present[e.Station], id)
		case metrosim.Board, metrosim.Alight:
			if !present[e.Station][id] {
				c.addf("seq %d: %q but train %s is not at %s", e.Seq, e, id, e.Station)
			}
		}
	}
}

func checkNoPhantomDeparture(tr *trace, c *collector) {
	for _, id := range tr.loggedTrains() {
		var arrivals []string
		for _, e := range tr.trains[id] {
			switch e.Action {
			case metrosim.Enter:
				arrivals = append(arrivals, e.Station)
			case metrosim.Leave:
				if len(arrivals) == 0 {
					c.addf("train %s: seq %d leaves %s without having entered anywhere", id, e.Seq, e.Station)
					continue
				}
				top := arrivals[len(arrivals)-1]
				if top != e.Station {
					c.addf("train %s: seq %d leaves %s but last entered %s", id, e.Seq, e.Station, top)
					continue
				}
				arrivals = arrivals[:len(arrivals)-1]
			}
		}
	}
}

func checkPathContinuity(tr *trace, c *collector) {
	for _, id := range tr.loggedTrains() {
		if n, ok := tr.topo.Trains[id.Line]; !ok || id.Number < 1 || id.Number > n {
			c.addf("train %s is not part of the topology", id)
			continue
		}
		var entered []metrosim.Event
		for _, e := range tr.trains[id] {
			if e.Action == metrosim.Enter {
				entered = append(entered, e)
			}
		}
		want := tr.topo.PingPong(id.Line, len(entered))
		for i, e := range entered {
			if e.Station != want[i] {
				c.addf("train %s: visit %d (seq %d) entered %s, want %s", id, i+1, e.Seq, e.Station, want[i])
				break
			}
		}
	}
}
