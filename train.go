package metrosim

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// TrainID names one train: its line and its 1-based number on that line.
type TrainID struct {
	Line   string `json:"line" yaml:"line"`
	Number int    `json:"number" yaml:"number"`
}

func (id TrainID) String() string {
	return id.Line + " " + strconv.Itoa(id.Number)
}

// TrainPhase is where a train is in its round trip.
type TrainPhase int

const (
	Forward TrainPhase = iota + 1
	Backward
	Terminated
)

func (p TrainPhase) String() string {
	switch p {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Terminated:
		return "terminated"
	}
	return "TrainPhase(" + strconv.Itoa(int(p)) + ")"
}

// runTrain drives one train through round trips. A round trip in progress
// always completes; whether to start another is decided only between trips.
func (s *Simulation) runTrain(ctx context.Context, m *LineMonitor, n int) error {
	id := TrainID{Line: m.line, Number: n}
	actor := "train " + id.String()

	hasPassengers := s.topo.HasPassengers()
	legs := []struct {
		phase    TrainPhase
		stations []string
	}{
		{Forward, s.topo.ForwardWalk(m.line)},
		{Backward, s.topo.ReverseLeg(m.line, hasPassengers)},
	}

	for trip := 1; ; trip++ {
		for _, leg := range legs {
			s.setPhase(id, leg.phase)
			for _, station := range leg.stations {
				s.setStatus(actor, fmt.Sprintf("(%s, trip %d, waiting for %s)", leg.phase, trip, station))
				if err := s.visit(ctx, m, station, n); err != nil {
					return fmt.Errorf("train %s: %w", id, err)
				}
			}
		}
		if !hasPassengers || s.remaining.Load() == 0 {
			s.setPhase(id, Terminated)
			s.setStatus(actor, "")
			return nil
		}
	}
}

// visit enters station, dwells there without holding the monitor, and leaves.
func (s *Simulation) visit(ctx context.Context, m *LineMonitor, station string, n int) error {
	if err := m.EnterStation(ctx, station, n); err != nil {
		return fmt.Errorf("entering %s: %w", station, err)
	}
	if s.dwell > 0 {
		timer := time.NewTimer(s.dwell)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("dwelling at %s: %w", station, ctx.Err())
		case <-timer.C:
		}
	}
	if err := m.LeaveStation(station, n); err != nil {
		return fmt.Errorf("leaving %s: %w", station, err)
	}
	return nil
}
