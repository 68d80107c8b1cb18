package metrosim

import (
	"context"
	"fmt"
)

// runPassenger walks the itinerary one hop at a time. For each hop it picks a
// line serving both stops and a random train on it, waits for that train,
// boards, then waits for the same train to reach the next stop.
//
// A hop no single line serves is logged and skipped; the passenger carries on
// with the next hop.
func (s *Simulation) runPassenger(ctx context.Context, name string, itinerary []string) error {
	actor := "passenger " + name
	defer s.remaining.Add(-1)

	for i := 1; i < len(itinerary); i++ {
		from, to := itinerary[i-1], itinerary[i]
		line, err := s.topo.LineFor(from, to)
		if err != nil {
			s.logger.Printf("[ROUTE] passenger=%s from=%s to=%s: %v", name, from, to, err)
			continue
		}
		m := s.monitors[line]
		train := s.pickTrain(s.topo.Trains[line])

		s.setStatus(actor, fmt.Sprintf("(waiting for %s %d at %s)", line, train, from))
		if err := m.Board(ctx, name, from, train); err != nil {
			return fmt.Errorf("passenger %s boarding %s %d at %s: %w", name, line, train, from, err)
		}
		s.state.Depart(from, name)

		s.setStatus(actor, fmt.Sprintf("(riding %s %d to %s)", line, train, to))
		if err := m.Alight(ctx, name, to, train); err != nil {
			return fmt.Errorf("passenger %s leaving %s %d at %s: %w", name, line, train, to, err)
		}
		s.state.Arrive(to, name)
	}
	s.setStatus(actor, "")
	return nil
}
