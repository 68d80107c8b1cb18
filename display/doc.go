// Package display renders the occupancy grid of a metro run: for every line,
// each station with the passengers waiting on its platform and the trains
// standing at it, each train listing its riders.
//
// The grid is rebuilt purely from the topology and the event log, so it can
// be produced live from a Publisher feed or after the fact from a saved
// trace.
//
// # Example Usage
//
//	frames, err := display.Frames(topo, events)
//	for _, f := range frames {
//		fmt.Print(f.Text)
//	}
//
//	// Or paced, one event per tick:
//	err = display.Replay(ctx, topo, events, 100*time.Millisecond, func(f display.Frame) error {
//		_, err := io.WriteString(os.Stdout, f.Text)
//		return err
//	})
package display
