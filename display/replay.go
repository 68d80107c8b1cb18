package display

import (
	"context"
	"time"

	"github.com/comalice/metrosim"
)

// Frame is the grid after one event. The first frame of a replay has no
// event and shows the starting positions.
type Frame struct {
	Index int             `json:"index"`
	Event *metrosim.Event `json:"event,omitempty"`
	Text  string          `json:"text"`
}

// Header is the event line printed above the grid, empty for the first frame.
func (f Frame) Header() string {
	if f.Event == nil {
		return ""
	}
	return f.Event.String()
}

// Frames replays events and returns the starting frame followed by one frame
// per event.
func Frames(topo *metrosim.Topology, events []metrosim.Event) ([]Frame, error) {
	frames := make([]Frame, 0, len(events)+1)
	err := Replay(context.Background(), topo, events, 0, func(f Frame) error {
		frames = append(frames, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}

// Replay steps through events at a fixed tick rate, calling fn with each
// frame. The starting frame is emitted immediately; a tick of zero emits all
// frames without pausing. Replay stops at the first error from fn or when
// ctx is done.
func Replay(ctx context.Context, topo *metrosim.Topology, events []metrosim.Event, tick time.Duration, fn func(Frame) error) error {
	state := NewState(topo)
	if err := fn(Frame{Index: 0, Text: state.String()}); err != nil {
		return err
	}

	var ticks <-chan time.Time
	if tick > 0 {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for i := range events {
		if ticks != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticks:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		e := events[i]
		if err := state.Apply(e); err != nil {
			return err
		}
		if err := fn(Frame{Index: i + 1, Event: &e, Text: state.String()}); err != nil {
			return err
		}
	}
	return nil
}
