// Tests for ChannelPublisher delivery and Simulation integration.
package production

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/comalice/metrosim"
	"github.com/comalice/metrosim/testutil"
)

func TestChannelPublisher_Delivery(t *testing.T) {
	ch := make(chan metrosim.Event, 10)
	p := NewChannelPublisher(ch)

	event := metrosim.TrainEvent(metrosim.Enter, "Red", 1, "A")
	event.Seq = 7
	if err := p.Publish(context.Background(), event); err != nil {
		t.Errorf("Publish failed: %v", err)
	}

	select {
	case got := <-ch:
		if got != event {
			t.Errorf("got %+v, want %+v", got, event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No event delivered")
	}
}

func TestChannelPublisher_BackpressureDrop(t *testing.T) {
	ch := make(chan metrosim.Event, 1)
	p := NewChannelPublisher(ch)
	ch <- metrosim.Event{} // Fill buffer

	if err := p.Publish(context.Background(), metrosim.TrainEvent(metrosim.Leave, "Red", 1, "A")); err != nil {
		t.Errorf("Publish on full channel failed: %v", err)
	}
	if p.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", p.Dropped())
	}
}

func TestChannelPublisher_CloseTwice(t *testing.T) {
	ch := make(chan metrosim.Event)
	p := NewChannelPublisher(ch)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
}

func TestChannelPublisher_Integration_Simulation(t *testing.T) {
	ch := make(chan metrosim.Event, 1024)
	p := NewChannelPublisher(ch)

	events := testutil.Simulate(t, testutil.ScenarioB(), metrosim.WithPublisher(p))
	p.Close()

	var got []metrosim.Event
	for e := range ch {
		got = append(got, e)
	}
	if len(got) != len(events) {
		t.Fatalf("received %d events, logged %d", len(got), len(events))
	}
	for i := range got {
		if got[i] != events[i] {
			t.Errorf("event %d: got %v, want %v", i, got[i], events[i])
		}
	}
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, metrosim.Event) error { return f.err }
func (f failingPublisher) Close() error                                  { return nil }

func TestLoggingPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	ch := make(chan metrosim.Event, 1)
	p := NewLoggingPublisher(NewChannelPublisher(ch), logger)

	e := metrosim.PassengerEvent(metrosim.Board, "alice", "Red", 2, "Metro Center")
	e.Seq = 4
	if err := p.Publish(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	if got := <-ch; got != e {
		t.Errorf("inner publisher got %v", got)
	}
	if want := "[EVENT] seq=4 alice boarding train Red 2 at Metro Center"; !strings.Contains(buf.String(), want) {
		t.Errorf("log %q missing %q", buf.String(), want)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoggingPublisher_InnerError(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	p := NewLoggingPublisher(failingPublisher{err: boom}, log.New(&buf, "", 0))
	if err := p.Publish(context.Background(), metrosim.TrainEvent(metrosim.Enter, "L", 1, "A")); !errors.Is(err, boom) {
		t.Errorf("got %v, want boom", err)
	}
	if !strings.Contains(buf.String(), "publish failed: boom") {
		t.Errorf("failure not logged: %q", buf.String())
	}

	if err := NewLoggingPublisher(nil, log.New(&buf, "", 0)).Publish(context.Background(), metrosim.Event{}); err != nil {
		t.Errorf("nil inner: %v", err)
	}
}
