package metrosim_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/comalice/metrosim"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []metrosim.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e metrosim.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []metrosim.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]metrosim.Event(nil), p.events...)
}

func TestEventLogConcurrentAppend(t *testing.T) {
	pub := &recordingPublisher{}
	l := metrosim.NewEventLog(pub)

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := l.Append(metrosim.TrainEvent(metrosim.Enter, "L", w, "A")); err != nil {
					t.Errorf("Append: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	events := l.Events()
	if len(events) != workers*perWorker {
		t.Fatalf("got %d events, want %d", len(events), workers*perWorker)
	}
	for i, e := range events {
		if e.Seq != uint64(i+1) {
			t.Fatalf("event %d has seq %d", i, e.Seq)
		}
	}
	published := pub.Events()
	if len(published) != len(events) {
		t.Fatalf("published %d events, logged %d", len(published), len(events))
	}
	for i := range events {
		if published[i] != events[i] {
			t.Fatalf("publisher order diverges at %d: %v vs %v", i, published[i], events[i])
		}
	}
}

func TestEventLogFreeze(t *testing.T) {
	l := metrosim.NewEventLog(nil)
	if _, err := l.Append(metrosim.TrainEvent(metrosim.Enter, "L", 1, "A")); err != nil {
		t.Fatal(err)
	}
	l.Freeze()
	l.Freeze()
	if !l.Frozen() {
		t.Fatal("log should be frozen")
	}
	if _, err := l.Append(metrosim.TrainEvent(metrosim.Leave, "L", 1, "A")); !errors.Is(err, metrosim.ErrLogFrozen) {
		t.Errorf("append after freeze: %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestEventLogPublishError(t *testing.T) {
	boom := errors.New("boom")
	l := metrosim.NewEventLog(&recordingPublisher{err: boom})
	e, err := l.Append(metrosim.TrainEvent(metrosim.Enter, "L", 1, "A"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected publisher error, got %v", err)
	}
	if e.Seq != 1 || l.Len() != 1 {
		t.Errorf("event should still be logged: %+v, len %d", e, l.Len())
	}
}
