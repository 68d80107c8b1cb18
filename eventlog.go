package metrosim

import (
	"context"
	"fmt"
	"sync"
)

// Publisher receives every appended event, in log order.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// EventLog is the single, totally ordered record of a run. Appends from
// concurrent actors are serialized by one mutex; the position an event lands
// at is its Seq. Once frozen the log rejects appends.
type EventLog struct {
	mu        sync.Mutex
	events    []Event
	frozen    bool
	publisher Publisher
}

// NewEventLog creates an empty log. publisher may be nil.
func NewEventLog(publisher Publisher) *EventLog {
	return &EventLog{publisher: publisher}
}

// Append stamps e with the next sequence number and records it. The
// publisher is called while the log lock is held so subscribers observe the
// same order as the log.
func (l *EventLog) Append(e Event) (Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frozen {
		return Event{}, fmt.Errorf("append %q: %w", e, ErrLogFrozen)
	}
	e.Seq = uint64(len(l.events) + 1)
	l.events = append(l.events, e)
	if l.publisher != nil {
		if err := l.publisher.Publish(context.Background(), e); err != nil {
			return e, fmt.Errorf("publish %q: %w", e, err)
		}
	}
	return e, nil
}

// Events returns a copy of the log.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of events appended so far.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Freeze stops further appends. Safe to call more than once.
func (l *EventLog) Freeze() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frozen = true
}

// Frozen reports whether Freeze has been called.
func (l *EventLog) Frozen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frozen
}
