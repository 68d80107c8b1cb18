package metrosim

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Watchdog samples the event log on a ticker and cancels the run when
// nothing has been logged for the stall timeout. Actors that wait forever on
// an unsatisfiable condition otherwise hang silently.
type Watchdog struct {
	log      *EventLog
	stall    time.Duration
	interval time.Duration
	logger   *log.Logger
	status   func() []string

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWatchdog creates a watchdog. interval defaults to a quarter of stall,
// and never drops below a millisecond. status, if non-nil, lists unfinished
// actors for the progress log.
func NewWatchdog(l *EventLog, stall, interval time.Duration, logger *log.Logger, status func() []string) *Watchdog {
	if interval <= 0 {
		interval = stall / 4
	}
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watchdog{
		log:      l,
		stall:    stall,
		interval: interval,
		logger:   logger,
		status:   status,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run blocks until ctx is done, Stop is called, or a stall is detected, in
// which case cancel is called with an error wrapping ErrStalled.
func (w *Watchdog) Run(ctx context.Context, cancel context.CancelCauseFunc) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.log.Len()
	lastChange := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case now := <-ticker.C:
			n := w.log.Len()
			if n != last {
				last, lastChange = n, now
				continue
			}
			idle := now.Sub(lastChange)
			pending := 0
			if w.status != nil {
				pending = len(w.status())
			}
			w.logger.Printf("[WATCHDOG] events=%d idle=%v unfinished=%d", n, idle.Round(time.Millisecond), pending)
			if idle >= w.stall {
				cancel(fmt.Errorf("%w: no event logged for %v after %d events", ErrStalled, w.stall, n))
				return
			}
		}
	}
}

// Stop ends Run and waits for it to return. Run must have been started.
// Safe to call more than once.
func (w *Watchdog) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}
