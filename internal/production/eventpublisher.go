package production

import (
	"context"
	"log"
	"sync"

	"github.com/comalice/metrosim"
)

// ChannelPublisher forwards events to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch        chan<- metrosim.Event
	closeOnce sync.Once
	mu        sync.Mutex
	dropped   int
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- metrosim.Event) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, event metrosim.Event) error {
	select {
	case p.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		return nil
	}
}

// Dropped returns how many events were discarded because the channel was full.
func (p *ChannelPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

func (p *ChannelPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.ch) })
	return nil
}

// LoggingPublisher writes every event to a logger and then hands it to an
// optional inner publisher.
type LoggingPublisher struct {
	inner  metrosim.Publisher
	logger *log.Logger
}

// NewLoggingPublisher wraps inner, which may be nil. A nil logger uses the
// standard logger.
func NewLoggingPublisher(inner metrosim.Publisher, logger *log.Logger) *LoggingPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingPublisher{inner: inner, logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, event metrosim.Event) error {
	p.logger.Printf("[EVENT] seq=%d %s", event.Seq, event)
	if p.inner == nil {
		return nil
	}
	if err := p.inner.Publish(ctx, event); err != nil {
		p.logger.Printf("[EVENT] seq=%d publish failed: %v", event.Seq, err)
		return err
	}
	return nil
}

func (p *LoggingPublisher) Close() error {
	if p.inner == nil {
		return nil
	}
	return p.inner.Close()
}
