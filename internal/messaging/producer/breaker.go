package producer

import (
	"context"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"safetyhub/internal/models"
)

// BreakerProducer stops calling a failing producer until a cooldown has passed
type BreakerProducer struct {
	next    Producer
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerProducer wraps next. The breaker opens after `failures` consecutive
// errors and lets one probe through after `cooldown`.
func NewBreakerProducer(next Producer, failures uint32, cooldown time.Duration, logger *log.Logger) *BreakerProducer {
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        "log-event-producer",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	}
	return &BreakerProducer{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// State exposes the breaker state
func (p *BreakerProducer) State() gobreaker.State {
	return p.breaker.State()
}

// Publish forwards through the breaker
func (p *BreakerProducer) Publish(ctx context.Context, event *models.LogEvent) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.next.Publish(ctx, event)
	})
	return err
}

// PublishBatch forwards through the breaker; an open breaker returns gobreaker.ErrOpenState
func (p *BreakerProducer) PublishBatch(ctx context.Context, events []*models.LogEvent) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.next.PublishBatch(ctx, events)
	})
	return err
}

// Close closes the wrapped producer
func (p *BreakerProducer) Close() error {
	return p.next.Close()
}

var _ Producer = (*BreakerProducer)(nil)
