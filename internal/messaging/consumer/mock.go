package consumer

import (
	"context"
	"errors"
	"log"
	"sync"

	"safetyhub/internal/models"
)

// ErrConsumerClosed is returned by MockConsumer after Close
var ErrConsumerClosed = errors.New("consumer closed")

// MockConsumer serves events from memory. Used with the mock://local broker and in tests.
type MockConsumer struct {
	logger   *log.Logger
	messages chan *models.LogEvent

	mu     sync.Mutex
	acked  []string
	nacked []string
	closed bool
}

// NewMockConsumer queues the given events
func NewMockConsumer(logger *log.Logger, events ...*models.LogEvent) *MockConsumer {
	mc := &MockConsumer{
		logger:   logger,
		messages: make(chan *models.LogEvent, len(events)+16),
	}
	for _, e := range events {
		mc.messages <- e
	}
	logger.Printf("[MockConsumer] Loaded %d events", len(events))
	return mc
}

// Push queues one more event; it reports false when the buffer is full or closed
func (m *MockConsumer) Push(event *models.LogEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	select {
	case m.messages <- event:
		return true
	default:
		return false
	}
}

// Consume returns the next queued event. A nacked event is queued again.
func (m *MockConsumer) Consume(ctx context.Context) (*models.LogEvent, func(success bool), error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case event, ok := <-m.messages:
		if !ok {
			return nil, nil, ErrConsumerClosed
		}
		ack := func(success bool) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if success {
				m.acked = append(m.acked, event.EventID)
				return
			}
			m.nacked = append(m.nacked, event.EventID)
			if m.closed {
				return
			}
			select {
			case m.messages <- event:
			default:
				m.logger.Printf("[MockConsumer] Warning: could not re-queue event %s", event.EventID)
			}
		}
		return event, ack, nil
	}
}

// Acked returns the ids acknowledged so far
func (m *MockConsumer) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

// Nacked returns the ids negatively acknowledged so far
func (m *MockConsumer) Nacked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.nacked...)
}

// Close closes the event channel
func (m *MockConsumer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.messages)
	return nil
}

var _ Consumer = (*MockConsumer)(nil)
