package consumer

import (
	"context"

	"safetyhub/internal/models"
)

// Consumer defines the interface for saved-log event consumers.
type Consumer interface {
	// Consume blocks until an event is received or the context is cancelled.
	// ack(true) marks the event done; ack(false) leaves it, and on partitioned
	// brokers everything after it in the same partition, for redelivery.
	Consume(ctx context.Context) (event *models.LogEvent, ack func(success bool), err error)

	// Close shuts down the consumer connection.
	Close() error
}
