package producer

import (
	"context"

	"safetyhub/internal/models"
)

// Producer defines the interface for publishing saved-log events
type Producer interface {
	// Publish sends a single event
	Publish(ctx context.Context, event *models.LogEvent) error

	// PublishBatch sends events in order
	PublishBatch(ctx context.Context, events []*models.LogEvent) error

	// Close flushes pending messages and closes the connection
	Close() error
}
