package service

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"safetyhub/internal/messaging/producer"
	"safetyhub/internal/models"
)

// EventBatcher buffers saved-log events and publishes them in batches.
// A single goroutine owns the buffer; Submit never blocks the request path.
type EventBatcher struct {
	batchSize      int
	batchTimeout   time.Duration
	publishTimeout time.Duration
	logger         *log.Logger
	producer       producer.Producer

	events chan *models.LogEvent
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	// Submit holds the read side while sending; Close takes the write side to
	// close done, so no send lands after the final drain has started.
	closeMu sync.RWMutex
	closed  bool

	published atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewEventBatcher starts the publishing goroutine. The queue holds queueBuffer full batches.
func NewEventBatcher(batchSize int, batchTimeout time.Duration, queueBuffer int,
	p producer.Producer, logger *log.Logger) *EventBatcher {

	if batchSize <= 0 {
		batchSize = 1
	}
	if batchTimeout <= 0 {
		batchTimeout = 500 * time.Millisecond
	}
	if queueBuffer <= 0 {
		queueBuffer = 1
	}

	b := &EventBatcher{
		batchSize:      batchSize,
		batchTimeout:   batchTimeout,
		publishTimeout: 10 * time.Second,
		logger:         logger,
		producer:       p,
		events:         make(chan *models.LogEvent, queueBuffer*batchSize),
		done:           make(chan struct{}),
	}

	b.wg.Add(1)
	go b.run()
	return b
}

// Submit queues an event. It reports false when the queue is full or the batcher is closed.
func (b *EventBatcher) Submit(event *models.LogEvent) bool {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		b.dropped.Add(1)
		return false
	}

	select {
	case b.events <- event:
		return true
	default:
		b.dropped.Add(1)
		b.logger.Printf("Event queue full, dropping event %s", event.EventID)
		return false
	}
}

func (b *EventBatcher) run() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.batchTimeout)
	defer ticker.Stop()

	batch := make([]*models.LogEvent, 0, b.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		b.publish(batch)
		batch = make([]*models.LogEvent, 0, b.batchSize)
	}

	for {
		select {
		case event := <-b.events:
			batch = append(batch, event)
			if len(batch) >= b.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-b.done:
			// Drain whatever was queued before Close
			for {
				select {
				case event := <-b.events:
					batch = append(batch, event)
					if len(batch) >= b.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (b *EventBatcher) publish(batch []*models.LogEvent) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), b.publishTimeout)
	defer cancel()

	if err := b.producer.PublishBatch(ctx, batch); err != nil {
		b.failed.Add(int64(len(batch)))
		b.logger.Printf("Batch publish failed (%d events): %v", len(batch), err)
		return
	}
	b.published.Add(int64(len(batch)))
	b.logger.Printf("Batch processed: %d events, Total: %v", len(batch), time.Since(start))
}

// Stats returns how many events were published, failed to publish, or dropped
func (b *EventBatcher) Stats() (published, failed, dropped int64) {
	return b.published.Load(), b.failed.Load(), b.dropped.Load()
}

// Close flushes queued events and stops the goroutine
func (b *EventBatcher) Close() {
	b.once.Do(func() {
		b.closeMu.Lock()
		b.closed = true
		close(b.done)
		b.closeMu.Unlock()
		b.wg.Wait()
	})
}
