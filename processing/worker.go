package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"safetyhub/config"
	"safetyhub/internal/messaging/consumer"
	"safetyhub/internal/models"
	"safetyhub/storage/store"
)

// Worker copies saved-log events from the queue into an archive store in batches
type Worker struct {
	concurrency        int
	batchSize          int
	batchTimeout       time.Duration
	consumerRetryDelay time.Duration
	storeTimeout       time.Duration

	logger   *log.Logger
	store    store.Store
	consumer consumer.Consumer
}

// New creates a new Worker instance
func New(cfg config.WorkerConfig, logger *log.Logger, s store.Store, c consumer.Consumer) *Worker {
	w := &Worker{
		concurrency:        cfg.Concurrency,
		batchSize:          cfg.BatchSize,
		batchTimeout:       parseDuration(logger, "batch_timeout", cfg.BatchTimeout, time.Second),
		consumerRetryDelay: parseDuration(logger, "consumer_retry_delay", cfg.ConsumerRetryDelay, 5*time.Second),
		storeTimeout:       parseDuration(logger, "store_timeout", cfg.StoreTimeout, 10*time.Second),
		logger:             logger,
		store:              s,
		consumer:           c,
	}
	if w.concurrency <= 0 {
		w.concurrency = 1
	}
	if w.batchSize <= 0 {
		w.batchSize = 100
	}
	return w
}

func parseDuration(logger *log.Logger, name, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Printf("Warning: Invalid %s '%s', using default %v", name, value, fallback)
		return fallback
	}
	return d
}

// Run starts the worker pool and blocks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) {
	w.logger.Printf("Starting worker pool with concurrency: %d, BatchSize: %d, BatchTimeout: %s",
		w.concurrency, w.batchSize, w.batchTimeout)
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.logger.Printf("Worker %d started", workerID)
			w.processEventsInBatch(ctx, workerID)
			w.logger.Printf("Worker %d stopped", workerID)
		}(i + 1)
	}
	wg.Wait()
	w.logger.Println("Worker pool stopped.")
}

// processEventsInBatch is the main loop for a worker goroutine
func (w *Worker) processEventsInBatch(ctx context.Context, workerID int) {
	events := make([]*models.LogEvent, 0, w.batchSize)
	acks := make([]func(success bool), 0, w.batchSize)

	batchTimer := time.NewTimer(w.batchTimeout)
	stopTimer(batchTimer)

	flush := func() {
		if len(events) == 0 {
			return
		}
		stopTimer(batchTimer)
		w.processAndAckBatch(ctx, workerID, events, acks)
		events = make([]*models.LogEvent, 0, w.batchSize)
		acks = make([]func(success bool), 0, w.batchSize)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Printf("Worker %d: Context cancelled, stopping.", workerID)
			for _, ack := range acks {
				ack(false)
			}
			return

		case <-batchTimer.C:
			flush()

		default:
			consumeCtx, consumeCancel := context.WithTimeout(ctx, 100*time.Millisecond)
			event, ack, err := w.consumer.Consume(consumeCtx)
			consumeCancel()

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					continue
				}
				if errors.Is(err, consumer.ErrConsumerClosed) {
					w.logger.Printf("Worker %d: Consumer closed, flushing %d pending events.", workerID, len(events))
					flush()
					return
				}
				w.logger.Printf("Worker %d: Consumer error: %v", workerID, err)
				select {
				case <-ctx.Done():
				case <-time.After(w.consumerRetryDelay):
				}
				continue
			}
			if event == nil {
				continue
			}

			if len(events) == 0 {
				batchTimer.Reset(w.batchTimeout)
			}
			events = append(events, event)
			acks = append(acks, ack)

			if len(events) >= w.batchSize {
				flush()
			}
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// maxRetryDelay caps the backoff between archive write attempts
const maxRetryDelay = 30 * time.Second

// processAndAckBatch writes the batch, retrying with backoff until it succeeds or
// ctx ends. Events are nacked only on shutdown: acking anything later first would
// let a partitioned broker commit past them.
func (w *Worker) processAndAckBatch(ctx context.Context, workerID int, batch []*models.LogEvent, acks []func(success bool)) {
	delay := w.consumerRetryDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = w.handleBatch(ctx, batch); err == nil {
			break
		}
		w.logger.Printf("Worker %d: Batch attempt %d failed: %v (retrying in %v)", workerID, attempt, err, delay)

		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
		if ctx.Err() != nil {
			w.logger.Printf("Worker %d: Shutting down with unarchived batch, nacking %d events", workerID, len(acks))
			break
		}
		if delay *= 2; delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
	for _, ack := range acks {
		if ack != nil {
			ack(err == nil)
		}
	}
}

func (w *Worker) handleBatch(ctx context.Context, batch []*models.LogEvent) error {
	start := time.Now()

	entries := make([]models.LogEntry, 0, len(batch))
	for _, event := range batch {
		entries = append(entries, event.Entry())
	}

	storeCtx, cancel := context.WithTimeout(ctx, w.storeTimeout)
	defer cancel()
	if err := w.store.AppendBatch(storeCtx, entries); err != nil {
		return fmt.Errorf("archive store write failed: %w", err)
	}

	w.logger.Printf("Batch archived: size=%d, total=%v", len(entries), time.Since(start))
	return nil
}
