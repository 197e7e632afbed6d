package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"safetyhub/config"
	"safetyhub/internal/models"
)

// Writer defaults used when the config leaves a field at zero
const (
	defaultWriterBatchSize    = 100
	defaultWriterBatchTimeout = 100 * time.Millisecond
	defaultWriterBatchBytes   = 1 << 20
	defaultWriterIOTimeout    = 5 * time.Second
)

// KafkaProducer publishes saved-log events as JSON, keyed by event id
type KafkaProducer struct {
	writer *kafka.Writer
	logger *log.Logger
	topic  string
}

// NewKafkaProducer builds the writer. No connection is made until the first publish.
func NewKafkaProducer(cfg config.KafkaProducerConfig, logger *log.Logger) (*KafkaProducer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("kafka producer: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka producer: topic is required")
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{}, // same event id, same partition

		BatchSize:    intOr(cfg.BatchSize, defaultWriterBatchSize),
		BatchTimeout: durationOr(cfg.BatchTimeout, defaultWriterBatchTimeout),
		BatchBytes:   int64(intOr(cfg.BatchBytes, defaultWriterBatchBytes)),

		RequiredAcks: requiredAcks(cfg.RequiredAcks),
		Async:        cfg.Async,

		WriteTimeout: durationOr(cfg.WriteTimeout, defaultWriterIOTimeout),
		ReadTimeout:  durationOr(cfg.ReadTimeout, defaultWriterIOTimeout),

		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Printf("Kafka writer: "+msg, args...)
		}),
	}

	logger.Printf("Kafka producer ready for topic %s (brokers %v, acks %s)", cfg.Topic, cfg.Brokers, w.RequiredAcks)
	return &KafkaProducer{writer: w, logger: logger, topic: cfg.Topic}, nil
}

func requiredAcks(s string) kafka.RequiredAcks {
	switch s {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

func intOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// EncodeEvent serializes an event into a Kafka message keyed by its id
func EncodeEvent(event *models.LogEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to serialize log event %s: %w", event.EventID, err)
	}
	return kafka.Message{Key: []byte(event.EventID), Value: value}, nil
}

// Publish sends one event
func (p *KafkaProducer) Publish(ctx context.Context, event *models.LogEvent) error {
	return p.PublishBatch(ctx, []*models.LogEvent{event})
}

// PublishBatch sends events in one WriteMessages call
func (p *KafkaProducer) PublishBatch(ctx context.Context, events []*models.LogEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := EncodeEvent(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write of %d events to %s failed: %w", len(msgs), p.topic, err)
	}
	p.logger.Printf("Published %d log events to %s", len(msgs), p.topic)
	return nil
}

// Close flushes buffered messages and closes the writer
func (p *KafkaProducer) Close() error {
	p.logger.Printf("Kafka producer for %s closing", p.topic)
	return p.writer.Close()
}

var _ Producer = (*KafkaProducer)(nil)
