package consumer

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

// KafkaConsumer reads saved-log events from a Kafka consumer group.
// Offsets are committed only up to the first event that has not been archived.
type KafkaConsumer struct {
	reader  *kafka.Reader
	logger  *log.Logger
	topic   string
	offsets *offsetTracker
}

// NewKafkaConsumer joins cfg.GroupID on cfg.Topic
func NewKafkaConsumer(cfg config.KafkaConsumerConfig, logger *log.Logger) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka consumer: no brokers configured")
	}
	if cfg.Topic == "" || cfg.GroupID == "" {
		return nil, errors.New("kafka consumer: topic and group_id are required")
	}

	rc := kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		Topic:             cfg.Topic,
		MinBytes:          1,
		MaxBytes:          10e6,
		MaxWait:           500 * time.Millisecond,
		SessionTimeout:    durationSetting(logger, "session_timeout", cfg.SessionTimeout, 30*time.Second),
		HeartbeatInterval: durationSetting(logger, "heartbeat_interval", cfg.HeartbeatInterval, 3*time.Second),
		StartOffset:       startOffset(logger, cfg.AutoOffsetReset),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Printf("Kafka reader: "+msg, args...)
		}),
	}

	logger.Printf("Kafka consumer joining group %s on %s (brokers %v)", cfg.GroupID, cfg.Topic, cfg.Brokers)
	return &KafkaConsumer{
		reader:  kafka.NewReader(rc),
		logger:  logger,
		topic:   cfg.Topic,
		offsets: newOffsetTracker(),
	}, nil
}

func durationSetting(logger *log.Logger, name, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Printf("Warning: kafka_consumer.%s %q is not a duration, using %v", name, value, fallback)
		return fallback
	}
	return d
}

// startOffset applies to groups without a committed offset
func startOffset(logger *log.Logger, reset string) int64 {
	switch reset {
	case "latest":
		return kafka.LastOffset
	case "earliest", "":
		return kafka.FirstOffset
	default:
		logger.Printf("Warning: kafka_consumer.auto_offset_reset %q unknown, using earliest", reset)
		return kafka.FirstOffset
	}
}

// DecodeEvent parses a Kafka message value into a LogEvent
func DecodeEvent(value []byte) (*models.LogEvent, error) {
	var event models.LogEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, fmt.Errorf("message deserialization failed: %w", err)
	}
	return &event, nil
}

// Consume fetches the next event. Undecodable messages are committed and skipped.
func (k *KafkaConsumer) Consume(ctx context.Context) (*models.LogEvent, func(success bool), error) {
	msg, err := k.reader.FetchMessage(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, fmt.Errorf("kafka fetch from %s failed: %w", k.topic, err)
	}

	k.offsets.fetched(msg)

	event, err := DecodeEvent(msg.Value)
	if err != nil {
		k.logger.Printf("Kafka consumer: skipping partition %d offset %d: %v", msg.Partition, msg.Offset, err)
		k.settle(msg, "", true)
		return nil, nil, err
	}

	return event, func(success bool) { k.settle(msg, event.EventID, success) }, nil
}

// settle commits as far as the tracker allows. After a failure nothing past it on
// the partition is committed, so it is redelivered after a rebalance or restart.
func (k *KafkaConsumer) settle(msg kafka.Message, eventID string, success bool) {
	commit, blocked := k.offsets.done(msg, success)
	if !success {
		k.logger.Printf("Kafka consumer: event %s not archived, partition %d held at offset %d", eventID, msg.Partition, msg.Offset)
	} else if blocked {
		k.logger.Printf("Kafka consumer: offset %d archived but partition %d is held by an earlier failure", msg.Offset, msg.Partition)
	}
	if commit == nil {
		return
	}
	if err := k.reader.CommitMessages(context.Background(), *commit); err != nil {
		k.logger.Printf("Kafka consumer: commit of partition %d offset %d failed: %v", commit.Partition, commit.Offset, err)
	}
}

// Close leaves the group and closes the reader
func (k *KafkaConsumer) Close() error {
	k.logger.Printf("Kafka consumer on %s closing", k.topic)
	return k.reader.Close()
}

var _ Consumer = (*KafkaConsumer)(nil)
