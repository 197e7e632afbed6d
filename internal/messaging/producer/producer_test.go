package producer

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetyhub/config"
	"safetyhub/internal/models"
)

// fakeProducer records events and fails while failing is set
type fakeProducer struct {
	mu      sync.Mutex
	failing bool
	calls   int
	events  []*models.LogEvent
	closed  bool
}

func (f *fakeProducer) Publish(ctx context.Context, event *models.LogEvent) error {
	return f.PublishBatch(ctx, []*models.LogEvent{event})
}

func (f *fakeProducer) PublishBatch(_ context.Context, events []*models.LogEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing {
		return errors.New("broker unavailable")
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func (f *fakeProducer) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *fakeProducer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testEvent(id string) *models.LogEvent {
	return models.NewLogEvent(id, models.LogEntry{Text: "t-" + id, Category: "c"}, time.Unix(0, 0))
}

func TestBreakerProducer_PassesThrough(t *testing.T) {
	next := &fakeProducer{}
	p := NewBreakerProducer(next, 3, time.Minute, log.New(io.Discard, "", 0))

	require.NoError(t, p.Publish(context.Background(), testEvent("a")))
	require.NoError(t, p.PublishBatch(context.Background(), []*models.LogEvent{testEvent("b"), testEvent("c")}))

	assert.Len(t, next.events, 3)
	assert.Equal(t, gobreaker.StateClosed, p.State())

	require.NoError(t, p.Close())
	assert.True(t, next.closed)
}

func TestBreakerProducer_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &fakeProducer{failing: true}
	p := NewBreakerProducer(next, 2, time.Minute, log.New(io.Discard, "", 0))
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, testEvent("1")))
	assert.Error(t, p.Publish(ctx, testEvent("2")))
	assert.Equal(t, gobreaker.StateOpen, p.State())

	err := p.Publish(ctx, testEvent("3"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, next.callCount(), "open breaker must not reach the producer")
}

func TestBreakerProducer_RecoversAfterCooldown(t *testing.T) {
	next := &fakeProducer{failing: true}
	p := NewBreakerProducer(next, 1, 20*time.Millisecond, log.New(io.Discard, "", 0))
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, testEvent("1")))
	require.Equal(t, gobreaker.StateOpen, p.State())

	next.setFailing(false)
	require.Eventually(t, func() bool {
		return p.State() == gobreaker.StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Publish(ctx, testEvent("2")))
	assert.Equal(t, gobreaker.StateClosed, p.State())
}

func TestEncodeEvent(t *testing.T) {
	event := models.NewLogEvent("evt-1", models.LogEntry{Text: "hello", Category: "note"}, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	msg, err := EncodeEvent(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("evt-1"), msg.Key)
	assert.JSONEq(t, `{"event_id":"evt-1","text":"hello","category":"note","saved_at":"2024-01-02T03:04:05Z"}`, string(msg.Value))
}

func TestNewKafkaProducer_RequiresBrokersAndTopic(t *testing.T) {
	logger := log.New(io.Discard, "", 0)

	_, err := NewKafkaProducer(config.KafkaProducerConfig{Topic: "t"}, logger)
	assert.Error(t, err)

	_, err = NewKafkaProducer(config.KafkaProducerConfig{Brokers: []string{"localhost:9092"}}, logger)
	assert.Error(t, err)
}

func TestNewKafkaProducer_NoDialOnCreate(t *testing.T) {
	p, err := NewKafkaProducer(config.KafkaProducerConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "safety-logs",
		RequiredAcks: "all",
	}, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	assert.Equal(t, "safety-logs", p.writer.Topic)
	assert.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.NoError(t, p.Close())
}
