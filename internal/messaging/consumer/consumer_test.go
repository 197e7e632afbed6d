package consumer

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetyhub/config"
	"safetyhub/internal/models"
)

func testEvent(id string) *models.LogEvent {
	return models.NewLogEvent(id, models.LogEntry{Text: "t-" + id, Category: "c"}, time.Unix(0, 0))
}

func TestMockConsumer_AckAndNack(t *testing.T) {
	mc := NewMockConsumer(log.New(io.Discard, "", 0), testEvent("a"), testEvent("b"))
	ctx := context.Background()

	event, ack, err := mc.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", event.EventID)
	ack(true)

	event, ack, err = mc.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", event.EventID)
	ack(false)

	// nacked events come back
	event, ack, err = mc.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", event.EventID)
	ack(true)

	assert.Equal(t, []string{"a", "b"}, mc.Acked())
	assert.Equal(t, []string{"b"}, mc.Nacked())
}

func TestMockConsumer_ContextCancelled(t *testing.T) {
	mc := NewMockConsumer(log.New(io.Discard, "", 0))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := mc.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockConsumer_Close(t *testing.T) {
	mc := NewMockConsumer(log.New(io.Discard, "", 0), testEvent("a"))
	require.NoError(t, mc.Close())
	require.NoError(t, mc.Close())

	assert.False(t, mc.Push(testEvent("b")))

	// queued events drain before the closed error
	event, _, err := mc.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", event.EventID)

	_, _, err = mc.Consume(context.Background())
	assert.ErrorIs(t, err, ErrConsumerClosed)
}

func TestMockConsumer_Push(t *testing.T) {
	mc := NewMockConsumer(log.New(io.Discard, "", 0))
	require.True(t, mc.Push(testEvent("x")))

	event, _, err := mc.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", event.EventID)
}

func TestDecodeEvent(t *testing.T) {
	event, err := DecodeEvent([]byte(`{"event_id":"e1","text":"hello","category":"note","saved_at":"2024-01-02T03:04:05Z"}`))
	require.NoError(t, err)
	assert.Equal(t, models.LogEntry{Text: "hello", Category: "note"}, event.Entry())
	assert.Equal(t, "e1", event.EventID)

	_, err = DecodeEvent([]byte("{broken"))
	assert.ErrorContains(t, err, "deserialization failed")
}

func TestNewKafkaConsumer_RequiresConfig(t *testing.T) {
	_, err := NewKafkaConsumer(config.KafkaConsumerConfig{Brokers: []string{"localhost:9092"}}, log.New(io.Discard, "", 0))
	assert.Error(t, err)
}
