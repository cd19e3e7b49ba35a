package consumers

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sana-bookkeeping/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaConsumer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.KafkaConfig{
		Brokers:             "localhost:9092",
		ReconciliationTopic: "reconciliation.requests",
		ConsumerGroup:       "reconciler",
		MinBytes:            1024,
		MaxBytes:            1048576,
		MaxWait:             time.Second,
	}

	consumer := NewKafkaConsumer(context.Background(), logger, cfg)
	require.NotNil(t, consumer)
	require.NotNil(t, consumer.reader)
	assert.Equal(t, logger, consumer.logger)
}

func TestKafkaConsumer_Close(t *testing.T) {
	t.Run("NilReaderIsNoop", func(t *testing.T) {
		consumer := &KafkaConsumer{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
		require.NoError(t, consumer.Close())
	})
}
