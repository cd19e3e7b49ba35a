package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sana-bookkeeping/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. A non-nil error leaves the offset
// uncommitted so the message is seen again or dead lettered by the handler.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer is the message queue subscription used by the reconciler.
type Consumer interface {
	Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error
	Close() error
}

// KafkaConsumer reads the reconciliation topic within a consumer group.
type KafkaConsumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	return &KafkaConsumer{
		logger: logger,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       cfg.ReconciliationTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: kafka.FirstOffset,
		}),
	}
}

// Subscribe starts the fetch loop in its own goroutine and returns. The loop
// runs until ctx is canceled.
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error {
	c.logger.Info("Joining consumer group", "topic", topic, "group_id", groupID)

	go c.run(ctx, topic, groupID, handler)
	return nil
}

func (c *KafkaConsumer) run(ctx context.Context, topic string, groupID string, handler MessageHandler) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Consumer stopping", "topic", topic, "group_id", groupID)
				return
			}
			c.logger.Error("Fetch from Kafka failed", "topic", topic, "group_id", groupID, "error", err)
			time.Sleep(time.Second)
			continue
		}

		logAttrs := []any{
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.String("key", string(msg.Key)),
		}
		c.logger.Debug("Message received", logAttrs...)

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			// Leave the offset alone so the message can be retried or
			// dead lettered on a later delivery.
			c.logger.Error("Handler failed, offset not committed", append(logAttrs, slog.Any("error", err))...)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Offset commit failed", append(logAttrs, slog.Any("error", err))...)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
