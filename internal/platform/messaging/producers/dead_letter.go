package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sana-bookkeeping/internal/config"
	"github.com/segmentio/kafka-go"
)

// DLQProducer parks unprocessable reconciliation messages on the dead letter
// topic so they are kept for inspection instead of being retried forever.
type DLQProducer struct {
	logger *slog.Logger
	writer messageWriter
	topic  string
}

// deadLetter is the envelope written to the DLQ around the original message.
type deadLetter struct {
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	DLQReason     string `json:"dlq_reason"`
	Timestamp     string `json:"timestamp"`
}

// NewDLQProducer returns (nil, nil) when no DLQ topic is configured; callers
// treat a nil producer as the feature being switched off.
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("No DLQ topic configured, dead lettering disabled")
		return nil, nil
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("dial kafka for dlq producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, logger, cfg.DLQTopic, cfg.NumPartitions, cfg.ReplicationFactor); err != nil {
		return nil, err
	}

	// Dead letters are the last copy of a failed message, so writes are
	// synchronous and wait for the full ISR.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DLQTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &DLQProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.DLQTopic,
	}, nil
}

func (p *DLQProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	if p == nil || p.writer == nil {
		return fmt.Errorf("dlq producer not initialized")
	}

	payload, err := json.Marshal(deadLetter{
		OriginalKey:   key,
		OriginalValue: string(originalMessageValue),
		DLQReason:     reason,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   payload,
		Headers: []kafka.Header{{Key: "dlq-reason", Value: []byte(reason)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish to DLQ", "topic", p.topic, "key", key, "error", err)
		return fmt.Errorf("publish to dlq %s: %w", p.topic, err)
	}

	p.logger.Info("Message parked on DLQ", "topic", p.topic, "key", key, "reason", reason)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing DLQ producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close dlq writer for %s: %w", p.topic, err)
	}
	return nil
}
