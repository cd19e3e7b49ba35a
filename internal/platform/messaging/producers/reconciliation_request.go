package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sana-bookkeeping/internal/config"
	"github.com/segmentio/kafka-go"
)

// ReconciliationReqMessageProducer publishes reconciliation requests from the
// API gateway onto the topic the reconciler consumes.
type ReconciliationReqMessageProducer struct {
	logger *slog.Logger
	writer messageWriter
	topic  string
}

// NewReconciliationReqMessageProducer dials the broker, makes sure the topic
// exists and returns a producer writing to it asynchronously.
func NewReconciliationReqMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ReconciliationReqMessageProducer, error) {
	if cfg.ReconciliationTopic == "" {
		return nil, fmt.Errorf("kafka reconciliation topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("dial kafka for reconciliation producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, logger, cfg.ReconciliationTopic, cfg.NumPartitions, cfg.ReplicationFactor); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ReconciliationTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Upload latency should not pay for broker round trips
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Async write to reconciliation topic failed", "topic", cfg.ReconciliationTopic, "count", len(messages), "error", err)
			}
		},
	}

	return &ReconciliationReqMessageProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ReconciliationTopic,
	}, nil
}

// Publish marshals value to JSON and writes it keyed by key, so requests for
// the same document land on the same partition.
func (p *ReconciliationReqMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal reconciliation request: %w", err)
	}

	msg := kafka.Message{Key: []byte(key), Value: payload}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish reconciliation request", "topic", p.topic, "key", key, "error", err)
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published reconciliation request", "topic", p.topic, "key", key)
	return nil
}

func (p *ReconciliationReqMessageProducer) Close() error {
	p.logger.Info("Closing reconciliation producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", p.topic, err)
	}
	return nil
}
