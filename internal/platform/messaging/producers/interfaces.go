package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher pushes messages onto the reconciliation topic.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher parks messages that could not be processed so an
// operator can inspect and replay them.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// messageWriter is the slice of kafka.Writer the producers need. Tests swap
// in a recording implementation.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
