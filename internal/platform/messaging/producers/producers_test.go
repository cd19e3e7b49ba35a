package producers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageWriter struct {
	mock.Mock
}

func (m *MockMessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconciliationReqMessageProducer_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("WritesKeyedJSONMessage", func(t *testing.T) {
		writer := new(MockMessageWriter)
		producer := &ReconciliationReqMessageProducer{
			logger: discardLogger(),
			writer: writer,
			topic:  "reconciliation.requests",
		}

		request := &shared.ReconciliationRequest{
			DocumentID:  uuid.New(),
			CompanyID:   uuid.New(),
			RequestedBy: uuid.New(),
			Timestamp:   time.Now().UTC(),
		}
		wantValue, err := json.Marshal(request)
		require.NoError(t, err)
		key := request.DocumentID.String()

		writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 &&
				string(msgs[0].Key) == key &&
				string(msgs[0].Value) == string(wantValue)
		})).Return(nil).Once()

		require.NoError(t, producer.Publish(ctx, key, request))
		writer.AssertExpectations(t)
	})

	t.Run("SurfacesWriterError", func(t *testing.T) {
		writer := new(MockMessageWriter)
		producer := &ReconciliationReqMessageProducer{
			logger: discardLogger(),
			writer: writer,
			topic:  "reconciliation.requests",
		}

		writer.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).
			Return(errors.New("broker unavailable")).Once()

		err := producer.Publish(ctx, "doc-1", map[string]string{"k": "v"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconciliation.requests")
		writer.AssertExpectations(t)
	})

	t.Run("RejectsUnmarshalableValue", func(t *testing.T) {
		producer := &ReconciliationReqMessageProducer{
			logger: discardLogger(),
			writer: new(MockMessageWriter),
			topic:  "reconciliation.requests",
		}

		err := producer.Publish(ctx, "doc-1", make(chan int))
		require.Error(t, err)
	})
}

func TestDLQProducer_PublishToDLQ(t *testing.T) {
	ctx := context.Background()

	t.Run("WrapsOriginalMessage", func(t *testing.T) {
		writer := new(MockMessageWriter)
		producer := &DLQProducer{
			logger: discardLogger(),
			writer: writer,
			topic:  "reconciliation.dlq",
		}

		original := []byte(`{"document_id":"abc"}`)
		writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			var envelope deadLetter
			if err := json.Unmarshal(msgs[0].Value, &envelope); err != nil {
				return false
			}
			return envelope.OriginalKey == "doc-1" &&
				envelope.OriginalValue == string(original) &&
				envelope.DLQReason == "unmarshal failed" &&
				len(msgs[0].Headers) == 1 &&
				msgs[0].Headers[0].Key == "dlq-reason"
		})).Return(nil).Once()

		require.NoError(t, producer.PublishToDLQ(ctx, "doc-1", original, "unmarshal failed"))
		writer.AssertExpectations(t)
	})

	t.Run("NilProducerReturnsError", func(t *testing.T) {
		var producer *DLQProducer
		err := producer.PublishToDLQ(ctx, "doc-1", nil, "whatever")
		require.Error(t, err)
	})

	t.Run("NilProducerCloseIsNoop", func(t *testing.T) {
		var producer *DLQProducer
		require.NoError(t, producer.Close())
	})
}
