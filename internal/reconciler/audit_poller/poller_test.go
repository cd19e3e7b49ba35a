package audit_poller

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/config"
	"github.com/sana-bookkeeping/internal/domain/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOutboxRepo for testing
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *audit.OutboxMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*audit.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status audit.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) audit.OutboxRepository {
	return m
}

// MockRecordPublisher for testing
type MockRecordPublisher struct {
	mock.Mock
}

func (m *MockRecordPublisher) PublishRecord(ctx context.Context, message *audit.OutboxMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func pendingMessage(t *testing.T, id int64, attempts int) *audit.OutboxMessage {
	t.Helper()
	record, err := audit.NewRecord(uuid.New(), uuid.New(), audit.ActionEntrySuggested, "entry", uuid.New(), nil, "corr1")
	require.NoError(t, err)
	message, err := audit.NewOutboxMessage(record)
	require.NoError(t, err)
	message.ID = id
	message.Attempts = attempts
	return message
}

func pollerConfig() *config.AuditTrailConfig {
	return &config.AuditTrailConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	mockRepo := &MockOutboxRepo{}
	mockPublisher := &MockRecordPublisher{}
	poller := NewPoller(pollerConfig(), mockRepo, mockPublisher, slog.Default())

	message := pendingMessage(t, 1, 0)
	mockRepo.On("GetPending", mock.Anything, 10).Return([]*audit.OutboxMessage{message}, nil)
	mockPublisher.On("PublishRecord", mock.Anything, message).Return(nil)

	err := poller.processPendingMessages(context.Background())
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestPoller_NoPendingMessages(t *testing.T) {
	mockRepo := &MockOutboxRepo{}
	mockPublisher := &MockRecordPublisher{}
	poller := NewPoller(pollerConfig(), mockRepo, mockPublisher, slog.Default())

	mockRepo.On("GetPending", mock.Anything, 10).Return([]*audit.OutboxMessage{}, nil)

	err := poller.processPendingMessages(context.Background())
	assert.NoError(t, err)
	mockPublisher.AssertNotCalled(t, "PublishRecord", mock.Anything, mock.Anything)
}

func TestPoller_PublishFailureIncrementsAttempts(t *testing.T) {
	mockRepo := &MockOutboxRepo{}
	mockPublisher := &MockRecordPublisher{}
	poller := NewPoller(pollerConfig(), mockRepo, mockPublisher, slog.Default())

	message := pendingMessage(t, 2, 0)
	mockRepo.On("GetPending", mock.Anything, 10).Return([]*audit.OutboxMessage{message}, nil)
	mockPublisher.On("PublishRecord", mock.Anything, message).Return(errors.New("mongo down"))
	mockRepo.On("IncrementAttempts", mock.Anything, int64(2)).Return(nil)

	err := poller.processPendingMessages(context.Background())
	assert.NoError(t, err)
	mockRepo.AssertCalled(t, "IncrementAttempts", mock.Anything, int64(2))
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestPoller_MaxRetriesMarksFailed(t *testing.T) {
	mockRepo := &MockOutboxRepo{}
	mockPublisher := &MockRecordPublisher{}
	poller := NewPoller(pollerConfig(), mockRepo, mockPublisher, slog.Default())

	// Third failed attempt reaches the attempts limit
	message := pendingMessage(t, 3, 2)
	mockRepo.On("GetPending", mock.Anything, 10).Return([]*audit.OutboxMessage{message}, nil)
	mockPublisher.On("PublishRecord", mock.Anything, message).Return(errors.New("mongo down"))
	mockRepo.On("IncrementAttempts", mock.Anything, int64(3)).Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, int64(3), audit.OutboxStatusFailed).Return(nil)

	err := poller.processPendingMessages(context.Background())
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestPoller_GetPendingError(t *testing.T) {
	mockRepo := &MockOutboxRepo{}
	mockPublisher := &MockRecordPublisher{}
	poller := NewPoller(pollerConfig(), mockRepo, mockPublisher, slog.Default())

	mockRepo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("connection refused"))

	err := poller.processPendingMessages(context.Background())
	assert.Error(t, err)
}

func TestPoller_StartStopsOnContextCancel(t *testing.T) {
	mockRepo := &MockOutboxRepo{}
	mockPublisher := &MockRecordPublisher{}
	cfg := pollerConfig()
	cfg.PollingInterval = 10 * time.Millisecond
	poller := NewPoller(cfg, mockRepo, mockPublisher, slog.Default())

	mockRepo.On("GetPending", mock.Anything, 10).Return([]*audit.OutboxMessage{}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
