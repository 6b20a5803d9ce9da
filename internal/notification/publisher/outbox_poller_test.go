package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/artelar/shop/internal/order/repository"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOutboxRepo struct {
	repository.OrderRepository

	events       []*repository.OutboxEvent
	getErr       error
	markErr      error
	processedIDs []int64
}

func (m *mockOutboxRepo) GetUnprocessedEvents(_ context.Context, _ int) ([]*repository.OutboxEvent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.events, nil
}

func (m *mockOutboxRepo) MarkEventAsProcessed(_ context.Context, eventID int64) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.processedIDs = append(m.processedIDs, eventID)
	return nil
}

type mockWriter struct {
	messages []kafka.Message
	err      error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func outboxEvent(id int64, orderID uuid.UUID) *repository.OutboxEvent {
	return &repository.OutboxEvent{
		ID:        id,
		OrderID:   orderID,
		EventType: "orderShipped",
		Payload:   []byte(`{"to":"maria@example.com","template":"orderShipped"}`),
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	orderID := uuid.New()
	repo := &mockOutboxRepo{events: []*repository.OutboxEvent{
		outboxEvent(1, orderID),
		outboxEvent(2, orderID),
	}}
	writer := &mockWriter{}
	poller := &OutboxPoller{batchSize: 100, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, writer.messages, 2)
	assert.Equal(t, []byte(orderID.String()), writer.messages[0].Key)
	assert.Equal(t, []int64{1, 2}, repo.processedIDs)

	require.Len(t, writer.messages[0].Headers, 1)
	assert.Equal(t, "event_type", writer.messages[0].Headers[0].Key)
	assert.Equal(t, []byte("orderShipped"), writer.messages[0].Headers[0].Value)
}

func TestProcessUnpublishedEvents_PublishFailureLeavesEventPending(t *testing.T) {
	repo := &mockOutboxRepo{events: []*repository.OutboxEvent{outboxEvent(1, uuid.New())}}
	writer := &mockWriter{err: errors.New("broker down")}
	poller := &OutboxPoller{batchSize: 100, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	assert.Empty(t, repo.processedIDs)
}

func TestProcessUnpublishedEvents_FetchFailureIsSilentSkip(t *testing.T) {
	repo := &mockOutboxRepo{getErr: errors.New("db down")}
	writer := &mockWriter{}
	poller := &OutboxPoller{batchSize: 100, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	assert.Empty(t, writer.messages)
}

func TestProcessUnpublishedEvents_MarkFailureDoesNotStopBatch(t *testing.T) {
	repo := &mockOutboxRepo{
		events:  []*repository.OutboxEvent{outboxEvent(1, uuid.New()), outboxEvent(2, uuid.New())},
		markErr: errors.New("db down"),
	}
	writer := &mockWriter{}
	poller := &OutboxPoller{batchSize: 100, repo: repo, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	assert.Len(t, writer.messages, 2)
}
