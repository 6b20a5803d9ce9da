package service

import (
	"context"
	"time"

	"github.com/artelar/shop/internal/order/domain"
	"github.com/artelar/shop/internal/order/repository"
	"github.com/google/uuid"
)

// MockRepository implements repository.OrderRepository for testing
type MockRepository struct {
	Orders map[uuid.UUID]*domain.Order

	CreateErr error
	GetErr    error
	UpdateErr error

	StatusUpdates  []StatusUpdate
	TrackingCodes  map[uuid.UUID]string
	RecordedEvents []repository.OutboxEvent
	Refunds        map[uuid.UUID]RefundRecord
}

type StatusUpdate struct {
	OrderID   uuid.UUID
	Status    domain.Status
	ShippedAt *time.Time
}

type RefundRecord struct {
	Reason    string
	PhotoURLs []string
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		Orders:        make(map[uuid.UUID]*domain.Order),
		TrackingCodes: make(map[uuid.UUID]string),
		Refunds:       make(map[uuid.UUID]RefundRecord),
	}
}

func (m *MockRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.Orders[order.ID]; ok {
		return repository.ErrDuplicateOrder
	}
	m.Orders[order.ID] = order
	return nil
}

func (m *MockRepository) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	order, ok := m.Orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *MockRepository) ListOrdersByCustomerEmail(_ context.Context, email string) ([]*domain.Order, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var orders []*domain.Order
	for _, order := range m.Orders {
		if order.Customer.Email == email {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (m *MockRepository) ListOrders(_ context.Context) ([]*domain.Order, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var orders []*domain.Order
	for _, order := range m.Orders {
		orders = append(orders, order)
	}
	return orders, nil
}

func (m *MockRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status, shippedAt *time.Time, events []repository.OutboxEvent) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	order, ok := m.Orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	if shippedAt != nil {
		order.ShippedAt = shippedAt
	}
	m.StatusUpdates = append(m.StatusUpdates, StatusUpdate{id, status, shippedAt})
	m.RecordedEvents = append(m.RecordedEvents, events...)
	return nil
}

func (m *MockRepository) SetTrackingCode(_ context.Context, id uuid.UUID, code string, events []repository.OutboxEvent) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	order, ok := m.Orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.TrackingCode = code
	m.TrackingCodes[id] = code
	m.RecordedEvents = append(m.RecordedEvents, events...)
	return nil
}

func (m *MockRepository) SetRefund(_ context.Context, id uuid.UUID, reason string, photoURLs []string) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	order, ok := m.Orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = domain.StatusRefundRequested
	order.RefundReason = reason
	order.RefundPhotoURLs = photoURLs
	m.Refunds[id] = RefundRecord{reason, photoURLs}
	return nil
}

func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	return nil, nil
}

func (m *MockRepository) MarkEventAsProcessed(context.Context, int64) error {
	return nil
}

func (m *MockRepository) Close() error {
	return nil
}
