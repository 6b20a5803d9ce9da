package repository

import (
	"context"
	"errors"
	"time"

	"github.com/artelar/shop/internal/order/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is one pending notification recorded in the same transaction
// as the order write that caused it.
type OutboxEvent struct {
	ID        int64
	OrderID   uuid.UUID
	EventType string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// OrderRepository persists orders and their notification outbox. Writes
// are per-row atomic; there is no cross-order transaction and concurrent
// admins race last-write-wins.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByCustomerEmail(ctx context.Context, email string) ([]*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)

	// UpdateStatus writes the new status (and optionally the ship date) and
	// inserts the outbox events in one transaction.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, shippedAt *time.Time, events []OutboxEvent) error

	// SetTrackingCode stores the code and inserts the outbox events in one
	// transaction, leaving the status untouched.
	SetTrackingCode(ctx context.Context, id uuid.UUID, code string, events []OutboxEvent) error

	// SetRefund transitions the order to refund-requested storing reason and
	// photo URLs.
	SetRefund(ctx context.Context, id uuid.UUID, reason string, photoURLs []string) error

	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, eventID int64) error

	Close() error
}
