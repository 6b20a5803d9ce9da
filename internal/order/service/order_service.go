package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/artelar/shop/internal/notification"
	"github.com/artelar/shop/internal/order/domain"
	"github.com/artelar/shop/internal/order/repository"
	"github.com/google/uuid"
)

var (
	ErrRefundNotAllowed = errors.New("order is not eligible for a refund request")
	ErrUnknownStatus    = errors.New("unknown order status")
)

// OrderService drives the order lifecycle. Status writes are the source of
// truth; notifications ride the outbox and are delivered best-effort
// downstream.
type OrderService struct {
	repo       repository.OrderRepository
	adminEmail string
	now        func() time.Time
}

func NewOrderService(repo repository.OrderRepository, adminEmail string) *OrderService {
	return &OrderService{
		repo:       repo,
		adminEmail: adminEmail,
		now:        time.Now,
	}
}

// Create persists a fresh order in Pendente, before any payment outcome
// is known.
func (s *OrderService) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.Status = domain.StatusPending

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// Approve moves a pending order to Aprovado once the gateway confirms the
// payment, enqueueing the confirmation email for the customer and the
// new-order notice for the store admin.
func (s *OrderService) Approve(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == domain.StatusApproved {
		return order, nil // webhook retries are expected, approval is idempotent
	}
	if !domain.CanTransition(order.Status, domain.StatusApproved) {
		return nil, domain.ErrIllegalTransition
	}

	events := []repository.OutboxEvent{
		s.emailEvent(order, notification.TemplateOrderConfirmation, order.Customer.Email),
		s.emailEvent(order, notification.TemplateAdminNewOrder, s.adminEmail),
	}

	if errUpdate := s.repo.UpdateStatus(ctx, id, domain.StatusApproved, nil, events); errUpdate != nil {
		return nil, errUpdate
	}

	order.Status = domain.StatusApproved
	return order, nil
}

// UpdateStatus applies an admin-selected status change, guarded by the
// transition table. Entering A caminho records the ship date.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, to domain.Status) (*domain.Order, error) {
	if !to.Valid() {
		return nil, ErrUnknownStatus
	}

	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Status, to) {
		return nil, domain.ErrIllegalTransition
	}

	var shippedAt *time.Time
	if to == domain.StatusShipped {
		now := s.now()
		shippedAt = &now
	}

	var events []repository.OutboxEvent
	if template, ok := statusTemplate(to); ok {
		events = append(events, s.emailEvent(order, template, order.Customer.Email))
	}

	if errUpdate := s.repo.UpdateStatus(ctx, id, to, shippedAt, events); errUpdate != nil {
		return nil, errUpdate
	}

	order.Status = to
	if shippedAt != nil {
		order.ShippedAt = shippedAt
	}
	return order, nil
}

// SetTrackingCode stores the carrier code. Saving a code notifies the
// customer the order shipped even without an explicit status change.
func (s *OrderService) SetTrackingCode(ctx context.Context, id uuid.UUID, code string) error {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}

	// The email must carry the code being saved, not whatever was stored
	// before this call.
	order.TrackingCode = code

	events := []repository.OutboxEvent{
		s.emailEvent(order, notification.TemplateOrderShipped, order.Customer.Email),
	}

	return s.repo.SetTrackingCode(ctx, id, code, events)
}

// RequestRefund records a customer refund request. Eligibility is a pure
// predicate over the current status. No email goes out on this path.
func (s *OrderService) RequestRefund(ctx context.Context, id uuid.UUID, reason string, photoURLs []string) error {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}

	if !domain.CanRequestRefund(order.Status) {
		return ErrRefundNotAllowed
	}

	return s.repo.SetRefund(ctx, id, reason, photoURLs)
}

// ListByCustomerEmail returns the customer's orders, opportunistically
// advancing any shipped order whose delivery estimate has elapsed. The
// pass runs on every list fetch rather than on a server timer; an order
// nobody looks at can stay A caminho indefinitely.
func (s *OrderService) ListByCustomerEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	orders, err := s.repo.ListOrdersByCustomerEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, order := range orders {
		if !order.DeliveryEstimateElapsed(now) {
			continue
		}
		// No notification in the automatic path, only the status write.
		if errAdvance := s.repo.UpdateStatus(ctx, order.ID, domain.StatusDelivered, nil, nil); errAdvance != nil {
			log.Printf("auto-advance failed for order %s: %v", order.ID, errAdvance)
			continue
		}
		order.Status = domain.StatusDelivered
	}

	return orders, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.ListOrders(ctx)
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *OrderService) emailEvent(order *domain.Order, template notification.Template, to string) repository.OutboxEvent {
	email := notification.Email{
		To:       to,
		Template: template,
		Data: map[string]string{
			"order_id":      order.ID.String(),
			"customer_name": order.Customer.Name,
			"total":         fmt.Sprintf("%.2f", order.Payment.Total),
			"tracking_code": order.TrackingCode,
		},
	}

	payload, err := json.Marshal(email)
	if err != nil {
		// Email is a flat struct of strings, this cannot fail at runtime.
		log.Printf("marshal notification payload: %v", err)
	}

	return repository.OutboxEvent{
		OrderID:   order.ID,
		EventType: string(template),
		Payload:   payload,
	}
}

func statusTemplate(to domain.Status) (notification.Template, bool) {
	switch to {
	case domain.StatusShipped:
		return notification.TemplateOrderShipped, true
	case domain.StatusDelivered:
		return notification.TemplateOrderDelivered, true
	case domain.StatusCancelled:
		return notification.TemplateOrderCancelled, true
	}
	return "", false
}
