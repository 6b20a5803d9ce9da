package notification

import "context"

// Template names the transactional email kinds the storefront sends.
type Template string

const (
	TemplateOrderConfirmation Template = "orderConfirmation"
	TemplateAdminNewOrder     Template = "adminNewOrder"
	TemplateOrderShipped      Template = "orderShipped"
	TemplateOrderDelivered    Template = "orderDelivered"
	TemplateOrderCancelled    Template = "orderCancelled"
)

// Email is the payload carried through the outbox and Kafka to the mailer.
type Email struct {
	To       string            `json:"to"`
	Template Template          `json:"template"`
	Data     map[string]string `json:"data,omitempty"`
}

// Mailer delivers one transactional email. Delivery is best-effort from
// the order lifecycle's point of view: a send failure never touches order
// state.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}
