package domain

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	DocType   string `json:"doc_type"` // CPF or CNPJ
	DocNumber string `json:"doc_number"`
}

type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// ShippingSelection is the quote the customer picked at checkout, frozen
// onto the order. EstimatedDeliveryDays drives the automatic
// shipped-to-delivered advance.
type ShippingSelection struct {
	CarrierID             string  `json:"carrier_id"`
	ServiceName           string  `json:"service_name"`
	Price                 float64 `json:"price"`
	EstimatedDeliveryDays int     `json:"estimated_delivery_days"`
}

type PaymentInfo struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shipping_cost"`
	Total        float64 `json:"total"`
	Method       string  `json:"method"` // pix or card
	GatewayID    string  `json:"gateway_id,omitempty"`
}

// OrderItem is a frozen copy of a cart line item at checkout time, not a
// live reference to the cart.
type OrderItem struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	UnitPrice          float64  `json:"unit_price"`
	Quantity           int      `json:"quantity"`
	ImageRef           string   `json:"image_ref,omitempty"`
	OptionsDescription string   `json:"options_description,omitempty"`
	CustomImageRefs    []string `json:"custom_image_refs,omitempty"`
}

type Order struct {
	ID               uuid.UUID
	Customer         Customer
	ShippingAddress  Address
	Shipping         ShippingSelection
	Items            []OrderItem
	Payment          PaymentInfo
	Status           Status
	TrackingCode     string
	RefundReason     string
	RefundPhotoURLs  []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ShippedAt        *time.Time
}

// DeliveryEstimateElapsed reports whether the shipping window has passed.
// Only meaningful for shipped orders with a recorded ship date and a known
// carrier estimate.
func (o *Order) DeliveryEstimateElapsed(now time.Time) bool {
	if o.Status != StatusShipped || o.ShippedAt == nil || o.Shipping.EstimatedDeliveryDays <= 0 {
		return false
	}
	deadline := o.ShippedAt.AddDate(0, 0, o.Shipping.EstimatedDeliveryDays)
	return now.After(deadline)
}
