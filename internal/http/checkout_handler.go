package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	cartdomain "github.com/artelar/shop/internal/cart/domain"
	"github.com/artelar/shop/internal/order/domain"
	"github.com/artelar/shop/internal/payment"
	"github.com/google/uuid"
)

// OrderService is the slice of the order service the HTTP layer needs.
type OrderService interface {
	Create(ctx context.Context, order *domain.Order) error
	Approve(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to domain.Status) (*domain.Order, error)
	SetTrackingCode(ctx context.Context, id uuid.UUID, code string) error
	RequestRefund(ctx context.Context, id uuid.UUID, reason string, photoURLs []string) error
	ListByCustomerEmail(ctx context.Context, email string) ([]*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type CheckoutHandler struct {
	cart     CartService
	orders   OrderService
	payments payment.Client
}

func NewCheckoutHandler(cart CartService, orders OrderService, payments payment.Client) *CheckoutHandler {
	return &CheckoutHandler{
		cart:     cart,
		orders:   orders,
		payments: payments,
	}
}

type CheckoutRequestDTO struct {
	Customer struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		DocType   string `json:"doc_type"`
		DocNumber string `json:"doc_number"`
	} `json:"customer"`
	ShippingAddress domain.Address `json:"shipping_address"`
	Shipping        struct {
		CarrierID             string  `json:"carrier_id"`
		ServiceName           string  `json:"service_name"`
		Price                 float64 `json:"price"`
		EstimatedDeliveryDays int     `json:"estimated_delivery_days"`
	} `json:"shipping"`
	Method       string `json:"method"` // pix or card
	CardToken    string `json:"card_token,omitempty"`
	Installments int    `json:"installments,omitempty"`
}

type CheckoutResponseDTO struct {
	OrderID       string `json:"order_id"`
	OrderStatus   string `json:"order_status"`
	PaymentID     string `json:"payment_id"`
	PaymentStatus string `json:"payment_status"`
	StatusDetail  string `json:"status_detail,omitempty"`
	PixQRCode     string `json:"pix_qr_code,omitempty"`
}

// ProcessPayment runs the whole checkout: freeze the cart into an order,
// charge the gateway with an idempotency key, approve synchronously when
// the gateway does, and clear the cart once the charge exists.
func (h *CheckoutHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if msg := validateCheckout(&req); msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_checkout", msg)
		return
	}

	cart, err := h.cart.GetCart(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if len(cart.Items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty, nothing to checkout")
		return
	}

	order := buildOrder(cart, &req)
	if errCreate := h.orders.Create(r.Context(), order); errCreate != nil {
		handleServiceError(w, errCreate)
		return
	}

	pay, errPay := h.payments.CreatePayment(r.Context(), payment.CreatePaymentRequest{
		Amount:       order.Payment.Total,
		Method:       req.Method,
		Token:        req.CardToken,
		Installments: req.Installments,
		Payer: payment.Payer{
			Email:     req.Customer.Email,
			DocType:   req.Customer.DocType,
			DocNumber: req.Customer.DocNumber,
		},
		OrderRef: order.ID.String(),
		// Keyed on the order so a retried checkout of the same order never
		// charges twice.
		IdempotencyKey: "checkout-" + order.ID.String(),
	})
	if errPay != nil {
		// The Pendente order stays behind for reconciliation; the charge
		// never happened.
		handleServiceError(w, errPay)
		return
	}

	orderStatus := order.Status
	if pay.Status == payment.StatusApproved {
		approved, errApprove := h.orders.Approve(r.Context(), order.ID)
		if errApprove != nil {
			log.Printf("approve after synchronous payment failed for order %s: %v", order.ID, errApprove)
		} else {
			orderStatus = approved.Status
		}
	}

	// Checkout handoff succeeded, the cart is done.
	if errClear := h.cart.ClearCart(r.Context(), sessionID); errClear != nil {
		log.Printf("clear cart after checkout failed for session %s: %v", sessionID, errClear)
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID:       order.ID.String(),
		OrderStatus:   string(orderStatus),
		PaymentID:     pay.ID,
		PaymentStatus: pay.Status,
		StatusDetail:  pay.StatusDetail,
		PixQRCode:     pay.PixQRCode,
	})
}

func validateCheckout(req *CheckoutRequestDTO) string {
	if req.Customer.Name == "" || req.Customer.Email == "" {
		return "customer name and email are required"
	}
	if req.Customer.DocNumber == "" {
		return "customer document is required"
	}
	if req.ShippingAddress.PostalCode == "" {
		return "shipping address postal code is required"
	}
	if req.Shipping.ServiceName == "" || req.Shipping.Price < 0 {
		return "a shipping selection is required"
	}
	if req.Method != "pix" && req.Method != "card" {
		return "method must be pix or card"
	}
	if req.Method == "card" && req.CardToken == "" {
		return "card_token is required for card payment"
	}
	return ""
}

func buildOrder(cart *cartdomain.Cart, req *CheckoutRequestDTO) *domain.Order {
	items := make([]domain.OrderItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = domain.OrderItem{
			ID:                 item.ID,
			Name:               item.Name,
			UnitPrice:          item.UnitPrice,
			Quantity:           item.Quantity,
			ImageRef:           item.ImageRef,
			OptionsDescription: item.OptionsDescription,
			CustomImageRefs:    item.CustomImageRefs,
		}
	}

	subtotal := cart.Subtotal()
	shippingCost := req.Shipping.Price

	var total float64
	if req.Method == "pix" {
		total = cart.InstantTotal(shippingCost)
	} else {
		total = cart.CardTotal(shippingCost)
	}

	return &domain.Order{
		Customer: domain.Customer{
			Name:      req.Customer.Name,
			Email:     req.Customer.Email,
			DocType:   req.Customer.DocType,
			DocNumber: req.Customer.DocNumber,
		},
		ShippingAddress: req.ShippingAddress,
		Shipping: domain.ShippingSelection{
			CarrierID:             req.Shipping.CarrierID,
			ServiceName:           req.Shipping.ServiceName,
			Price:                 req.Shipping.Price,
			EstimatedDeliveryDays: req.Shipping.EstimatedDeliveryDays,
		},
		Items: items,
		Payment: domain.PaymentInfo{
			Subtotal:     subtotal,
			ShippingCost: shippingCost,
			Total:        total,
			Method:       req.Method,
		},
	}
}
