package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/artelar/shop/internal/order/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	orders OrderService
}

func NewOrdersHandler(orders OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

type OrderResponseDTO struct {
	ID              string                   `json:"id"`
	Customer        domain.Customer          `json:"customer"`
	ShippingAddress domain.Address           `json:"shipping_address"`
	Shipping        domain.ShippingSelection `json:"shipping"`
	Items           []domain.OrderItem       `json:"items"`
	Payment         domain.PaymentInfo       `json:"payment"`
	Status          string                   `json:"status"`
	TrackingCode    string                   `json:"tracking_code,omitempty"`
	RefundReason    string                   `json:"refund_reason,omitempty"`
	RefundPhotoURLs []string                 `json:"refund_photo_urls,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	ShippedAt       *time.Time               `json:"shipped_at,omitempty"`
}

type RefundRequestDTO struct {
	Reason    string   `json:"reason"`
	PhotoURLs []string `json:"photo_urls,omitempty"`
}

func toOrderDTO(o *domain.Order) OrderResponseDTO {
	return OrderResponseDTO{
		ID:              o.ID.String(),
		Customer:        o.Customer,
		ShippingAddress: o.ShippingAddress,
		Shipping:        o.Shipping,
		Items:           o.Items,
		Payment:         o.Payment,
		Status:          string(o.Status),
		TrackingCode:    o.TrackingCode,
		RefundReason:    o.RefundReason,
		RefundPhotoURLs: o.RefundPhotoURLs,
		CreatedAt:       o.CreatedAt,
		ShippedAt:       o.ShippedAt,
	}
}

func toOrderDTOs(orders []*domain.Order) []OrderResponseDTO {
	dtos := make([]OrderResponseDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	return dtos
}

// ListByEmail returns the customer's orders. Listing is also the moment
// shipped orders past their carrier estimate get promoted to delivered.
func (h *OrdersHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email query parameter is required")
		return
	}

	orders, err := h.orders.ListByCustomerEmail(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTOs(orders))
}

func (h *OrdersHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid order id")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

func (h *OrdersHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid order id")
		return
	}

	var req RefundRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Reason == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "a refund reason is required")
		return
	}

	if err := h.orders.RequestRefund(r.Context(), id, req.Reason, req.PhotoURLs); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": string(domain.StatusRefundRequested)})
}
