package http

import (
	"encoding/json"
	"net/http"

	"github.com/artelar/shop/internal/order/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AdminHandler struct {
	orders OrderService
}

func NewAdminHandler(orders OrderService) *AdminHandler {
	return &AdminHandler{orders: orders}
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

type TrackingCodeRequestDTO struct {
	TrackingCode string `json:"tracking_code"`
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderDTOs(orders))
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid order id")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, domain.Status(req.Status))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

func (h *AdminHandler) SetTrackingCode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid order id")
		return
	}

	var req TrackingCodeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.TrackingCode == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "tracking_code is required")
		return
	}

	if err := h.orders.SetTrackingCode(r.Context(), id, req.TrackingCode); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"tracking_code": req.TrackingCode})
}
