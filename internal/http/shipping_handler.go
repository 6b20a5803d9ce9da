package http

import (
	"encoding/json"
	"net/http"

	"github.com/artelar/shop/internal/shipping"
)

type ShippingHandler struct {
	cart             CartService
	quoter           shipping.Quoter
	originPostalCode string
}

func NewShippingHandler(cart CartService, quoter shipping.Quoter, originPostalCode string) *ShippingHandler {
	return &ShippingHandler{
		cart:             cart,
		quoter:           quoter,
		originPostalCode: originPostalCode,
	}
}

type ShippingQuoteRequestDTO struct {
	DestinationPostalCode string `json:"destination_postal_code"`
}

// Quote returns carrier options for the caller's current cart.
func (h *ShippingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req ShippingQuoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.DestinationPostalCode == "" {
		respondError(w, http.StatusBadRequest, "invalid_postal_code", "destination_postal_code is required")
		return
	}

	cart, err := h.cart.GetCart(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if len(cart.Items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "cannot quote shipping for an empty cart")
		return
	}

	packages := shipping.PackagesFor(cart.Items)
	options, err := h.quoter.Quote(r.Context(), h.originPostalCode, req.DestinationPostalCode, packages)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, options)
}
