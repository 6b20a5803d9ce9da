package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	cartrepo "github.com/artelar/shop/internal/cart/repository"
	cartservice "github.com/artelar/shop/internal/cart/service"
	"github.com/artelar/shop/internal/order/domain"
	orderrepo "github.com/artelar/shop/internal/order/repository"
	orderservice "github.com/artelar/shop/internal/order/service"
	"github.com/artelar/shop/internal/payment"
	"github.com/artelar/shop/internal/pricing"
	"github.com/artelar/shop/internal/shipping"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleServiceError maps the error taxonomy to HTTP status codes so
// callers can tell "fix your input" from "not found" from "collaborator
// down".
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrUnknownArrangement),
		errors.Is(err, pricing.ErrUnknownSize),
		errors.Is(err, pricing.ErrUnknownImageMode),
		errors.Is(err, pricing.ErrImageCountMismatch),
		errors.Is(err, orderservice.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, "invalid_configuration", err.Error())

	case errors.Is(err, cartservice.ErrItemNotFound),
		errors.Is(err, cartrepo.ErrCartNotFound),
		errors.Is(err, orderrepo.ErrOrderNotFound),
		errors.Is(err, payment.ErrPaymentNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, orderservice.ErrRefundNotAllowed),
		errors.Is(err, orderrepo.ErrDuplicateOrder):
		respondError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, payment.ErrInvalidSignature):
		respondError(w, http.StatusUnauthorized, "invalid_signature", "webhook signature mismatch")

	case errors.Is(err, shipping.ErrNoOptions):
		respondError(w, http.StatusUnprocessableEntity, "no_shipping_options", err.Error())

	default:
		respondError(w, http.StatusBadGateway, "collaborator_error", err.Error())
	}
}
