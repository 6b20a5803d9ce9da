package http

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/artelar/shop/internal/order/repository"
	"github.com/artelar/shop/internal/payment"
	"github.com/google/uuid"
)

type WebhookHandler struct {
	orders   OrderService
	payments payment.Client
	secret   string

	// retryDelay is how long to wait before the single retry when the
	// webhook races the checkout response and the order row is not yet
	// visible.
	retryDelay time.Duration
}

func NewWebhookHandler(orders OrderService, payments payment.Client, secret string) *WebhookHandler {
	return &WebhookHandler{
		orders:     orders,
		payments:   payments,
		secret:     secret,
		retryDelay: 2 * time.Second,
	}
}

// HandlePaymentWebhook processes gateway notifications. The payload is never
// trusted directly: after the signature check the payment is fetched back
// from the gateway and only its state drives the order.
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		// Without a secret no payload can be verified, so none is accepted.
		respondError(w, http.StatusServiceUnavailable, "webhook_not_configured", "webhook secret is not configured")
		return
	}

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "could not read body")
		return
	}

	notif, err := payment.ParseNotification(rawBody)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed webhook payload")
		return
	}

	errSig := payment.VerifySignature(
		h.secret,
		r.Header.Get("x-signature"),
		r.Header.Get("x-request-id"),
		notif.Data.ID,
		rawBody,
	)
	if errSig != nil {
		handleServiceError(w, errSig)
		return
	}

	if notif.Type != "payment" || notif.Data.ID == "" {
		// Other event kinds are acknowledged and dropped so the gateway
		// stops retrying them.
		w.WriteHeader(http.StatusOK)
		return
	}

	pay, err := h.payments.GetPayment(r.Context(), notif.Data.ID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "payment not found at gateway")
			return
		}
		handleServiceError(w, err)
		return
	}

	if pay.Status != payment.StatusApproved {
		log.Printf("webhook for payment %s with status %s, nothing to do", pay.ID, pay.Status)
		w.WriteHeader(http.StatusOK)
		return
	}

	orderID, err := uuid.Parse(pay.OrderRef)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "payment carries no valid order reference")
		return
	}

	if _, err := h.orders.Approve(r.Context(), orderID); err != nil {
		// The webhook can land before the checkout transaction commits.
		// Wait once and retry before giving up.
		if errors.Is(err, repository.ErrOrderNotFound) {
			time.Sleep(h.retryDelay)
			_, err = h.orders.Approve(r.Context(), orderID)
		}
		if err != nil {
			handleServiceError(w, err)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}
