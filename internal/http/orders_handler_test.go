package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	orderdomain "github.com/artelar/shop/internal/order/domain"
	orderservice "github.com/artelar/shop/internal/order/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func sampleOrder(status orderdomain.Status) *orderdomain.Order {
	return &orderdomain.Order{
		ID:       uuid.New(),
		Customer: orderdomain.Customer{Name: "Maria Souza", Email: "maria@example.com"},
		Shipping: orderdomain.ShippingSelection{ServiceName: "SEDEX", Price: 32.50, EstimatedDeliveryDays: 5},
		Items: []orderdomain.OrderItem{
			{ID: "custom-1", Name: "Quadro Dupla 42x60 cm", UnitPrice: 385.00, Quantity: 1},
		},
		Payment:   orderdomain.PaymentInfo{Subtotal: 385.00, ShippingCost: 32.50, Total: 379.00, Method: "pix"},
		Status:    status,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// --- ListByEmail ---

func TestListByEmail_RequiresEmail(t *testing.T) {
	handler := NewOrdersHandler(newMockOrderService())
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/orders", nil)

	handler.ListByEmail(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestListByEmail_ReturnsOrders(t *testing.T) {
	orders := newMockOrderService()
	orders.listed = []*orderdomain.Order{sampleOrder(orderdomain.StatusApproved)}

	handler := NewOrdersHandler(orders)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/orders?email=maria@example.com", nil)

	handler.ListByEmail(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var response []OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("expected 1 order, got %d", len(response))
	}
	if response[0].Status != string(orderdomain.StatusApproved) {
		t.Errorf("expected status %q, got %q", orderdomain.StatusApproved, response[0].Status)
	}
	if response[0].Payment.Total != 379.00 {
		t.Errorf("expected total 379.00, got %f", response[0].Payment.Total)
	}
}

// --- GetByID ---

func TestGetByID_InvalidID(t *testing.T) {
	handler := NewOrdersHandler(newMockOrderService())
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/orders/not-a-uuid", nil), "id", "not-a-uuid")

	handler.GetByID(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

// --- RequestRefund ---

func TestRequestRefund_RequiresReason(t *testing.T) {
	handler := NewOrdersHandler(newMockOrderService())
	recorder := httptest.NewRecorder()
	id := uuid.NewString()
	request := withURLParam(
		httptest.NewRequest("POST", "/api/v1/orders/"+id+"/refund", strings.NewReader(`{"photo_urls":["u1"]}`)),
		"id", id,
	)

	handler.RequestRefund(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestRequestRefund_Success(t *testing.T) {
	orders := newMockOrderService()
	handler := NewOrdersHandler(orders)

	id := uuid.New()
	recorder := httptest.NewRecorder()
	request := withURLParam(
		httptest.NewRequest("POST", "/api/v1/orders/"+id.String()+"/refund", strings.NewReader(`{"reason":"chegou trincado","photo_urls":["u1","u2"]}`)),
		"id", id.String(),
	)

	handler.RequestRefund(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	if orders.refunds[id] != "chegou trincado" {
		t.Errorf("expected refund recorded, got %v", orders.refunds)
	}
}

func TestRequestRefund_NotEligible(t *testing.T) {
	orders := newMockOrderService()
	orders.refundErr = orderservice.ErrRefundNotAllowed
	handler := NewOrdersHandler(orders)

	id := uuid.NewString()
	recorder := httptest.NewRecorder()
	request := withURLParam(
		httptest.NewRequest("POST", "/api/v1/orders/"+id+"/refund", strings.NewReader(`{"reason":"mudei de ideia"}`)),
		"id", id,
	)

	handler.RequestRefund(recorder, request)

	if recorder.Code != http.StatusConflict {
		t.Errorf("expected %d, got %d", http.StatusConflict, recorder.Code)
	}
}
