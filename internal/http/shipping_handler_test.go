package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/artelar/shop/internal/shipping"
)

type mockQuoter struct {
	options  []shipping.Option
	err      error
	packages []shipping.Package
}

func (m *mockQuoter) Quote(_ context.Context, _, _ string, packages []shipping.Package) ([]shipping.Option, error) {
	m.packages = packages
	if m.err != nil {
		return nil, m.err
	}
	return m.options, nil
}

func TestShippingQuote_RequiresDestination(t *testing.T) {
	handler := NewShippingHandler(&mockCartService{cart: cartWithOneItem()}, &mockQuoter{}, "38400-000")

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/shipping/quote", strings.NewReader(`{}`)))

	handler.Quote(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestShippingQuote_EmptyCart(t *testing.T) {
	handler := NewShippingHandler(&mockCartService{cart: emptyCart()}, &mockQuoter{}, "38400-000")

	recorder := httptest.NewRecorder()
	body := strings.NewReader(`{"destination_postal_code":"01310-100"}`)
	request := withSession(httptest.NewRequest("POST", "/api/v1/shipping/quote", body))

	handler.Quote(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestShippingQuote_OneParcelPerUnit(t *testing.T) {
	cart := cartWithOneItem()
	cart.Items[0].Quantity = 3
	quoter := &mockQuoter{options: []shipping.Option{
		{ID: "1", CarrierName: "SEDEX", Price: 48.90, EstimatedDeliveryDays: 3},
	}}
	handler := NewShippingHandler(&mockCartService{cart: cart}, quoter, "38400-000")

	recorder := httptest.NewRecorder()
	body := strings.NewReader(`{"destination_postal_code":"01310-100"}`)
	request := withSession(httptest.NewRequest("POST", "/api/v1/shipping/quote", body))

	handler.Quote(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	if len(quoter.packages) != 3 {
		t.Errorf("expected 3 parcels for quantity 3, got %d", len(quoter.packages))
	}

	var options []shipping.Option
	if err := json.NewDecoder(recorder.Body).Decode(&options); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(options) != 1 || options[0].CarrierName != "SEDEX" {
		t.Errorf("unexpected options %v", options)
	}
}

func TestShippingQuote_NoOptions(t *testing.T) {
	quoter := &mockQuoter{err: shipping.ErrNoOptions}
	handler := NewShippingHandler(&mockCartService{cart: cartWithOneItem()}, quoter, "38400-000")

	recorder := httptest.NewRecorder()
	body := strings.NewReader(`{"destination_postal_code":"99999-999"}`)
	request := withSession(httptest.NewRequest("POST", "/api/v1/shipping/quote", body))

	handler.Quote(recorder, request)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}
}
