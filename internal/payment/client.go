package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	StatusApproved  = "approved"
	StatusPending   = "pending"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Payer struct {
	Email     string `json:"email"`
	DocType   string `json:"doc_type"`
	DocNumber string `json:"doc_number"`
}

type CreatePaymentRequest struct {
	Amount         float64 `json:"transaction_amount"`
	Method         string  `json:"payment_method_id"`
	Token          string  `json:"token,omitempty"`
	Installments   int     `json:"installments,omitempty"`
	Payer          Payer   `json:"payer"`
	OrderRef       string  `json:"external_reference"`
	IdempotencyKey string  `json:"-"`
}

type Payment struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail"`
	OrderRef     string `json:"external_reference"`
	PixQRCode    string `json:"pix_qr_code,omitempty"`
}

// Client is the payment-gateway collaborator. Creation takes a
// caller-supplied idempotency key so a retried checkout never charges
// twice.
type Client interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

type HTTPClient struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

func NewHTTPClient(baseURL, accessToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("X-Idempotency-Key", req.IdempotencyKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var payment Payment
	if errDecode := json.NewDecoder(resp.Body).Decode(&payment); errDecode != nil {
		return nil, fmt.Errorf("decode payment response: %w", errDecode)
	}
	return &payment, nil
}

func (c *HTTPClient) GetPayment(ctx context.Context, id string) (*Payment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("build payment lookup: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var payment Payment
	if errDecode := json.NewDecoder(resp.Body).Decode(&payment); errDecode != nil {
		return nil, fmt.Errorf("decode payment response: %w", errDecode)
	}
	return &payment, nil
}
