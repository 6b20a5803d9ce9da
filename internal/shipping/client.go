package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

type quoteRequest struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	Packages []Package `json:"packages"`
}

// HTTPQuoter calls the logistics collaborator over HTTP. The circuit
// breaker keeps a flapping carrier API from stalling every checkout.
type HTTPQuoter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]Option]
}

func NewHTTPQuoter(baseURL, apiKey string) *HTTPQuoter {
	settings := gobreaker.Settings{
		Name:    "shipping-quotes",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &HTTPQuoter{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[[]Option](settings),
	}
}

func (q *HTTPQuoter) Quote(ctx context.Context, originPostalCode, destinationPostalCode string, packages []Package) ([]Option, error) {
	return q.breaker.Execute(func() ([]Option, error) {
		return q.quote(ctx, originPostalCode, destinationPostalCode, packages)
	})
}

func (q *HTTPQuoter) quote(ctx context.Context, origin, destination string, packages []Package) ([]Option, error) {
	body, err := json.Marshal(quoteRequest{From: origin, To: destination, Packages: packages})
	if err != nil {
		return nil, fmt.Errorf("marshal quote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.baseURL+"/api/v2/calculate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+q.apiKey)

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote shipping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("shipping collaborator returned status %d", resp.StatusCode)
	}

	var options []Option
	if errDecode := json.NewDecoder(resp.Body).Decode(&options); errDecode != nil {
		return nil, fmt.Errorf("decode quote response: %w", errDecode)
	}

	if len(options) == 0 {
		return nil, ErrNoOptions
	}
	return options, nil
}
