package http

import (
	"encoding/json"
	"net/http"

	"github.com/artelar/shop/internal/pricing"
)

type PricingHandler struct{}

func NewPricingHandler() *PricingHandler {
	return &PricingHandler{}
}

type QuoteRequestDTO struct {
	Arrangement string `json:"arrangement"`
	Size        string `json:"size"`
	WithGlass   bool   `json:"with_glass"`
}

type QuoteResponseDTO struct {
	Arrangement string  `json:"arrangement"`
	Size        string  `json:"size"`
	WithGlass   bool    `json:"with_glass"`
	UnitPrice   float64 `json:"unit_price"`
	WeightKg    float64 `json:"weight_kg"`
	WidthCm     float64 `json:"width_cm"`
	HeightCm    float64 `json:"height_cm"`
	LengthCm    float64 `json:"length_cm"`
	FrameCount  int     `json:"frame_count"`
}

// Quote resolves one configurator combination against the price table.
func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	arrangement := pricing.Arrangement(req.Arrangement)
	quote, err := pricing.Resolve(arrangement, req.Size, req.WithGlass)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, QuoteResponseDTO{
		Arrangement: string(quote.Arrangement),
		Size:        quote.Size,
		WithGlass:   quote.WithGlass,
		UnitPrice:   quote.UnitPrice,
		WeightKg:    quote.WeightKg,
		WidthCm:     quote.WidthCm,
		HeightCm:    quote.HeightCm,
		LengthCm:    quote.LengthCm,
		FrameCount:  arrangement.FrameCount(),
	})
}

// Sizes lists the labels offered for an arrangement; the UI builds its
// selector from this rather than hardcoding labels again.
func (h *PricingHandler) Sizes(w http.ResponseWriter, r *http.Request) {
	arrangement := pricing.Arrangement(r.URL.Query().Get("arrangement"))

	sizes, err := pricing.Sizes(arrangement)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"arrangement": arrangement,
		"sizes":       sizes,
	})
}
