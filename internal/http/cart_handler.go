package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/artelar/shop/internal/cart/domain"
	"github.com/artelar/shop/internal/pricing"
	"github.com/go-chi/chi/v5"
)

// CartService is the slice of the cart service the handlers need.
// Consumers define this interface, not the implementation.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.LineItem) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	cart CartService
}

func NewCartHandler(cart CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type AddItemRequestDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageRef  string  `json:"image_ref"`
	WeightKg  float64 `json:"weight_kg"`
	WidthCm   float64 `json:"width_cm"`
	HeightCm  float64 `json:"height_cm"`
	LengthCm  float64 `json:"length_cm"`
}

type ConfiguredItemRequestDTO struct {
	Arrangement string   `json:"arrangement"`
	Size        string   `json:"size"`
	WithGlass   bool     `json:"with_glass"`
	ImageMode   string   `json:"image_mode"`
	ImageRefs   []string `json:"image_refs"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items        []domain.LineItem `json:"items"`
	Subtotal     float64           `json:"subtotal"`
	InstantTotal float64           `json:"instant_total"`
	CardTotal    float64           `json:"card_total"`
}

func cartResponse(cart *domain.Cart) CartResponseDTO {
	return CartResponseDTO{
		Items:        cart.Items,
		Subtotal:     cart.Subtotal(),
		InstantTotal: cart.InstantTotal(0),
		CardTotal:    cart.CardTotal(0),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	cart, err := h.cart.GetCart(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

// AddItem adds a catalog print to the cart. The configurator path goes
// through AddConfiguredItem so prices always come out of the table.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ID == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "id and name are required")
		return
	}
	if req.UnitPrice <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_item", "unit_price must be positive")
		return
	}

	cart, err := h.cart.AddItem(r.Context(), sessionID, domain.LineItem{
		ID:        req.ID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  1,
		ImageRef:  req.ImageRef,
		WeightKg:  req.WeightKg,
		WidthCm:   req.WidthCm,
		HeightCm:  req.HeightCm,
		LengthCm:  req.LengthCm,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(cart))
}

// AddConfiguredItem resolves a made-to-order frame configuration through
// the price table and adds the resulting line item.
func (h *CartHandler) AddConfiguredItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req ConfiguredItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	arrangement := pricing.Arrangement(req.Arrangement)
	mode := pricing.ImageMode(req.ImageMode)

	if err := pricing.ValidateImages(mode, arrangement, len(req.ImageRefs)); err != nil {
		handleServiceError(w, err)
		return
	}

	quote, err := pricing.Resolve(arrangement, req.Size, req.WithGlass)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	item := configuredLineItem(quote, mode, req.ImageRefs)
	cart, err := h.cart.AddItem(r.Context(), sessionID, item)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(cart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Quantities below one remove the item, so no lower bound check here.
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	cart, err := h.cart.UpdateQuantity(r.Context(), sessionID, itemID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	cart, err := h.cart.RemoveItem(r.Context(), sessionID, itemID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	if err := h.cart.ClearCart(r.Context(), sessionID); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func configuredLineItem(quote pricing.Quote, mode pricing.ImageMode, imageRefs []string) domain.LineItem {
	glass := "sem vidro"
	if quote.WithGlass {
		glass = "com vidro"
	}

	id := fmt.Sprintf("custom-%s-%s-%s-%d",
		strings.ToLower(string(quote.Arrangement)),
		strings.ReplaceAll(strings.TrimSuffix(quote.Size, " cm"), "x", "-"),
		string(mode),
		time.Now().UnixNano(),
	)

	imageRef := ""
	if len(imageRefs) > 0 {
		imageRef = imageRefs[0]
	}

	return domain.LineItem{
		ID:                 id,
		Name:               fmt.Sprintf("Quadro %s %s", quote.Arrangement, quote.Size),
		UnitPrice:          quote.UnitPrice,
		Quantity:           1,
		ImageRef:           imageRef,
		OptionsDescription: fmt.Sprintf("%s, %s, %s", quote.Arrangement, quote.Size, glass),
		WeightKg:           quote.WeightKg,
		WidthCm:            quote.WidthCm,
		HeightCm:           quote.HeightCm,
		LengthCm:           quote.LengthCm,
		CustomImageRefs:    imageRefs,
	}
}
