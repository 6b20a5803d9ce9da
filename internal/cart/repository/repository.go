package repository

import (
	"context"
	"errors"

	"github.com/artelar/shop/internal/cart/domain"
)

// CartRepository persists the whole cart as one document per user.
// Mutation logic lives in the service; the repository only loads and
// stores full snapshots (last full write wins).
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

var ErrCartNotFound = errors.New("cart not found")
