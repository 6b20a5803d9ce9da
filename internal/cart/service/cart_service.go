package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/artelar/shop/internal/cart/cache"
	"github.com/artelar/shop/internal/cart/domain"
	"github.com/artelar/shop/internal/cart/repository"
	"golang.org/x/sync/singleflight"
)

var ErrItemNotFound = errors.New("item not found in cart")

// CartService owns all cart mutation rules. The repository only stores
// whole-cart snapshots, so every mutation goes load-modify-persist here.
type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) { // unknown user gets an empty cart
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// Set synchronously so a later invalidation cannot be overtaken by
		// this fill; a failed set only costs a future cache miss.
		if errSet := s.cache.Set(ctx, userID, cart); errSet != nil {
			log.Printf("cache set error: %v", errSet)
		}

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem appends the item, or bumps quantity by one when a line with the
// same identity key is already present. Quantities below one are
// normalised to one.
func (s *CartService) AddItem(ctx context.Context, userID string, item domain.LineItem) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.AddedAt = time.Now()

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ID == item.ID {
			cart.Items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, item)
	}

	return s.persist(ctx, userID, cart)
}

// UpdateQuantity sets the quantity for a line item. Any value below one
// removes the item entirely; a zero-quantity row never survives.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if quantity < 1 {
		return s.removeFromCart(ctx, userID, cart, itemID)
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			return s.persist(ctx, userID, cart)
		}
	}

	return nil, ErrItemNotFound
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.removeFromCart(ctx, userID, cart, itemID)
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	errDelete := s.repo.DeleteCart(ctx, userID)
	if errDelete != nil && !errors.Is(errDelete, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", errDelete)
		return errDelete
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) removeFromCart(ctx context.Context, userID string, cart *domain.Cart, itemID string) (*domain.Cart, error) {
	for i, item := range cart.Items {
		if item.ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return s.persist(ctx, userID, cart)
		}
	}
	return nil, ErrItemNotFound
}

func (s *CartService) persist(ctx context.Context, userID string, cart *domain.Cart) (*domain.Cart, error) {
	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return cart, nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, userID)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v", errInvalidate)
	}
}
