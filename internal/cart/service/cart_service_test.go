package service

import (
	"context"
	"sync"
	"testing"

	"github.com/artelar/shop/internal/cart/cache"
	"github.com/artelar/shop/internal/cart/domain"
	"github.com/artelar/shop/internal/cart/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: make(map[string]*domain.Cart)}
}

func (m *mockRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.carts[cart.UserID] = cart
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

type mockCache struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *mockCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[userID] = cart
	return nil
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, userID)
	return nil
}

func newTestService() (*CartService, *mockRepository, *mockCache) {
	repo := newMockRepository()
	c := newMockCache()
	return NewCartService(repo, c), repo, c
}

func duplaItem() domain.LineItem {
	return domain.LineItem{
		ID:        "custom-dupla-42x60-glass",
		Name:      "Quadro Dupla 42x60 cm",
		UnitPrice: 385.00,
		Quantity:  1,
		WeightKg:  3.6,
		WidthCm:   92,
		HeightCm:  63,
		LengthCm:  6,
	}
}

func TestGetCart_UnknownUserGetsEmptyCart(t *testing.T) {
	svc, _, _ := newTestService()

	cart, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestGetCart_MissFillsCacheBeforeReturning(t *testing.T) {
	svc, repo, c := newTestService()
	ctx := context.Background()

	stored := &domain.Cart{UserID: "user-1", Items: []domain.LineItem{duplaItem()}}
	require.NoError(t, repo.UpsertCart(ctx, stored))

	cart, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	// The fill happens before GetCart returns, so an invalidation that
	// follows a read can never be undone by a straggling write.
	cached, errGet := c.Get(ctx, "user-1")
	require.NoError(t, errGet)
	assert.Equal(t, stored.Items, cached.Items)
}

func TestAddItem_NewItem(t *testing.T) {
	svc, _, _ := newTestService()

	cart, err := svc.AddItem(context.Background(), "user-1", duplaItem())
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.False(t, cart.Items[0].AddedAt.IsZero())
}

func TestAddItem_SameKeyMergesIntoOneRow(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", duplaItem())
	require.NoError(t, err)

	cart, err := svc.AddItem(ctx, "user-1", duplaItem())
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddItem_NormalisesQuantityBelowOne(t *testing.T) {
	svc, _, _ := newTestService()

	item := duplaItem()
	item.Quantity = 0

	cart, err := svc.AddItem(context.Background(), "user-1", item)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestUpdateQuantity_SetsQuantity(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", duplaItem())
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(ctx, "user-1", "custom-dupla-42x60-glass", 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 1155.00, cart.Subtotal())
}

func TestUpdateQuantity_ZeroRemovesItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", duplaItem())
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(ctx, "user-1", "custom-dupla-42x60-glass", 0)
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
}

func TestUpdateQuantity_NegativeRemovesItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", duplaItem())
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(ctx, "user-1", "custom-dupla-42x60-glass", -1)
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
}

func TestUpdateQuantity_UnknownItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", duplaItem())
	require.NoError(t, err)

	_, errUpdate := svc.UpdateQuantity(ctx, "user-1", "nope", 2)
	assert.ErrorIs(t, errUpdate, ErrItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", duplaItem())
	require.NoError(t, err)

	other := duplaItem()
	other.ID = "print-17"
	_, err = svc.AddItem(ctx, "user-1", other)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "user-1", "custom-dupla-42x60-glass")
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "print-17", cart.Items[0].ID)
}

func TestClearCart(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", duplaItem())
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "user-1"))

	_, errGet := repo.GetCart(ctx, "user-1")
	assert.ErrorIs(t, errGet, repository.ErrCartNotFound)
}

func TestClearCart_MissingCartIsNotAnError(t *testing.T) {
	svc, _, _ := newTestService()

	assert.NoError(t, svc.ClearCart(context.Background(), "user-1"))
}

func TestMutation_InvalidatesCache(t *testing.T) {
	svc, _, c := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", duplaItem())
	require.NoError(t, err)

	_, errGet := c.Get(ctx, "user-1")
	assert.ErrorIs(t, errGet, cache.ErrCacheMiss)
}
