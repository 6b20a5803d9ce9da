package repository

import (
	"context"
	"testing"

	"github.com/artelar/shop/internal/cart/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) (CartRepository, func()) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, MongoConfig{URI: uri, Database: "testdb"})
	require.NoError(t, err)

	repo := NewMongoRepository(db)

	mongoRepo := repo.(*mongoRepository)
	err = mongoRepo.CreateIndexes(ctx)
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func testCart(userID string) *domain.Cart {
	return &domain.Cart{
		UserID: userID,
		Items: []domain.LineItem{
			{
				ID:                 "custom-dupla-42x60-glass-1700000000",
				Name:               "Quadro Dupla 42x60 cm",
				UnitPrice:          385.00,
				Quantity:           1,
				OptionsDescription: "Dupla, 42x60 cm, com vidro",
				WeightKg:           3.6,
				WidthCm:            92,
				HeightCm:           63,
				LengthCm:           6,
				CustomImageRefs:    []string{"https://media.example/abc.jpg"},
			},
		},
	}
}

func TestGetCart_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetCart(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestUpsertGet_RoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := testCart("user-1")

	require.NoError(t, repo.UpsertCart(ctx, cart))

	got, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, cart.UserID, got.UserID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, cart.Items[0].ID, got.Items[0].ID)
	assert.Equal(t, cart.Items[0].UnitPrice, got.Items[0].UnitPrice)
	assert.Equal(t, cart.Items[0].CustomImageRefs, got.Items[0].CustomImageRefs)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUpsert_SecondWriteReplacesItems(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := testCart("user-1")
	require.NoError(t, repo.UpsertCart(ctx, cart))

	cart.Items[0].Quantity = 3
	cart.Items = append(cart.Items, domain.LineItem{ID: "print-17", Name: "Poster", UnitPrice: 59.90, Quantity: 1})
	require.NoError(t, repo.UpsertCart(ctx, cart))

	got, err := repo.GetCart(ctx, "user-1")
	require.NoError(t, err)

	require.Len(t, got.Items, 2)
	assert.Equal(t, 3, got.Items[0].Quantity)
}

func TestDeleteCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.UpsertCart(ctx, testCart("user-1")))

	require.NoError(t, repo.DeleteCart(ctx, "user-1"))

	_, err := repo.GetCart(ctx, "user-1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestDeleteCart_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.DeleteCart(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
