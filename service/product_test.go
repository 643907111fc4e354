package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-tracker/database"
	"price-tracker/models"
)

func newTestProductService(store database.ProductStore) *ProductService {
	svc := NewProductService(store)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestCreateSynthesizesOpeningEntry(t *testing.T) {
	svc := newTestProductService(database.NewMemoryStore())

	product, err := svc.Create(context.Background(), "u1", &models.CreateProductRequest{
		Name:           "Milk",
		Store:          "Lidl",
		LatestPrice:    2.5,
		LatestCurrency: models.CurrencyEUR,
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", product.ID)
	assert.Equal(t, "u1", product.UserID)
	assert.Equal(t, "2024-05-01T12:00:00Z", product.CreatedAt)
	require.Len(t, product.PriceHistory, 1)
	assert.Equal(t, models.PriceEntry{ID: "id-2", Date: "2024-05-01T12:00:00Z", Store: "Lidl", Price: 2.5, Currency: models.CurrencyEUR}, product.PriceHistory[0])
	assert.Equal(t, 2.5, product.AveragePrice)
	assert.Equal(t, models.TrendStable, product.Trend)
}

func TestCreateKeepsSuppliedIDAndHistory(t *testing.T) {
	svc := newTestProductService(database.NewMemoryStore())

	product, err := svc.Create(context.Background(), "u1", &models.CreateProductRequest{
		ID:        ptr("custom"),
		Name:      "Bread",
		CreatedAt: ptr("2023-01-01T00:00:00Z"),
		PriceHistory: []models.PriceEntry{
			{ID: "a", Price: 1, Currency: models.CurrencyBGN},
			{Price: 3, Currency: models.CurrencyBGN},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "custom", product.ID)
	assert.Equal(t, "2023-01-01T00:00:00Z", product.CreatedAt)
	assert.Equal(t, "id-1", product.PriceHistory[1].ID)
	assert.Equal(t, 2.0, product.AveragePrice)
	assert.Equal(t, models.TrendUp, product.Trend)
}

func TestUpdateAppendsAndRecomputes(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.PutProduct(context.Background(), &models.Product{
		ID:             "p1",
		UserID:         "u1",
		LatestPrice:    5,
		LatestCurrency: models.CurrencyUSD,
		PriceHistory:   []models.PriceEntry{{ID: "e1", Price: 5, Currency: models.CurrencyUSD}},
		AveragePrice:   5,
	}))
	svc := newTestProductService(store)

	product, err := svc.Update(context.Background(), "u1", "p1", &models.UpdateProductRequest{LatestPrice: ptr(7.0)})
	require.NoError(t, err)

	require.Len(t, product.PriceHistory, 2)
	last := product.PriceHistory[1]
	assert.Equal(t, 7.0, last.Price)
	assert.Equal(t, models.CurrencyUSD, last.Currency)
	assert.Equal(t, models.UnknownStore, last.Store)
	assert.Equal(t, 6.0, product.AveragePrice)
	assert.Equal(t, 5.0, product.LowestPrice)
	assert.Equal(t, 7.0, product.HighestPrice)
	assert.Equal(t, models.TrendUp, product.Trend)
	assert.Equal(t, 7.0, product.LatestPrice)

	stored, err := store.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, product, stored)
}

func TestUpdateSamePriceDoesNotAppend(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.PutProduct(context.Background(), &models.Product{
		ID: "p1", UserID: "u1", Name: "Old", LatestPrice: 5,
		PriceHistory: []models.PriceEntry{{ID: "e1", Price: 5}},
	}))
	svc := newTestProductService(store)

	product, err := svc.Update(context.Background(), "u1", "p1", &models.UpdateProductRequest{
		Name:        ptr("New"),
		LatestPrice: ptr(5.0),
		Store:       ptr("Billa"),
	})
	require.NoError(t, err)
	assert.Len(t, product.PriceHistory, 1)
	assert.Equal(t, "New", product.Name)
	assert.Equal(t, "Billa", product.Store)
}

func TestUpdateEntryPrefersIncomingStoreAndCurrency(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.PutProduct(context.Background(), &models.Product{
		ID: "p1", UserID: "u1", Store: "Lidl", LatestPrice: 5, LatestCurrency: models.CurrencyEUR,
	}))
	svc := newTestProductService(store)

	product, err := svc.Update(context.Background(), "u1", "p1", &models.UpdateProductRequest{
		LatestPrice:    ptr(4.0),
		LatestCurrency: ptr(models.CurrencyBGN),
		Store:          ptr("Kaufland"),
		Location:       &models.Location{Lat: 42.69, Lng: 23.32},
	})
	require.NoError(t, err)
	require.Len(t, product.PriceHistory, 1)
	entry := product.PriceHistory[0]
	assert.Equal(t, models.CurrencyBGN, entry.Currency)
	assert.Equal(t, "Kaufland", entry.Store)
	assert.Equal(t, &models.Location{Lat: 42.69, Lng: 23.32}, entry.Location)
	assert.Equal(t, models.CurrencyBGN, product.LatestCurrency)
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	require.NoError(t, store.PutProduct(ctx, &models.Product{ID: "p1", UserID: "alice", Name: "Milk"}))
	require.NoError(t, store.PutProduct(ctx, &models.Product{ID: "p2", UserID: "bob"}))
	svc := newTestProductService(store)

	_, err := svc.Get(ctx, "bob", "p1")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, "bob", "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = svc.Update(ctx, "bob", "p1", &models.UpdateProductRequest{Name: ptr("Stolen")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, "bob", "p1"), ErrForbidden)

	unchanged, err := svc.Get(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Milk", unchanged.Name)

	list, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ID)

	require.NoError(t, svc.Delete(ctx, "alice", "p1"))
	_, err = svc.Get(ctx, "alice", "p1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCreateWithTakenID(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	require.NoError(t, store.PutProduct(ctx, &models.Product{ID: "p1", UserID: "alice", Name: "Milk"}))
	svc := newTestProductService(store)

	_, err := svc.Create(ctx, "bob", &models.CreateProductRequest{ID: ptr("p1"), Name: "Stolen"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, "alice", &models.CreateProductRequest{ID: ptr("p1"), Name: "Again"})
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := store.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.UserID)
	assert.Equal(t, "Milk", stored.Name)
}

func TestCreateRejectsInvalidHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []models.PriceEntry
	}{
		{
			name:    "negative price",
			history: []models.PriceEntry{{ID: "a", Price: -3, Currency: models.CurrencyEUR}},
		},
		{
			name:    "unsupported currency",
			history: []models.PriceEntry{{ID: "a", Price: 3, Currency: "JPY"}},
		},
		{
			name: "duplicate entry id",
			history: []models.PriceEntry{
				{ID: "a", Price: 3, Currency: models.CurrencyEUR},
				{ID: "a", Price: 4, Currency: models.CurrencyEUR},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := database.NewMemoryStore()
			svc := newTestProductService(store)

			_, err := svc.Create(context.Background(), "u1", &models.CreateProductRequest{Name: "Milk", PriceHistory: tt.history})
			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, http.StatusBadRequest, reqErr.Status)

			products, err := store.ScanProducts(context.Background())
			require.NoError(t, err)
			assert.Empty(t, products)
		})
	}
}

func TestUpdateEmptyCurrencyKeepsStored(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.PutProduct(context.Background(), &models.Product{
		ID: "p1", UserID: "u1", LatestPrice: 5, LatestCurrency: models.CurrencyGBP,
	}))
	svc := newTestProductService(store)

	product, err := svc.Update(context.Background(), "u1", "p1", &models.UpdateProductRequest{
		LatestPrice:    ptr(6.0),
		LatestCurrency: ptr(models.Currency("")),
	})
	require.NoError(t, err)
	assert.Equal(t, models.CurrencyGBP, product.LatestCurrency)
	assert.Equal(t, models.CurrencyGBP, product.PriceHistory[0].Currency)
}
