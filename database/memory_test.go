package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-tracker/models"
)

func TestMemoryStoreCopiesRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	product := &models.Product{ID: "p1", UserID: "u1", Name: "Milk"}
	require.NoError(t, store.PutProduct(ctx, product))
	product.Name = "changed after put"

	got, err := store.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.Name)

	got.Name = "changed after get"
	again, _ := store.GetProduct(ctx, "p1")
	assert.Equal(t, "Milk", again.Name)
}

func TestMemoryStoreScanAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.PutProduct(ctx, &models.Product{ID: "b"}))
	require.NoError(t, store.PutProduct(ctx, &models.Product{ID: "a"}))

	products, err := store.ScanProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "a", products[0].ID)

	require.NoError(t, store.DeleteProduct(ctx, "a"))
	_, err = store.GetProduct(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}
