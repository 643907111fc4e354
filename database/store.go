package database

import (
	"context"
	"errors"

	"price-tracker/models"
)

var ErrNotFound = errors.New("product not found")

// ProductStore is a key-value table of products keyed by product id.
// ScanProducts returns every record; callers filter by owner.
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	PutProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ScanProducts(ctx context.Context) ([]models.Product, error)
}
