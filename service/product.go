package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"price-tracker/analytics"
	"price-tracker/database"
	"price-tracker/metrics"
	"price-tracker/models"
)

// ProductService implements product CRUD scoped to the calling user.
type ProductService struct {
	store database.ProductStore
	now   func() time.Time
	newID func() string
}

func NewProductService(store database.ProductStore) *ProductService {
	return &ProductService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *ProductService) timestamp() string {
	return s.now().Format(time.RFC3339)
}

func record(op string, err error) {
	result := metrics.Result(err)
	var reqErr *RequestError
	if errors.Is(err, database.ErrNotFound) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrConflict) || errors.As(err, &reqErr) {
		result = "rejected"
	}
	metrics.ProductOperationsTotal.WithLabelValues(op, result).Inc()
}

// owned loads a product and checks it belongs to userID.
func (s *ProductService) owned(ctx context.Context, userID, id string) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.UserID != userID {
		log.WithFields(log.Fields{"user_id": userID, "product_id": id}).Warn("ownership check failed")
		return nil, ErrForbidden
	}
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, userID, id string) (*models.Product, error) {
	product, err := s.owned(ctx, userID, id)
	record("get", err)
	return product, err
}

// List returns the caller's products.
func (s *ProductService) List(ctx context.Context, userID string) ([]models.Product, error) {
	all, err := s.store.ScanProducts(ctx)
	record("list", err)
	if err != nil {
		return nil, err
	}

	products := []models.Product{}
	for _, p := range all {
		if p.UserID == userID {
			products = append(products, p)
		}
	}
	return products, nil
}

// Create stores a new product. Without a supplied history the latest
// price becomes the opening entry.
func (s *ProductService) Create(ctx context.Context, userID string, req *models.CreateProductRequest) (*models.Product, error) {
	now := s.timestamp()

	product := &models.Product{
		UserID:         userID,
		Name:           req.Name,
		Brand:          req.Brand,
		Category:       req.Category,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		Store:          req.Store,
		LatestPrice:    req.LatestPrice,
		LatestCurrency: req.LatestCurrency,
		PriceHistory:   req.PriceHistory,
		Tags:           req.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
		OCRRawText:     req.OCRRawText,
	}
	if req.ID != nil && *req.ID != "" {
		if err := s.claimID(ctx, userID, *req.ID); err != nil {
			record("create", err)
			return nil, err
		}
		product.ID = *req.ID
	} else {
		product.ID = s.newID()
	}
	if req.CreatedAt != nil && *req.CreatedAt != "" {
		product.CreatedAt = *req.CreatedAt
	}

	if len(product.PriceHistory) == 0 {
		product.PriceHistory = []models.PriceEntry{{
			ID:       s.newID(),
			Date:     now,
			Store:    req.Store,
			Price:    req.LatestPrice,
			Currency: req.LatestCurrency,
		}}
	}
	if err := s.checkHistory(product.PriceHistory); err != nil {
		record("create", err)
		return nil, err
	}
	product.ApplyTendency(analytics.ComputeTendency(product.PriceHistory))

	err := s.store.PutProduct(ctx, product)
	record("create", err)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"user_id": userID, "product_id": product.ID}).Info("product created")
	return product, nil
}

// claimID makes sure a client-chosen id is not already taken. Create
// never overwrites: a foreign record is forbidden, an own record conflicts.
func (s *ProductService) claimID(ctx context.Context, userID, id string) error {
	existing, err := s.store.GetProduct(ctx, id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.UserID != userID:
		log.WithFields(log.Fields{"user_id": userID, "product_id": id}).Warn("create with a foreign product id")
		return ErrForbidden
	default:
		return ErrConflict
	}
}

// checkHistory validates a client-supplied history and fills missing
// entry ids. Entry ids must be unique within the history.
func (s *ProductService) checkHistory(history []models.PriceEntry) error {
	seen := make(map[string]bool, len(history))
	for i := range history {
		entry := &history[i]
		if entry.Price < 0 || math.IsNaN(entry.Price) || math.IsInf(entry.Price, 0) {
			return badRequest(fmt.Sprintf("Invalid price in price history entry %d", i))
		}
		if entry.Currency != "" && !entry.Currency.Valid() {
			return badRequest(fmt.Sprintf("Unsupported currency %q in price history entry %d", entry.Currency, i))
		}
		if entry.ID == "" {
			entry.ID = s.newID()
		}
		if seen[entry.ID] {
			return badRequest(fmt.Sprintf("Duplicate price history entry id %q", entry.ID))
		}
		seen[entry.ID] = true
	}
	return nil
}

// Update merges req over the stored product. A changed latest price
// appends a history entry; analytics are recomputed over the full history.
func (s *ProductService) Update(ctx context.Context, userID, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.owned(ctx, userID, id)
	if err != nil {
		record("update", err)
		return nil, err
	}
	now := s.timestamp()

	if req.LatestPrice != nil && *req.LatestPrice != product.LatestPrice {
		entry := models.PriceEntry{
			ID:       s.newID(),
			Date:     now,
			Price:    *req.LatestPrice,
			Currency: product.LatestCurrency,
			Store:    product.Store,
			Location: req.Location,
		}
		if req.LatestCurrency != nil && *req.LatestCurrency != "" {
			entry.Currency = *req.LatestCurrency
		}
		if req.Store != nil && *req.Store != "" {
			entry.Store = *req.Store
		}
		if entry.Store == "" {
			entry.Store = models.UnknownStore
		}
		product.PriceHistory = append(product.PriceHistory, entry)
	}

	mergeProduct(product, req)
	product.UpdatedAt = now
	product.ApplyTendency(analytics.ComputeTendency(product.PriceHistory))

	err = s.store.PutProduct(ctx, product)
	record("update", err)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"user_id": userID, "product_id": id}).Info("product updated")
	return product, nil
}

func mergeProduct(p *models.Product, req *models.UpdateProductRequest) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.Store != nil {
		p.Store = *req.Store
	}
	if req.LatestPrice != nil {
		p.LatestPrice = *req.LatestPrice
	}
	if req.LatestCurrency != nil && *req.LatestCurrency != "" {
		p.LatestCurrency = *req.LatestCurrency
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	if req.OCRRawText != nil {
		p.OCRRawText = *req.OCRRawText
	}
}

func (s *ProductService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		record("delete", err)
		return err
	}
	err := s.store.DeleteProduct(ctx, id)
	record("delete", err)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	log.WithFields(log.Fields{"user_id": userID, "product_id": id}).Info("product deleted")
	return nil
}
