package database

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"price-tracker/models"
)

// MemoryStore is an in-process ProductStore for local runs and tests.
// Records are deep-copied on the way in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[string][]byte)}
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	document, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var product models.Product
	if err := json.Unmarshal(document, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *MemoryStore) PutProduct(_ context.Context, product *models.Product) error {
	document, err := json.Marshal(product)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.products[product.ID] = document
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.products, id)
	s.mu.Unlock()
	return nil
}

// ScanProducts returns the records ordered by id.
func (s *MemoryStore) ScanProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		var product models.Product
		if err := json.Unmarshal(s.products[id], &product); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}
