package repositories

import (
	"context"
	"sync"
	"time"

	"eshop/internal/models"

	"github.com/go-faster/errors"
)

// MockLineItemRepository is an in-memory implementation of LineItemRepository.
type MockLineItemRepository struct {
	items map[string]models.LineItem
	mu    sync.RWMutex
}

// NewMockLineItemRepository creates a new instance of MockLineItemRepository.
func NewMockLineItemRepository() *MockLineItemRepository {
	return &MockLineItemRepository{
		items: make(map[string]models.LineItem),
	}
}

// Create adds a new line item.
func (r *MockLineItemRepository) Create(_ context.Context, item *models.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = models.NewID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	r.items[item.ID] = *item
	return nil
}

// GetByID returns a line item by its ID.
func (r *MockLineItemRepository) GetByID(_ context.Context, id string) (*models.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "line item with ID %s", id)
	}
	return &item, nil
}

// Delete removes a line item by its ID.
func (r *MockLineItemRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return errors.Wrapf(ErrNotFound, "line item with ID %s", id)
	}
	delete(r.items, id)
	return nil
}

// ListCreatedBefore returns line items created before cutoff.
func (r *MockLineItemRepository) ListCreatedBefore(_ context.Context, cutoff time.Time) ([]models.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.LineItem
	for _, item := range r.items {
		if item.CreatedAt.Before(cutoff) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Len returns the number of stored line items.
func (r *MockLineItemRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
