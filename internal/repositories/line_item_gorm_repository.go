package repositories

import (
	"context"
	"time"

	"eshop/internal/models"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
)

// GORMLineItemRepository is a GORM implementation of LineItemRepository.
type GORMLineItemRepository struct {
	db *gorm.DB
}

// NewGORMLineItemRepository creates a new instance of GORMLineItemRepository.
func NewGORMLineItemRepository(db *gorm.DB) *GORMLineItemRepository {
	return &GORMLineItemRepository{db: db}
}

// Create inserts a line item, assigning an id when none is set.
func (r *GORMLineItemRepository) Create(ctx context.Context, item *models.LineItem) error {
	if item.ID == "" {
		item.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return errors.Wrap(err, "create line item")
	}
	return nil
}

// GetByID retrieves a single line item.
func (r *GORMLineItemRepository) GetByID(ctx context.Context, id string) (*models.LineItem, error) {
	var item models.LineItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "line item with ID %s", id)
		}
		return nil, errors.Wrapf(err, "get line item %s", id)
	}
	return &item, nil
}

// Delete removes a line item by its ID.
func (r *GORMLineItemRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.LineItem{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete line item %s", id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "line item with ID %s", id)
	}
	return nil
}

// ListCreatedBefore returns line items created before cutoff.
func (r *GORMLineItemRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.LineItem, error) {
	var items []models.LineItem
	if err := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "list line items")
	}
	return items, nil
}
