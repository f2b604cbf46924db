package repositories

import (
	"context"
	"time"

	"eshop/internal/models"
)

// LineItemRepository defines the interface for line item data access.
// Line items have no update path.
type LineItemRepository interface {
	Create(ctx context.Context, item *models.LineItem) error
	GetByID(ctx context.Context, id string) (*models.LineItem, error)
	Delete(ctx context.Context, id string) error
	// ListCreatedBefore returns line items created strictly before cutoff.
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.LineItem, error)
}
