package repositories

import (
	"context"

	"eshop/internal/models"

	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetByUser returns the user's orders, most recent first.
	GetByUser(ctx context.Context, userID string) ([]models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	// UpdateStatus replaces the status and returns the updated order.
	UpdateStatus(ctx context.Context, id string, status string) (*models.Order, error)
	// Delete removes the order and returns its last snapshot.
	Delete(ctx context.Context, id string) (*models.Order, error)
	SumTotalPrice(ctx context.Context) (decimal.Decimal, error)
	Count(ctx context.Context) (int64, error)
	// ReferencedLineItemIDs returns the set of line item ids held by any order.
	ReferencedLineItemIDs(ctx context.Context) (map[string]struct{}, error)
}
