package repositories

import (
	"context"

	"eshop/internal/models"
)

// ProductRepository defines the catalog reads the order subsystem depends on.
// Create exists for seeding; catalog management lives elsewhere.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
}

// CategoryRepository defines category lookups used when expanding orders.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}
