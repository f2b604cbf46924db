package repositories

import (
	"context"
	"time"

	"eshop/internal/models"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAll retrieves all orders from the database.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "get all orders")
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "order with ID %s", id)
		}
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	return &order, nil
}

// GetByUser retrieves a user's orders ordered by creation time, newest first.
func (r *GORMOrderRepository) GetByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_created DESC").
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrapf(err, "get orders for user %s", userID)
	}
	return orders, nil
}

// Create inserts a new order.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = models.NewID()
	}
	if order.DateCreated.IsZero() {
		order.DateCreated = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "create order")
	}
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status string) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "update status of order %s", id)
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrapf(ErrNotFound, "order with ID %s", id)
	}
	return r.GetByID(ctx, id)
}

// Delete removes an order and returns the deleted record.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "order with ID %s", id)
		}
		return nil, errors.Wrapf(err, "delete order %s", id)
	}
	return &order, nil
}

// SumTotalPrice returns the sum of total_price over all orders, zero when
// there are none.
func (r *GORMOrderRepository) SumTotalPrice(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&models.Order{}).Select("SUM(total_price)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, errors.Wrap(err, "sum order totals")
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(2), nil
}

// Count returns the number of orders.
func (r *GORMOrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "count orders")
	}
	return n, nil
}

// ReferencedLineItemIDs collects the line item ids of every stored order.
func (r *GORMOrderRepository) ReferencedLineItemIDs(ctx context.Context) (map[string]struct{}, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Select("id", "line_item_ids").Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "list referenced line items")
	}
	refs := make(map[string]struct{})
	for _, o := range orders {
		for _, id := range o.LineItemIDs {
			refs[id] = struct{}{}
		}
	}
	return refs, nil
}
