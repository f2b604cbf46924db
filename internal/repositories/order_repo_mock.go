package repositories

import (
	"context"
	"slices"
	"sync"
	"time"

	"eshop/internal/models"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll(_ context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, cloneOrder(order))
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "order with ID %s", id)
	}
	order = cloneOrder(order)
	return &order, nil
}

// GetByUser returns the user's orders, newest first.
func (r *MockOrderRepository) GetByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, cloneOrder(order))
		}
	}
	slices.SortStableFunc(orderList, func(a, b models.Order) int {
		return b.DateCreated.Compare(a.DateCreated)
	})
	return orderList, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = models.NewID()
	}
	if order.DateCreated.IsZero() {
		order.DateCreated = time.Now().UTC()
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id string, status string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "order with ID %s", id)
	}
	order.Status = status
	r.orders[id] = order
	order = cloneOrder(order)
	return &order, nil
}

// Delete removes an order and returns it.
func (r *MockOrderRepository) Delete(_ context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "order with ID %s", id)
	}
	delete(r.orders, id)
	return &order, nil
}

// SumTotalPrice sums the total price of all orders.
func (r *MockOrderRepository) SumTotalPrice(_ context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, order := range r.orders {
		total = total.Add(order.TotalPrice)
	}
	return total, nil
}

// Count returns the number of orders.
func (r *MockOrderRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

// ReferencedLineItemIDs returns every line item id held by an order.
func (r *MockOrderRepository) ReferencedLineItemIDs(_ context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := make(map[string]struct{})
	for _, order := range r.orders {
		for _, id := range order.LineItemIDs {
			refs[id] = struct{}{}
		}
	}
	return refs, nil
}

func cloneOrder(o models.Order) models.Order {
	o.LineItemIDs = slices.Clone(o.LineItemIDs)
	o.LineItems = nil
	o.User = nil
	return o
}
