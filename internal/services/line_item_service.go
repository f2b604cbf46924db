package services

import (
	"context"

	"eshop/internal/models"
	"eshop/internal/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// fanOutLimit bounds concurrent storage calls issued for a single order.
const fanOutLimit = 8

// LineItemService creates and removes line items.
type LineItemService struct {
	repo repositories.LineItemRepository
}

// NewLineItemService creates a new LineItemService.
func NewLineItemService(repo repositories.LineItemRepository) *LineItemService {
	return &LineItemService{repo: repo}
}

// CreateLineItem persists a line item and returns its id. The product
// reference is only checked for form here; existence is checked when pricing.
func (s *LineItemService) CreateLineItem(ctx context.Context, quantity int, productID string) (string, error) {
	if quantity <= 0 {
		return "", validationError("quantity must be a positive integer, got %d", quantity)
	}
	if !models.IsValidID(productID) {
		return "", validationError("malformed product id %q", productID)
	}
	item := &models.LineItem{Quantity: quantity, ProductID: productID}
	if err := s.repo.Create(ctx, item); err != nil {
		return "", &Error{Kind: KindPersistence, Message: "failed to create line item", Err: err}
	}
	return item.ID, nil
}

// GetLineItem returns a line item by id.
func (s *LineItemService) GetLineItem(ctx context.Context, id string) (*models.LineItem, error) {
	if !models.IsValidID(id) {
		return nil, validationError("malformed line item id %q", id)
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "line item not found")
	}
	return item, nil
}

// DeleteLineItem removes a line item by id.
func (s *LineItemService) DeleteLineItem(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete line item")
	}
	return nil
}

// PriceAggregator joins line items to their products' current prices.
type PriceAggregator struct {
	lineItems repositories.LineItemRepository
	products  repositories.ProductRepository
}

// NewPriceAggregator creates a new PriceAggregator.
func NewPriceAggregator(lineItems repositories.LineItemRepository, products repositories.ProductRepository) *PriceAggregator {
	return &PriceAggregator{lineItems: lineItems, products: products}
}

// ComputeTotal returns the sum of quantity × unit price over the given line
// items. Items are resolved concurrently; when several fail, the error for
// the earliest id is returned.
func (a *PriceAggregator) ComputeTotal(ctx context.Context, lineItemIDs []string) (decimal.Decimal, error) {
	if len(lineItemIDs) == 0 {
		return decimal.Zero, nil
	}

	subtotals := make([]decimal.Decimal, len(lineItemIDs))
	errs := make([]error, len(lineItemIDs))

	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for i, id := range lineItemIDs {
		g.Go(func() error {
			subtotals[i], errs[i] = a.subtotal(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	total := decimal.Zero
	for i := range lineItemIDs {
		if errs[i] != nil {
			return decimal.Zero, errs[i]
		}
		total = total.Add(subtotals[i])
	}
	return total.Round(2), nil
}

func (a *PriceAggregator) subtotal(ctx context.Context, lineItemID string) (decimal.Decimal, error) {
	item, err := a.lineItems.GetByID(ctx, lineItemID)
	if err != nil {
		return decimal.Zero, storeError(err, "line item "+lineItemID+" not found")
	}
	product, err := a.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return decimal.Zero, storeError(err, "product "+item.ProductID+" not found")
	}
	return product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))), nil
}
