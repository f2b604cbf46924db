package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"eshop/internal/models"
	"eshop/internal/repositories"
	"eshop/pkg/metrics"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxStatusLength = 50

// LineItemInput is one requested (quantity, product) pair.
type LineItemInput struct {
	Quantity int    `json:"quantity" validate:"gt=0"`
	Product  string `json:"product" validate:"required,objectid"`
}

// PlaceOrderRequest is the input for placing an order. User is optional and
// defaults to the requester.
type PlaceOrderRequest struct {
	LineItems        []LineItemInput `json:"line_items" validate:"required,min=1,dive"`
	ShippingAddress1 string          `json:"shipping_address1" validate:"required,max=255"`
	ShippingAddress2 string          `json:"shipping_address2" validate:"max=255"`
	City             string          `json:"city" validate:"required,max=100"`
	Zip              string          `json:"zip" validate:"max=20"`
	Country          string          `json:"country" validate:"required,max=100"`
	Phone            string          `json:"phone" validate:"required,max=50"`
	Status           string          `json:"status" validate:"max=50"`
	User             string          `json:"user" validate:"omitempty,objectid"`
}

// Repositories groups the stores the order service works against.
type Repositories struct {
	Orders     repositories.OrderRepository
	LineItems  repositories.LineItemRepository
	Products   repositories.ProductRepository
	Categories repositories.CategoryRepository
	Users      repositories.UserRepository
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders     repositories.OrderRepository
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	users      repositories.UserRepository
	lineItems  *LineItemService
	lineRepo   repositories.LineItemRepository
	pricing    *PriceAggregator
	cascade    *CascadeDeleter
	events     EventPublisher
	metrics    *metrics.OrderMetrics
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewOrderService creates a new OrderService. events and m may be nil.
func NewOrderService(repos Repositories, events EventPublisher, m *metrics.OrderMetrics, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:     repos.Orders,
		products:   repos.Products,
		categories: repos.Categories,
		users:      repos.Users,
		lineItems:  NewLineItemService(repos.LineItems),
		lineRepo:   repos.LineItems,
		pricing:    NewPriceAggregator(repos.LineItems, repos.Products),
		cascade:    NewCascadeDeleter(repos.LineItems, logger),
		events:     events,
		metrics:    m,
		validate:   NewValidator(),
		logger:     logger,
	}
}

// placement records the line items created for one order so they can be
// compensated if a later step fails.
type placement struct {
	mu      sync.Mutex
	created []string
}

func (p *placement) record(id string) {
	p.mu.Lock()
	p.created = append(p.created, id)
	p.mu.Unlock()
}

// PlaceOrder creates the line items, prices them and persists the order.
// Any failure after line items were created removes them again.
func (s *OrderService) PlaceOrder(ctx context.Context, requester Requester, req PlaceOrderRequest) (*models.Order, error) {
	start := time.Now()
	order, err := s.placeOrder(ctx, requester, req)
	if err != nil {
		s.metrics.ObservePlacementFailure(string(KindOf(err)))
		return nil, err
	}
	s.metrics.ObservePlaced(float64(time.Since(start).Milliseconds()))
	return order, nil
}

func (s *OrderService) placeOrder(ctx context.Context, requester Requester, req PlaceOrderRequest) (*models.Order, error) {
	if err := ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	ownerID := req.User
	if ownerID == "" {
		ownerID = requester.UserID
	}
	if err := Authorize(requester, AdminOrOwner(ownerID)); err != nil {
		return nil, err
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, "owner "+ownerID+" not found")
	}

	p := &placement{}
	ids, err := s.createLineItems(ctx, req.LineItems, p)
	if err != nil {
		s.compensate(ctx, p)
		return nil, err
	}

	total, err := s.pricing.ComputeTotal(ctx, ids)
	if err != nil {
		s.compensate(ctx, p)
		return nil, err
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.DefaultOrderStatus
	}
	order := &models.Order{
		LineItemIDs:      ids,
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Zip:              req.Zip,
		Country:          req.Country,
		Phone:            req.Phone,
		Status:           status,
		TotalPrice:       total,
		UserID:           owner.ID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.compensate(ctx, p)
		return nil, storeError(err, "failed to persist order")
	}
	order.User = &models.UserSummary{ID: owner.ID, Name: owner.Name}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int("line_items", len(ids)),
		zap.Stringer("total_price", order.TotalPrice),
	)
	s.publish(ctx, EventOrderCreated, order)
	return order, nil
}

// createLineItems creates one line item per input concurrently and returns
// their ids in input order.
func (s *OrderService) createLineItems(ctx context.Context, inputs []LineItemInput, p *placement) ([]string, error) {
	ids := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, in := range inputs {
		g.Go(func() error {
			id, err := s.lineItems.CreateLineItem(gctx, in.Quantity, in.Product)
			if err != nil {
				return err
			}
			p.record(id)
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// compensate removes every line item recorded for a failed placement. It
// runs detached from request cancellation.
func (s *OrderService) compensate(ctx context.Context, p *placement) {
	p.mu.Lock()
	created := append([]string(nil), p.created...)
	p.mu.Unlock()
	if len(created) == 0 {
		return
	}

	report := s.cascade.CascadeDelete(context.WithoutCancel(ctx), created)
	s.metrics.AddCompensated(len(report.Deleted))
	if len(report.Failed) > 0 {
		s.logger.Error("Placement compensation incomplete",
			zap.Strings("orphaned_line_items", report.Failed),
		)
		return
	}
	s.logger.Info("Placement compensated", zap.Int("line_items", len(report.Deleted)))
}

// GetOrder returns an order with its line items, products, categories and
// owner name. Only administrators and the owner may read it.
func (s *OrderService) GetOrder(ctx context.Context, requester Requester, id string) (*models.Order, error) {
	if !models.IsValidID(id) {
		return nil, validationError("malformed order id %q", id)
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "order "+id+" not found")
	}
	if err := Authorize(requester, AdminOrOwner(order.UserID)); err != nil {
		return nil, err
	}

	items, err := s.expandLineItems(ctx, order.LineItemIDs)
	if err != nil {
		return nil, err
	}
	order.LineItems = items
	if order.User, err = s.ownerSummary(ctx, order.UserID, nil); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns every order with its owner's name. Administrators only.
func (s *OrderService) ListOrders(ctx context.Context, requester Requester) ([]models.Order, error) {
	if err := Authorize(requester, AdminOnly()); err != nil {
		return nil, err
	}
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, storeError(err, "could not retrieve orders")
	}

	owners := make(map[string]*models.UserSummary)
	for i := range orders {
		if orders[i].User, err = s.ownerSummary(ctx, orders[i].UserID, owners); err != nil {
			return nil, err
		}
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListOrdersForUser returns a user's orders, newest first, with line items
// expanded. Administrators only.
func (s *OrderService) ListOrdersForUser(ctx context.Context, requester Requester, userID string) ([]models.Order, error) {
	if err := Authorize(requester, AdminOnly()); err != nil {
		return nil, err
	}
	if !models.IsValidID(userID) {
		return nil, validationError("malformed user id %q", userID)
	}
	orders, err := s.orders.GetByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "could not retrieve orders for user "+userID)
	}
	for i := range orders {
		if orders[i].LineItems, err = s.expandLineItems(ctx, orders[i].LineItemIDs); err != nil {
			return nil, err
		}
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// UpdateStatus replaces the order's status. Administrators only.
func (s *OrderService) UpdateStatus(ctx context.Context, requester Requester, id string, status string) (*models.Order, error) {
	if err := Authorize(requester, AdminOnly()); err != nil {
		return nil, err
	}
	if !models.IsValidID(id) {
		return nil, validationError("malformed order id %q", id)
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, validationError("status is required")
	}
	if len(status) > maxStatusLength {
		return nil, validationError("status must be at most %d characters", maxStatusLength)
	}

	order, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, storeError(err, "order "+id+" not found")
	}
	s.logger.Info("Order status updated", zap.String("order_id", id), zap.String("status", status))
	s.publish(ctx, EventOrderStatusUpdated, order)
	return order, nil
}

// DeleteOrder removes the order and then its line items. Cascade failures
// are reported but do not fail the deletion.
func (s *OrderService) DeleteOrder(ctx context.Context, requester Requester, id string) (*models.Order, CascadeReport, error) {
	if !models.IsValidID(id) {
		return nil, CascadeReport{}, validationError("malformed order id %q", id)
	}
	existing, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, CascadeReport{}, storeError(err, "order "+id+" not found")
	}
	if err := Authorize(requester, AdminOrOwner(existing.UserID)); err != nil {
		return nil, CascadeReport{}, err
	}

	deleted, err := s.orders.Delete(ctx, id)
	if err != nil {
		return nil, CascadeReport{}, storeError(err, "order "+id+" not found")
	}

	report := s.cascade.CascadeDelete(context.WithoutCancel(ctx), deleted.LineItemIDs)
	s.metrics.ObserveDeleted(len(report.Failed))
	if len(report.Failed) > 0 {
		s.logger.Warn("Order deleted with orphaned line items",
			zap.String("order_id", id),
			zap.Int("failed", len(report.Failed)),
			zap.Strings("line_item_ids", report.Failed),
		)
	} else {
		s.logger.Info("Order deleted", zap.String("order_id", id), zap.Int("line_items", len(report.Deleted)))
	}
	s.publish(ctx, EventOrderDeleted, deleted)
	return deleted, report, nil
}

// TotalSales sums the total price of all orders; zero when there are none.
func (s *OrderService) TotalSales(ctx context.Context, requester Requester) (decimal.Decimal, error) {
	if err := Authorize(requester, AdminOnly()); err != nil {
		return decimal.Zero, err
	}
	total, err := s.orders.SumTotalPrice(ctx)
	if err != nil {
		return decimal.Zero, storeError(err, "the order sales cannot be generated")
	}
	return total, nil
}

// CountOrders returns the number of orders; zero is a valid count.
func (s *OrderService) CountOrders(ctx context.Context, requester Requester) (int64, error) {
	if err := Authorize(requester, AdminOnly()); err != nil {
		return 0, err
	}
	n, err := s.orders.Count(ctx)
	if err != nil {
		return 0, storeError(err, "could not count orders")
	}
	return n, nil
}

// expandLineItems resolves line items with their product and category, in
// the given order. Records removed from the catalog are left unexpanded.
func (s *OrderService) expandLineItems(ctx context.Context, ids []string) ([]models.LineItem, error) {
	items := make([]models.LineItem, len(ids))
	found := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, id := range ids {
		g.Go(func() error {
			item, err := s.lineRepo.GetByID(gctx, id)
			if errors.Is(err, repositories.ErrNotFound) {
				s.logger.Warn("Order references missing line item", zap.String("line_item_id", id))
				return nil
			}
			if err != nil {
				return storeError(err, "could not load line item "+id)
			}
			if item.Product, err = s.expandProduct(gctx, item.ProductID); err != nil {
				return err
			}
			items[i], found[i] = *item, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.LineItem, 0, len(ids))
	for i := range items {
		if found[i] {
			out = append(out, items[i])
		}
	}
	return out, nil
}

func (s *OrderService) expandProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(err, "could not load product "+productID)
	}
	if product.CategoryID == "" {
		return product, nil
	}
	category, err := s.categories.GetByID(ctx, product.CategoryID)
	switch {
	case err == nil:
		product.Category = category
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, storeError(err, "could not load category "+product.CategoryID)
	}
	return product, nil
}

// ownerSummary returns the owner's id and display name, consulting cache
// when given. Deleted users keep their id with an empty name.
func (s *OrderService) ownerSummary(ctx context.Context, userID string, cache map[string]*models.UserSummary) (*models.UserSummary, error) {
	if summary, ok := cache[userID]; ok {
		return summary, nil
	}
	summary := &models.UserSummary{ID: userID}
	user, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		summary.Name = user.Name
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, storeError(err, "could not load user "+userID)
	}
	if cache != nil {
		cache[userID] = summary
	}
	return summary, nil
}

func (s *OrderService) publish(ctx context.Context, routingKey string, order *models.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), routingKey, newOrderEvent(order)); err != nil {
		s.logger.Warn("Failed to publish order event",
			zap.String("routing_key", routingKey),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}
