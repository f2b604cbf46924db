package services

import (
	"context"
	"time"

	"eshop/internal/models"

	"github.com/shopspring/decimal"
)

// Routing keys for order lifecycle events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
	EventOrderDeleted       = "order.deleted"
)

// EventPublisher delivers order lifecycle events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// OrderEvent is the payload published for every order lifecycle event.
type OrderEvent struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Status      string          `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	LineItemIDs []string        `json:"line_item_ids"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func newOrderEvent(o *models.Order) OrderEvent {
	return OrderEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalPrice:  o.TotalPrice,
		LineItemIDs: o.LineItemIDs,
		OccurredAt:  time.Now().UTC(),
	}
}
