package services

import (
	"context"

	"eshop/internal/repositories"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// CascadeReport summarises a cascade deletion.
type CascadeReport struct {
	Deleted []string `json:"deleted"`
	Failed  []string `json:"failed"`
}

// CascadeDeleter removes the line items of a deleted order. It is best
// effort: failures are reported, never rolled back.
type CascadeDeleter struct {
	lineItems repositories.LineItemRepository
	logger    *zap.Logger
}

// NewCascadeDeleter creates a new CascadeDeleter.
func NewCascadeDeleter(lineItems repositories.LineItemRepository, logger *zap.Logger) *CascadeDeleter {
	return &CascadeDeleter{lineItems: lineItems, logger: logger}
}

// CascadeDelete awaits the removal of every id. Items that are already gone
// count as deleted.
func (c *CascadeDeleter) CascadeDelete(ctx context.Context, lineItemIDs []string) CascadeReport {
	report := CascadeReport{
		Deleted: make([]string, 0, len(lineItemIDs)),
		Failed:  []string{},
	}
	for _, id := range lineItemIDs {
		err := c.lineItems.Delete(ctx, id)
		switch {
		case err == nil:
			report.Deleted = append(report.Deleted, id)
		case errors.Is(err, repositories.ErrNotFound):
			c.logger.Debug("Line item already removed", zap.String("line_item_id", id))
			report.Deleted = append(report.Deleted, id)
		default:
			c.logger.Warn("Failed to remove line item",
				zap.String("line_item_id", id),
				zap.Error(err),
			)
			report.Failed = append(report.Failed, id)
		}
	}
	return report
}
