package services

import (
	"context"
	"time"

	"eshop/internal/repositories"
	"eshop/pkg/metrics"

	"go.uber.org/zap"
)

// OrphanSweeper deletes line items that no order references once they are
// older than the grace period. It reconciles failed cascades and placements
// that died before compensation ran.
type OrphanSweeper struct {
	lineItems repositories.LineItemRepository
	orders    repositories.OrderRepository
	grace     time.Duration
	metrics   *metrics.OrderMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrphanSweeper creates a new OrphanSweeper.
func NewOrphanSweeper(
	lineItems repositories.LineItemRepository,
	orders repositories.OrderRepository,
	grace time.Duration,
	m *metrics.OrderMetrics,
	logger *zap.Logger,
) *OrphanSweeper {
	return &OrphanSweeper{
		lineItems: lineItems,
		orders:    orders,
		grace:     grace,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Sweep runs one reconciliation pass and returns the number of removed items.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	candidates, err := s.lineItems.ListCreatedBefore(ctx, s.now().Add(-s.grace))
	if err != nil {
		return 0, storeError(err, "failed to list line items")
	}
	if len(candidates) == 0 {
		return 0, nil
	}
	// Read references after candidates so an order committed in between
	// still protects its items.
	refs, err := s.orders.ReferencedLineItemIDs(ctx)
	if err != nil {
		return 0, storeError(err, "failed to list referenced line items")
	}

	removed := 0
	for _, item := range candidates {
		if _, ok := refs[item.ID]; ok {
			continue
		}
		if err := s.lineItems.Delete(ctx, item.ID); err != nil {
			s.logger.Warn("Failed to sweep orphaned line item", zap.String("line_item_id", item.ID), zap.Error(err))
			continue
		}
		removed++
	}
	s.metrics.AddSwept(removed)
	if removed > 0 {
		s.logger.Info("Swept orphaned line items", zap.Int("count", removed))
	}
	return removed, nil
}

// Run sweeps every interval until ctx is done.
func (s *OrphanSweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("Orphan sweep failed", zap.Error(err))
			}
		}
	}
}
