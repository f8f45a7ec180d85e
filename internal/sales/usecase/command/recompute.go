package command

import (
	"context"
	"time"

	"github.com/tair/stockroom/internal/sales/domain"
)

// RecomputeHandler re-derives and persists a sale's totals in any state
type RecomputeHandler struct {
	engine
}

// NewRecomputeHandler creates a new recompute handler
func NewRecomputeHandler(store domain.Store) *RecomputeHandler {
	return &RecomputeHandler{engine: newEngine(store, nil)}
}

// Handle executes the recompute command
func (h *RecomputeHandler) Handle(ctx context.Context, saleID uint) (sale *domain.Sale, err error) {
	const op = domain.OpRecompute
	start := time.Now()
	defer func() { observe(ctx, op, saleID, start, err) }()

	err = h.store.WithinTx(ctx, func(tx domain.Tx) error {
		s, err := lockSale(tx, op, saleID)
		if err != nil {
			return err
		}
		s.Recompute()
		if err := tx.SaveSale(s); err != nil {
			return err
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}
