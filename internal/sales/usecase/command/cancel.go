package command

import (
	"context"
	"time"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/metrics"
)

// CancelHandler abandons a draft sale and frees the units it reserved
type CancelHandler struct {
	engine
}

// NewCancelHandler creates a new cancel handler
func NewCancelHandler(store domain.Store, events domain.EventPublisher) *CancelHandler {
	return &CancelHandler{engine: newEngine(store, events)}
}

// Handle is a no-op on an already cancelled sale
func (h *CancelHandler) Handle(ctx context.Context, saleID uint) (sale *domain.Sale, err error) {
	const op = domain.OpCancel
	start := time.Now()
	defer func() { observe(ctx, op, saleID, start, err) }()

	var (
		released []uint
		changed  bool
	)
	err = h.store.WithinTx(ctx, func(tx domain.Tx) error {
		s, err := lockSale(tx, op, saleID)
		if err != nil {
			return err
		}
		sale = s
		if s.State == domain.SaleCancelled {
			return nil
		}

		released, err = releaseReserved(tx, s)
		if err != nil {
			return err
		}

		s.State = domain.NextState(op, s.State)
		changed = true
		return tx.SaveSale(s)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return sale, nil
	}

	metrics.UnitStateChanged(string(invdomain.UnitReserved), string(invdomain.UnitAvailable), len(released))
	logger.ForSale(ctx, string(op), sale.ID).Info().
		Str("folio", sale.Folio).
		Int("released_units", len(released)).
		Msg("Sale cancelled")
	h.publish(ctx, domain.NewSaleEvent(domain.EventCancelled, sale, released))

	return sale, nil
}
