package command

import (
	"context"
	"time"

	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/pkg/logger"
)

// MarkDeliveredHandler hands a paid sale over to the customer
type MarkDeliveredHandler struct {
	engine
}

// NewMarkDeliveredHandler creates a new mark delivered handler
func NewMarkDeliveredHandler(store domain.Store, events domain.EventPublisher) *MarkDeliveredHandler {
	return &MarkDeliveredHandler{engine: newEngine(store, events)}
}

// Handle executes the mark delivered command
func (h *MarkDeliveredHandler) Handle(ctx context.Context, saleID uint) (sale *domain.Sale, err error) {
	const op = domain.OpMarkDelivered
	start := time.Now()
	defer func() { observe(ctx, op, saleID, start, err) }()

	err = h.store.WithinTx(ctx, func(tx domain.Tx) error {
		s, err := lockSale(tx, op, saleID)
		if err != nil {
			return err
		}

		s.State = domain.NextState(op, s.State)
		if s.DeliveredAt == nil {
			s.DeliveredAt = now()
		}
		if err := tx.SaveSale(s); err != nil {
			return err
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.ForSale(ctx, string(op), sale.ID).Info().
		Str("folio", sale.Folio).
		Msg("Sale delivered")
	h.publish(ctx, domain.NewSaleEvent(domain.EventDelivered, sale, sale.UnitIDs()))

	return sale, nil
}
