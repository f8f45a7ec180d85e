package command

import (
	"context"
	"time"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/metrics"
)

// DeleteSaleHandler removes a draft or cancelled sale with its lines and payments
type DeleteSaleHandler struct {
	engine
}

// NewDeleteSaleHandler creates a new delete sale handler
func NewDeleteSaleHandler(store domain.Store, events domain.EventPublisher) *DeleteSaleHandler {
	return &DeleteSaleHandler{engine: newEngine(store, events)}
}

// Handle executes the delete sale command
func (h *DeleteSaleHandler) Handle(ctx context.Context, saleID uint) (err error) {
	const op = domain.OpDelete
	start := time.Now()
	defer func() { observe(ctx, op, saleID, start, err) }()

	var (
		sale     *domain.Sale
		released []uint
	)
	err = h.store.WithinTx(ctx, func(tx domain.Tx) error {
		s, err := lockSale(tx, op, saleID)
		if err != nil {
			return err
		}

		released, err = releaseReserved(tx, s)
		if err != nil {
			return err
		}
		sale = s
		return tx.DeleteSale(s.ID)
	})
	if err != nil {
		return err
	}

	metrics.UnitStateChanged(string(invdomain.UnitReserved), string(invdomain.UnitAvailable), len(released))
	logger.ForSale(ctx, string(op), sale.ID).Info().
		Str("folio", sale.Folio).
		Int("released_units", len(released)).
		Msg("Sale deleted")
	h.publish(ctx, domain.NewSaleEvent(domain.EventDeleted, sale, sale.UnitIDs()))

	return nil
}
