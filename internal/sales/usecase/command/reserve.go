package command

import (
	"context"
	"time"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/metrics"
)

// ReserveHandler holds every unit of a draft sale so no other sale can take them
type ReserveHandler struct {
	engine
}

// NewReserveHandler creates a new reserve handler
func NewReserveHandler(store domain.Store, events domain.EventPublisher) *ReserveHandler {
	return &ReserveHandler{engine: newEngine(store, events)}
}

// Handle reserves all units or none of them
func (h *ReserveHandler) Handle(ctx context.Context, saleID uint) (sale *domain.Sale, err error) {
	const op = domain.OpReserve
	start := time.Now()
	defer func() { observe(ctx, op, saleID, start, err) }()

	var reserved []uint
	err = h.store.WithinTx(ctx, func(tx domain.Tx) error {
		s, err := lockSale(tx, op, saleID)
		if err != nil {
			return err
		}
		if len(s.Lines) == 0 {
			return domain.Fail(op, s.ID, domain.ErrEmptySale)
		}

		units, err := tx.LockUnits(s.UnitIDs())
		if err != nil {
			return err
		}
		for _, unit := range units {
			if unit.State != invdomain.UnitAvailable {
				return domain.FailUnit(op, s.ID, unit.ID, domain.ErrUnitUnavailable, "state "+string(unit.State))
			}
		}

		reserved = s.UnitIDs()
		if err := tx.SetUnitsState(reserved, invdomain.UnitReserved); err != nil {
			return err
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.UnitStateChanged(string(invdomain.UnitAvailable), string(invdomain.UnitReserved), len(reserved))
	logger.ForSale(ctx, string(op), sale.ID).Info().
		Str("folio", sale.Folio).
		Int("units", len(reserved)).
		Msg("Units reserved")
	h.publish(ctx, domain.NewSaleEvent(domain.EventUnitsReserved, sale, reserved))

	return sale, nil
}
