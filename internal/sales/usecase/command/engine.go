package command

import (
	"context"
	"errors"
	"time"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/metrics"
)

// engine holds what every sale operation needs
type engine struct {
	store  domain.Store
	events domain.EventPublisher
}

func newEngine(store domain.Store, events domain.EventPublisher) engine {
	if events == nil {
		events = domain.NopPublisher{}
	}
	return engine{store: store, events: events}
}

// publish sends event after commit. Failures are logged and never undo the operation.
func (e engine) publish(ctx context.Context, event domain.SaleEvent) {
	if err := e.events.PublishSaleEvent(ctx, event); err != nil {
		logger.ForSale(ctx, event.EventType, event.SaleID).Warn().
			Err(err).
			Msg("Failed to publish sale event")
	}
}

// observe records metrics and logs the outcome of one operation
func observe(ctx context.Context, op domain.Operation, saleID uint, start time.Time, err error) {
	metrics.ObserveSaleOperation(string(op), start, err)
	if err == nil {
		return
	}

	log := logger.ForSale(ctx, string(op), saleID)
	if isBusinessError(err) {
		log.Warn().Err(err).Msg("Sale operation rejected")
		return
	}
	log.Error().Err(err).Msg("Sale operation failed")
}

func isBusinessError(err error) bool {
	var saleErr *domain.SaleError
	return errors.As(err, &saleErr) ||
		errors.Is(err, domain.ErrSaleNotFound) ||
		errors.Is(err, domain.ErrCustomerNotFound) ||
		errors.Is(err, domain.ErrLockTimeout) ||
		errors.Is(err, invdomain.ErrUnitNotFound)
}

// lockSale locks the sale and rejects it unless op may run from its current state
func lockSale(tx domain.Tx, op domain.Operation, saleID uint) (*domain.Sale, error) {
	sale, err := tx.LockSale(saleID)
	if err != nil {
		return nil, err
	}
	if !domain.CanApply(op, sale.State) {
		return nil, &domain.SaleError{Op: op, SaleID: saleID, Err: domain.ErrInvalidTransition, Details: "state " + string(sale.State)}
	}
	return sale, nil
}

// releaseReserved returns the sale's RESERVED units to AVAILABLE and leaves every other unit alone
func releaseReserved(tx domain.Tx, sale *domain.Sale) ([]uint, error) {
	units, err := tx.LockUnits(sale.UnitIDs())
	if err != nil {
		return nil, err
	}

	var released []uint
	for _, unit := range units {
		if unit.State == invdomain.UnitReserved {
			released = append(released, unit.ID)
		}
	}
	if err := tx.SetUnitsState(released, invdomain.UnitAvailable); err != nil {
		return nil, err
	}
	return released, nil
}

func now() *time.Time {
	t := time.Now()
	return &t
}
