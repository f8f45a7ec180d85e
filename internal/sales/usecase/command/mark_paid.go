package command

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/metrics"
)

// MarkPaidCommand records a payment and closes the sale when payments cover the total.
// With RequireReserved set every unit must have been reserved beforehand.
type MarkPaidCommand struct {
	SaleID          uint
	Method          domain.PaymentMethod
	Amount          decimal.Decimal
	Reference       string
	RequireReserved bool
}

// MarkPaidHandler handles mark paid command
type MarkPaidHandler struct {
	engine
}

// NewMarkPaidHandler creates a new mark paid handler
func NewMarkPaidHandler(store domain.Store, events domain.EventPublisher) *MarkPaidHandler {
	return &MarkPaidHandler{engine: newEngine(store, events)}
}

// Handle executes the mark paid command. On any failure the payment is not kept.
func (h *MarkPaidHandler) Handle(ctx context.Context, cmd MarkPaidCommand) (sale *domain.Sale, err error) {
	const op = domain.OpMarkPaid
	start := time.Now()
	defer func() { observe(ctx, op, cmd.SaleID, start, err) }()

	if !cmd.Method.Valid() {
		return nil, &domain.SaleError{Op: op, SaleID: cmd.SaleID, Err: domain.ErrInvalidPaymentMethod, Details: string(cmd.Method)}
	}

	// units that moved to SOLD, keyed by the state they left
	moved := map[invdomain.UnitState]int{}
	err = h.store.WithinTx(ctx, func(tx domain.Tx) error {
		s, err := lockSale(tx, op, cmd.SaleID)
		if err != nil {
			return err
		}
		if cmd.Amount.IsNegative() {
			return domain.Fail(op, s.ID, domain.ErrInvalidAmount)
		}

		s.Recompute()
		if err := tx.SaveSale(s); err != nil {
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
			if err := checkPayable(op, s.ID, unit, cmd.RequireReserved); err != nil {
				return err
			}
		}

		payment := &domain.Payment{
			SaleID:    s.ID,
			Method:    cmd.Method,
			Amount:    cmd.Amount.Round(2),
			Reference: cmd.Reference,
			PaidAt:    time.Now(),
		}
		if err := tx.CreatePayment(payment); err != nil {
			return err
		}
		s.Payments = append(s.Payments, *payment)

		if paid := s.PaidAmount(); paid.LessThan(s.Total) {
			return &domain.SaleError{
				Op:      op,
				SaleID:  s.ID,
				Err:     domain.ErrInsufficientPayment,
				Details: "paid " + paid.StringFixed(2) + " of " + s.Total.StringFixed(2),
			}
		}

		for _, unit := range units {
			moved[unit.State]++
		}
		if err := tx.SetUnitsState(s.UnitIDs(), invdomain.UnitSold); err != nil {
			return err
		}

		s.State = domain.NextState(op, s.State)
		if s.PaidAt == nil {
			s.PaidAt = now()
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

	for from, n := range moved {
		metrics.UnitStateChanged(string(from), string(invdomain.UnitSold), n)
	}
	logger.ForSale(ctx, string(op), sale.ID).Info().
		Str("folio", sale.Folio).
		Str("method", string(cmd.Method)).
		Str("amount", cmd.Amount.StringFixed(2)).
		Str("total", sale.Total.StringFixed(2)).
		Msg("Sale paid")

	event := domain.NewSaleEvent(domain.EventPaid, sale, sale.UnitIDs())
	amount := cmd.Amount.Round(2)
	event.Amount = &amount
	h.publish(ctx, event)

	return sale, nil
}

func checkPayable(op domain.Operation, saleID uint, unit invdomain.Unit, requireReserved bool) error {
	details := "state " + string(unit.State)
	switch {
	case unit.State == invdomain.UnitSold:
		return domain.FailUnit(op, saleID, unit.ID, domain.ErrUnitConflict, details)
	case unit.State == invdomain.UnitDecommissioned:
		return domain.FailUnit(op, saleID, unit.ID, domain.ErrUnitUnavailable, details)
	case requireReserved && unit.State != invdomain.UnitReserved:
		return domain.FailUnit(op, saleID, unit.ID, domain.ErrUnitNotReserved, details)
	case unit.State != invdomain.UnitReserved && unit.State != invdomain.UnitAvailable:
		return domain.FailUnit(op, saleID, unit.ID, domain.ErrUnitUnavailable, details)
	}
	return nil
}
