package command

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/pkg/logger"
)

// AddLineCommand puts a unit on a draft sale. A nil Price takes the product's sale price.
type AddLineCommand struct {
	SaleID   uint
	UnitID   uint
	Price    *decimal.Decimal
	Discount decimal.Decimal
}

// AddLineHandler handles add line command
type AddLineHandler struct {
	engine
}

// NewAddLineHandler creates a new add line handler
func NewAddLineHandler(store domain.Store, events domain.EventPublisher) *AddLineHandler {
	return &AddLineHandler{engine: newEngine(store, events)}
}

// Handle executes the add line command
func (h *AddLineHandler) Handle(ctx context.Context, cmd AddLineCommand) (sale *domain.Sale, err error) {
	const op = domain.OpAddLine
	start := time.Now()
	defer func() { observe(ctx, op, cmd.SaleID, start, err) }()

	if cmd.Discount.IsNegative() || (cmd.Price != nil && cmd.Price.IsNegative()) {
		return nil, domain.FailUnit(op, cmd.SaleID, cmd.UnitID, domain.ErrInvalidAmount, "price and discount must be >= 0")
	}

	var line *domain.SaleLine
	err = h.store.WithinTx(ctx, func(tx domain.Tx) error {
		s, err := lockSale(tx, op, cmd.SaleID)
		if err != nil {
			return err
		}

		units, err := tx.LockUnits([]uint{cmd.UnitID})
		if err != nil {
			return err
		}
		unit := units[0]
		if !unit.State.Addable() {
			return domain.FailUnit(op, s.ID, unit.ID, domain.ErrUnitNotAddable, "state "+string(unit.State))
		}

		assigned, err := tx.UnitAssigned(unit.ID)
		if err != nil {
			return err
		}
		if assigned {
			return domain.FailUnit(op, s.ID, unit.ID, domain.ErrDuplicateUnitAssignment, "")
		}

		price := decimal.Zero
		if cmd.Price != nil {
			price = *cmd.Price
		} else {
			product, err := tx.FindProduct(unit.ProductID)
			if err != nil {
				return err
			}
			price = product.SalePrice
		}

		line = &domain.SaleLine{
			SaleID:   s.ID,
			UnitID:   unit.ID,
			Price:    price.Round(2),
			Discount: cmd.Discount.Round(2),
		}
		if err := tx.CreateLine(line); err != nil {
			if errors.Is(err, domain.ErrDuplicateUnitAssignment) {
				return domain.FailUnit(op, s.ID, unit.ID, err, "")
			}
			return err
		}

		s.Lines = append(s.Lines, *line)
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

	logger.ForSale(ctx, string(op), sale.ID).Info().
		Str("folio", sale.Folio).
		Uint("unit_id", line.UnitID).
		Str("total", sale.Total.StringFixed(2)).
		Msg("Line added")
	h.publish(ctx, domain.NewSaleEvent(domain.EventLineAdded, sale, []uint{line.UnitID}))

	return sale, nil
}

// RemoveLineCommand takes a line off a draft or cancelled sale
type RemoveLineCommand struct {
	SaleID uint
	LineID uint
}

// RemoveLineHandler handles remove line command
type RemoveLineHandler struct {
	engine
}

// NewRemoveLineHandler creates a new remove line handler
func NewRemoveLineHandler(store domain.Store, events domain.EventPublisher) *RemoveLineHandler {
	return &RemoveLineHandler{engine: newEngine(store, events)}
}

// Handle refuses to detach a unit that is reserved or already out of stock
func (h *RemoveLineHandler) Handle(ctx context.Context, cmd RemoveLineCommand) (sale *domain.Sale, err error) {
	const op = domain.OpRemoveLine
	start := time.Now()
	defer func() { observe(ctx, op, cmd.SaleID, start, err) }()

	var unitID uint
	err = h.store.WithinTx(ctx, func(tx domain.Tx) error {
		s, err := lockSale(tx, op, cmd.SaleID)
		if err != nil {
			return err
		}

		line, ok := s.Line(cmd.LineID)
		if !ok {
			return domain.ErrLineNotFound
		}
		unitID = line.UnitID

		units, err := tx.LockUnits([]uint{line.UnitID})
		if err != nil {
			return err
		}
		if !units[0].State.Addable() {
			return domain.FailUnit(op, s.ID, line.UnitID, domain.ErrUnitNotAddable, "state "+string(units[0].State))
		}

		if err := tx.DeleteLine(line.ID); err != nil {
			return err
		}

		remaining := make([]domain.SaleLine, 0, len(s.Lines)-1)
		for _, l := range s.Lines {
			if l.ID != cmd.LineID {
				remaining = append(remaining, l)
			}
		}
		s.Lines = remaining
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

	logger.ForSale(ctx, string(op), sale.ID).Info().
		Str("folio", sale.Folio).
		Uint("unit_id", unitID).
		Str("total", sale.Total.StringFixed(2)).
		Msg("Line removed")
	h.publish(ctx, domain.NewSaleEvent(domain.EventLineRemoved, sale, []uint{unitID}))

	return sale, nil
}
