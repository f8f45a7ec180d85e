package command

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/internal/sequence"
	"github.com/tair/stockroom/pkg/logger"
)

// CreateSaleCommand opens a draft sale for a customer
type CreateSaleCommand struct {
	CustomerID uint
	SellerID   *uint
}

// CreateSaleHandler handles create sale command
type CreateSaleHandler struct {
	engine
	folios sequence.Generator
}

// NewCreateSaleHandler creates a new create sale handler
func NewCreateSaleHandler(store domain.Store, folios sequence.Generator) *CreateSaleHandler {
	return &CreateSaleHandler{engine: newEngine(store, nil), folios: folios}
}

// Handle draws the folio before anything is written so the insert never waits on the sequence
func (h *CreateSaleHandler) Handle(ctx context.Context, cmd CreateSaleCommand) (sale *domain.Sale, err error) {
	start := time.Now()
	defer func() {
		var id uint
		if sale != nil {
			id = sale.ID
		}
		observe(ctx, domain.OpCreate, id, start, err)
	}()

	if cmd.CustomerID == 0 {
		return nil, fmt.Errorf("%w: customer_id is required", domain.ErrInvalidCustomer)
	}
	if _, err := h.store.FindCustomer(ctx, cmd.CustomerID); err != nil {
		return nil, err
	}

	folio, err := h.folios.NextSaleFolio(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign folio: %w", err)
	}

	sale = &domain.Sale{
		Folio:      folio,
		State:      domain.SaleDraft,
		CustomerID: cmd.CustomerID,
		SellerID:   cmd.SellerID,
		Subtotal:   decimal.Zero,
		Discount:   decimal.Zero,
		Tax:        decimal.Zero,
		Total:      decimal.Zero,
	}
	if err := h.store.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	logger.ForSale(ctx, string(domain.OpCreate), sale.ID).Info().
		Str("folio", sale.Folio).
		Uint("customer_id", sale.CustomerID).
		Msg("Sale created")

	return sale, nil
}
