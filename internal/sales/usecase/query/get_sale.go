package query

import (
	"context"

	"github.com/tair/stockroom/internal/sales/domain"
)

// GetSaleHandler loads a sale with its customer, lines, units and payments
type GetSaleHandler struct {
	store domain.Store
}

// NewGetSaleHandler creates a new get sale handler
func NewGetSaleHandler(store domain.Store) *GetSaleHandler {
	return &GetSaleHandler{store: store}
}

// Handle executes the get sale query
func (h *GetSaleHandler) Handle(ctx context.Context, id uint) (*domain.Sale, error) {
	if id == 0 {
		return nil, domain.ErrSaleNotFound
	}
	return h.store.FindSale(ctx, id)
}
