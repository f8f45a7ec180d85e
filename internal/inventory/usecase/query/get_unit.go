package query

import (
	"context"
	"fmt"

	"github.com/tair/stockroom/internal/inventory/domain"
)

// GetUnitQuery looks a unit up by id, or by code when the id is zero
type GetUnitQuery struct {
	ID   uint
	Code string
}

// GetUnitHandler handles get unit query
type GetUnitHandler struct {
	repo domain.UnitRepository
}

// NewGetUnitHandler creates a new get unit handler
func NewGetUnitHandler(repo domain.UnitRepository) *GetUnitHandler {
	return &GetUnitHandler{repo: repo}
}

// Handle executes the get unit query
func (h *GetUnitHandler) Handle(ctx context.Context, query GetUnitQuery) (*domain.Unit, error) {
	switch {
	case query.ID != 0:
		return h.repo.FindByID(ctx, query.ID)
	case query.Code != "":
		return h.repo.FindByCode(ctx, query.Code)
	default:
		return nil, fmt.Errorf("%w: id or code is required", domain.ErrInvalidUnit)
	}
}
