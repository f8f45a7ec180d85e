package query

import (
	"context"
	"fmt"

	"github.com/tair/stockroom/internal/inventory/domain"
)

// ListUnitsQuery represents the query to list units
type ListUnitsQuery struct {
	State     domain.UnitState
	ProductID uint
	Location  string
	Q         string
	Limit     int
	Offset    int
}

// ListUnitsHandler handles list units query
type ListUnitsHandler struct {
	repo domain.UnitRepository
}

// NewListUnitsHandler creates a new list units handler
func NewListUnitsHandler(repo domain.UnitRepository) *ListUnitsHandler {
	return &ListUnitsHandler{repo: repo}
}

// Handle executes the list units query
func (h *ListUnitsHandler) Handle(ctx context.Context, query ListUnitsQuery) ([]domain.Unit, error) {
	if query.State != "" && !query.State.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrInvalidUnit, query.State)
	}

	units, err := h.repo.FindAll(ctx, domain.UnitFilter{
		State:     query.State,
		ProductID: query.ProductID,
		Location:  query.Location,
		Query:     query.Q,
		Limit:     clampLimit(query.Limit, 10, 100),
		Offset:    max(query.Offset, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}

	return units, nil
}

func clampLimit(limit, fallback, ceiling int) int {
	if limit <= 0 {
		return fallback
	}
	return min(limit, ceiling)
}
