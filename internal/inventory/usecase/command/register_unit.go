package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sequence"
	"github.com/tair/stockroom/pkg/logger"
)

// RegisterUnitCommand represents the command to take a physical unit into inventory
type RegisterUnitCommand struct {
	ProductID   uint
	Serial      string
	InternalTag string
	Condition   string
	Grade       string
	Accessories string
	Location    string
	Notes       string
	CreatedBy   *uint
}

// RegisterUnitHandler handles register unit command
type RegisterUnitHandler struct {
	units    domain.UnitRepository
	products domain.ProductRepository
	codes    sequence.Generator
}

// NewRegisterUnitHandler creates a new register unit handler
func NewRegisterUnitHandler(units domain.UnitRepository, products domain.ProductRepository, codes sequence.Generator) *RegisterUnitHandler {
	return &RegisterUnitHandler{units: units, products: products, codes: codes}
}

// Handle registers the unit as AVAILABLE under a freshly drawn code
func (h *RegisterUnitHandler) Handle(ctx context.Context, cmd RegisterUnitCommand) (*domain.Unit, error) {
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("%w: product_id is required", domain.ErrInvalidUnit)
	}

	if _, err := h.products.FindByID(ctx, cmd.ProductID); err != nil {
		return nil, err
	}

	code, err := h.codes.NextUnitCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign unit code: %w", err)
	}

	unit := &domain.Unit{
		Code:        code,
		ProductID:   cmd.ProductID,
		InternalTag: strings.TrimSpace(cmd.InternalTag),
		Condition:   cmd.Condition,
		Grade:       cmd.Grade,
		Accessories: cmd.Accessories,
		Location:    cmd.Location,
		State:       domain.UnitAvailable,
		Notes:       cmd.Notes,
		CreatedBy:   cmd.CreatedBy,
	}
	if serial := strings.TrimSpace(cmd.Serial); serial != "" {
		unit.Serial = &serial
	}

	if err := h.units.Create(ctx, unit); err != nil {
		return nil, fmt.Errorf("failed to register unit: %w", err)
	}

	logger.WithContext(ctx).Info().
		Uint("unit_id", unit.ID).
		Str("code", unit.Code).
		Uint("product_id", unit.ProductID).
		Msg("Unit registered")

	return unit, nil
}
