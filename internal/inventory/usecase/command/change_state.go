package command

import (
	"context"
	"fmt"

	"github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/metrics"
)

// ChangeUnitStateCommand represents an administrative move such as sending a unit to repair
type ChangeUnitStateCommand struct {
	UnitID uint
	State  domain.UnitState
}

// ChangeUnitStateHandler handles change unit state command
type ChangeUnitStateHandler struct {
	repo domain.UnitRepository
}

// NewChangeUnitStateHandler creates a new change unit state handler
func NewChangeUnitStateHandler(repo domain.UnitRepository) *ChangeUnitStateHandler {
	return &ChangeUnitStateHandler{repo: repo}
}

// Handle applies the change under the unit's row lock. RESERVED and SOLD are never reachable here.
func (h *ChangeUnitStateHandler) Handle(ctx context.Context, cmd ChangeUnitStateCommand) (*domain.Unit, error) {
	if cmd.UnitID == 0 {
		return nil, fmt.Errorf("%w: unit id is required", domain.ErrInvalidUnit)
	}
	if !cmd.State.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrInvalidStateChange, cmd.State)
	}

	var from domain.UnitState
	unit, err := h.repo.ChangeState(ctx, cmd.UnitID, func(current domain.UnitState) (domain.UnitState, error) {
		from = current
		if !domain.CanAdminTransition(current, cmd.State) {
			return current, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateChange, current, cmd.State)
		}
		return cmd.State, nil
	})
	if err != nil {
		return nil, err
	}
	unit.State = cmd.State

	metrics.UnitStateChanged(string(from), string(cmd.State), 1)
	logger.WithContext(ctx).Info().
		Uint("unit_id", unit.ID).
		Str("from", string(from)).
		Str("to", string(cmd.State)).
		Msg("Unit state changed")

	return unit, nil
}
