package command

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/pkg/logger"
)

// DecommissionAssetCommand retires an asset from use
type DecommissionAssetCommand struct {
	ID     uint
	State  domain.AssetState
	On     time.Time
	Reason string
}

// DecommissionAssetHandler handles decommission asset command
type DecommissionAssetHandler struct {
	repo domain.AssetRepository
}

// NewDecommissionAssetHandler creates a new decommission asset handler
func NewDecommissionAssetHandler(repo domain.AssetRepository) *DecommissionAssetHandler {
	return &DecommissionAssetHandler{repo: repo}
}

// Handle executes the decommission asset command
func (h *DecommissionAssetHandler) Handle(ctx context.Context, cmd DecommissionAssetCommand) (*domain.Asset, error) {
	if cmd.ID == 0 {
		return nil, fmt.Errorf("%w: asset id is required", domain.ErrInvalidAsset)
	}

	switch cmd.State {
	case "":
		cmd.State = domain.AssetDecommissioned
	case domain.AssetDecommissioned, domain.AssetDisposed:
	default:
		return nil, fmt.Errorf("%w: %s is not a retirement state", domain.ErrInvalidAsset, cmd.State)
	}
	if cmd.On.IsZero() {
		cmd.On = time.Now()
	}

	asset, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if asset.State == domain.AssetDisposed {
		return nil, fmt.Errorf("%w: asset %s is already disposed", domain.ErrInvalidAsset, asset.Code)
	}

	asset.State = cmd.State
	asset.Active = false
	asset.DecommissionedOn = &cmd.On
	asset.DecommissionReason = cmd.Reason
	if err := asset.Normalize(); err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to decommission asset: %w", err)
	}

	logger.WithContext(ctx).Info().
		Uint("asset_id", asset.ID).
		Str("code", asset.Code).
		Str("state", string(asset.State)).
		Str("reason", asset.DecommissionReason).
		Msg("Asset decommissioned")

	return asset, nil
}
