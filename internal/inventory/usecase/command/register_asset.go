package command

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sequence"
	"github.com/tair/stockroom/pkg/logger"
)

// RegisterAssetCommand represents the command to record equipment kept for internal use
type RegisterAssetCommand struct {
	Category           string
	Location           string
	State              domain.AssetState
	Brand              string
	Model              string
	Serial             string
	InternalTag        string
	Custodian          string
	Notes              string
	SuggestedPrice     *decimal.Decimal
	RegisteredOn       time.Time
	Active             *bool
	DecommissionedOn   *time.Time
	DecommissionReason string
}

// RegisterAssetHandler handles register asset command
type RegisterAssetHandler struct {
	repo  domain.AssetRepository
	codes sequence.Generator
}

// NewRegisterAssetHandler creates a new register asset handler
func NewRegisterAssetHandler(repo domain.AssetRepository, codes sequence.Generator) *RegisterAssetHandler {
	return &RegisterAssetHandler{repo: repo, codes: codes}
}

// Handle validates the asset before drawing a code so rejected input never burns a number
func (h *RegisterAssetHandler) Handle(ctx context.Context, cmd RegisterAssetCommand) (*domain.Asset, error) {
	asset := &domain.Asset{
		Category:           cmd.Category,
		Location:           cmd.Location,
		State:              cmd.State,
		Brand:              cmd.Brand,
		Model:              cmd.Model,
		Serial:             cmd.Serial,
		InternalTag:        cmd.InternalTag,
		Custodian:          cmd.Custodian,
		Notes:              cmd.Notes,
		SuggestedPrice:     cmd.SuggestedPrice,
		RegisteredOn:       cmd.RegisteredOn,
		Active:             true,
		DecommissionedOn:   cmd.DecommissionedOn,
		DecommissionReason: cmd.DecommissionReason,
	}
	if cmd.Active != nil {
		asset.Active = *cmd.Active
	}
	if asset.RegisteredOn.IsZero() {
		asset.RegisteredOn = time.Now()
	}

	if err := asset.Normalize(); err != nil {
		return nil, err
	}

	code, err := h.codes.NextAssetCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign asset code: %w", err)
	}
	asset.Code = code

	if err := h.repo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to register asset: %w", err)
	}

	logger.WithContext(ctx).Info().
		Uint("asset_id", asset.ID).
		Str("code", asset.Code).
		Str("state", string(asset.State)).
		Msg("Asset registered")

	return asset, nil
}
