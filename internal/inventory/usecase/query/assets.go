package query

import (
	"context"
	"fmt"

	"github.com/tair/stockroom/internal/inventory/domain"
)

// GetAssetQuery represents the query to get an asset
type GetAssetQuery struct {
	ID uint
}

// GetAssetHandler handles get asset query
type GetAssetHandler struct {
	repo domain.AssetRepository
}

// NewGetAssetHandler creates a new get asset handler
func NewGetAssetHandler(repo domain.AssetRepository) *GetAssetHandler {
	return &GetAssetHandler{repo: repo}
}

// Handle executes the get asset query
func (h *GetAssetHandler) Handle(ctx context.Context, query GetAssetQuery) (*domain.Asset, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidAsset)
	}
	return h.repo.FindByID(ctx, query.ID)
}

// ListAssetsQuery represents the query to list assets
type ListAssetsQuery struct {
	State    domain.AssetState
	Category string
	Location string
	Active   *bool
	Limit    int
	Offset   int
}

// ListAssetsHandler handles list assets query
type ListAssetsHandler struct {
	repo domain.AssetRepository
}

// NewListAssetsHandler creates a new list assets handler
func NewListAssetsHandler(repo domain.AssetRepository) *ListAssetsHandler {
	return &ListAssetsHandler{repo: repo}
}

// Handle executes the list assets query
func (h *ListAssetsHandler) Handle(ctx context.Context, query ListAssetsQuery) ([]domain.Asset, error) {
	assets, err := h.repo.FindAll(ctx, domain.AssetFilter{
		State:    query.State,
		Category: query.Category,
		Location: query.Location,
		Active:   query.Active,
		Limit:    clampLimit(query.Limit, 10, 100),
		Offset:   max(query.Offset, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}
