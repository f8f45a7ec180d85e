package query

import (
	"context"
	"fmt"

	"github.com/tair/stockroom/internal/inventory/domain"
)

// ListProductsQuery represents the query to list catalog entries
type ListProductsQuery struct {
	Limit  int
	Offset int
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(ctx context.Context, query ListProductsQuery) ([]domain.Product, error) {
	products, err := h.repo.FindAll(ctx, clampLimit(query.Limit, 10, 100), max(query.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
