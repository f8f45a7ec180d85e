package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tair/stockroom/internal/inventory/domain"
)

// CreateProductCommand represents the command to add a catalog entry
type CreateProductCommand struct {
	SKU          string
	Name         string
	Description  string
	Brand        string
	Model        string
	Category     string
	Cost         decimal.Decimal
	SalePrice    decimal.Decimal
	MinimumPrice decimal.Decimal
}

// CreateProductHandler handles create product command
type CreateProductHandler struct {
	repo domain.ProductRepository
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository) *CreateProductHandler {
	return &CreateProductHandler{repo: repo}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	cmd.SKU = strings.TrimSpace(cmd.SKU)
	cmd.Name = strings.TrimSpace(cmd.Name)
	if cmd.SKU == "" || cmd.Name == "" {
		return nil, fmt.Errorf("%w: sku and name are required", domain.ErrInvalidProduct)
	}

	for field, amount := range map[string]decimal.Decimal{
		"cost":          cmd.Cost,
		"sale_price":    cmd.SalePrice,
		"minimum_price": cmd.MinimumPrice,
	} {
		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: %s cannot be negative", domain.ErrInvalidProduct, field)
		}
	}

	product := &domain.Product{
		SKU:          cmd.SKU,
		Name:         cmd.Name,
		Description:  cmd.Description,
		Brand:        cmd.Brand,
		Model:        cmd.Model,
		Category:     cmd.Category,
		Cost:         cmd.Cost.Round(2),
		SalePrice:    cmd.SalePrice.Round(2),
		MinimumPrice: cmd.MinimumPrice.Round(2),
		Active:       true,
	}

	if err := h.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}
