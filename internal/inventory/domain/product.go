package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidProduct is returned when product data fails validation
var ErrInvalidProduct = errors.New("invalid product")

// Product is the catalog entry a unit is an instance of
type Product struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	SKU          string          `json:"sku" gorm:"size:50;not null;uniqueIndex"`
	Name         string          `json:"name" gorm:"size:200;not null"`
	Description  string          `json:"description"`
	Brand        string          `json:"brand" gorm:"size:100"`
	Model        string          `json:"model" gorm:"size:120"`
	Category     string          `json:"category" gorm:"size:100;index"`
	Cost         decimal.Decimal `json:"cost" gorm:"type:numeric(12,2);not null;default:0"`
	SalePrice    decimal.Decimal `json:"sale_price" gorm:"type:numeric(12,2);not null;default:0"`
	MinimumPrice decimal.Decimal `json:"minimum_price" gorm:"type:numeric(12,2);not null;default:0"`
	Active       bool            `json:"active" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context, limit, offset int) ([]Product, error)
}
