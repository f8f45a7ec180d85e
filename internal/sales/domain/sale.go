package domain

import (
	"time"

	"github.com/shopspring/decimal"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
)

// SaleState is the lifecycle state of a sale
type SaleState string

const (
	SaleDraft     SaleState = "DRAFT"
	SalePaid      SaleState = "PAID"
	SaleDelivered SaleState = "DELIVERED"
	SaleCancelled SaleState = "CANCELLED"
)

// Valid reports whether s is a known sale state
func (s SaleState) Valid() bool {
	switch s {
	case SaleDraft, SalePaid, SaleDelivered, SaleCancelled:
		return true
	}
	return false
}

// PaymentMethod is how a payment was tendered
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "EFECTIVO"
	PaymentTransfer PaymentMethod = "TRANSFERENCIA"
	PaymentCard     PaymentMethod = "TARJETA"
)

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCard:
		return true
	}
	return false
}

// Customer is the buyer a sale is made out to
type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:200;not null;index"`
	TaxID     string    `json:"tax_id" gorm:"size:30;index"`
	Email     string    `json:"email" gorm:"size:120"`
	Phone     string    `json:"phone" gorm:"size:30"`
	Address   string    `json:"address" gorm:"size:300"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (Customer) TableName() string {
	return "customers"
}

// Sale aggregates the lines and payments of one transaction with a customer.
// Totals are derived from the lines and never edited directly.
type Sale struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Folio       string          `json:"folio" gorm:"size:30;not null;uniqueIndex"`
	State       SaleState       `json:"state" gorm:"size:20;not null;default:DRAFT;index"`
	CustomerID  uint            `json:"customer_id" gorm:"not null;index"`
	Customer    *Customer       `json:"customer,omitempty" gorm:"constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	SellerID    *uint           `json:"seller_id,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null;default:0"`
	Discount    decimal.Decimal `json:"discount" gorm:"type:numeric(12,2);not null;default:0"`
	Tax         decimal.Decimal `json:"tax" gorm:"type:numeric(12,2);not null;default:0"`
	Total       decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null;default:0"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty"`
	Lines       []SaleLine      `json:"lines,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Payments    []Payment       `json:"payments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (Sale) TableName() string {
	return "sales"
}

// UnitIDs returns the ids of the units on the sale's lines in ascending order
func (s *Sale) UnitIDs() []uint {
	ids := make([]uint, 0, len(s.Lines))
	for _, line := range s.Lines {
		ids = append(ids, line.UnitID)
	}
	return SortedIDs(ids)
}

// Line returns the line with the given id
func (s *Sale) Line(id uint) (*SaleLine, bool) {
	for i := range s.Lines {
		if s.Lines[i].ID == id {
			return &s.Lines[i], true
		}
	}
	return nil, false
}

// SaleLine puts one physical unit on a sale. A unit appears on at most one line overall.
type SaleLine struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	SaleID    uint            `json:"sale_id" gorm:"not null;index"`
	UnitID    uint            `json:"unit_id" gorm:"not null;uniqueIndex"`
	Unit      *invdomain.Unit `json:"unit,omitempty" gorm:"constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Discount  decimal.Decimal `json:"discount" gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (SaleLine) TableName() string {
	return "sale_lines"
}

// Payment is money received against a sale
type Payment struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	SaleID    uint            `json:"sale_id" gorm:"not null;index"`
	Method    PaymentMethod   `json:"method" gorm:"size:20;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Reference string          `json:"reference" gorm:"size:120"`
	PaidAt    time.Time       `json:"paid_at" gorm:"not null"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}
