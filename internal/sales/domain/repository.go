package domain

import (
	"context"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
)

// SaleFilter narrows sale listings. Query matches the folio or the customer name.
type SaleFilter struct {
	State  SaleState
	Query  string
	Limit  int
	Offset int
}

// Store is the persistence boundary of the sales engine
type Store interface {
	// WithinTx runs fn in one database transaction. Any error rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	CreateCustomer(ctx context.Context, customer *Customer) error
	FindCustomer(ctx context.Context, id uint) (*Customer, error)
	ListCustomers(ctx context.Context, query string, limit, offset int) ([]Customer, error)

	CreateSale(ctx context.Context, sale *Sale) error
	FindSale(ctx context.Context, id uint) (*Sale, error)
	ListSales(ctx context.Context, filter SaleFilter) ([]Sale, error)
}

// Tx is the transactional view of the store. Locks taken through it are held until commit.
type Tx interface {
	// LockSale locks the sale row and loads its lines and payments
	LockSale(id uint) (*Sale, error)
	// LockUnits locks the unit rows in ascending id order and returns them in that order
	LockUnits(ids []uint) ([]invdomain.Unit, error)
	SetUnitsState(ids []uint, state invdomain.UnitState) error
	FindProduct(id uint) (*invdomain.Product, error)

	UnitAssigned(unitID uint) (bool, error)
	CreateLine(line *SaleLine) error
	DeleteLine(id uint) error
	CreatePayment(payment *Payment) error

	// SaveSale persists state, totals and timestamps
	SaveSale(sale *Sale) error
	DeleteSale(id uint) error
}
