package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tair/stockroom/pkg/database"
)

var (
	ErrSaleNotFound            = errors.New("sale not found")
	ErrLineNotFound            = errors.New("sale line not found")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrInvalidTransition       = errors.New("operation not allowed in the current sale state")
	ErrEmptySale               = errors.New("sale has no lines")
	ErrInvalidAmount           = errors.New("amount cannot be negative")
	ErrInvalidPaymentMethod    = errors.New("unknown payment method")
	ErrUnitUnavailable         = errors.New("unit is not available")
	ErrUnitConflict            = errors.New("unit is already sold")
	ErrUnitNotReserved         = errors.New("unit is not reserved")
	ErrInsufficientPayment     = errors.New("payments do not cover the sale total")
	ErrUnitNotAddable          = errors.New("unit cannot be added to or removed from a sale in its current state")
	ErrDuplicateUnitAssignment = errors.New("unit is already on a sale")
	ErrInvalidCustomer         = errors.New("invalid customer")
	ErrInvalidQuery            = errors.New("invalid query")

	// ErrLockTimeout is retryable: another operation held a needed row for too long
	ErrLockTimeout = database.ErrLockTimeout
)

// SaleError carries the operation and entities involved in a failed sale operation
type SaleError struct {
	Op      Operation
	SaleID  uint
	UnitID  uint
	Err     error
	Details string
}

func (e *SaleError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s sale %d", e.Op, e.SaleID)
	if e.UnitID != 0 {
		fmt.Fprintf(&b, " unit %d", e.UnitID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Details != "" {
		fmt.Fprintf(&b, " (%s)", e.Details)
	}
	return b.String()
}

func (e *SaleError) Unwrap() error {
	return e.Err
}

// Fail builds a SaleError
func Fail(op Operation, saleID uint, err error) *SaleError {
	return &SaleError{Op: op, SaleID: saleID, Err: err}
}

// FailUnit builds a SaleError that names the offending unit
func FailUnit(op Operation, saleID, unitID uint, err error, details string) *SaleError {
	return &SaleError{Op: op, SaleID: saleID, UnitID: unitID, Err: err, Details: details}
}
