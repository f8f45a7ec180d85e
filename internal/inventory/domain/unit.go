package domain

import (
	"context"
	"errors"
	"time"
)

// UnitState is the lifecycle state of a physical unit
type UnitState string

// Unit states. RESERVED and SOLD are owned by the sales engine.
const (
	UnitAvailable      UnitState = "AVAILABLE"
	UnitReserved       UnitState = "RESERVED"
	UnitSold           UnitState = "SOLD"
	UnitInRepair       UnitState = "IN_REPAIR"
	UnitDecommissioned UnitState = "DECOMMISSIONED"
	UnitDisposed       UnitState = "DISPOSED"
)

var (
	ErrUnitNotFound       = errors.New("unit not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidStateChange = errors.New("invalid unit state change")
	ErrInvalidUnit        = errors.New("invalid unit")
)

// Valid reports whether s is a known unit state
func (s UnitState) Valid() bool {
	switch s {
	case UnitAvailable, UnitReserved, UnitSold, UnitInRepair, UnitDecommissioned, UnitDisposed:
		return true
	}
	return false
}

// EngineOwned reports whether only sale operations may move a unit into or out of s
func (s UnitState) EngineOwned() bool {
	return s == UnitReserved || s == UnitSold
}

// Addable reports whether a unit in state s may be put on (or taken off) a sale line.
// RESERVED means another draft sale already holds it.
func (s UnitState) Addable() bool {
	switch s {
	case UnitSold, UnitDecommissioned, UnitDisposed, UnitReserved:
		return false
	}
	return true
}

// adminTransitions lists the state changes an administrator may apply by hand
var adminTransitions = map[UnitState][]UnitState{
	UnitAvailable:      {UnitInRepair, UnitDecommissioned, UnitDisposed},
	UnitInRepair:       {UnitAvailable, UnitDecommissioned, UnitDisposed},
	UnitDecommissioned: {UnitDisposed},
}

// CanAdminTransition reports whether an administrative action may move a unit from one state to another
func CanAdminTransition(from, to UnitState) bool {
	for _, allowed := range adminTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Unit represents one physical, individually sellable item
type Unit struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"size:30;not null;uniqueIndex"`
	ProductID   uint      `json:"product_id" gorm:"not null;index"`
	Product     *Product  `json:"product,omitempty" gorm:"constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Serial      *string   `json:"serial,omitempty" gorm:"size:120;uniqueIndex"`
	InternalTag string    `json:"internal_tag" gorm:"size:60;index"`
	Condition   string    `json:"condition" gorm:"size:50"`
	Grade       string    `json:"grade" gorm:"size:10"`
	Accessories string    `json:"accessories" gorm:"size:200"`
	Location    string    `json:"location" gorm:"size:120"`
	State       UnitState `json:"state" gorm:"size:20;not null;default:AVAILABLE;index"`
	Notes       string    `json:"notes"`
	CreatedBy   *uint     `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Unit) TableName() string {
	return "units"
}

// UnitFilter narrows unit listings
type UnitFilter struct {
	State     UnitState
	ProductID uint
	Location  string
	Query     string
	Limit     int
	Offset    int
}

// UnitRepository defines the contract for unit data access
type UnitRepository interface {
	Create(ctx context.Context, unit *Unit) error
	FindByID(ctx context.Context, id uint) (*Unit, error)
	FindByCode(ctx context.Context, code string) (*Unit, error)
	FindAll(ctx context.Context, filter UnitFilter) ([]Unit, error)
	// ChangeState locks the unit row and applies change to its current state atomically.
	ChangeState(ctx context.Context, id uint, change func(current UnitState) (UnitState, error)) (*Unit, error)
}
