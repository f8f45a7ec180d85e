package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AssetState is the lifecycle state of an internally used asset
type AssetState string

const (
	AssetInUse          AssetState = "IN_USE"
	AssetInStorage      AssetState = "STORAGE"
	AssetDecommissioned AssetState = "DECOMMISSIONED"
	AssetDisposed       AssetState = "DISPOSED"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrInvalidAsset  = errors.New("invalid asset")
)

// Asset is equipment the organization keeps for its own use (intake, use, decommission)
type Asset struct {
	ID                 uint             `json:"id" gorm:"primaryKey"`
	Code               string           `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Category           string           `json:"category" gorm:"size:100;not null"`
	Location           string           `json:"location" gorm:"size:120;not null"`
	State              AssetState       `json:"state" gorm:"size:20;not null;default:STORAGE"`
	Brand              string           `json:"brand" gorm:"size:80"`
	Model              string           `json:"model" gorm:"size:120"`
	Serial             string           `json:"serial" gorm:"size:120;index"`
	InternalTag        string           `json:"internal_tag" gorm:"size:60;index"`
	Custodian          string           `json:"custodian" gorm:"size:120"`
	Notes              string           `json:"notes"`
	SuggestedPrice     *decimal.Decimal `json:"suggested_price,omitempty" gorm:"type:numeric(12,2)"`
	RegisteredOn       time.Time        `json:"registered_on" gorm:"not null"`
	DecommissionedOn   *time.Time       `json:"decommissioned_on,omitempty"`
	DecommissionReason string           `json:"decommission_reason" gorm:"size:120"`
	Active             bool             `json:"active" gorm:"not null"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TableName specifies the table name
func (Asset) TableName() string {
	return "assets"
}

// Normalize applies the lifecycle rules and reports the first violation.
// The state wins over the active flag; an active asset carries no decommission data.
func (a *Asset) Normalize() error {
	switch a.State {
	case AssetInUse, AssetInStorage:
	case AssetDecommissioned, AssetDisposed:
		a.Active = false
	case "":
		a.State = AssetInStorage
	default:
		return fmt.Errorf("%w: unknown state %q", ErrInvalidAsset, a.State)
	}

	if strings.TrimSpace(a.Category) == "" || strings.TrimSpace(a.Location) == "" {
		return fmt.Errorf("%w: category and location are required", ErrInvalidAsset)
	}
	if a.SuggestedPrice != nil && a.SuggestedPrice.IsNegative() {
		return fmt.Errorf("%w: suggested price cannot be negative", ErrInvalidAsset)
	}

	if a.Active {
		a.DecommissionedOn = nil
		a.DecommissionReason = ""
		return nil
	}

	if a.DecommissionedOn == nil {
		return fmt.Errorf("%w: decommission date is required when the asset is inactive", ErrInvalidAsset)
	}
	if strings.TrimSpace(a.DecommissionReason) == "" {
		return fmt.Errorf("%w: decommission reason is required when the asset is inactive", ErrInvalidAsset)
	}
	if dayOf(*a.DecommissionedOn).Before(dayOf(a.RegisteredOn)) {
		return fmt.Errorf("%w: decommission date cannot precede the registration date", ErrInvalidAsset)
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AssetFilter narrows asset listings
type AssetFilter struct {
	State    AssetState
	Category string
	Location string
	Active   *bool
	Limit    int
	Offset   int
}

// AssetRepository defines the contract for asset data access
type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) error
	FindByID(ctx context.Context, id uint) (*Asset, error)
	FindAll(ctx context.Context, filter AssetFilter) ([]Asset, error)
	Update(ctx context.Context, asset *Asset) error
}
