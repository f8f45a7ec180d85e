package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitStateAddable(t *testing.T) {
	tests := []struct {
		state UnitState
		want  bool
	}{
		{UnitAvailable, true},
		{UnitInRepair, true},
		{UnitReserved, false},
		{UnitSold, false},
		{UnitDecommissioned, false},
		{UnitDisposed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Addable())
		})
	}
}

func TestCanAdminTransition(t *testing.T) {
	tests := []struct {
		from, to UnitState
		want     bool
	}{
		{UnitAvailable, UnitInRepair, true},
		{UnitInRepair, UnitAvailable, true},
		{UnitAvailable, UnitDecommissioned, true},
		{UnitDecommissioned, UnitDisposed, true},
		{UnitDecommissioned, UnitAvailable, false},
		{UnitDisposed, UnitAvailable, false},
		// engine-owned states are never reachable by hand
		{UnitAvailable, UnitReserved, false},
		{UnitAvailable, UnitSold, false},
		{UnitReserved, UnitAvailable, false},
		{UnitSold, UnitAvailable, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanAdminTransition(tt.from, tt.to))
		})
	}
}

func TestAssetNormalize(t *testing.T) {
	registered := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	before := registered.AddDate(0, 0, -1)
	after := registered.AddDate(0, 1, 0)
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name    string
		asset   Asset
		wantErr bool
		check   func(t *testing.T, a Asset)
	}{
		{
			name:  "defaults to storage",
			asset: Asset{Category: "Laptop", Location: "Almacén", Active: true, RegisteredOn: registered},
			check: func(t *testing.T, a Asset) {
				assert.Equal(t, AssetInStorage, a.State)
			},
		},
		{
			name: "active asset drops decommission data",
			asset: Asset{Category: "Laptop", Location: "Sistemas", State: AssetInUse, Active: true,
				RegisteredOn: registered, DecommissionedOn: &after, DecommissionReason: "Obsoleto"},
			check: func(t *testing.T, a Asset) {
				assert.Nil(t, a.DecommissionedOn)
				assert.Empty(t, a.DecommissionReason)
			},
		},
		{
			name: "decommissioned state forces inactive",
			asset: Asset{Category: "Monitor", Location: "Oficina", State: AssetDecommissioned, Active: true,
				RegisteredOn: registered, DecommissionedOn: &after, DecommissionReason: "Daño irreparable"},
			check: func(t *testing.T, a Asset) {
				assert.False(t, a.Active)
			},
		},
		{
			name: "inactive without date",
			asset: Asset{Category: "Monitor", Location: "Oficina", State: AssetDisposed,
				RegisteredOn: registered, DecommissionReason: "Obsoleto"},
			wantErr: true,
		},
		{
			name: "inactive without reason",
			asset: Asset{Category: "Monitor", Location: "Oficina", State: AssetDisposed,
				RegisteredOn: registered, DecommissionedOn: &after},
			wantErr: true,
		},
		{
			name: "decommission before registration",
			asset: Asset{Category: "Monitor", Location: "Oficina", State: AssetDecommissioned,
				RegisteredOn: registered, DecommissionedOn: &before, DecommissionReason: "Obsoleto"},
			wantErr: true,
		},
		{
			name:    "missing location",
			asset:   Asset{Category: "Monitor", Active: true, RegisteredOn: registered},
			wantErr: true,
		},
		{
			name:    "negative suggested price",
			asset:   Asset{Category: "Monitor", Location: "Oficina", Active: true, RegisteredOn: registered, SuggestedPrice: &negative},
			wantErr: true,
		},
		{
			name:    "unknown state",
			asset:   Asset{Category: "Monitor", Location: "Oficina", State: "LOST", Active: true, RegisteredOn: registered},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.asset
			err := a.Normalize()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAsset)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, a)
			}
		})
	}
}
