package command

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/inventory/repository"
	"github.com/tair/stockroom/internal/sequence"
	"github.com/tair/stockroom/internal/testutil"
)

type fixture struct {
	units    domain.UnitRepository
	products domain.ProductRepository
	assets   domain.AssetRepository
	codes    sequence.Generator
}

func newFixture(t *testing.T) fixture {
	db := testutil.NewDB(t, &domain.Product{}, &domain.Unit{}, &domain.Asset{})
	counter, err := sequence.NewTableCounter(db)
	require.NoError(t, err)

	return fixture{
		units:    repository.NewGormUnitRepository(db, time.Second),
		products: repository.NewGormProductRepository(db),
		assets:   repository.NewGormAssetRepository(db),
		codes:    sequence.NewCodeGenerator(counter),
	}
}

func (f fixture) product(t *testing.T) *domain.Product {
	product, err := NewCreateProductHandler(f.products).Handle(context.Background(), CreateProductCommand{
		SKU:       " LAP-100 ",
		Name:      "ThinkPad T480",
		SalePrice: decimal.RequireFromString("450.499"),
	})
	require.NoError(t, err)
	return product
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	product := f.product(t)

	assert.Equal(t, "LAP-100", product.SKU)
	assert.True(t, product.Active)
	assert.Equal(t, "450.5", product.SalePrice.String())

	_, err := NewCreateProductHandler(f.products).Handle(context.Background(), CreateProductCommand{
		SKU:  "NEG-1",
		Name: "Negative",
		Cost: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	_, err = NewCreateProductHandler(f.products).Handle(context.Background(), CreateProductCommand{Name: "No SKU"})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestRegisterUnit(t *testing.T) {
	f := newFixture(t)
	product := f.product(t)
	handler := NewRegisterUnitHandler(f.units, f.products, f.codes)
	ctx := context.Background()

	first, err := handler.Handle(ctx, RegisterUnitCommand{ProductID: product.ID, Serial: "  PF-123 "})
	require.NoError(t, err)
	assert.Equal(t, "ART-000001", first.Code)
	assert.Equal(t, domain.UnitAvailable, first.State)
	require.NotNil(t, first.Serial)
	assert.Equal(t, "PF-123", *first.Serial)

	second, err := handler.Handle(ctx, RegisterUnitCommand{ProductID: product.ID, Serial: "   "})
	require.NoError(t, err)
	assert.Equal(t, "ART-000002", second.Code)
	assert.Nil(t, second.Serial)

	_, err = handler.Handle(ctx, RegisterUnitCommand{ProductID: 9999})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = handler.Handle(ctx, RegisterUnitCommand{})
	assert.ErrorIs(t, err, domain.ErrInvalidUnit)
}

func TestChangeUnitState(t *testing.T) {
	f := newFixture(t)
	product := f.product(t)
	ctx := context.Background()

	unit, err := NewRegisterUnitHandler(f.units, f.products, f.codes).Handle(ctx, RegisterUnitCommand{ProductID: product.ID})
	require.NoError(t, err)

	handler := NewChangeUnitStateHandler(f.units)

	tests := []struct {
		name    string
		to      domain.UnitState
		want    domain.UnitState
		wantErr error
	}{
		{"to repair", domain.UnitInRepair, domain.UnitInRepair, nil},
		{"cannot reserve by hand", domain.UnitReserved, domain.UnitInRepair, domain.ErrInvalidStateChange},
		{"back to available", domain.UnitAvailable, domain.UnitAvailable, nil},
		{"cannot sell by hand", domain.UnitSold, domain.UnitAvailable, domain.ErrInvalidStateChange},
		{"unknown state", domain.UnitState("LOST"), domain.UnitAvailable, domain.ErrInvalidStateChange},
		{"decommission", domain.UnitDecommissioned, domain.UnitDecommissioned, nil},
		{"no way back", domain.UnitAvailable, domain.UnitDecommissioned, domain.ErrInvalidStateChange},
		{"dispose", domain.UnitDisposed, domain.UnitDisposed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(ctx, ChangeUnitStateCommand{UnitID: unit.ID, State: tt.to})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			stored, err := f.units.FindByID(ctx, unit.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.State)
		})
	}

	_, err = handler.Handle(ctx, ChangeUnitStateCommand{UnitID: 4040, State: domain.UnitInRepair})
	assert.ErrorIs(t, err, domain.ErrUnitNotFound)
}

func TestRegisterAndDecommissionAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	asset, err := NewRegisterAssetHandler(f.assets, f.codes).Handle(ctx, RegisterAssetCommand{
		Category:     "Laptop",
		Location:     "Oficina",
		State:        domain.AssetInUse,
		RegisteredOn: registered,
	})
	require.NoError(t, err)
	assert.Equal(t, "SIS001", asset.Code)
	assert.True(t, asset.Active)

	_, err = NewRegisterAssetHandler(f.assets, f.codes).Handle(ctx, RegisterAssetCommand{Location: "Oficina"})
	assert.ErrorIs(t, err, domain.ErrInvalidAsset)

	decommission := NewDecommissionAssetHandler(f.assets)

	_, err = decommission.Handle(ctx, DecommissionAssetCommand{
		ID: asset.ID, On: registered.AddDate(0, 0, -1), Reason: "Obsoleto",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAsset)

	_, err = decommission.Handle(ctx, DecommissionAssetCommand{ID: asset.ID, On: registered})
	assert.ErrorIs(t, err, domain.ErrInvalidAsset, "reason is required")

	retired, err := decommission.Handle(ctx, DecommissionAssetCommand{
		ID: asset.ID, On: registered.AddDate(1, 0, 0), Reason: "Obsoleto",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssetDecommissioned, retired.State)
	assert.False(t, retired.Active)

	stored, err := f.assets.FindByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, "Obsoleto", stored.DecommissionReason)

	_, err = decommission.Handle(ctx, DecommissionAssetCommand{ID: asset.ID, State: domain.AssetInUse, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidAsset)

	_, err = decommission.Handle(ctx, DecommissionAssetCommand{ID: 777, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}
