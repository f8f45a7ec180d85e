package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stockroom/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// UnitRepositoryWithTracing wraps a unit repository with tracing
type UnitRepositoryWithTracing struct {
	next domain.UnitRepository
}

// NewUnitRepositoryWithTracing creates a new repository with tracing
func NewUnitRepositoryWithTracing(next domain.UnitRepository) *UnitRepositoryWithTracing {
	return &UnitRepositoryWithTracing{next: next}
}

func (r *UnitRepositoryWithTracing) Create(ctx context.Context, unit *domain.Unit) error {
	ctx, span := tracer.Start(ctx, "repository.Unit.Create",
		trace.WithAttributes(
			attribute.String("unit.code", unit.Code),
			attribute.Int("unit.product_id", int(unit.ProductID)),
		),
	)
	defer span.End()

	if err := r.next.Create(ctx, unit); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("unit.id", int(unit.ID)))
	return nil
}

func (r *UnitRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.Unit, error) {
	ctx, span := tracer.Start(ctx, "repository.Unit.FindByID",
		trace.WithAttributes(attribute.Int("unit.id", int(id))),
	)
	defer span.End()

	unit, err := r.next.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("unit.state", string(unit.State)))
	return unit, nil
}

func (r *UnitRepositoryWithTracing) FindByCode(ctx context.Context, code string) (*domain.Unit, error) {
	ctx, span := tracer.Start(ctx, "repository.Unit.FindByCode",
		trace.WithAttributes(attribute.String("unit.code", code)),
	)
	defer span.End()

	unit, err := r.next.FindByCode(ctx, code)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("unit.id", int(unit.ID)))
	return unit, nil
}

func (r *UnitRepositoryWithTracing) FindAll(ctx context.Context, filter domain.UnitFilter) ([]domain.Unit, error) {
	ctx, span := tracer.Start(ctx, "repository.Unit.FindAll",
		trace.WithAttributes(
			attribute.String("query.state", string(filter.State)),
			attribute.Int("query.limit", filter.Limit),
			attribute.Int("query.offset", filter.Offset),
		),
	)
	defer span.End()

	units, err := r.next.FindAll(ctx, filter)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(units)))
	return units, nil
}

func (r *UnitRepositoryWithTracing) ChangeState(ctx context.Context, id uint, change func(domain.UnitState) (domain.UnitState, error)) (*domain.Unit, error) {
	ctx, span := tracer.Start(ctx, "repository.Unit.ChangeState",
		trace.WithAttributes(attribute.Int("unit.id", int(id))),
	)
	defer span.End()

	unit, err := r.next.ChangeState(ctx, id, change)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("unit.state", string(unit.State)))
	return unit, nil
}

// ProductRepositoryWithTracing wraps a product repository with tracing
type ProductRepositoryWithTracing struct {
	next domain.ProductRepository
}

func NewProductRepositoryWithTracing(next domain.ProductRepository) *ProductRepositoryWithTracing {
	return &ProductRepositoryWithTracing{next: next}
}

func (r *ProductRepositoryWithTracing) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.Product.Create",
		trace.WithAttributes(attribute.String("product.sku", product.SKU)),
	)
	defer span.End()

	if err := r.next.Create(ctx, product); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("product.id", int(product.ID)))
	return nil
}

func (r *ProductRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.Product.FindByID",
		trace.WithAttributes(attribute.Int("product.id", int(id))),
	)
	defer span.End()

	product, err := r.next.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return product, nil
}

func (r *ProductRepositoryWithTracing) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.Product.FindBySKU",
		trace.WithAttributes(attribute.String("product.sku", sku)),
	)
	defer span.End()

	product, err := r.next.FindBySKU(ctx, sku)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return product, nil
}

func (r *ProductRepositoryWithTracing) FindAll(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.Product.FindAll",
		trace.WithAttributes(
			attribute.Int("query.limit", limit),
			attribute.Int("query.offset", offset),
		),
	)
	defer span.End()

	products, err := r.next.FindAll(ctx, limit, offset)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, nil
}

// AssetRepositoryWithTracing wraps an asset repository with tracing
type AssetRepositoryWithTracing struct {
	next domain.AssetRepository
}

func NewAssetRepositoryWithTracing(next domain.AssetRepository) *AssetRepositoryWithTracing {
	return &AssetRepositoryWithTracing{next: next}
}

func (r *AssetRepositoryWithTracing) Create(ctx context.Context, asset *domain.Asset) error {
	ctx, span := tracer.Start(ctx, "repository.Asset.Create",
		trace.WithAttributes(
			attribute.String("asset.code", asset.Code),
			attribute.String("asset.category", asset.Category),
		),
	)
	defer span.End()

	if err := r.next.Create(ctx, asset); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("asset.id", int(asset.ID)))
	return nil
}

func (r *AssetRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.Asset, error) {
	ctx, span := tracer.Start(ctx, "repository.Asset.FindByID",
		trace.WithAttributes(attribute.Int("asset.id", int(id))),
	)
	defer span.End()

	asset, err := r.next.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return asset, nil
}

func (r *AssetRepositoryWithTracing) FindAll(ctx context.Context, filter domain.AssetFilter) ([]domain.Asset, error) {
	ctx, span := tracer.Start(ctx, "repository.Asset.FindAll",
		trace.WithAttributes(
			attribute.String("query.state", string(filter.State)),
			attribute.Int("query.limit", filter.Limit),
		),
	)
	defer span.End()

	assets, err := r.next.FindAll(ctx, filter)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(assets)))
	return assets, nil
}

func (r *AssetRepositoryWithTracing) Update(ctx context.Context, asset *domain.Asset) error {
	ctx, span := tracer.Start(ctx, "repository.Asset.Update",
		trace.WithAttributes(
			attribute.Int("asset.id", int(asset.ID)),
			attribute.String("asset.state", string(asset.State)),
		),
	)
	defer span.End()

	if err := r.next.Update(ctx, asset); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
