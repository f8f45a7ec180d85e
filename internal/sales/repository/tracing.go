package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stockroom/internal/sales/domain"
)

var tracer = otel.Tracer("sales-repository")

// StoreWithTracing wraps a sales store with tracing
type StoreWithTracing struct {
	next domain.Store
}

// NewStoreWithTracing creates a new store with tracing
func NewStoreWithTracing(next domain.Store) *StoreWithTracing {
	return &StoreWithTracing{next: next}
}

func (s *StoreWithTracing) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	ctx, span := tracer.Start(ctx, "repository.Sale.Transaction")
	defer span.End()

	if err := s.next.WithinTx(ctx, fn); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (s *StoreWithTracing) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	ctx, span := tracer.Start(ctx, "repository.Customer.Create")
	defer span.End()

	if err := s.next.CreateCustomer(ctx, customer); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("customer.id", int(customer.ID)))
	return nil
}

func (s *StoreWithTracing) FindCustomer(ctx context.Context, id uint) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "repository.Customer.FindByID",
		trace.WithAttributes(attribute.Int("customer.id", int(id))),
	)
	defer span.End()

	customer, err := s.next.FindCustomer(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return customer, nil
}

func (s *StoreWithTracing) ListCustomers(ctx context.Context, query string, limit, offset int) ([]domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "repository.Customer.FindAll",
		trace.WithAttributes(
			attribute.Int("query.limit", limit),
			attribute.Int("query.offset", offset),
		),
	)
	defer span.End()

	customers, err := s.next.ListCustomers(ctx, query, limit, offset)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(customers)))
	return customers, nil
}

func (s *StoreWithTracing) CreateSale(ctx context.Context, sale *domain.Sale) error {
	ctx, span := tracer.Start(ctx, "repository.Sale.Create",
		trace.WithAttributes(attribute.String("sale.folio", sale.Folio)),
	)
	defer span.End()

	if err := s.next.CreateSale(ctx, sale); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("sale.id", int(sale.ID)))
	return nil
}

func (s *StoreWithTracing) FindSale(ctx context.Context, id uint) (*domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "repository.Sale.FindByID",
		trace.WithAttributes(attribute.Int("sale.id", int(id))),
	)
	defer span.End()

	sale, err := s.next.FindSale(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("sale.state", string(sale.State)),
		attribute.Int("sale.lines", len(sale.Lines)),
	)
	return sale, nil
}

func (s *StoreWithTracing) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "repository.Sale.FindAll",
		trace.WithAttributes(
			attribute.String("query.state", string(filter.State)),
			attribute.Int("query.limit", filter.Limit),
			attribute.Int("query.offset", filter.Offset),
		),
	)
	defer span.End()

	sales, err := s.next.ListSales(ctx, filter)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(sales)))
	return sales, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
