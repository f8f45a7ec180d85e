package query

import (
	"context"
	"fmt"

	"github.com/tair/stockroom/internal/sales/domain"
)

const (
	defaultSaleLimit = 50
	maxSaleLimit     = 300
)

// ListSalesQuery represents the query to list sales
type ListSalesQuery struct {
	State  domain.SaleState
	Q      string
	Limit  int
	Offset int
}

// ListSalesHandler handles list sales query
type ListSalesHandler struct {
	store domain.Store
}

// NewListSalesHandler creates a new list sales handler
func NewListSalesHandler(store domain.Store) *ListSalesHandler {
	return &ListSalesHandler{store: store}
}

// Handle executes the list sales query, newest first
func (h *ListSalesHandler) Handle(ctx context.Context, query ListSalesQuery) ([]domain.Sale, error) {
	if query.State != "" && !query.State.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrInvalidQuery, query.State)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultSaleLimit
	}
	limit = min(limit, maxSaleLimit)

	sales, err := h.store.ListSales(ctx, domain.SaleFilter{
		State:  query.State,
		Query:  query.Q,
		Limit:  limit,
		Offset: max(query.Offset, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// ListCustomersQuery represents the query to list customers
type ListCustomersQuery struct {
	Q      string
	Limit  int
	Offset int
}

// ListCustomersHandler handles list customers query
type ListCustomersHandler struct {
	store domain.Store
}

// NewListCustomersHandler creates a new list customers handler
func NewListCustomersHandler(store domain.Store) *ListCustomersHandler {
	return &ListCustomersHandler{store: store}
}

// Handle executes the list customers query
func (h *ListCustomersHandler) Handle(ctx context.Context, query ListCustomersQuery) ([]domain.Customer, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSaleLimit
	}
	customers, err := h.store.ListCustomers(ctx, query.Q, min(limit, maxSaleLimit), max(query.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
