//go:build wireinject
// +build wireinject

package sales

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/stockroom/internal/sales/delivery/http"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/internal/sales/usecase/command"
	"github.com/tair/stockroom/internal/sales/usecase/query"
	"github.com/tair/stockroom/internal/sequence"
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateCustomerHandler,
	command.NewCreateSaleHandler,
	command.NewAddLineHandler,
	command.NewRemoveLineHandler,
	command.NewRecomputeHandler,
	command.NewReserveHandler,
	command.NewMarkPaidHandler,
	command.NewMarkDeliveredHandler,
	command.NewCancelHandler,
	command.NewDeleteSaleHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetSaleHandler,
	query.NewListSalesHandler,
	query.NewListCustomersHandler,
)

var AllHandlersSet = wire.NewSet(
	ProvideStore,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHTTPHandler initializes the sales HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, folios sequence.Generator, events domain.EventPublisher, settings Settings) (*http.SalesHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewSalesHandler,
	)
	return nil, nil
}
