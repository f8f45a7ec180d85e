//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/stockroom/internal/inventory/delivery/events"
	"github.com/tair/stockroom/internal/inventory/delivery/http"
	"github.com/tair/stockroom/internal/inventory/repository"
	"github.com/tair/stockroom/internal/inventory/usecase/command"
	"github.com/tair/stockroom/internal/inventory/usecase/query"
	"github.com/tair/stockroom/internal/sequence"
)

var RepositorySet = wire.NewSet(
	ProvideCachedUnitRepository,
	ProvideUnitRepository,
	ProvideProductRepository,
	ProvideAssetRepository,
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateProductHandler,
	command.NewRegisterUnitHandler,
	command.NewChangeUnitStateHandler,
	command.NewRegisterAssetHandler,
	command.NewDecommissionAssetHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetUnitHandler,
	query.NewListUnitsHandler,
	query.NewListProductsHandler,
	query.NewGetAssetHandler,
	query.NewListAssetsHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeService initializes the inventory HTTP handler and sale event listener
func InitializeService(db *gorm.DB, client *redis.Client, codes sequence.Generator, settings Settings) (*Service, error) {
	wire.Build(
		AllHandlersSet,
		http.NewInventoryHandler,
		events.NewSaleListener,
		wire.Bind(new(events.Invalidator), new(*repository.CachedUnitRepository)),
		wire.Struct(new(Service), "*"),
	)
	return nil, nil
}
