package inventory

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/stockroom/internal/inventory/delivery/events"
	"github.com/tair/stockroom/internal/inventory/delivery/http"
	"github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/inventory/repository"
)

// Settings carries the runtime knobs the inventory repositories need
type Settings struct {
	LockTimeout time.Duration
	CacheTTL    time.Duration
}

// Service bundles what cmd/inventory serves
type Service struct {
	Handler  *http.InventoryHandler
	Listener *events.SaleListener
}

// ProvideCachedUnitRepository stacks the Redis listing cache over the traced gorm repository
func ProvideCachedUnitRepository(db *gorm.DB, client *redis.Client, settings Settings) *repository.CachedUnitRepository {
	traced := repository.NewUnitRepositoryWithTracing(repository.NewGormUnitRepository(db, settings.LockTimeout))
	return repository.NewCachedUnitRepository(traced, client, settings.CacheTTL)
}

// ProvideUnitRepository provides the unit repository
func ProvideUnitRepository(cached *repository.CachedUnitRepository) domain.UnitRepository {
	return cached
}

// ProvideProductRepository provides the product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewProductRepositoryWithTracing(repository.NewGormProductRepository(db))
}

// ProvideAssetRepository provides the asset repository
func ProvideAssetRepository(db *gorm.DB) domain.AssetRepository {
	return repository.NewAssetRepositoryWithTracing(repository.NewGormAssetRepository(db))
}
