package sales

import (
	"time"

	"gorm.io/gorm"

	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/internal/sales/repository"
)

// Settings carries the runtime knobs of the sales engine
type Settings struct {
	LockTimeout time.Duration
}

// ProvideStore provides the traced sales store
func ProvideStore(db *gorm.DB, settings Settings) domain.Store {
	return repository.NewStoreWithTracing(repository.NewGormStore(db, settings.LockTimeout))
}
