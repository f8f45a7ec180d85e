package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/pkg/database"
)

// AutoMigrate creates the inventory tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Product{}, &domain.Unit{}, &domain.Asset{})
}

type GormUnitRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewGormUnitRepository(db *gorm.DB, lockTimeout time.Duration) *GormUnitRepository {
	return &GormUnitRepository{db: db, lockTimeout: lockTimeout}
}

func (r *GormUnitRepository) Create(ctx context.Context, unit *domain.Unit) error {
	if err := r.db.WithContext(ctx).Create(unit).Error; err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

func (r *GormUnitRepository) FindByID(ctx context.Context, id uint) (*domain.Unit, error) {
	var unit domain.Unit
	err := r.db.WithContext(ctx).Preload("Product").First(&unit, id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrUnitNotFound)
	}
	return &unit, nil
}

func (r *GormUnitRepository) FindByCode(ctx context.Context, code string) (*domain.Unit, error) {
	var unit domain.Unit
	err := r.db.WithContext(ctx).Preload("Product").Where("code = ?", code).First(&unit).Error
	if err != nil {
		return nil, notFound(err, domain.ErrUnitNotFound)
	}
	return &unit, nil
}

func (r *GormUnitRepository) FindAll(ctx context.Context, filter domain.UnitFilter) ([]domain.Unit, error) {
	query := r.db.WithContext(ctx).Model(&domain.Unit{})

	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(serial) LIKE ? OR LOWER(internal_tag) LIKE ?", like, like, like)
	}

	var units []domain.Unit
	err := paginate(query.Order("created_at DESC").Order("id DESC"), filter.Limit, filter.Offset).
		Find(&units).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

// ChangeState locks the unit row for the duration of change so no sale operation can interleave
func (r *GormUnitRepository) ChangeState(ctx context.Context, id uint, change func(domain.UnitState) (domain.UnitState, error)) (*domain.Unit, error) {
	var unit domain.Unit
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.SetLockTimeout(tx, r.lockTimeout); err != nil {
			return err
		}
		if err := tx.Clauses(database.ForUpdate).First(&unit, id).Error; err != nil {
			return notFound(err, domain.ErrUnitNotFound)
		}

		next, err := change(unit.State)
		if err != nil {
			return err
		}
		if next == unit.State {
			return nil
		}
		if err := tx.Model(&unit).Update("state", next).Error; err != nil {
			return err
		}
		unit.State = next
		return nil
	})
	if err != nil {
		return nil, database.Translate(err)
	}
	return &unit, nil
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, notFound(err, domain.ErrProductNotFound)
	}
	return &product, nil
}

func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, notFound(err, domain.ErrProductNotFound)
	}
	return &product, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	err := paginate(r.db.WithContext(ctx).Order("sku"), limit, offset).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

type GormAssetRepository struct {
	db *gorm.DB
}

func NewGormAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

func (r *GormAssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func (r *GormAssetRepository) FindByID(ctx context.Context, id uint) (*domain.Asset, error) {
	var asset domain.Asset
	if err := r.db.WithContext(ctx).First(&asset, id).Error; err != nil {
		return nil, notFound(err, domain.ErrAssetNotFound)
	}
	return &asset, nil
}

func (r *GormAssetRepository) FindAll(ctx context.Context, filter domain.AssetFilter) ([]domain.Asset, error) {
	query := r.db.WithContext(ctx).Model(&domain.Asset{})
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var assets []domain.Asset
	err := paginate(query.Order("registered_on DESC").Order("id DESC"), filter.Limit, filter.Offset).
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

func (r *GormAssetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	if err := r.db.WithContext(ctx).Save(asset).Error; err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	return nil
}

func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
