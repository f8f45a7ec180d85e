package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/pkg/database"
)

// AutoMigrate creates the sales tables. Units and products are shared with the inventory service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&invdomain.Product{},
		&invdomain.Unit{},
		&domain.Customer{},
		&domain.Sale{},
		&domain.SaleLine{},
		&domain.Payment{},
	)
}

// GormStore implements domain.Store on gorm
type GormStore struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewGormStore(db *gorm.DB, lockTimeout time.Duration) *GormStore {
	return &GormStore{db: db, lockTimeout: lockTimeout}
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.SetLockTimeout(tx, s.lockTimeout); err != nil {
			return err
		}
		return fn(&gormTx{db: tx})
	})
	return database.Translate(err)
}

func (s *GormStore) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (s *GormStore) FindCustomer(ctx context.Context, id uint) (*domain.Customer, error) {
	var customer domain.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, notFound(err, domain.ErrCustomerNotFound)
	}
	return &customer, nil
}

func (s *GormStore) ListCustomers(ctx context.Context, query string, limit, offset int) ([]domain.Customer, error) {
	q := s.db.WithContext(ctx).Model(&domain.Customer{})
	if term := strings.TrimSpace(query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(tax_id) LIKE ?", like, like)
	}

	var customers []domain.Customer
	if err := paginate(q.Order("name").Order("id"), limit, offset).Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (s *GormStore) CreateSale(ctx context.Context, sale *domain.Sale) error {
	if err := s.db.WithContext(ctx).Omit("Customer", "Lines", "Payments").Create(sale).Error; err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

func (s *GormStore) FindSale(ctx context.Context, id uint) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("sale_lines.id") }).
		Preload("Lines.Unit").
		Preload("Lines.Unit.Product").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payments.id") }).
		First(&sale, id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrSaleNotFound)
	}
	return &sale, nil
}

func (s *GormStore) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	q := s.db.WithContext(ctx).Model(&domain.Sale{}).Preload("Customer")
	if filter.State != "" {
		q = q.Where("sales.state = ?", filter.State)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Joins("LEFT JOIN customers ON customers.id = sales.customer_id").
			Where("LOWER(sales.folio) LIKE ? OR LOWER(customers.name) LIKE ?", like, like)
	}

	var sales []domain.Sale
	err := paginate(q.Order("sales.created_at DESC").Order("sales.id DESC"), filter.Limit, filter.Offset).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockSale(id uint) (*domain.Sale, error) {
	var sale domain.Sale
	if err := t.db.Clauses(database.ForUpdate).First(&sale, id).Error; err != nil {
		return nil, notFound(err, domain.ErrSaleNotFound)
	}
	if err := t.db.Where("sale_id = ?", id).Order("id").Find(&sale.Lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load sale lines: %w", err)
	}
	if err := t.db.Where("sale_id = ?", id).Order("id").Find(&sale.Payments).Error; err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	return &sale, nil
}

func (t *gormTx) LockUnits(ids []uint) ([]invdomain.Unit, error) {
	ids = domain.SortedIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	var units []invdomain.Unit
	err := t.db.Clauses(database.ForUpdate).Where("id IN ?", ids).Order("id").Find(&units).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock units: %w", err)
	}
	if len(units) != len(ids) {
		return nil, invdomain.ErrUnitNotFound
	}
	return units, nil
}

func (t *gormTx) SetUnitsState(ids []uint, state invdomain.UnitState) error {
	if len(ids) == 0 {
		return nil
	}
	err := t.db.Model(&invdomain.Unit{}).Where("id IN ?", ids).
		Updates(map[string]any{"state": state, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to update unit states: %w", err)
	}
	return nil
}

func (t *gormTx) FindProduct(id uint) (*invdomain.Product, error) {
	var product invdomain.Product
	if err := t.db.First(&product, id).Error; err != nil {
		return nil, notFound(err, invdomain.ErrProductNotFound)
	}
	return &product, nil
}

func (t *gormTx) UnitAssigned(unitID uint) (bool, error) {
	var count int64
	if err := t.db.Model(&domain.SaleLine{}).Where("unit_id = ?", unitID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check unit assignment: %w", err)
	}
	return count > 0, nil
}

func (t *gormTx) CreateLine(line *domain.SaleLine) error {
	if err := t.db.Omit("Unit").Create(line).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateUnitAssignment
		}
		return fmt.Errorf("failed to create sale line: %w", err)
	}
	return nil
}

func (t *gormTx) DeleteLine(id uint) error {
	if err := t.db.Delete(&domain.SaleLine{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete sale line: %w", err)
	}
	return nil
}

func (t *gormTx) CreatePayment(payment *domain.Payment) error {
	if err := t.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

func (t *gormTx) SaveSale(sale *domain.Sale) error {
	err := t.db.Model(&domain.Sale{ID: sale.ID}).Updates(map[string]any{
		"state":        sale.State,
		"subtotal":     sale.Subtotal,
		"discount":     sale.Discount,
		"tax":          sale.Tax,
		"total":        sale.Total,
		"paid_at":      sale.PaidAt,
		"delivered_at": sale.DeliveredAt,
		"updated_at":   time.Now(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to save sale: %w", err)
	}
	return nil
}

func (t *gormTx) DeleteSale(id uint) error {
	if err := t.db.Where("sale_id = ?", id).Delete(&domain.Payment{}).Error; err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	if err := t.db.Where("sale_id = ?", id).Delete(&domain.SaleLine{}).Error; err != nil {
		return fmt.Errorf("failed to delete sale lines: %w", err)
	}
	if err := t.db.Delete(&domain.Sale{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
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
