package sequence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/stockroom/pkg/database"
)

// Sequence is one named counter row
type Sequence struct {
	Name  string `gorm:"primaryKey;size:50"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName specifies the table name
func (Sequence) TableName() string {
	return "sequences"
}

// TableCounter keeps counters in the sequences table and bumps them under a row lock
type TableCounter struct {
	db *gorm.DB
}

func NewTableCounter(db *gorm.DB) (*TableCounter, error) {
	if err := db.AutoMigrate(&Sequence{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sequences: %w", err)
	}
	return &TableCounter{db: db}, nil
}

func (c *TableCounter) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := Sequence{Name: name}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		var seq Sequence
		if err := tx.Clauses(database.ForUpdate).Where("name = ?", name).First(&seq).Error; err != nil {
			return err
		}
		value = seq.Value + 1
		return tx.Model(&Sequence{}).Where("name = ?", name).Update("value", value).Error
	})
	if err != nil {
		return 0, database.Translate(err)
	}
	return value, nil
}
