package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all mutable tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		b.ID = id
	}
	return nil
}

// newID returns a time-ordered UUIDv7 string suitable for primary keys.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Personnel{},
		&CashFund{},
		&FundingHistoryEntry{},
		&ConstructionSite{},
		&Contract{},
		&DisbursementRequest{},
		&ExpenseCategory{},
		&Supplier{},
		&ExpenseReport{},
		&AuditLog{},
	}
}
