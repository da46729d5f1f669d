package models

import (
	"time"

	apperrors "finflow/internal/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DepositKind describes how money entered the fund.
type DepositKind string

const (
	DepositCheque   DepositKind = "cheque"
	DepositCash     DepositKind = "cash"
	DepositTransfer DepositKind = "transfer"
	DepositOther    DepositKind = "other"
)

// Valid reports whether k is a known deposit kind.
func (k DepositKind) Valid() bool {
	switch k {
	case DepositCheque, DepositCash, DepositTransfer, DepositOther:
		return true
	}
	return false
}

// CashFund is the company's available cash. Exactly one row exists per configured code.
type CashFund struct {
	Base
	Code        string          `gorm:"uniqueIndex;not null" json:"code"`
	Balance     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance" swaggertype:"string"`
	DepositKind DepositKind     `gorm:"not null;default:'cash'" json:"deposit_kind"`
	Notes       string          `json:"notes"`
	LastUpdated time.Time       `json:"last_updated"`
	Version     int64           `gorm:"not null;default:0" json:"-"`
}

// FundingHistoryEntry is one deposit into the fund. Rows are append-only.
type FundingHistoryEntry struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	FundID        string          `gorm:"type:uuid;not null;index" json:"fund_id"`
	ContributorID string          `gorm:"type:uuid;not null;index" json:"contributor_id"`
	Contributor   *Personnel      `gorm:"foreignKey:ContributorID;constraint:OnDelete:RESTRICT" json:"contributor,omitempty"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount" swaggertype:"string"`
	DepositKind   DepositKind     `gorm:"not null" json:"deposit_kind"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
}

// TableName keeps history rows in a dedicated table.
func (FundingHistoryEntry) TableName() string { return "funding_history" }

// BeforeCreate assigns the ID.
func (e *FundingHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		e.ID = id
	}
	return nil
}

// BeforeUpdate blocks mutation of recorded deposits.
func (e *FundingHistoryEntry) BeforeUpdate(tx *gorm.DB) error { return apperrors.ErrAppendOnly }

// BeforeDelete blocks removal of recorded deposits.
func (e *FundingHistoryEntry) BeforeDelete(tx *gorm.DB) error { return apperrors.ErrAppendOnly }
