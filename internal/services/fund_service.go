package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finflow/internal/errors"
	"finflow/internal/logger"
	"finflow/internal/models"
	"finflow/internal/pagination"
)

// maxFundAttempts bounds how often a balance mutation is retried after losing a version race.
const maxFundAttempts = 3

// fundService handles the cash fund ledger.
type fundService struct {
	db   *gorm.DB
	code string
}

// NewFundService creates a FundServicer bound to the fund identified by code.
func NewFundService(db *gorm.DB, code string) FundServicer {
	return &fundService{db: db, code: code}
}

// EnsureFund creates the fund row on first start and returns it.
func (s *fundService) EnsureFund() (*models.CashFund, error) {
	fund := models.CashFund{
		Code:        s.code,
		Balance:     decimal.Zero,
		DepositKind: models.DepositCash,
		LastUpdated: time.Now(),
	}
	err := s.db.Where(models.CashFund{Code: s.code}).FirstOrCreate(&fund).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &fund, nil
}

// GetFund returns the current fund state.
func (s *fundService) GetFund() (*models.CashFund, error) {
	var fund models.CashFund
	if err := s.db.Where("code = ?", s.code).First(&fund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &fund, nil
}

// AddFunds credits the fund and records exactly one history entry, atomically.
func (s *fundService) AddFunds(contributor models.Principal, amount decimal.Decimal, kind models.DepositKind, notes string) (*models.FundingHistoryEntry, error) {
	if !canManageFund(contributor) {
		return nil, apperrors.ErrForbidden
	}
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "deposit kind must be one of cheque, cash, transfer, other")
	}
	amount = amount.Round(2)
	notes = strings.TrimSpace(notes)

	var entry *models.FundingHistoryEntry
	err := retryOnFundConflict(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			fund, err := s.AdjustBalance(tx, amount, map[string]interface{}{
				"deposit_kind": kind,
				"notes":        notes,
			})
			if err != nil {
				return err
			}

			entry = &models.FundingHistoryEntry{
				FundID:        fund.ID,
				ContributorID: contributor.ID,
				Amount:        amount,
				DepositKind:   kind,
				Notes:         notes,
			}
			if err := tx.Create(entry).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// ListFundingHistory returns deposits, newest first.
func (s *fundService) ListFundingHistory(page pagination.PageRequest) (*pagination.PageResponse[models.FundingHistoryEntry], error) {
	q := s.db.Model(&models.FundingHistoryEntry{}).
		Joins("JOIN cash_funds ON cash_funds.id = funding_history.fund_id").
		Where("cash_funds.code = ?", s.code)

	result, err := pagination.Fetch[models.FundingHistoryEntry](q, page, "funding_history.created_at DESC", "Contributor")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// AdjustBalance applies delta to the fund inside tx. The row is read under a
// write lock and written back with a compare-and-swap on version, so a stale
// read can never overwrite a concurrent mutation. A result below zero is
// rejected with ErrInsufficientFunds before anything is written.
func (s *fundService) AdjustBalance(tx *gorm.DB, delta decimal.Decimal, extra map[string]interface{}) (*models.CashFund, error) {
	var fund models.CashFund
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", s.code).
		First(&fund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFundNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance := fund.Balance.Add(delta)
	if balance.IsNegative() {
		return nil, apperrors.ErrInsufficientFunds
	}

	now := time.Now()
	updates := map[string]interface{}{
		"balance":      balance,
		"version":      fund.Version + 1,
		"last_updated": now,
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&models.CashFund{}).
		Where("id = ? AND version = ?", fund.ID, fund.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrFundConflict
	}

	fund.Balance = balance
	fund.Version++
	fund.LastUpdated = now
	if kind, ok := extra["deposit_kind"].(models.DepositKind); ok {
		fund.DepositKind = kind
	}
	if notes, ok := extra["notes"].(string); ok {
		fund.Notes = notes
	}
	return &fund, nil
}

// retryOnFundConflict reruns fn while it fails with ErrFundConflict, up to maxFundAttempts.
func retryOnFundConflict(fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxFundAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, apperrors.ErrFundConflict) {
			return err
		}
		logger.Get().Warnw("cash fund version conflict, retrying", "attempt", attempt)
	}
	return err
}
