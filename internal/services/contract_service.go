package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
)

// contractService handles site contracts and the payments collected on them.
type contractService struct {
	db        *gorm.DB
	reactions []PaymentReaction
}

// NewContractService creates a new ContractServicer. Each reaction runs inside
// the payment transaction, in order.
func NewContractService(db *gorm.DB, reactions ...PaymentReaction) ContractServicer {
	return &contractService{db: db, reactions: reactions}
}

func (s *contractService) CreateContract(siteID, reference string, total decimal.Decimal, installments int, signedAt *time.Time) (*models.Contract, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reference is required")
	}
	if !total.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if installments < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "installments cannot be negative")
	}

	contract := &models.Contract{
		SiteID:           siteID,
		Reference:        reference,
		TotalAmount:      total.Round(2),
		AmountCollected:  decimal.Zero,
		InstallmentsLeft: installments,
		SignedAt:         signedAt,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var site models.ConstructionSite
		if err := tx.Where("id = ?", siteID).First(&site).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrSiteNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var count int64
		if err := tx.Unscoped().Model(&models.Contract{}).Where("site_id = ?", siteID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrSiteAlreadyContracted
		}
		if err := tx.Unscoped().Model(&models.Contract{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrDuplicateContractRef
		}

		if err := tx.Create(contract).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *contractService) GetContract(id string) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.Preload("Site").Where("id = ?", id).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrContractNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &contract, nil
}

// RecordPayment adds a collected amount to the contract and publishes PaymentRecorded
// to the registered reactions within the same transaction.
func (s *contractService) RecordPayment(contractID string, amount decimal.Decimal, paidOn time.Time) (*models.Contract, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if paidOn.IsZero() {
		paidOn = time.Now()
	}
	amount = amount.Round(2)

	var contract models.Contract
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", contractID).First(&contract).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrContractNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		event := PaymentRecorded{
			ContractID:   contract.ID,
			SiteID:       contract.SiteID,
			Amount:       amount,
			PaidOn:       paidOn,
			TotalAmount:  contract.TotalAmount,
			FirstPayment: contract.LastPaymentDate == nil,
		}

		contract.AmountCollected = contract.AmountCollected.Add(amount)
		contract.LastPaymentDate = &paidOn
		if contract.InstallmentsLeft > 0 {
			contract.InstallmentsLeft--
		}
		event.AmountCollected = contract.AmountCollected

		if err := tx.Model(&contract).Updates(map[string]interface{}{
			"amount_collected":  contract.AmountCollected,
			"last_payment_date": paidOn,
			"installments_left": contract.InstallmentsLeft,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, reaction := range s.reactions {
			if err := reaction.OnPaymentRecorded(tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &contract, nil
}
