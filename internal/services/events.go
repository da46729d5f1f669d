package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finflow/internal/errors"
	"finflow/internal/logger"
	"finflow/internal/models"
)

// PaymentRecorded is published when money is collected on a contract.
type PaymentRecorded struct {
	ContractID      string
	SiteID          string
	Amount          decimal.Decimal
	PaidOn          time.Time
	AmountCollected decimal.Decimal
	TotalAmount     decimal.Decimal
	FirstPayment    bool
}

// PaymentReaction consumes PaymentRecorded inside the transaction that recorded the payment.
type PaymentReaction interface {
	OnPaymentRecorded(tx *gorm.DB, event PaymentRecorded) error
}

// NextSiteStatus returns the site status implied by a payment, and whether it changes.
// A fully collected contract marks the site paid; the first payment marks it invoiced.
// Cancelled and already-paid sites are left alone.
func NextSiteStatus(current models.SiteStatus, event PaymentRecorded) (models.SiteStatus, bool) {
	switch current {
	case models.SiteCancelled, models.SitePaid:
		return current, false
	}
	if event.TotalAmount.IsPositive() && event.AmountCollected.GreaterThanOrEqual(event.TotalAmount) {
		return models.SitePaid, true
	}
	if event.FirstPayment && current != models.SiteInvoiced {
		return models.SiteInvoiced, true
	}
	return current, false
}

// siteStatusReaction applies NextSiteStatus to the contract's site.
type siteStatusReaction struct{}

// NewSiteStatusReaction returns the reaction that keeps site status in step with contract payments.
func NewSiteStatusReaction() PaymentReaction {
	return siteStatusReaction{}
}

func (siteStatusReaction) OnPaymentRecorded(tx *gorm.DB, event PaymentRecorded) error {
	var site models.ConstructionSite
	if err := tx.Where("id = ?", event.SiteID).First(&site).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	next, changed := NextSiteStatus(site.Status, event)
	if !changed {
		return nil
	}
	if err := tx.Model(&site).Update("status", next).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("site status changed by payment",
		"site_id", site.ID,
		"contract_id", event.ContractID,
		"from", site.Status,
		"to", next,
	)
	return nil
}
