package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract is the commercial agreement for a single site.
type Contract struct {
	Base
	SiteID           string            `gorm:"type:uuid;uniqueIndex;not null" json:"site_id"`
	Site             *ConstructionSite `gorm:"foreignKey:SiteID;constraint:OnDelete:RESTRICT" json:"site,omitempty"`
	Reference        string            `gorm:"uniqueIndex;not null" json:"reference"`
	TotalAmount      decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"total_amount" swaggertype:"string"`
	AmountCollected  decimal.Decimal   `gorm:"type:numeric(14,2);not null;default:0" json:"amount_collected" swaggertype:"string"`
	InstallmentsLeft int               `gorm:"not null;default:0" json:"installments_left"`
	LastPaymentDate  *time.Time        `gorm:"type:date" json:"last_payment_date,omitempty"`
	SignedAt         *time.Time        `json:"signed_at,omitempty"`
}

// Outstanding is what remains to be collected, never below zero.
func (c *Contract) Outstanding() decimal.Decimal {
	rest := c.TotalAmount.Sub(c.AmountCollected)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}
