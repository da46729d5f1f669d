package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisbursementStatus is the approval state of a request.
type DisbursementStatus string

const (
	StatusPending              DisbursementStatus = "pending"
	StatusApprovedByDirector   DisbursementStatus = "approved_by_director"
	StatusRejectedByDirector   DisbursementStatus = "rejected_by_director"
	StatusApprovedByAccountant DisbursementStatus = "approved_by_accountant"
	StatusRejectedByAccountant DisbursementStatus = "rejected_by_accountant"
)

// IsApproved reports whether the status allows a disbursement.
func (s DisbursementStatus) IsApproved() bool {
	return s == StatusApprovedByDirector || s == StatusApprovedByAccountant
}

// IsDecided reports whether an approver has already ruled on the request.
func (s DisbursementStatus) IsDecided() bool {
	switch s {
	case StatusApprovedByDirector, StatusRejectedByDirector,
		StatusApprovedByAccountant, StatusRejectedByAccountant:
		return true
	}
	return false
}

// Valid reports whether s is a known status.
func (s DisbursementStatus) Valid() bool {
	return s == StatusPending || s.IsDecided()
}

// DisbursementRequest asks for cash out of the fund.
// IsDisbursed implies DisbursedAt is set and Status is an approved variant.
type DisbursementRequest struct {
	Base
	RequesterID   string             `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester     *Personnel         `gorm:"foreignKey:RequesterID;constraint:OnDelete:RESTRICT" json:"requester,omitempty"`
	Amount        decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"amount" swaggertype:"string"`
	SiteID        *string            `gorm:"type:uuid;index" json:"site_id,omitempty"`
	Site          *ConstructionSite  `gorm:"foreignKey:SiteID;constraint:OnDelete:SET NULL" json:"site,omitempty"`
	Reason        string             `gorm:"type:text;not null" json:"reason"`
	Status        DisbursementStatus `gorm:"not null;default:'pending';index" json:"status"`
	ApproverID    *string            `gorm:"type:uuid" json:"approver_id,omitempty"`
	Approver      *Personnel         `gorm:"foreignKey:ApproverID;constraint:OnDelete:SET NULL" json:"approver,omitempty"`
	RequestedAt   time.Time          `gorm:"autoUpdateTime" json:"requested_at"`
	ApprovedAt    *time.Time         `json:"approved_at,omitempty"`
	DisbursedAt   *time.Time         `gorm:"index" json:"disbursed_at,omitempty"`
	IsDisbursed   bool               `gorm:"not null;default:false" json:"is_disbursed"`
	ReferenceCode string             `json:"reference_code,omitempty"`
}
