package models

import "time"

// SiteStatus tracks a construction site from quote to payment.
type SiteStatus string

const (
	SiteQuote      SiteStatus = "quote"
	SitePlanning   SiteStatus = "planning"
	SiteInProgress SiteStatus = "in_progress"
	SiteSuspended  SiteStatus = "suspended"
	SiteCompleted  SiteStatus = "completed"
	SiteInvoiced   SiteStatus = "invoiced"
	SitePaid       SiteStatus = "paid"
	SiteCancelled  SiteStatus = "cancelled"
)

// Valid reports whether s is a known site status.
func (s SiteStatus) Valid() bool {
	switch s {
	case SiteQuote, SitePlanning, SiteInProgress, SiteSuspended,
		SiteCompleted, SiteInvoiced, SitePaid, SiteCancelled:
		return true
	}
	return false
}

// ConstructionSite is a work order money may be attributed to.
type ConstructionSite struct {
	Base
	Reference  string     `gorm:"uniqueIndex;not null" json:"reference"`
	Name       string     `gorm:"not null" json:"name"`
	City       string     `json:"city,omitempty"`
	Status     SiteStatus `gorm:"not null;default:'quote'" json:"status"`
	PlannedEnd *time.Time `gorm:"type:date" json:"planned_end,omitempty"`
}
