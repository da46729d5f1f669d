package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportStatus is the validation state of an expense report.
type ReportStatus string

const (
	ReportDraft     ReportStatus = "draft"
	ReportSubmitted ReportStatus = "submitted"
	ReportValidated ReportStatus = "validated"
	ReportRejected  ReportStatus = "rejected"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportDraft, ReportSubmitted, ReportValidated, ReportRejected:
		return true
	}
	return false
}

// ExpenseReport records money an employee actually spent.
type ExpenseReport struct {
	Base
	EmployeeID            string               `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee              *Personnel           `gorm:"foreignKey:EmployeeID;constraint:OnDelete:RESTRICT" json:"employee,omitempty"`
	DisbursementRequestID *string              `gorm:"type:uuid;index" json:"disbursement_request_id,omitempty"`
	DisbursementRequest   *DisbursementRequest `gorm:"foreignKey:DisbursementRequestID;constraint:OnDelete:SET NULL" json:"disbursement_request,omitempty"`
	CategoryID            string               `gorm:"type:uuid;not null;index" json:"category_id"`
	Category              *ExpenseCategory     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	ArticleDescription    string               `gorm:"not null" json:"article_description"`
	UnitPrice             decimal.Decimal      `gorm:"type:numeric(14,2);not null" json:"unit_price" swaggertype:"string"`
	Quantity              int                  `gorm:"not null;default:1" json:"quantity"`
	SupplierID            *string              `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier              *Supplier            `gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL" json:"supplier,omitempty"`
	FreeTextSupplier      string               `json:"free_text_supplier,omitempty"`
	InvoiceImage          string               `json:"invoice_image,omitempty"`
	ExpenseDate           time.Time            `gorm:"type:date;not null" json:"expense_date"`
	SiteID                *string              `gorm:"type:uuid;index" json:"site_id,omitempty"`
	Status                ReportStatus         `gorm:"not null;default:'draft';index" json:"status"`
	Note                  string               `gorm:"type:text" json:"note"`
	Total                 decimal.Decimal      `gorm:"-" json:"total" swaggertype:"string"`
}

// ComputeTotal returns unit price times quantity rounded to cents.
func (r *ExpenseReport) ComputeTotal() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity))).Round(2)
}

// AfterFind fills the derived total.
func (r *ExpenseReport) AfterFind(tx *gorm.DB) error {
	r.Total = r.ComputeTotal()
	return nil
}
