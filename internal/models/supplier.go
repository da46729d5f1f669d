package models

import "github.com/shopspring/decimal"

type Supplier struct {
	Base
	Name      string `gorm:"not null;index" json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

// SupplierSummary is a supplier with the sum of its linked report totals.
type SupplierSummary struct {
	Supplier
	TotalPurchases decimal.Decimal `json:"total_purchases" swaggertype:"string"`
	ReportCount    int             `json:"report_count"`
}
