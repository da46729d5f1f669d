package models

// ExpenseKind groups categories for reporting.
type ExpenseKind string

const (
	KindMaterials      ExpenseKind = "materials"
	KindTransport      ExpenseKind = "transport"
	KindLabor          ExpenseKind = "labor"
	KindMiscellaneous  ExpenseKind = "miscellaneous"
	KindAdministration ExpenseKind = "administration"
	KindOther          ExpenseKind = "other"
)

// ExpenseCategory is reference data for expense reports.
type ExpenseCategory struct {
	Base
	Name         string      `gorm:"uniqueIndex;not null" json:"name"`
	Kind         ExpenseKind `gorm:"column:category;not null;default:'other'" json:"category"`
	Color        string      `gorm:"default:'#6c757d'" json:"color"`
	Active       bool        `gorm:"not null;default:true" json:"active"`
	DisplayOrder int         `gorm:"not null;default:0" json:"display_order"`
}
