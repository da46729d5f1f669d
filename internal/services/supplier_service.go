package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
)

// supplierService handles suppliers and their purchase aggregates.
type supplierService struct {
	db *gorm.DB
}

// NewSupplierService creates a new SupplierServicer.
func NewSupplierService(db *gorm.DB) SupplierServicer {
	return &supplierService{db: db}
}

func (s *supplierService) CreateSupplier(name, phone, email, specialty string) (*models.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "supplier name is required")
	}
	supplier := &models.Supplier{
		Name:      name,
		Phone:     strings.TrimSpace(phone),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Specialty: strings.TrimSpace(specialty),
	}
	if err := s.db.Create(supplier).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return supplier, nil
}

// GetSupplier returns the supplier together with its total purchases.
func (s *supplierService) GetSupplier(id string) (*models.SupplierSummary, error) {
	var supplier models.Supplier
	if err := s.db.Where("id = ?", id).First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSupplierNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals, err := s.purchaseTotals([]string{supplier.ID})
	if err != nil {
		return nil, err
	}
	summary := totals[supplier.ID]
	summary.Supplier = supplier
	return &summary, nil
}

func (s *supplierService) ListSuppliers(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Supplier], error) {
	q := s.db.Model(&models.Supplier{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(specialty) LIKE ?", like, like)
	}
	result, err := pagination.Fetch[models.Supplier](q, page, "name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// TopSuppliers ranks suppliers by total purchases, largest first.
func (s *supplierService) TopSuppliers(limit int) ([]models.SupplierSummary, error) {
	if limit <= 0 {
		limit = 5
	}

	var suppliers []models.Supplier
	if err := s.db.Find(&suppliers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	ids := make([]string, len(suppliers))
	for i, sup := range suppliers {
		ids[i] = sup.ID
	}
	totals, err := s.purchaseTotals(ids)
	if err != nil {
		return nil, err
	}

	ranked := make([]models.SupplierSummary, 0, len(suppliers))
	for _, sup := range suppliers {
		summary := totals[sup.ID]
		if summary.ReportCount == 0 {
			continue
		}
		summary.Supplier = sup
		ranked = append(ranked, summary)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalPurchases.GreaterThan(ranked[j].TotalPurchases)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// purchaseTotals sums unit_price × quantity over the reports of each supplier.
// Sums are taken in decimal, not SQL.
func (s *supplierService) purchaseTotals(ids []string) (map[string]models.SupplierSummary, error) {
	out := make(map[string]models.SupplierSummary, len(ids))
	for _, id := range ids {
		out[id] = models.SupplierSummary{TotalPurchases: decimal.Zero}
	}
	if len(ids) == 0 {
		return out, nil
	}

	var reports []models.ExpenseReport
	if err := s.db.Select("supplier_id", "unit_price", "quantity").
		Where("supplier_id IN ?", ids).
		Find(&reports).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range reports {
		r := &reports[i]
		summary := out[*r.SupplierID]
		summary.TotalPurchases = summary.TotalPurchases.Add(r.ComputeTotal())
		summary.ReportCount++
		out[*r.SupplierID] = summary
	}
	return out, nil
}
