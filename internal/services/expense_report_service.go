package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finflow/internal/errors"
	"finflow/internal/logger"
	"finflow/internal/models"
	"finflow/internal/pagination"
)

// ExpenseCeiling is the largest total a single report may carry, inclusive.
var ExpenseCeiling = decimal.NewFromInt(10_000_000)

// Note line prefixes written by reviewers.
const (
	validatedTag = "[VALIDE]"
	rejectedTag  = "[REJETE]"
)

// expenseReportService handles expense reports and their validation.
type expenseReportService struct {
	db         *gorm.DB
	linkWindow time.Duration
}

// NewExpenseReportService creates a new ExpenseReportServicer. linkWindow bounds how
// long after a disbursement a report may still be linked to it.
func NewExpenseReportService(db *gorm.DB, linkWindow time.Duration) ExpenseReportServicer {
	return &expenseReportService{db: db, linkWindow: linkWindow}
}

// SaveDraft stores a report the employee can still finish later.
func (s *expenseReportService) SaveDraft(employee models.Principal, input ExpenseReportInput) (*models.ExpenseReport, error) {
	return s.create(employee, input, models.ReportDraft)
}

// Submit stores a report and hands it straight to reviewers.
func (s *expenseReportService) Submit(employee models.Principal, input ExpenseReportInput) (*models.ExpenseReport, error) {
	return s.create(employee, input, models.ReportSubmitted)
}

func (s *expenseReportService) create(employee models.Principal, input ExpenseReportInput, status models.ReportStatus) (*models.ExpenseReport, error) {
	if employee.ID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	report := &models.ExpenseReport{
		EmployeeID:            employee.ID,
		DisbursementRequestID: input.DisbursementRequestID,
		CategoryID:            input.CategoryID,
		ArticleDescription:    strings.TrimSpace(input.ArticleDescription),
		UnitPrice:             input.UnitPrice,
		Quantity:              input.Quantity,
		SupplierID:            input.SupplierID,
		FreeTextSupplier:      strings.TrimSpace(input.FreeTextSupplier),
		InvoiceImage:          input.InvoiceImage,
		ExpenseDate:           input.ExpenseDate,
		SiteID:                input.SiteID,
		Status:                status,
		Note:                  strings.TrimSpace(input.Note),
	}
	if report.ExpenseDate.IsZero() {
		report.ExpenseDate = time.Now()
	}

	if err := s.validateFields(report); err != nil {
		return nil, err
	}
	if err := s.validateReferences(employee, report); err != nil {
		return nil, err
	}

	if err := s.db.Create(report).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	report.Total = report.ComputeTotal()
	return report, nil
}

// validateFields checks the report on its own, without touching the database.
func (s *expenseReportService) validateFields(report *models.ExpenseReport) error {
	if report.ArticleDescription == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "article description is required")
	}
	if report.UnitPrice.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unit price cannot be negative")
	}
	if !report.UnitPrice.Equal(report.UnitPrice.Round(2)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unit price cannot have more than 2 decimal places")
	}
	if report.Quantity < 1 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be at least 1")
	}
	if report.ComputeTotal().GreaterThan(ExpenseCeiling) {
		return apperrors.ErrExpenseCeilingExceeded
	}
	return nil
}

func (s *expenseReportService) validateReferences(employee models.Principal, report *models.ExpenseReport) error {
	var category models.ExpenseCategory
	if err := s.db.Where("id = ? AND active = ?", report.CategoryID, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExpenseCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if report.SupplierID != nil {
		if err := s.requireSupplier(*report.SupplierID); err != nil {
			return err
		}
	}

	if report.SiteID != nil {
		var count int64
		if err := s.db.Model(&models.ConstructionSite{}).Where("id = ?", *report.SiteID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrSiteNotFound
		}
	}

	if report.DisbursementRequestID != nil {
		var count int64
		err := s.linkableRequests(employee.ID).
			Where("id = ?", *report.DisbursementRequestID).
			Count(&count).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrRequestNotLinkable
		}
	}
	return nil
}

func (s *expenseReportService) requireSupplier(id string) error {
	var count int64
	if err := s.db.Model(&models.Supplier{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrSupplierNotFound
	}
	return nil
}

// SubmitDraft moves one of the employee's drafts to submitted.
func (s *expenseReportService) SubmitDraft(employee models.Principal, reportID string) (*models.ExpenseReport, error) {
	report, err := s.GetReport(reportID)
	if err != nil {
		return nil, err
	}
	if report.EmployeeID != employee.ID {
		return nil, apperrors.ErrExpenseReportNotFound
	}
	if report.Status != models.ReportDraft {
		return nil, apperrors.ErrReportNotDraft
	}
	if report.ComputeTotal().GreaterThan(ExpenseCeiling) {
		return nil, apperrors.ErrExpenseCeilingExceeded
	}

	res := s.db.Model(&models.ExpenseReport{}).
		Where("id = ? AND status = ?", report.ID, models.ReportDraft).
		Update("status", models.ReportSubmitted)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrReportNotDraft
	}
	report.Status = models.ReportSubmitted
	return report, nil
}

// Review records a reviewer's decision on a submitted report. The comment is
// appended to the note as a tagged line; earlier lines are kept.
func (s *expenseReportService) Review(reportID string, reviewer models.Principal, decision ReviewDecision, comment string) (*models.ExpenseReport, error) {
	if !canReview(reviewer) {
		return nil, apperrors.ErrForbidden
	}

	var status models.ReportStatus
	var tag string
	switch decision {
	case DecisionValidate:
		status, tag = models.ReportValidated, validatedTag
	case DecisionReject:
		status, tag = models.ReportRejected, rejectedTag
	case DecisionRequestModification:
		report, err := s.GetReport(reportID)
		if err != nil {
			return nil, err
		}
		logger.Get().Warnw("modification request has no target state, report left unchanged",
			"report_id", reportID,
			"reviewer_id", reviewer.ID,
		)
		return report, nil
	default:
		return nil, apperrors.ErrInvalidDecision
	}

	report, err := s.GetReport(reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportSubmitted {
		return nil, apperrors.ErrReportNotSubmitted
	}

	note := appendNoteLine(report.Note, tag, comment)
	res := s.db.Model(&models.ExpenseReport{}).
		Where("id = ? AND status = ?", report.ID, models.ReportSubmitted).
		Updates(map[string]interface{}{"status": status, "note": note})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrReportNotSubmitted
	}

	report.Status = status
	report.Note = note
	return report, nil
}

func appendNoteLine(note, tag, comment string) string {
	line := strings.TrimSpace(tag + " " + strings.TrimSpace(comment))
	if note == "" {
		return line
	}
	return note + "\n" + line
}

// ListLinkableRequests returns the employee's requests disbursed inside the link window, newest first.
func (s *expenseReportService) ListLinkableRequests(employee models.Principal) ([]models.DisbursementRequest, error) {
	var requests []models.DisbursementRequest
	if err := s.linkableRequests(employee.ID).Order("disbursed_at DESC").Find(&requests).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if requests == nil {
		requests = []models.DisbursementRequest{}
	}
	return requests, nil
}

func (s *expenseReportService) linkableRequests(employeeID string) *gorm.DB {
	cutoff := time.Now().Add(-s.linkWindow)
	return s.db.Model(&models.DisbursementRequest{}).
		Where("requester_id = ? AND is_disbursed = ? AND disbursed_at >= ?", employeeID, true, cutoff)
}

// AssignSupplier sets or clears the supplier of a report. Only the owner or a reviewer may do so.
func (s *expenseReportService) AssignSupplier(reportID string, actor models.Principal, supplierID *string) (*models.ExpenseReport, error) {
	report, err := s.GetReport(reportID)
	if err != nil {
		return nil, err
	}
	if report.EmployeeID != actor.ID && !canReview(actor) {
		return nil, apperrors.ErrForbidden
	}
	if supplierID != nil {
		if err := s.requireSupplier(*supplierID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(&models.ExpenseReport{}).Where("id = ?", report.ID).
		Update("supplier_id", supplierID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	report.SupplierID = supplierID
	report.Supplier = nil
	return report, nil
}

// GetReport retrieves a report with its category, supplier and linked request.
func (s *expenseReportService) GetReport(id string) (*models.ExpenseReport, error) {
	var report models.ExpenseReport
	err := s.db.Preload("Category").Preload("Supplier").Preload("DisbursementRequest").
		Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseReportNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &report, nil
}

// ListReports returns a filtered page of reports, newest first.
func (s *expenseReportService) ListReports(page pagination.PageRequest, filter ExpenseReportFilter) (*pagination.PageResponse[models.ExpenseReport], error) {
	q := applyReportFilters(s.db.Model(&models.ExpenseReport{}), filter)
	result, err := pagination.Fetch[models.ExpenseReport](q, page, "created_at DESC", "Category", "Employee")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyReportFilters(q *gorm.DB, f ExpenseReportFilter) *gorm.DB {
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.Linked != nil {
		if *f.Linked {
			q = q.Where("disbursement_request_id IS NOT NULL")
		} else {
			q = q.Where("disbursement_request_id IS NULL")
		}
	}
	return q
}
