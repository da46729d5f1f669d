package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
)

// Alert kinds.
const (
	AlertLowFund             = "low_fund"
	AlertOverdueDisbursement = "overdue_disbursement"
	AlertUnlinkedReport      = "unlinked_report"
	AlertUnsignedContract    = "unsigned_contract"
	AlertLateSite            = "late_site"
)

// monitoringService runs the read-only checks behind the alerts dashboard.
type monitoringService struct {
	db               *gorm.DB
	fund             FundServicer
	lowFundThreshold decimal.Decimal
	window           time.Duration
}

// NewMonitoringService creates a new MonitoringServicer.
func NewMonitoringService(db *gorm.DB, fund FundServicer, lowFundThreshold decimal.Decimal, window time.Duration) MonitoringServicer {
	return &monitoringService{db: db, fund: fund, lowFundThreshold: lowFundThreshold, window: window}
}

// OverdueDisbursements lists disbursed requests that still have no linked
// report once the link window has elapsed, oldest first.
func (s *monitoringService) OverdueDisbursements() ([]models.DisbursementRequest, error) {
	cutoff := time.Now().Add(-s.window)
	linked := s.db.Model(&models.ExpenseReport{}).
		Select("1").
		Where("expense_reports.disbursement_request_id = disbursement_requests.id")

	var requests []models.DisbursementRequest
	err := s.db.Preload("Requester").
		Where("is_disbursed = ? AND disbursed_at < ?", true, cutoff).
		Where("NOT EXISTS (?)", linked).
		Order("disbursed_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if requests == nil {
		requests = []models.DisbursementRequest{}
	}
	return requests, nil
}

// Alerts collects every condition that needs attention.
func (s *monitoringService) Alerts() ([]Alert, error) {
	alerts := []Alert{}

	fund, err := s.fund.GetFund()
	if err != nil {
		return nil, err
	}
	if fund.Balance.LessThan(s.lowFundThreshold) {
		severity := "warning"
		if !fund.Balance.IsPositive() {
			severity = "critical"
		}
		alerts = append(alerts, Alert{
			Kind:       AlertLowFund,
			Severity:   severity,
			Message:    fmt.Sprintf("Fund balance %s is below the %s threshold", fund.Balance.StringFixed(2), s.lowFundThreshold.StringFixed(2)),
			ResourceID: fund.ID,
		})
	}

	overdue, err := s.OverdueDisbursements()
	if err != nil {
		return nil, err
	}
	for _, r := range overdue {
		alerts = append(alerts, Alert{
			Kind:       AlertOverdueDisbursement,
			Severity:   "warning",
			Message:    fmt.Sprintf("Disbursement of %s (%s) has no expense report after %s", r.Amount.StringFixed(2), r.Reason, s.window),
			ResourceID: r.ID,
		})
	}

	var reports []models.ExpenseReport
	if err := s.db.Where("disbursement_request_id IS NULL AND status IN ? AND created_at < ?",
		[]models.ReportStatus{models.ReportDraft, models.ReportSubmitted}, time.Now().Add(-s.window)).
		Order("created_at ASC").
		Find(&reports).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, r := range reports {
		alerts = append(alerts, Alert{
			Kind:       AlertUnlinkedReport,
			Severity:   "info",
			Message:    fmt.Sprintf("Expense report %q is not linked to any disbursement", r.ArticleDescription),
			ResourceID: r.ID,
		})
	}

	var contracts []models.Contract
	if err := s.db.Where("signed_at IS NULL").Order("created_at ASC").Find(&contracts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, c := range contracts {
		alerts = append(alerts, Alert{
			Kind:       AlertUnsignedContract,
			Severity:   "info",
			Message:    fmt.Sprintf("Contract %s is not signed", c.Reference),
			ResourceID: c.ID,
		})
	}

	late, err := s.lateSites()
	if err != nil {
		return nil, err
	}
	for _, site := range late {
		alerts = append(alerts, Alert{
			Kind:       AlertLateSite,
			Severity:   "warning",
			Message:    fmt.Sprintf("Site %s (%s) was due to finish on %s", site.Reference, site.Name, site.PlannedEnd.Format("2006-01-02")),
			ResourceID: site.ID,
		})
	}

	return alerts, nil
}

// lateSites returns in-progress sites whose planned end date is before today.
func (s *monitoringService) lateSites() ([]models.ConstructionSite, error) {
	y, m, d := time.Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.Local)

	var sites []models.ConstructionSite
	if err := s.db.Where("status = ? AND planned_end IS NOT NULL AND planned_end < ?", models.SiteInProgress, today).
		Order("planned_end ASC").
		Find(&sites).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sites, nil
}

// LinkStats reports how many validated reports are reconciled with a disbursement.
func (s *monitoringService) LinkStats() (*LinkStats, error) {
	var stats LinkStats
	base := s.db.Model(&models.ExpenseReport{}).Where("status = ?", models.ReportValidated)

	if err := base.Session(&gorm.Session{}).Count(&stats.ValidatedTotal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := base.Session(&gorm.Session{}).
		Where("disbursement_request_id IS NOT NULL").
		Count(&stats.ValidatedLinked).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stats.ValidatedUnlinked = stats.ValidatedTotal - stats.ValidatedLinked
	if stats.ValidatedTotal > 0 {
		stats.LinkRate = float64(stats.ValidatedLinked) / float64(stats.ValidatedTotal) * 100
	}
	return &stats, nil
}
