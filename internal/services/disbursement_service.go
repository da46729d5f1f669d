package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finflow/internal/errors"
	"finflow/internal/logger"
	"finflow/internal/models"
	"finflow/internal/pagination"
)

// disbursementService handles the request → approval → disbursement lifecycle.
type disbursementService struct {
	db       *gorm.DB
	fund     FundServicer
	notifier Notifier
}

// NewDisbursementService creates a new DisbursementServicer.
func NewDisbursementService(db *gorm.DB, fund FundServicer, notifier Notifier) DisbursementServicer {
	return &disbursementService{db: db, fund: fund, notifier: notifier}
}

// CreateRequest files a pending request on behalf of requester.
func (s *disbursementService) CreateRequest(requester models.Principal, input CreateDisbursementInput) (*models.DisbursementRequest, error) {
	if requester.ID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reason is required")
	}

	if input.SiteID != nil {
		var count int64
		if err := s.db.Model(&models.ConstructionSite{}).Where("id = ?", *input.SiteID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrSiteNotFound
		}
	}

	request := &models.DisbursementRequest{
		RequesterID:   requester.ID,
		Amount:        input.Amount.Round(2),
		SiteID:        input.SiteID,
		Reason:        reason,
		Status:        models.StatusPending,
		ReferenceCode: strings.TrimSpace(input.ReferenceCode),
	}
	if err := s.db.Create(request).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return request, nil
}

// Approve records an approval in the capacity the actor holds.
func (s *disbursementService) Approve(requestID string, actor models.Principal) (*models.DisbursementRequest, error) {
	var status models.DisbursementStatus
	switch resolveAuthority(actor) {
	case authorityDirector:
		status = models.StatusApprovedByDirector
	case authorityAccountant:
		status = models.StatusApprovedByAccountant
	case authorityNone:
		return nil, apperrors.ErrForbidden
	}
	return s.decide(requestID, actor, status, "approved")
}

// Reject records a rejection in the capacity the actor holds.
func (s *disbursementService) Reject(requestID string, actor models.Principal) (*models.DisbursementRequest, error) {
	var status models.DisbursementStatus
	switch resolveAuthority(actor) {
	case authorityDirector:
		status = models.StatusRejectedByDirector
	case authorityAccountant:
		status = models.StatusRejectedByAccountant
	case authorityNone:
		return nil, apperrors.ErrForbidden
	}
	return s.decide(requestID, actor, status, "rejected")
}

func (s *disbursementService) decide(requestID string, actor models.Principal, status models.DisbursementStatus, verb string) (*models.DisbursementRequest, error) {
	var request models.DisbursementRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockRequest(tx, requestID, &request); err != nil {
			return err
		}
		if request.Status.IsDecided() {
			return apperrors.ErrRequestAlreadyDecided
		}

		now := time.Now()
		approverID := actor.ID
		request.Status = status
		request.ApproverID = &approverID
		request.ApprovedAt = &now
		if err := tx.Model(&request).Updates(map[string]interface{}{
			"status":      request.Status,
			"approver_id": approverID,
			"approved_at": now,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyRequester(&request,
		fmt.Sprintf("Disbursement request %s", verb),
		fmt.Sprintf("Your request for %s (%s) was %s.", request.Amount.StringFixed(2), request.Reason, verb))
	return &request, nil
}

// Disburse hands out the cash for an approved request and debits the fund.
// Failed preconditions leave both the request and the fund untouched.
func (s *disbursementService) Disburse(requestID string, operator models.Principal) (*models.DisbursementRequest, error) {
	if !canDisburse(operator) {
		return nil, apperrors.ErrForbidden
	}

	var request models.DisbursementRequest
	err := retryOnFundConflict(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			request = models.DisbursementRequest{}
			if err := lockRequest(tx, requestID, &request); err != nil {
				return err
			}
			switch {
			case request.IsDisbursed:
				return apperrors.ErrAlreadyDisbursed
			case !request.Status.IsApproved():
				return apperrors.ErrRequestNotApproved
			case !request.Amount.IsPositive():
				return apperrors.ErrInvalidAmount
			}

			if _, err := s.fund.AdjustBalance(tx, request.Amount.Neg(), nil); err != nil {
				return err
			}

			now := time.Now()
			res := tx.Model(&models.DisbursementRequest{}).
				Where("id = ? AND is_disbursed = ?", request.ID, false).
				Updates(map[string]interface{}{
					"is_disbursed": true,
					"disbursed_at": now,
				})
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrAlreadyDisbursed
			}
			request.IsDisbursed = true
			request.DisbursedAt = &now
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Get().Infow("disbursement refused, insufficient funds",
				"request_id", requestID,
				"amount", request.Amount.String(),
			)
		}
		return nil, err
	}

	s.notifyRequester(&request,
		"Disbursement completed",
		fmt.Sprintf("%s has been disbursed for your request (%s).", request.Amount.StringFixed(2), request.Reason))
	return &request, nil
}

// GetRequest retrieves a request with its requester, approver and site.
func (s *disbursementService) GetRequest(id string) (*models.DisbursementRequest, error) {
	var request models.DisbursementRequest
	err := s.db.Preload("Requester").Preload("Approver").Preload("Site").
		Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDisbursementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &request, nil
}

// ListRequests returns a filtered page of requests, most recently touched first.
func (s *disbursementService) ListRequests(page pagination.PageRequest, filter DisbursementFilter) (*pagination.PageResponse[models.DisbursementRequest], error) {
	q := applyDisbursementFilters(s.db.Model(&models.DisbursementRequest{}), filter)
	result, err := pagination.Fetch[models.DisbursementRequest](q, page, "requested_at DESC", "Requester")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyDisbursementFilters(q *gorm.DB, f DisbursementFilter) *gorm.DB {
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.RequesterID != nil {
		q = q.Where("requester_id = ?", *f.RequesterID)
	}
	if f.SiteID != nil {
		q = q.Where("site_id = ?", *f.SiteID)
	}
	if f.Disbursed != nil {
		q = q.Where("is_disbursed = ?", *f.Disbursed)
	}
	if f.FromDate != nil {
		q = q.Where("requested_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("requested_at <= ?", *f.ToDate)
	}
	if reason := strings.TrimSpace(f.Reason); reason != "" {
		q = q.Where("LOWER(reason) LIKE ?", "%"+strings.ToLower(reason)+"%")
	}
	return q
}

// lockRequest loads a request under a row lock for the rest of tx.
func lockRequest(tx *gorm.DB, id string, request *models.DisbursementRequest) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrDisbursementNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *disbursementService) notifyRequester(request *models.DisbursementRequest, subject, body string) {
	var requester models.Personnel
	if err := s.db.Select("email").Where("id = ?", request.RequesterID).First(&requester).Error; err != nil {
		logger.Get().Warnw("could not resolve requester for notification", "error", err, "request_id", request.ID)
		return
	}
	notifyBestEffort(s.notifier, []string{requester.Email}, subject, body)
}
