package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
	"finflow/internal/services"
)

// DisbursementHandler handles disbursement request endpoints.
type DisbursementHandler struct {
	disbursementService services.DisbursementServicer
	auditService        services.AuditServicer
}

// NewDisbursementHandler creates a new DisbursementHandler.
func NewDisbursementHandler(disbursementService services.DisbursementServicer, auditService services.AuditServicer) *DisbursementHandler {
	return &DisbursementHandler{disbursementService: disbursementService, auditService: auditService}
}

// CreateDisbursementRequest represents the payload of a new request for cash.
type CreateDisbursementRequest struct {
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	SiteID        *string         `json:"site_id" binding:"omitempty,uuid"`
	Reason        string          `json:"reason" binding:"required,max=2000"`
	ReferenceCode string          `json:"reference_code" binding:"max=50"`
}

// CreateRequest files a new disbursement request for the caller
// @Summary     Create a disbursement request
// @Tags        disbursements
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateDisbursementRequest true "Request"
// @Success     201 {object} map[string]models.DisbursementRequest
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Site not found"
// @Router      /disbursements [post]
func (h *DisbursementHandler) CreateRequest(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateDisbursementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	request, err := h.disbursementService.CreateRequest(principal, services.CreateDisbursementInput{
		Amount:        req.Amount,
		SiteID:        req.SiteID,
		Reason:        req.Reason,
		ReferenceCode: req.ReferenceCode,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(principal.ID, "CREATE_DISBURSEMENT_REQUEST", "disbursement_request", request.ID, c.ClientIP(),
		map[string]interface{}{"amount": request.Amount.StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// GetRequest returns one disbursement request
// @Summary     Get a disbursement request
// @Tags        disbursements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Request ID"
// @Success     200 {object} map[string]models.DisbursementRequest
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /disbursements/{id} [get]
func (h *DisbursementHandler) GetRequest(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	request, err := h.disbursementService.GetRequest(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if request.RequesterID != principal.ID && !canSeeAllRequests(principal) {
		respondWithError(c, apperrors.ErrDisbursementNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": request})
}

// ListRequests lists disbursement requests, newest first
// @Summary     List disbursement requests
// @Tags        disbursements
// @Produce     json
// @Security    BearerAuth
// @Param       page         query int    false "Page number"
// @Param       page_size    query int    false "Page size"
// @Param       status       query string false "Status"
// @Param       requester_id query string false "Requester"
// @Param       site_id      query string false "Site"
// @Param       disbursed    query bool   false "Disbursed flag"
// @Param       from_date    query string false "Requested on or after"
// @Param       to_date      query string false "Requested on or before"
// @Param       search       query string false "Text in the reason"
// @Success     200 {object} pagination.PageResponse[models.DisbursementRequest]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /disbursements [get]
func (h *DisbursementHandler) ListRequests(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseDisbursementFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.disbursementService.ListRequests(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Approve approves a pending request in the caller's capacity
// @Summary     Approve a disbursement request
// @Tags        disbursements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Request ID"
// @Success     200 {object} map[string]models.DisbursementRequest
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Already decided"
// @Router      /disbursements/{id}/approve [post]
func (h *DisbursementHandler) Approve(c *gin.Context) {
	h.decide(c, "APPROVE_DISBURSEMENT", h.disbursementService.Approve)
}

// Reject rejects a pending request in the caller's capacity
// @Summary     Reject a disbursement request
// @Tags        disbursements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Request ID"
// @Success     200 {object} map[string]models.DisbursementRequest
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Already decided"
// @Router      /disbursements/{id}/reject [post]
func (h *DisbursementHandler) Reject(c *gin.Context) {
	h.decide(c, "REJECT_DISBURSEMENT", h.disbursementService.Reject)
}

// Disburse hands out the cash of an approved request
// @Summary     Disburse a request
// @Description Debits the cash fund by the request amount; fails without change if the fund is short
// @Tags        disbursements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Request ID"
// @Success     200 {object} map[string]models.DisbursementRequest
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Not approved, already disbursed or insufficient funds"
// @Router      /disbursements/{id}/disburse [post]
func (h *DisbursementHandler) Disburse(c *gin.Context) {
	h.decide(c, "DISBURSE", h.disbursementService.Disburse)
}

func (h *DisbursementHandler) decide(c *gin.Context, action string, apply func(string, models.Principal) (*models.DisbursementRequest, error)) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	request, err := apply(id, principal)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(principal.ID, action, "disbursement_request", request.ID, c.ClientIP(),
		map[string]interface{}{"status": request.Status, "amount": request.Amount.StringFixed(2)})

	c.JSON(http.StatusOK, gin.H{"request": request})
}

func parseDisbursementFilter(c *gin.Context) (services.DisbursementFilter, error) {
	var filter services.DisbursementFilter
	var err error

	if v := c.Query("status"); v != "" {
		status := models.DisbursementStatus(v)
		if !status.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status")
		}
		filter.Status = &status
	}
	if filter.RequesterID, err = optionalUUIDQuery(c, "requester_id"); err != nil {
		return filter, err
	}
	if filter.SiteID, err = optionalUUIDQuery(c, "site_id"); err != nil {
		return filter, err
	}
	if filter.Disbursed, err = optionalBoolQuery(c, "disbursed"); err != nil {
		return filter, err
	}
	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}
	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}
	filter.Reason = c.Query("search")
	return filter, nil
}

// canSeeAllRequests reports whether p may read requests raised by someone else.
func canSeeAllRequests(p models.Principal) bool {
	switch p.Role {
	case models.RoleDirector, models.RoleAccountant, models.RoleSecretary:
		return true
	}
	return p.IsSuperuser
}
