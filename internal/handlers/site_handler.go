package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
	"finflow/internal/services"
)

// SiteHandler handles construction sites and their contracts.
type SiteHandler struct {
	siteService     services.SiteServicer
	contractService services.ContractServicer
	auditService    services.AuditServicer
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(siteService services.SiteServicer, contractService services.ContractServicer, auditService services.AuditServicer) *SiteHandler {
	return &SiteHandler{siteService: siteService, contractService: contractService, auditService: auditService}
}

// CreateSiteRequest represents the payload for a new construction site.
type CreateSiteRequest struct {
	Reference  string            `json:"reference" binding:"required,max=50"`
	Name       string            `json:"name" binding:"required,max=200"`
	City       string            `json:"city" binding:"max=100"`
	Status     models.SiteStatus `json:"status" binding:"omitempty,site_status"`
	PlannedEnd *string           `json:"planned_end"`
}

// CreateContractRequest represents the payload for a site contract.
type CreateContractRequest struct {
	SiteID       string          `json:"site_id" binding:"required,uuid"`
	Reference    string          `json:"reference" binding:"required,max=50"`
	TotalAmount  decimal.Decimal `json:"total_amount" swaggertype:"string"`
	Installments int             `json:"installments" binding:"gte=0"`
	SignedAt     *string         `json:"signed_at"`
}

// RecordPaymentRequest represents money collected on a contract.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string"`
	PaidOn *string         `json:"paid_on"`
}

// CreateSite creates a construction site
// @Summary     Create a site
// @Tags        sites
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSiteRequest true "Site"
// @Success     201 {object} map[string]models.ConstructionSite
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate reference"
// @Router      /sites [post]
func (h *SiteHandler) CreateSite(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	plannedEnd, err := parseOptionalDate(req.PlannedEnd, "planned_end")
	if err != nil {
		respondWithError(c, err)
		return
	}

	site, err := h.siteService.CreateSite(req.Reference, req.Name, req.City, req.Status, plannedEnd)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SITE", "construction_site", site.ID, c.ClientIP(),
		map[string]interface{}{"reference": site.Reference})

	c.JSON(http.StatusCreated, gin.H{"site": site})
}

// GetSite returns a construction site
// @Summary     Get a site
// @Tags        sites
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Site ID"
// @Success     200 {object} map[string]models.ConstructionSite
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /sites/{id} [get]
func (h *SiteHandler) GetSite(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	site, err := h.siteService.GetSite(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": site})
}

// ListSites lists construction sites
// @Summary     List sites
// @Tags        sites
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Param       status    query string false "Status"
// @Success     200 {object} pagination.PageResponse[models.ConstructionSite]
// @Router      /sites [get]
func (h *SiteHandler) ListSites(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.SiteStatus
	if v := c.Query("status"); v != "" {
		s := models.SiteStatus(v)
		if !s.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status"))
			return
		}
		status = &s
	}

	result, err := h.siteService.ListSites(page, status)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateContract attaches a contract to a site
// @Summary     Create a contract
// @Tags        contracts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateContractRequest true "Contract"
// @Success     201 {object} map[string]models.Contract
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Site already contracted or duplicate reference"
// @Router      /contracts [post]
func (h *SiteHandler) CreateContract(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	signedAt, err := parseOptionalDate(req.SignedAt, "signed_at")
	if err != nil {
		respondWithError(c, err)
		return
	}

	contract, err := h.contractService.CreateContract(req.SiteID, req.Reference, req.TotalAmount, req.Installments, signedAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CONTRACT", "contract", contract.ID, c.ClientIP(),
		map[string]interface{}{"site_id": contract.SiteID, "total_amount": contract.TotalAmount.StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"contract": contract})
}

// GetContract returns a contract with its site
// @Summary     Get a contract
// @Tags        contracts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Contract ID"
// @Success     200 {object} map[string]models.Contract
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /contracts/{id} [get]
func (h *SiteHandler) GetContract(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	contract, err := h.contractService.GetContract(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

// RecordPayment records money collected on a contract
// @Summary     Record a contract payment
// @Description Adds to the collected amount; the site moves to invoiced on the first payment and to paid once fully collected
// @Tags        contracts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Contract ID"
// @Param       request body RecordPaymentRequest true "Payment"
// @Success     200 {object} map[string]models.Contract
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /contracts/{id}/payments [post]
func (h *SiteHandler) RecordPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	paidOn, err := parseOptionalDate(req.PaidOn, "paid_on")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var when time.Time
	if paidOn != nil {
		when = *paidOn
	}

	contract, err := h.contractService.RecordPayment(id, req.Amount, when)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RECORD_PAYMENT", "contract", contract.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.StringFixed(2)})

	c.JSON(http.StatusOK, gin.H{"contract": contract})
}
