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

// ExpenseReportHandler handles expense report endpoints.
type ExpenseReportHandler struct {
	reportService services.ExpenseReportServicer
	auditService  services.AuditServicer
}

// NewExpenseReportHandler creates a new ExpenseReportHandler.
func NewExpenseReportHandler(reportService services.ExpenseReportServicer, auditService services.AuditServicer) *ExpenseReportHandler {
	return &ExpenseReportHandler{reportService: reportService, auditService: auditService}
}

// ExpenseReportRequest represents the payload of a new expense report.
// Submit false keeps the report as a draft.
type ExpenseReportRequest struct {
	DisbursementRequestID *string         `json:"disbursement_request_id" binding:"omitempty,uuid"`
	CategoryID            string          `json:"category_id" binding:"required,uuid"`
	ArticleDescription    string          `json:"article_description" binding:"required,max=200"`
	UnitPrice             decimal.Decimal `json:"unit_price" swaggertype:"string"`
	Quantity              int             `json:"quantity" binding:"required,min=1"`
	SupplierID            *string         `json:"supplier_id" binding:"omitempty,uuid"`
	FreeTextSupplier      string          `json:"free_text_supplier" binding:"max=100"`
	InvoiceImage          string          `json:"invoice_image" binding:"max=500"`
	ExpenseDate           string          `json:"expense_date" binding:"required"`
	SiteID                *string         `json:"site_id" binding:"omitempty,uuid"`
	Note                  string          `json:"note" binding:"max=2000"`
	Submit                bool            `json:"submit"`
}

// ReviewRequest represents a reviewer's decision on a submitted report.
type ReviewRequest struct {
	Decision services.ReviewDecision `json:"decision" binding:"required,review_decision"`
	Comment  string                  `json:"comment" binding:"max=2000"`
}

// AssignSupplierRequest sets or clears the supplier of a report.
type AssignSupplierRequest struct {
	SupplierID *string `json:"supplier_id" binding:"omitempty,uuid"`
}

// CreateReport records an expense, as a draft or directly submitted
// @Summary     Create an expense report
// @Tags        expense-reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseReportRequest true "Report"
// @Success     201 {object} map[string]models.ExpenseReport
// @Failure     400 {object} ErrorResponse "Invalid input, ceiling exceeded or request not linkable"
// @Router      /expense-reports [post]
func (h *ExpenseReportHandler) CreateReport(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	expenseDate, err := parseFlexibleTime(req.ExpenseDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid expense_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	input := services.ExpenseReportInput{
		DisbursementRequestID: req.DisbursementRequestID,
		CategoryID:            req.CategoryID,
		ArticleDescription:    req.ArticleDescription,
		UnitPrice:             req.UnitPrice,
		Quantity:              req.Quantity,
		SupplierID:            req.SupplierID,
		FreeTextSupplier:      req.FreeTextSupplier,
		InvoiceImage:          req.InvoiceImage,
		ExpenseDate:           expenseDate,
		SiteID:                req.SiteID,
		Note:                  req.Note,
	}

	var report *models.ExpenseReport
	if req.Submit {
		report, err = h.reportService.Submit(principal, input)
	} else {
		report, err = h.reportService.SaveDraft(principal, input)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(principal.ID, "CREATE_EXPENSE_REPORT", "expense_report", report.ID, c.ClientIP(),
		map[string]interface{}{"status": report.Status, "total": report.ComputeTotal().StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// SubmitDraft submits one of the caller's drafts
// @Summary     Submit a draft report
// @Tags        expense-reports
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Report ID"
// @Success     200 {object} map[string]models.ExpenseReport
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not a draft"
// @Router      /expense-reports/{id}/submit [post]
func (h *ExpenseReportHandler) SubmitDraft(c *gin.Context) {
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

	report, err := h.reportService.SubmitDraft(principal, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(principal.ID, "SUBMIT_EXPENSE_REPORT", "expense_report", report.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Review validates or rejects a submitted report
// @Summary     Review an expense report
// @Tags        expense-reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Report ID"
// @Param       request body ReviewRequest true "Decision"
// @Success     200 {object} map[string]models.ExpenseReport
// @Failure     400 {object} ErrorResponse "Invalid decision"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Not submitted"
// @Router      /expense-reports/{id}/review [post]
func (h *ExpenseReportHandler) Review(c *gin.Context) {
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

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	report, err := h.reportService.Review(id, principal, req.Decision, req.Comment)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(principal.ID, "REVIEW_EXPENSE_REPORT", "expense_report", report.ID, c.ClientIP(),
		map[string]interface{}{"decision": req.Decision, "status": report.Status})

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// AssignSupplier sets the supplier of a report
// @Summary     Assign a supplier
// @Tags        expense-reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Report ID"
// @Param       request body AssignSupplierRequest true "Supplier, null to clear"
// @Success     200 {object} map[string]models.ExpenseReport
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expense-reports/{id}/supplier [put]
func (h *ExpenseReportHandler) AssignSupplier(c *gin.Context) {
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

	var req AssignSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	report, err := h.reportService.AssignSupplier(id, principal, req.SupplierID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ListLinkableRequests lists the caller's disbursements a new report may be linked to
// @Summary     Linkable disbursement requests
// @Tags        expense-reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.DisbursementRequest
// @Router      /expense-reports/linkable-requests [get]
func (h *ExpenseReportHandler) ListLinkableRequests(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	requests, err := h.reportService.ListLinkableRequests(principal)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// GetReport returns a report visible to the caller
// @Summary     Get an expense report
// @Tags        expense-reports
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Report ID"
// @Success     200 {object} map[string]models.ExpenseReport
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expense-reports/{id} [get]
func (h *ExpenseReportHandler) GetReport(c *gin.Context) {
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

	report, err := h.reportService.GetReport(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if report.EmployeeID != principal.ID && !canSeeAllReports(principal) {
		respondWithError(c, apperrors.ErrExpenseReportNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ListReports lists all reports
// @Summary     List expense reports
// @Tags        expense-reports
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number"
// @Param       page_size   query int    false "Page size"
// @Param       status      query string false "Status"
// @Param       employee_id query string false "Employee"
// @Param       category_id query string false "Category"
// @Param       supplier_id query string false "Supplier"
// @Param       linked      query bool   false "Linked to a disbursement"
// @Success     200 {object} pagination.PageResponse[models.ExpenseReport]
// @Router      /expense-reports [get]
func (h *ExpenseReportHandler) ListReports(c *gin.Context) {
	h.list(c, false)
}

// ListMyReports lists the caller's own reports
// @Summary     List my expense reports
// @Tags        expense-reports
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Param       status    query string false "Status"
// @Success     200 {object} pagination.PageResponse[models.ExpenseReport]
// @Router      /expense-reports/mine [get]
func (h *ExpenseReportHandler) ListMyReports(c *gin.Context) {
	h.list(c, true)
}

func (h *ExpenseReportHandler) list(c *gin.Context, mine bool) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseReportFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if mine {
		filter.EmployeeID = &principal.ID
	}

	result, err := h.reportService.ListReports(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseReportFilter(c *gin.Context) (services.ExpenseReportFilter, error) {
	var filter services.ExpenseReportFilter
	var err error

	if v := c.Query("status"); v != "" {
		status := models.ReportStatus(v)
		if !status.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status")
		}
		filter.Status = &status
	}
	if filter.EmployeeID, err = optionalUUIDQuery(c, "employee_id"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = optionalUUIDQuery(c, "category_id"); err != nil {
		return filter, err
	}
	if filter.SupplierID, err = optionalUUIDQuery(c, "supplier_id"); err != nil {
		return filter, err
	}
	if filter.Linked, err = optionalBoolQuery(c, "linked"); err != nil {
		return filter, err
	}
	return filter, nil
}

func canSeeAllReports(p models.Principal) bool {
	return p.IsSuperuser || p.Role == models.RoleDirector || p.Role == models.RoleAccountant
}
