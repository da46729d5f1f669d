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

// FundHandler handles cash fund requests.
type FundHandler struct {
	fundService  services.FundServicer
	auditService services.AuditServicer
}

// NewFundHandler creates a new FundHandler.
func NewFundHandler(fundService services.FundServicer, auditService services.AuditServicer) *FundHandler {
	return &FundHandler{fundService: fundService, auditService: auditService}
}

// AddFundsRequest represents a deposit into the cash fund.
type AddFundsRequest struct {
	Amount      decimal.Decimal    `json:"amount" swaggertype:"string"`
	DepositKind models.DepositKind `json:"deposit_kind" binding:"required,deposit_kind"`
	Notes       string             `json:"notes" binding:"max=1000"`
}

// GetFund returns the current fund balance
// @Summary     Get cash fund
// @Tags        fund
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]models.CashFund
// @Failure     503 {object} ErrorResponse "Fund not initialised"
// @Router      /fund [get]
func (h *FundHandler) GetFund(c *gin.Context) {
	fund, err := h.fundService.GetFund()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fund": fund})
}

// AddFunds deposits money into the cash fund
// @Summary     Deposit into the cash fund
// @Tags        fund
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddFundsRequest true "Deposit"
// @Success     201 {object} map[string]models.FundingHistoryEntry
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /fund/deposits [post]
func (h *FundHandler) AddFunds(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.fundService.AddFunds(principal, req.Amount, req.DepositKind, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(principal.ID, "ADD_FUNDS", "cash_fund", entry.FundID, c.ClientIP(),
		map[string]interface{}{"amount": entry.Amount.StringFixed(2), "deposit_kind": entry.DepositKind})

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// ListFundingHistory lists deposits, newest first
// @Summary     Funding history
// @Tags        fund
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.FundingHistoryEntry]
// @Router      /fund/history [get]
func (h *FundHandler) ListFundingHistory(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.fundService.ListFundingHistory(page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
