package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "finflow/internal/errors"
	"finflow/internal/pagination"
	"finflow/internal/services"
)

// SupplierHandler handles supplier endpoints.
type SupplierHandler struct {
	supplierService services.SupplierServicer
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(supplierService services.SupplierServicer) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// CreateSupplierRequest represents the payload for a new supplier.
type CreateSupplierRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"max=20"`
	Email     string `json:"email" binding:"omitempty,email,max=255"`
	Specialty string `json:"specialty" binding:"max=100"`
}

// CreateSupplier creates a supplier
// @Summary     Create a supplier
// @Tags        suppliers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSupplierRequest true "Supplier"
// @Success     201 {object} map[string]models.Supplier
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /suppliers [post]
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	supplier, err := h.supplierService.CreateSupplier(req.Name, req.Phone, req.Email, req.Specialty)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"supplier": supplier})
}

// GetSupplier returns a supplier with its purchase totals
// @Summary     Get a supplier
// @Tags        suppliers
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Supplier ID"
// @Success     200 {object} map[string]models.SupplierSummary
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.supplierService.GetSupplier(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supplier": summary})
}

// ListSuppliers lists suppliers by name
// @Summary     List suppliers
// @Tags        suppliers
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Param       search    query string false "Name or specialty"
// @Success     200 {object} pagination.PageResponse[models.Supplier]
// @Router      /suppliers [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.supplierService.ListSuppliers(page, c.Query("search"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// TopSuppliers ranks suppliers by total purchases
// @Summary     Top suppliers
// @Tags        suppliers
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "How many suppliers (default 5)"
// @Success     200 {object} map[string][]models.SupplierSummary
// @Router      /suppliers/top [get]
func (h *SupplierHandler) TopSuppliers(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid limit"))
			return
		}
		limit = n
	}

	top, err := h.supplierService.TopSuppliers(limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": top})
}
