package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/services"
)

// ExpenseCategoryHandler handles expense category endpoints.
type ExpenseCategoryHandler struct {
	categoryService services.ExpenseCategoryServicer
	auditService    services.AuditServicer
}

// NewExpenseCategoryHandler creates a new ExpenseCategoryHandler.
func NewExpenseCategoryHandler(categoryService services.ExpenseCategoryServicer, auditService services.AuditServicer) *ExpenseCategoryHandler {
	return &ExpenseCategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategoryRequest represents the payload for a new expense category.
type CreateCategoryRequest struct {
	Name         string             `json:"name" binding:"required,min=1,max=100"`
	Kind         models.ExpenseKind `json:"category" binding:"omitempty,expense_kind"`
	Color        string             `json:"color" binding:"omitempty,hex_color"`
	DisplayOrder int                `json:"display_order" binding:"gte=0"`
}

// UpdateCategoryRequest represents a partial update of an expense category.
type UpdateCategoryRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color        *string `json:"color" binding:"omitempty,hex_color"`
	Active       *bool   `json:"active"`
	DisplayOrder *int    `json:"display_order" binding:"omitempty,gte=0"`
}

// CreateCategory creates an expense category
// @Summary     Create an expense category
// @Tags        expense-categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category"
// @Success     201 {object} map[string]models.ExpenseCategory
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /expense-categories [post]
func (h *ExpenseCategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(req.Name, req.Kind, req.Color, req.DisplayOrder)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_EXPENSE_CATEGORY", "expense_category", category.ID, c.ClientIP(),
		map[string]interface{}{"name": category.Name})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// ListCategories lists expense categories in display order
// @Summary     List expense categories
// @Tags        expense-categories
// @Produce     json
// @Security    BearerAuth
// @Param       active query bool false "Only active categories"
// @Success     200 {object} map[string][]models.ExpenseCategory
// @Router      /expense-categories [get]
func (h *ExpenseCategoryHandler) ListCategories(c *gin.Context) {
	active, err := optionalBoolQuery(c, "active")
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.categoryService.ListCategories(active != nil && *active)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// UpdateCategory updates an expense category
// @Summary     Update an expense category
// @Tags        expense-categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to change"
// @Success     200 {object} map[string]models.ExpenseCategory
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /expense-categories/{id} [put]
func (h *ExpenseCategoryHandler) UpdateCategory(c *gin.Context) {
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

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(id, req.Name, req.Color, req.Active, req.DisplayOrder)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_EXPENSE_CATEGORY", "expense_category", category.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"category": category})
}
