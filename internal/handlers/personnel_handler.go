package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
	"finflow/internal/services"
)

// PersonnelHandler handles staff account requests.
type PersonnelHandler struct {
	personnelService services.PersonnelServicer
	auditService     services.AuditServicer
}

// NewPersonnelHandler creates a new PersonnelHandler.
func NewPersonnelHandler(personnelService services.PersonnelServicer, auditService services.AuditServicer) *PersonnelHandler {
	return &PersonnelHandler{personnelService: personnelService, auditService: auditService}
}

// CreatePersonnelRequest represents the payload for registering a staff member.
// The password is generated and sent to the staff member's email.
type CreatePersonnelRequest struct {
	Username  string      `json:"username" binding:"max=150"`
	Email     string      `json:"email" binding:"required,email,max=255"`
	FirstName string      `json:"first_name" binding:"max=150"`
	LastName  string      `json:"last_name" binding:"max=150"`
	Phone     string      `json:"phone" binding:"max=20"`
	Role      models.Role `json:"role" binding:"omitempty,role"`
}

// CreatePersonnel registers a staff member
// @Summary     Create personnel
// @Description Register a staff member; a username is generated when omitted and the password is emailed
// @Tags        personnel
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePersonnelRequest true "Staff member"
// @Success     201 {object} map[string]models.Personnel "Created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Duplicate username"
// @Router      /personnel [post]
func (h *PersonnelHandler) CreatePersonnel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	person, err := h.personnelService.CreatePersonnel(services.CreatePersonnelInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PERSONNEL", "personnel", person.ID, c.ClientIP(),
		map[string]interface{}{"username": person.Username, "role": person.Role})

	c.JSON(http.StatusCreated, gin.H{"personnel": person})
}

// ListPersonnel lists staff members
// @Summary     List personnel
// @Tags        personnel
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Param       role      query string false "Filter by role"
// @Success     200 {object} pagination.PageResponse[models.Personnel]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /personnel [get]
func (h *PersonnelHandler) ListPersonnel(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var role *models.Role
	if v := c.Query("role"); v != "" {
		r := models.Role(v)
		if !r.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid role"))
			return
		}
		role = &r
	}

	result, err := h.personnelService.ListPersonnel(page, role)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
