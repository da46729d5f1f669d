// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"finflow/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("deposit_kind", validateDepositKind)
		_ = v.RegisterValidation("expense_kind", validateExpenseKind)
		_ = v.RegisterValidation("review_decision", validateReviewDecision)
		_ = v.RegisterValidation("role", validateRole)
		_ = v.RegisterValidation("site_status", validateSiteStatus)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateDepositKind(fl validator.FieldLevel) bool {
	return models.DepositKind(fl.Field().String()).Valid()
}

func validateExpenseKind(fl validator.FieldLevel) bool {
	switch models.ExpenseKind(fl.Field().String()) {
	case models.KindMaterials, models.KindTransport, models.KindLabor,
		models.KindMiscellaneous, models.KindAdministration, models.KindOther:
		return true
	}
	return false
}

func validateReviewDecision(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "validate", "reject", "request_modification":
		return true
	}
	return false
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

func validateSiteStatus(fl validator.FieldLevel) bool {
	return models.SiteStatus(fl.Field().String()).Valid()
}
