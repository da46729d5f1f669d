package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "finflow/internal/errors"
	"finflow/internal/middleware"
	"finflow/internal/models"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// getPrincipal returns the principal resolved by middleware.ResolvePrincipal.
func getPrincipal(c *gin.Context) (models.Principal, error) {
	value, ok := c.Get("principal")
	if !ok {
		return models.Principal{}, apperrors.ErrUnauthorized
	}
	principal, ok := value.(models.Principal)
	if !ok {
		return models.Principal{}, apperrors.ErrUnauthorized
	}
	return principal, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id.String(), nil
}

// optionalUUIDQuery reads an optional UUID query parameter.
func optionalUUIDQuery(c *gin.Context, key string) (*string, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+key)
	}
	s := id.String()
	return &s, nil
}

// optionalBoolQuery reads an optional boolean query parameter.
func optionalBoolQuery(c *gin.Context, key string) (*bool, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+key+", must be true or false")
	}
	return &b, nil
}

// parseFlexibleTime accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseFlexibleTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", v, time.Local)
}

// parseOptionalDate parses a nullable date field from a request body.
func parseOptionalDate(v *string, field string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(*v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+field+" format, use RFC3339 or YYYY-MM-DD")
	}
	return &t, nil
}

// respondWithError writes a consistent JSON error response. AppErrors keep
// their status and code; anything else becomes a generic internal error.
func respondWithError(c *gin.Context, err error) {
	middleware.RenderError(c, err)
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
