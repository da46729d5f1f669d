package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
)

const principalKey = "principal"

// PrincipalResolver loads the authorization view of a staff member.
type PrincipalResolver interface {
	GetPrincipal(id string) (models.Principal, error)
}

// ResolvePrincipal loads the acting principal for the authenticated user.
// It must run after AuthMiddleware.
func ResolvePrincipal(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		principal, err := resolver.GetPrincipal(userID)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.StatusCode >= 500 {
				abortWithError(c, appErr)
				return
			}
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRoles only lets through principals holding one of roles. Superusers always pass.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(principalKey)
		if !ok {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		principal := value.(models.Principal)
		if principal.IsSuperuser {
			c.Next()
			return
		}
		for _, r := range roles {
			if principal.Role == r {
				c.Next()
				return
			}
		}
		abortWithError(c, apperrors.ErrForbidden)
	}
}
