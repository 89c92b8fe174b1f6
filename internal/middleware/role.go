package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/pkg/errors"
	"github.com/charlesng35/collegehub/pkg/response"
)

// RequireRole only lets through callers whose token carries one of the given roles.
// It must run after Auth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		if c.GetString(CtxUserIDKey) == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[models.Role(c.GetString(CtxRoleKey))]; !ok {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
