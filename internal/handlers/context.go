package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/middleware"
	"github.com/charlesng35/collegehub/internal/services"
	appErrors "github.com/charlesng35/collegehub/pkg/errors"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// callerID returns the authenticated account id placed on the context by middleware.Auth.
func callerID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
}

// currentPrincipal resolves the caller into a role-tagged principal.
// A token whose account has since been removed or deactivated is treated as unauthenticated.
func currentPrincipal(c *gin.Context, directory *services.AccountDirectory) (*services.Principal, error) {
	id := callerID(c)
	if id == "" {
		return nil, appErrors.ErrUnauthorized
	}
	principal, err := directory.Resolve(requestContext(c), id)
	if err != nil {
		return nil, appErrors.ErrUnauthorized.WithInternal(err)
	}
	if !principal.Account.IsActive {
		return nil, appErrors.ErrUnauthorized
	}
	return principal, nil
}
