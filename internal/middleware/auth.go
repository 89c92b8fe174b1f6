package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/collegehub/internal/auth"
	"github.com/charlesng35/collegehub/pkg/errors"
	"github.com/charlesng35/collegehub/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxRoleKey   = "role"

	// accessTokenQueryParam carries the token on websocket upgrades, where browsers cannot set headers.
	accessTokenQueryParam = "access_token"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.AccountID)
		c.Set(CtxRoleKey, string(claims.Role))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if len(authz) > 7 && strings.EqualFold(authz[:7], "Bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return strings.TrimSpace(c.Query(accessTokenQueryParam))
	}
	return ""
}
