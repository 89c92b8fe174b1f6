package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/collegehub/pkg/errors"
	"github.com/charlesng35/collegehub/pkg/logger"
	"github.com/charlesng35/collegehub/pkg/response"
)

// Recovery converts panics into a generic 500 response and logs the error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
				)
				response.Failure(c, errors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Failure(c, errors.New(errors.ErrNotFound.Code, fmt.Sprintf("route %s not found", c.Request.URL.Path), http.StatusNotFound))
}
