package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/collegehub/pkg/errors"
)

// Response defines the base API payload.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo holds error details to send to clients.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}

// Payload writes a flat success object: {"success": true, ...fields}.
// The dashboard widget consumes this shape instead of the data envelope.
func Payload(c *gin.Context, statusCode int, fields gin.H) {
	body := gin.H{"success": true}
	for key, value := range fields {
		if key == "success" {
			continue
		}
		body[key] = value
	}
	c.JSON(statusCode, body)
}

// Failure writes a flat error object: {"success": false, "error": message}.
// Internal details never reach the client; only the AppError message is used.
func Failure(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}
	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"success": false, "error": appErr.Message})
}
