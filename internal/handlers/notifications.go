package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/realtime"
	"github.com/charlesng35/collegehub/internal/services"
	appErrors "github.com/charlesng35/collegehub/pkg/errors"
	"github.com/charlesng35/collegehub/pkg/response"
)

// DefaultWidgetLimit caps the dashboard dropdown when no limit is configured.
const DefaultWidgetLimit = 10

// NotificationHandler serves the dashboard notification widget for the authenticated caller.
// Every endpoint acts on the caller's own identity; there is no way to address another account.
type NotificationHandler struct {
	service     *services.NotificationService
	hub         *realtime.Hub
	widgetLimit int
}

// NewNotificationHandler constructs a handler. hub may be nil, which disables the stream endpoint.
func NewNotificationHandler(service *services.NotificationService, hub *realtime.Hub, widgetLimit int) (*NotificationHandler, error) {
	if service == nil {
		return nil, errors.New("notification handler: service is required")
	}
	if widgetLimit <= 0 {
		widgetLimit = DefaultWidgetLimit
	}
	return &NotificationHandler{service: service, hub: hub, widgetLimit: widgetLimit}, nil
}

// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := callerID(c)
	if userID == "" {
		response.Failure(c, appErrors.ErrUnauthorized)
		return
	}

	ctx := requestContext(c)
	limit := parseIntQuery(c, "limit", h.widgetLimit)
	if limit <= 0 || limit > h.widgetLimit {
		limit = h.widgetLimit
	}

	response.Payload(c, http.StatusOK, gin.H{
		"notifications": h.service.ListUnread(ctx, userID, limit),
		"unread_count":  h.service.CountUnread(ctx, userID),
	})
}

// GET /api/notifications/count
func (h *NotificationHandler) Count(c *gin.Context) {
	userID := callerID(c)
	if userID == "" {
		response.Failure(c, appErrors.ErrUnauthorized)
		return
	}

	response.Payload(c, http.StatusOK, gin.H{
		"count": h.service.CountUnread(requestContext(c), userID),
	})
}

// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := callerID(c)
	if userID == "" {
		response.Failure(c, appErrors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := h.service.MarkRead(requestContext(c), userID, id); err != nil {
		response.Failure(c, err)
		return
	}
	response.Payload(c, http.StatusOK, nil)
}

// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := callerID(c)
	if userID == "" {
		response.Failure(c, appErrors.ErrUnauthorized)
		return
	}

	response.Payload(c, http.StatusOK, gin.H{
		"marked_count": h.service.MarkAllRead(requestContext(c), userID),
	})
}

// GET /api/notifications/stream
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := callerID(c)
	if userID == "" {
		response.Failure(c, appErrors.ErrUnauthorized)
		return
	}
	if h.hub == nil {
		response.Failure(c, appErrors.New("STREAM_DISABLED", "Notification stream is not available", http.StatusServiceUnavailable))
		return
	}
	h.hub.Serve(userID, c.Writer, c.Request)
}
