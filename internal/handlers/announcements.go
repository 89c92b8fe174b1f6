package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/internal/services"
	"github.com/charlesng35/collegehub/pkg/response"
)

// AnnouncementHandler lets admins message students and staff directly.
type AnnouncementHandler struct {
	directory     *services.AccountDirectory
	announcements *services.AnnouncementService
}

// NewAnnouncementHandler constructs an AnnouncementHandler.
func NewAnnouncementHandler(directory *services.AccountDirectory, announcements *services.AnnouncementService) (*AnnouncementHandler, error) {
	if directory == nil || announcements == nil {
		return nil, errors.New("announcement handler: directory and service are required")
	}
	return &AnnouncementHandler{directory: directory, announcements: announcements}, nil
}

type announcementRequest struct {
	RecipientIDs []string `json:"recipient_ids"`
	Audience     string   `json:"audience" validate:"omitempty,oneof=student staff"`
	Title        string   `json:"title" validate:"max=255"`
	Message      string   `json:"message" validate:"required,max=2000"`
}

// POST /api/admin/announcements
func (h *AnnouncementHandler) Send(c *gin.Context) {
	principal, err := currentPrincipal(c, h.directory)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req announcementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	sent, err := h.announcements.Send(requestContext(c), principal, services.AnnouncementInput{
		RecipientIDs: req.RecipientIDs,
		Audience:     models.Role(req.Audience),
		Title:        req.Title,
		Message:      req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"recipients": sent})
}
