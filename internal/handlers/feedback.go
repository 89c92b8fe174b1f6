package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/internal/services"
	appErrors "github.com/charlesng35/collegehub/pkg/errors"
	"github.com/charlesng35/collegehub/pkg/response"
)

// FeedbackHandler lets students and staff write to the administration and admins reply.
type FeedbackHandler struct {
	directory *services.AccountDirectory
	feedback  *services.FeedbackService
}

// NewFeedbackHandler constructs a FeedbackHandler.
func NewFeedbackHandler(directory *services.AccountDirectory, feedback *services.FeedbackService) (*FeedbackHandler, error) {
	if directory == nil || feedback == nil {
		return nil, errors.New("feedback handler: directory and service are required")
	}
	return &FeedbackHandler{directory: directory, feedback: feedback}, nil
}

type submitFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,max=5000"`
}

type replyFeedbackRequest struct {
	Reply string `json:"reply" validate:"required,max=5000"`
}

// POST /api/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	principal, err := currentPrincipal(c, h.directory)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req submitFeedbackRequest
	if !bindAndValidate(c, &req) {
		return
	}

	feedback, err := h.feedback.Submit(requestContext(c), principal, req.Feedback)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, feedback)
}

// GET /api/feedback/mine
func (h *FeedbackHandler) ListMine(c *gin.Context) {
	items, err := h.feedback.ListForAccount(requestContext(c), callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GET /api/admin/feedback?role=student|staff
func (h *FeedbackHandler) ListForReview(c *gin.Context) {
	role := models.Role(c.DefaultQuery("role", string(models.RoleStudent)))
	if role != models.RoleStudent && role != models.RoleStaff {
		response.Error(c, appErrors.NewBadRequest("role must be one of: student staff"))
		return
	}
	items, err := h.feedback.ListByRole(requestContext(c), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// POST /api/admin/feedback/:id/reply
func (h *FeedbackHandler) Reply(c *gin.Context) {
	principal, err := currentPrincipal(c, h.directory)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req replyFeedbackRequest
	if !bindAndValidate(c, &req) {
		return
	}

	feedback, err := h.feedback.Reply(requestContext(c), principal, c.Param("id"), req.Reply)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, feedback)
}
