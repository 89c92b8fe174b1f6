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

// LeaveHandler exposes leave applications for students and staff and the admin review queue.
type LeaveHandler struct {
	directory *services.AccountDirectory
	leaves    *services.LeaveService
}

// NewLeaveHandler constructs a LeaveHandler.
func NewLeaveHandler(directory *services.AccountDirectory, leaves *services.LeaveService) (*LeaveHandler, error) {
	if directory == nil || leaves == nil {
		return nil, errors.New("leave handler: directory and service are required")
	}
	return &LeaveHandler{directory: directory, leaves: leaves}, nil
}

type applyLeaveRequest struct {
	Date    string `json:"date" validate:"required"`
	EndDate string `json:"end_date"`
	Message string `json:"message" validate:"required,max=2000"`
}

type decideLeaveRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// POST /api/leaves
func (h *LeaveHandler) Apply(c *gin.Context) {
	principal, err := currentPrincipal(c, h.directory)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req applyLeaveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	input := services.ApplyLeaveInput{Date: date, Message: req.Message}
	if req.EndDate != "" {
		end, err := parseDate("end_date", req.EndDate)
		if err != nil {
			response.Error(c, err)
			return
		}
		input.EndDate = &end
	}

	leave, err := h.leaves.Apply(requestContext(c), principal, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, leave)
}

// GET /api/leaves/mine
func (h *LeaveHandler) ListMine(c *gin.Context) {
	userID := callerID(c)
	leaves, err := h.leaves.ListForAccount(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, leaves)
}

// GET /api/admin/leaves?role=student|staff
func (h *LeaveHandler) ListForReview(c *gin.Context) {
	role := models.Role(c.DefaultQuery("role", string(models.RoleStudent)))
	if role != models.RoleStudent && role != models.RoleStaff {
		response.Error(c, appErrors.NewBadRequest("role must be one of: student staff"))
		return
	}
	leaves, err := h.leaves.ListByRole(requestContext(c), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, leaves)
}

// POST /api/admin/leaves/:id/decision
func (h *LeaveHandler) Decide(c *gin.Context) {
	principal, err := currentPrincipal(c, h.directory)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req decideLeaveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	leave, err := h.leaves.Decide(requestContext(c), principal, c.Param("id"), *req.Approved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, leave)
}
