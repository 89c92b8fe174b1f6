package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/services"
	appErrors "github.com/charlesng35/collegehub/pkg/errors"
	"github.com/charlesng35/collegehub/pkg/response"
)

// ResultHandler lets staff record scores for their subjects and students read their own.
type ResultHandler struct {
	directory *services.AccountDirectory
	results   *services.ResultService
}

// NewResultHandler constructs a ResultHandler.
func NewResultHandler(directory *services.AccountDirectory, results *services.ResultService) (*ResultHandler, error) {
	if directory == nil || results == nil {
		return nil, errors.New("result handler: directory and service are required")
	}
	return &ResultHandler{directory: directory, results: results}, nil
}

// POST /api/staff/results
func (h *ResultHandler) Save(c *gin.Context) {
	principal, err := currentPrincipal(c, h.directory)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.SaveResultInput
	if !bindAndValidate(c, &req) {
		return
	}

	result, created, err := h.results.Save(requestContext(c), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{
		"result":  result,
		"created": created,
	})
}

// GET /api/results/mine
func (h *ResultHandler) ListMine(c *gin.Context) {
	principal, err := currentPrincipal(c, h.directory)
	if err != nil {
		response.Error(c, err)
		return
	}
	if principal.Student == nil {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	results, err := h.results.ListForStudent(requestContext(c), principal.Student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, results)
}
