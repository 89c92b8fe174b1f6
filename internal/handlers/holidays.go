package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/services"
	"github.com/charlesng35/collegehub/pkg/response"
)

// HolidayHandler manages the college holiday calendar.
type HolidayHandler struct {
	holidays *services.HolidayService
}

// NewHolidayHandler constructs a HolidayHandler.
func NewHolidayHandler(holidays *services.HolidayService) (*HolidayHandler, error) {
	if holidays == nil {
		return nil, errors.New("holiday handler: service is required")
	}
	return &HolidayHandler{holidays: holidays}, nil
}

type createHolidayRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Date string `json:"date" validate:"required"`
}

// GET /api/holidays
func (h *HolidayHandler) List(c *gin.Context) {
	holidays, err := h.holidays.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, holidays)
}

// POST /api/admin/holidays
func (h *HolidayHandler) Create(c *gin.Context) {
	var req createHolidayRequest
	if !bindAndValidate(c, &req) {
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	holiday, err := h.holidays.Create(requestContext(c), req.Name, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, holiday)
}

// DELETE /api/admin/holidays/:id
func (h *HolidayHandler) Delete(c *gin.Context) {
	if err := h.holidays.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
