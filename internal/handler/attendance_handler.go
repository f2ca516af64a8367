package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/internal/models"
	"github.com/abogida/abogida-api/internal/service"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/response"
)

// AttendanceHandler records and lists attendance.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark attendance for a class on a date
// @Description Upserts one status row per student; repeat submissions replace
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.MarkAttendanceRequest true "Attendance entries"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	records, err := h.service.Mark(c.Request.Context(), cc.Caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// List godoc
// @Summary List attendance for a class on a date
// @Tags Attendance
// @Produce json
// @Param class_id query string true "Class ID"
// @Param date query string true "Date, YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	records, err := h.service.List(c.Request.Context(), cc.Caller, c.Query("class_id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
