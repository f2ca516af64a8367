package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/internal/service"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/response"
)

// ReportHandler streams rendered attendance reports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Attendance godoc
// @Summary Export an attendance report
// @Tags Reports
// @Produce octet-stream
// @Param class_id query string true "Class ID"
// @Param from query string true "Start date, YYYY-MM-DD"
// @Param to query string true "End date, YYYY-MM-DD"
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.Attendance(
		c.Request.Context(),
		cc.Caller,
		c.Query("class_id"),
		c.Query("from"),
		c.Query("to"),
		service.ReportFormat(c.Query("format")),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(200, result.ContentType, result.Payload)
}
