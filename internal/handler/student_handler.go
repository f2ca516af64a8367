package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/internal/service"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/response"
)

// StudentHandler serves role-scoped student listings.
type StudentHandler struct {
	service *service.StudentService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students visible to the caller
// @Tags Students
// @Produce json
// @Param class_id query string false "Restrict to one class (teachers)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	students, err := h.service.List(c.Request.Context(), cc.Caller, c.Query("class_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
