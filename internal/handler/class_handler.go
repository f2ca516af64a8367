package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/internal/service"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/response"
)

// ClassHandler serves role-scoped class listings.
type ClassHandler struct {
	service *service.ClassService
}

// NewClassHandler creates a new handler.
func NewClassHandler(svc *service.ClassService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List godoc
// @Summary List classes visible to the caller
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	classes, err := h.service.List(c.Request.Context(), cc.Caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}
