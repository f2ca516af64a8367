package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/internal/service"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/response"
)

// AnnouncementHandler serves school-wide notices.
type AnnouncementHandler struct {
	service *service.AnnouncementService
}

// NewAnnouncementHandler creates a new handler.
func NewAnnouncementHandler(svc *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc}
}

// List godoc
// @Summary List announcements
// @Description Returns the latest announcements for the caller's school
// @Tags Announcements
// @Produce json
// @Param limit query int false "Maximum number of announcements"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.service.List(c.Request.Context(), cc.Caller, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}
