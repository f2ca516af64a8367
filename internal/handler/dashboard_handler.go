package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/internal/middleware"
	"github.com/abogida/abogida-api/internal/service"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/response"
)

// DashboardHandler serves the per-role landing summaries.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Teacher godoc
// @Summary Teacher dashboard summary
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/teacher [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, hit, err := h.service.Teacher(c.Request.Context(), cc.Caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// Parent godoc
// @Summary Parent dashboard summary
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/parent [get]
func (h *DashboardHandler) Parent(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, hit, err := h.service.Parent(c.Request.Context(), cc.Caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// Admin godoc
// @Summary School admin dashboard summary
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, hit, err := h.service.Admin(c.Request.Context(), cc.Caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
