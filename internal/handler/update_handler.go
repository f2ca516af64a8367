package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/internal/models"
	"github.com/abogida/abogida-api/internal/service"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/response"
)

// UpdateHandler serves the daily updates feed.
type UpdateHandler struct {
	service *service.UpdateService
}

// NewUpdateHandler creates a new handler.
func NewUpdateHandler(svc *service.UpdateService) *UpdateHandler {
	return &UpdateHandler{service: svc}
}

// ListFeed godoc
// @Summary List feed page
// @Description Returns one newest-first page of daily updates with media previews
// @Tags Updates
// @Produce json
// @Param page query int false "Page number, zero-based"
// @Param class_id query string false "Restrict to one class"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /updates [get]
func (h *UpdateHandler) ListFeed(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	query := models.FeedQuery{
		ClassID: c.Query("class_id"),
		Page:    page,
	}

	feedPage, err := h.service.ListFeed(c.Request.Context(), cc.Caller, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	ids := make([]string, 0, len(feedPage.Updates))
	for _, update := range feedPage.Updates {
		ids = append(ids, update.ID)
	}
	previews, err := h.service.ResolvePreviews(c.Request.Context(), cc.Caller.SchoolID, ids)
	if err != nil {
		// entries still render without media
		previews = map[string][]models.MediaPreview{}
	}

	payload := gin.H{
		"updates":  feedPage.Updates,
		"previews": previews,
		"has_more": feedPage.HasMore,
	}
	response.JSON(c, http.StatusOK, payload, &models.Pagination{
		Page:     feedPage.Page,
		PageSize: feedPage.PageSize,
	})
}

// Post godoc
// @Summary Post a daily update
// @Description Creates an update for an owned class; optional multipart attachment
// @Tags Updates
// @Accept mpfd
// @Produce json
// @Param class_id formData string true "Class ID"
// @Param text formData string true "Update text"
// @Param file formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /updates [post]
func (h *UpdateHandler) Post(c *gin.Context) {
	cc := callerFromContext(c)
	if cc == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := models.PostUpdateRequest{
		ClassID: c.PostForm("class_id"),
		Text:    c.PostForm("text"),
	}

	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer file.Close() //nolint:errcheck
		req.Attachment = &models.MediaUpload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		}
	}

	result, err := h.service.Post(c.Request.Context(), cc.Caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if result.Degraded() {
		meta = map[string]interface{}{"media_error": result.MediaError}
	}
	response.JSON(c, http.StatusCreated, result, nil, meta)
}
