package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abogida/abogida-api/pkg/response"
	"github.com/abogida/abogida-api/pkg/storage"

	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

// MediaHandler streams locally stored attachments referenced by signed tokens.
// Only mounted when the local storage backend is active; S3 presigned URLs
// bypass the API entirely.
type MediaHandler struct {
	store  *storage.LocalStorage
	signer *storage.SignedURLSigner
}

// NewMediaHandler creates a new handler.
func NewMediaHandler(store *storage.LocalStorage, signer *storage.SignedURLSigner) *MediaHandler {
	return &MediaHandler{store: store, signer: signer}
}

// Download godoc
// @Summary Download media by signed token
// @Tags Updates
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /media/download [get]
func (h *MediaHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	path, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token"))
		return
	}

	file, err := h.store.Open(path)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "media not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	stat, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "media unavailable"))
		return
	}
	http.ServeContent(c.Writer, c.Request, stat.Name(), stat.ModTime(), file)
}
