package handler

import (
	"net/http"

	"github.com/cargolink/freight-backend/internal/storage"
	"github.com/labstack/echo/v4"
)

type AttachmentHandler struct {
	store *storage.AttachmentStore
}

func NewAttachmentHandler(store *storage.AttachmentStore) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

// Upload accepts one multipart file and returns the opaque ref to put on a
// message send. The messaging core never looks inside the ref.
func (h *AttachmentHandler) Upload(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if !h.store.Ready() {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("storage_unavailable", "attachment storage is not configured"))
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "file is required"))
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "cannot read file"))
	}
	defer src.Close()
	ref, err := h.store.Upload(c.Request().Context(), fh.Filename, fh.Header.Get("Content-Type"), src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "upload failed"))
	}
	return c.JSON(http.StatusCreated, map[string]string{"ref": ref})
}
