package handler

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stayloft/stayloft/internal/storage"
)

// maxUploadBytes caps image uploads at 5MB.
const maxUploadBytes = 5 * 1024 * 1024

// validImageTypes is the MIME allow-list for property images.
var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// UploadHandler accepts property images, validates type and size and
// stores the bytes under a per-caller key with a timestamp and random
// suffix so retried uploads never collide with earlier ones.
type UploadHandler struct {
	Store *storage.Local
}

func NewUploadHandler(store *storage.Local) *UploadHandler {
	if store == nil {
		panic("nil store passed to NewUploadHandler")
	}
	return &UploadHandler{Store: store}
}

// Upload handles POST /api/upload-image.  Multipart field name: "file".
func (h *UploadHandler) Upload(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	fh, err := c.FormFile("file")
	if err != nil || fh.Size == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file provided"})
	}
	contentType := fh.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid file type. Please upload a JPEG, PNG, WebP, or GIF image.",
		})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "File too large. Maximum size is 5MB."})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to upload image"})
	}
	defer src.Close()

	ext := strings.ToLower(path.Ext(fh.Filename))
	key := fmt.Sprintf("%d/%d-%s%s", userID, time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	url, err := h.Store.Save(key, src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to upload image"})
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}
