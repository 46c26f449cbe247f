package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/service"
)

// UploadHandler accepts profile and meal media.
type UploadHandler struct {
	uploads service.IUploadService
	limit   gin.HandlerFunc
	log     logrus.FieldLogger
}

// NewUploadHandler builds the handler. limit runs before Upload and may be
// nil when rate limiting is off.
func NewUploadHandler(uploads service.IUploadService, limit gin.HandlerFunc, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{uploads: uploads, limit: limit, log: log.WithField("handler", "uploads")}
}

func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup) {
	uploads := router.Group("/uploads")
	if h.limit != nil {
		uploads.POST("", h.limit, h.Upload)
	} else {
		uploads.POST("", h.Upload)
	}
	uploads.GET("/url", h.PresignedURL)
}

// Upload streams the multipart "file" field to object storage.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing file", Field: "file"})
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer file.Close()

	log := h.log.WithFields(logrus.Fields{"user_id": userID, "file": filepath.Base(header.Filename)})
	res, err := h.uploads.Upload(c.Request.Context(), userID, &service.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func(pct int) {
		log.WithField("progress", pct).Debug("upload progress")
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	log.WithField("key", res.Key).Info("upload stored")
	c.JSON(http.StatusCreated, res)
}

// PresignedURL returns a short-lived download link for one of the caller's
// own keys.
func (h *UploadHandler) PresignedURL(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	url, err := h.uploads.Presign(c.Request.Context(), userID, c.Query("key"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
