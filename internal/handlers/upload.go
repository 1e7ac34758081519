package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itwoqa/bugtracker/internal/config"
	"github.com/itwoqa/bugtracker/internal/services"
	"github.com/itwoqa/bugtracker/pkg/response"
)

// UploadHandler accepts pasted or picked images outside the bug form,
// returning a URI the client can embed in markdown.
type UploadHandler struct {
	storage   *services.Storage
	uploadCfg *config.UploadConfig
}

func NewUploadHandler(storage *services.Storage, uploadCfg *config.UploadConfig) *UploadHandler {
	return &UploadHandler{storage: storage, uploadCfg: uploadCfg}
}

// UploadImage stores a single image file
// POST /api/upload-image
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "No image file provided")
		return
	}

	maxBytes := int64(h.uploadCfg.MaxSizeMB) << 20
	if file.Size > maxBytes {
		response.BadRequest(c, fmt.Sprintf("File exceeds the %dMB size limit", h.uploadCfg.MaxSizeMB))
		return
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		response.BadRequest(c, "Only image files are allowed")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.ServerError(c, "Failed to read uploaded file")
		return
	}
	defer src.Close()

	name := h.storage.GenerateName(file.Filename)
	uri, err := h.storage.Save(name, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"url":      uri,
		"filename": name,
	})
}
