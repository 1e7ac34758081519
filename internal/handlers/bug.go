package handlers

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itwoqa/bugtracker/internal/config"
	"github.com/itwoqa/bugtracker/internal/middleware"
	"github.com/itwoqa/bugtracker/internal/services"
	"github.com/itwoqa/bugtracker/pkg/response"
)

type BugHandler struct {
	bugs      *services.BugService
	storage   *services.Storage
	uploadCfg *config.UploadConfig
}

func NewBugHandler(bugs *services.BugService, storage *services.Storage, uploadCfg *config.UploadConfig) *BugHandler {
	return &BugHandler{
		bugs:      bugs,
		storage:   storage,
		uploadCfg: uploadCfg,
	}
}

// List returns all bugs, newest first
// GET /api/bugs
func (h *BugHandler) List(c *gin.Context) {
	bugs, err := h.bugs.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bugs)
}

// GetByID returns one bug
// GET /api/bugs/:id
func (h *BugHandler) GetByID(c *gin.Context) {
	bug, err := h.bugs.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bug)
}

// Create files a new bug. Accepts multipart form data with up to
// MaxPerReport screenshot files, or a plain JSON body.
// POST /api/bugs
func (h *BugHandler) Create(c *gin.Context) {
	var req services.CreateBugRequest

	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	} else {
		req.Title = c.PostForm("title")
		req.Description = c.PostForm("description")
		req.Priority = c.PostForm("priority")
		req.Assignee = c.PostForm("assignee")

		uris, err := h.saveScreenshots(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.Screenshots = uris
	}

	bug, err := h.bugs.Create(&req, middleware.GetName(c), middleware.GetEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, bug)
}

// Update replaces a bug's mutable fields
// PUT /api/bugs/:id
func (h *BugHandler) Update(c *gin.Context) {
	var req services.UpdateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bug, err := h.bugs.Update(c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bug)
}

// Delete removes a bug that has not been worked on yet
// DELETE /api/bugs/:id
func (h *BugHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.bugs.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"id": id})
}

// saveScreenshots stores the uploaded screenshot files and returns
// their public URIs.
func (h *BugHandler) saveScreenshots(c *gin.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	files := form.File["screenshots"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > h.uploadCfg.MaxPerReport {
		return nil, response.NewBadRequest(
			fmt.Sprintf("A maximum of %d screenshots is allowed", h.uploadCfg.MaxPerReport))
	}

	uris := make([]string, 0, len(files))
	for _, file := range files {
		uri, err := h.saveImage(file)
		if err != nil {
			return nil, err
		}
		uris = append(uris, uri)
	}
	return uris, nil
}

func (h *BugHandler) saveImage(file *multipart.FileHeader) (string, error) {
	maxBytes := int64(h.uploadCfg.MaxSizeMB) << 20
	if file.Size > maxBytes {
		return "", response.NewBadRequest(
			fmt.Sprintf("File %s exceeds the %dMB size limit", file.Filename, h.uploadCfg.MaxSizeMB))
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return "", response.NewBadRequest("Only image files are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return "", response.NewServerError("Failed to read uploaded file")
	}
	defer src.Close()

	return h.storage.Save(h.storage.GenerateName(file.Filename), src)
}
