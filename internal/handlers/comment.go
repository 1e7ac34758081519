package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/itwoqa/bugtracker/internal/middleware"
	"github.com/itwoqa/bugtracker/internal/services"
	"github.com/itwoqa/bugtracker/pkg/response"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// List returns a bug's comments, oldest first
// GET /api/bugs/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.comments.List(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comments)
}

// Create adds a comment to a bug
// POST /api/bugs/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Comment content is required")
		return
	}

	comment, err := h.comments.Add(c.Param("id"), middleware.GetName(c), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, comment)
}

// Update edits the caller's own comment
// PUT /api/bugs/:id/comments/:commentId
func (h *CommentHandler) Update(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Comment content is required")
		return
	}

	comment, err := h.comments.Edit(c.Param("id"), c.Param("commentId"), middleware.GetName(c), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, comment)
}
