package handler

import (
	"net/http"

	"github.com/avolkov/forum/internal/service"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	forumService *service.ForumService
}

func NewCommentHandler(forumService *service.ForumService) *CommentHandler {
	return &CommentHandler{forumService: forumService}
}

// GET /api/comments/:id/locate — resolves a comment deep link to the topic
// and the page the comment currently sits on.
func (h *CommentHandler) Locate(c *gin.Context) {
	commentID, ok := parseID(c)
	if !ok {
		return
	}

	location, err := h.forumService.LocateComment(commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

// PUT /api/comments/:id
func (h *CommentHandler) Edit(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comment, err := h.forumService.EditComment(actorID, commentID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment, "changed": true})
}

// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.forumService.DeleteComment(actorID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
