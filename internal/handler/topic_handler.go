package handler

import (
	"net/http"
	"strconv"

	"github.com/avolkov/forum/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TopicHandler struct {
	forumService *service.ForumService
}

func NewTopicHandler(forumService *service.ForumService) *TopicHandler {
	return &TopicHandler{forumService: forumService}
}

type topicRequest struct {
	Title      string  `json:"title" binding:"required"`
	Body       string  `json:"body" binding:"required"`
	CategoryID *uint64 `json:"category_id"`
}

type flagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// GET /api/topics — the index listing, grouped by category.
func (h *TopicHandler) List(c *gin.Context) {
	groups, err := h.forumService.ListTopicsGrouped()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GET /api/topics/:id?page=N — topic with one page of comments.
func (h *TopicHandler) Get(c *gin.Context) {
	topicID, ok := parseID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	topicPage, err := h.forumService.GetTopic(topicID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, topicPage)
}

// POST /api/topics
func (h *TopicHandler) Create(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	topic, err := h.forumService.CreateTopic(actorID, req.Title, req.Body, req.CategoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"topic": topic})
}

// PUT /api/topics/:id
func (h *TopicHandler) Edit(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	topicID, ok := parseID(c)
	if !ok {
		return
	}

	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	topic, err := h.forumService.EditTopic(actorID, topicID, req.Title, req.Body, req.CategoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": topic, "changed": true})
}

// DELETE /api/topics/:id — removes the topic and its comments atomically.
func (h *TopicHandler) Delete(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	topicID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.forumService.DeleteTopic(actorID, topicID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "topic deleted"})
}

// POST /api/topics/:id/pin
func (h *TopicHandler) Pin(c *gin.Context) {
	h.setFlag(c, h.forumService.SetTopicPinned)
}

// POST /api/topics/:id/lock
func (h *TopicHandler) Lock(c *gin.Context) {
	h.setFlag(c, h.forumService.SetTopicLocked)
}

// POST /api/topics/:id/comments
func (h *TopicHandler) CreateComment(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	topicID, ok := parseID(c)
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

	comment, err := h.forumService.CreateComment(actorID, topicID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	// Point the client at the page the new comment landed on.
	location, err := h.forumService.LocateComment(comment.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment, "page": location.Page})
}

func (h *TopicHandler) setFlag(c *gin.Context, apply func(actorID uuid.UUID, topicID uint64, value bool) error) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	topicID, ok := parseID(c)
	if !ok {
		return
	}

	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := apply(actorID, topicID, *req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
