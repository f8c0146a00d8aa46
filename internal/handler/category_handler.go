package handler

import (
	"net/http"
	"strconv"

	"github.com/avolkov/forum/internal/service"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	forumService    *service.ForumService
}

func NewCategoryHandler(categoryService *service.CategoryService, forumService *service.ForumService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		forumService:    forumService,
	}
}

type categoryRequest struct {
	Title string `json:"title" binding:"required"`
}

// GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	listing, err := h.categoryService.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// GET /api/categories/:id/topics?page=N — ":id" may be "none" for the
// uncategorized bucket.
func (h *CategoryHandler) Topics(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	var categoryID *uint64
	if raw := c.Param("id"); raw != "none" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		categoryID = &id
	}

	topicsPage, err := h.forumService.ListCategoryTopics(categoryID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, topicsPage)
}

// POST /api/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.categoryService.CreateCategory(actorID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// PUT /api/categories/:id
func (h *CategoryHandler) Edit(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	categoryID, ok := parseID(c)
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.categoryService.EditCategory(actorID, categoryID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "changed": true})
}

// DELETE /api/categories/:id — topics fall back to uncategorized.
func (h *CategoryHandler) Delete(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	categoryID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(actorID, categoryID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

// POST /api/categories/:id/lock
func (h *CategoryHandler) Lock(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	categoryID, ok := parseID(c)
	if !ok {
		return
	}

	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.categoryService.SetCategoryLocked(actorID, categoryID, *req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}
