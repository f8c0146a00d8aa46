package handler

import (
	"net/http"

	"github.com/avolkov/forum/internal/models"
	"github.com/avolkov/forum/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler exposes user administration. Routes are mounted behind
// AdminMiddleware; the service layer re-checks the role against the store.
type AdminHandler struct {
	authService *service.AuthService
}

func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	users, err := h.authService.ListUsers(actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// PUT /api/admin/users/:id/role
func (h *AdminHandler) SetRole(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.authService.SetUserRole(actorID, targetID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.authService.DeleteUser(actorID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return uuid.Nil, false
	}
	return id, true
}
