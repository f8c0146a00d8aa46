package handler

import (
	"errors"
	"net/http"

	"github.com/avolkov/forum/internal/authz"
	"github.com/avolkov/forum/internal/service"
	"github.com/avolkov/forum/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps service error kinds to HTTP statuses. Authorization
// failures pass through untranslated as 403; nothing is retried or
// downgraded here.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrNothingChanged):
		// Soft notice, not a failure: the payload matched the stored state.
		c.JSON(http.StatusOK, gin.H{"message": "nothing changed", "changed": false})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrUsernameAlreadyExists),
		errors.Is(err, service.ErrCategoryTitleTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// currentUserID pulls the authenticated user id placed by AuthMiddleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	claims, exists := c.Get("claims")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return uuid.Nil, false
	}
	return claims.(*utils.Claims).UserID, true
}
