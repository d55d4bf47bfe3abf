// ===============================
// internal/handlers/auth.go - Auth HTTP Surface
// ===============================

package handlers

import (
	"net/http"

	"reelbe/internal/models"
	"reelbe/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	firebaseService *services.FirebaseService
	userService     *services.UserService
}

func NewAuthHandler(firebaseService *services.FirebaseService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		firebaseService: firebaseService,
		userService:     userService,
	}
}

// SyncUser upserts the local account for the authenticated Firebase
// user. The mobile client calls this after sign-in so episode creation
// always finds its creator row.
func (h *AuthHandler) SyncUser(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	record, err := h.firebaseService.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Firebase user"})
		return
	}

	user := models.User{
		UID:          userID,
		Name:         record.DisplayName,
		Email:        record.Email,
		ProfileImage: record.PhotoURL,
	}

	if err := h.userService.SyncUser(c.Request.Context(), &user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User synced successfully",
		"user":    user,
	})
}

// GetCurrentUser returns the local account of the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, user)
}
