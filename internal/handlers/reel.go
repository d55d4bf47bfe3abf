// ===============================
// internal/handlers/reel.go - Reel HTTP Surface
// ===============================

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"reelbe/internal/models"

	"github.com/gin-gonic/gin"
)

// ReelStore is the reel surface the handler drives. Satisfied by
// *services.ReelService.
type ReelStore interface {
	GetReels(ctx context.Context, limit, offset int) ([]models.Reel, error)
	GetReel(ctx context.Context, reelID string) (*models.Reel, error)
	CreateReel(ctx context.Context, reel *models.Reel) (string, error)
	UpdateReelStatus(ctx context.Context, reelID, status string) error
}

type ReelHandler struct {
	store ReelStore
}

func NewReelHandler(store ReelStore) *ReelHandler {
	return &ReelHandler{store: store}
}

func (h *ReelHandler) GetReels(c *gin.Context) {
	limit := 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	reels, err := h.store.GetReels(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reels"})
		return
	}

	c.JSON(http.StatusOK, reels)
}

func (h *ReelHandler) GetReel(c *gin.Context) {
	reelID := c.Param("reelId")
	if reelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reel ID required"})
		return
	}

	reel, err := h.store.GetReel(c.Request.Context(), reelID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch reel")
		return
	}

	c.JSON(http.StatusOK, reel)
}

func (h *ReelHandler) CreateReel(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request models.CreateReelRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reel := models.Reel{
		Title:       request.Title,
		Description: request.Description,
		UserID:      userID,
	}

	reelID, err := h.store.CreateReel(c.Request.Context(), &reel)
	if err != nil {
		respondServiceError(c, err, "Failed to create reel")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reelId":  reelID,
		"message": "Reel created successfully",
	})
}

func (h *ReelHandler) UpdateReelStatus(c *gin.Context) {
	reelID := c.Param("reelId")
	if reelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reel ID required"})
		return
	}

	var request models.UpdateReelStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.store.UpdateReelStatus(c.Request.Context(), reelID, request.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update reel status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reel status updated successfully"})
}
