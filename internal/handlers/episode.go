// ===============================
// internal/handlers/episode.go - Episode HTTP Surface
// ===============================

package handlers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"reelbe/internal/models"
	"reelbe/internal/services"

	"github.com/gin-gonic/gin"
)

// EpisodeStore is the engine surface the handler drives. Satisfied by
// *services.EpisodeService.
type EpisodeStore interface {
	CreateEpisode(ctx context.Context, episode *models.Episode) (string, error)
	UnlockEpisode(ctx context.Context, episodeID, userID string) (*models.UnlockResult, error)
	HasAccess(ctx context.Context, episodeID, userID string) (bool, error)
	ToggleLike(ctx context.Context, episodeID, userID string) (*models.ToggleResult, error)
	ToggleSave(ctx context.Context, episodeID, userID string) (*models.ToggleResult, error)
	HasLiked(ctx context.Context, episodeID, userID string) (bool, error)
	HasSaved(ctx context.Context, episodeID, userID string) (bool, error)
	GetEpisode(ctx context.Context, episodeID string) (*models.EpisodeResponse, error)
	GetReelEpisodes(ctx context.Context, reelID string, approvedOnly bool) (*models.EpisodeListResponse, error)
	GetSavedEpisodes(ctx context.Context, userID string) (*models.EpisodeListResponse, error)
	GetAllEpisodes(ctx context.Context, limit, offset int) ([]models.EpisodeResponse, error)
	UpdateEpisode(ctx context.Context, episodeID string, req *models.UpdateEpisodeRequest, newVideoURL string) error
	UpdateEpisodeStatus(ctx context.Context, episodeID, status string) error
	DeleteEpisode(ctx context.Context, episodeID string) error
}

// VideoUploader pushes an episode video to durable storage and returns
// its public URL. Satisfied by *services.UploadService.
type VideoUploader interface {
	UploadEpisodeVideo(ctx context.Context, file multipart.File, filename, ownerID string) (string, error)
}

type EpisodeHandler struct {
	store    EpisodeStore
	uploader VideoUploader
}

func NewEpisodeHandler(store EpisodeStore, uploader VideoUploader) *EpisodeHandler {
	return &EpisodeHandler{store: store, uploader: uploader}
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": "Episode number already exists for this reel"})
	case services.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// ===============================
// EPISODE CREATION
// ===============================

func (h *EpisodeHandler) CreateEpisode(c *gin.Context) {
	reelID := c.Param("reelId")
	userID := c.GetString("userID")

	if reelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reel ID required"})
		return
	}

	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request models.CreateEpisodeRequest
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video is required"})
		return
	}

	if fileHeader.Size > models.MaxEpisodeFileSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read video file"})
		return
	}
	defer file.Close()

	// Upload first; the episode row is only written once the video has a
	// durable home.
	videoURL, err := h.uploader.UploadEpisodeVideo(c.Request.Context(), file, fileHeader.Filename, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to upload video")
		return
	}

	episode := models.Episode{
		ReelID:        reelID,
		UserID:        userID,
		EpisodeNumber: request.EpisodeNumber,
		EpisodeName:   request.EpisodeName,
		Description:   request.Description,
		Caption:       request.Caption,
		IsFree:        request.IsFree,
		VideoURL:      videoURL,
	}

	episodeID, err := h.store.CreateEpisode(c.Request.Context(), &episode)
	if err != nil {
		respondServiceError(c, err, "Failed to create episode")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"episodeId": episodeID,
		"message":   "Episode created successfully",
	})
}

// ===============================
// ENGAGEMENT ENDPOINTS
// ===============================

func (h *EpisodeHandler) ToggleLike(c *gin.Context) {
	h.toggle(c, h.store.ToggleLike, "Failed to toggle episode like")
}

func (h *EpisodeHandler) ToggleSave(c *gin.Context) {
	h.toggle(c, h.store.ToggleSave, "Failed to toggle episode save")
}

func (h *EpisodeHandler) toggle(c *gin.Context, fn func(context.Context, string, string) (*models.ToggleResult, error), fallback string) {
	episodeID := c.Param("episodeId")
	userID := c.GetString("userID")

	if episodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode ID required"})
		return
	}

	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := fn(c.Request.Context(), episodeID, userID)
	if err != nil {
		respondServiceError(c, err, fallback)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Episode " + result.Action + " successfully",
		"action":  result.Action,
		"data":    result.Episode,
	})
}

func (h *EpisodeHandler) HasLiked(c *gin.Context) {
	h.membership(c, h.store.HasLiked, "hasLiked", "Failed to check episode like")
}

func (h *EpisodeHandler) HasSaved(c *gin.Context) {
	h.membership(c, h.store.HasSaved, "hasSaved", "Failed to check episode save")
}

func (h *EpisodeHandler) membership(c *gin.Context, fn func(context.Context, string, string) (bool, error), field, fallback string) {
	episodeID := c.Param("episodeId")
	userID := c.GetString("userID")

	if episodeID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode ID and User ID are required"})
		return
	}

	isMember, err := fn(c.Request.Context(), episodeID, userID)
	if err != nil {
		respondServiceError(c, err, fallback)
		return
	}

	c.JSON(http.StatusOK, gin.H{field: isMember})
}

// ===============================
// ACCESS & UNLOCK ENDPOINTS
// ===============================

func (h *EpisodeHandler) UnlockEpisode(c *gin.Context) {
	episodeID := c.Param("episodeId")
	userID := c.GetString("userID")

	if episodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode ID required"})
		return
	}

	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := h.store.UnlockEpisode(c.Request.Context(), episodeID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to unlock episode")
		return
	}

	message := "Episode unlocked successfully"
	if result.Free {
		message = "This episode is already free to watch"
	} else if result.AlreadyUnlocked {
		message = "You have already unlocked this episode"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    result.Episode,
	})
}

func (h *EpisodeHandler) HasAccess(c *gin.Context) {
	episodeID := c.Param("episodeId")
	userID := c.GetString("userID")

	if episodeID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode ID and User ID are required"})
		return
	}

	hasAccess, err := h.store.HasAccess(c.Request.Context(), episodeID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to check episode access")
		return
	}

	c.JSON(http.StatusOK, gin.H{"hasAccess": hasAccess})
}

// ===============================
// QUERY ENDPOINTS
// ===============================

func (h *EpisodeHandler) GetEpisode(c *gin.Context) {
	episodeID := c.Param("episodeId")
	if episodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode ID required"})
		return
	}

	episode, err := h.store.GetEpisode(c.Request.Context(), episodeID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch episode")
		return
	}

	c.JSON(http.StatusOK, episode)
}

// GetApprovedReelEpisodes is the public listing: only approved episodes
// of approved reels.
func (h *EpisodeHandler) GetApprovedReelEpisodes(c *gin.Context) {
	h.listReelEpisodes(c, true)
}

// GetReelEpisodes lists every episode of a reel regardless of status.
func (h *EpisodeHandler) GetReelEpisodes(c *gin.Context) {
	h.listReelEpisodes(c, false)
}

func (h *EpisodeHandler) listReelEpisodes(c *gin.Context, approvedOnly bool) {
	reelID := c.Param("reelId")
	if reelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reel ID required"})
		return
	}

	episodes, err := h.store.GetReelEpisodes(c.Request.Context(), reelID, approvedOnly)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch episodes")
		return
	}

	c.JSON(http.StatusOK, episodes)
}

func (h *EpisodeHandler) GetSavedEpisodes(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	episodes, err := h.store.GetSavedEpisodes(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch saved episodes")
		return
	}

	c.JSON(http.StatusOK, episodes)
}

func (h *EpisodeHandler) GetAllEpisodes(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	episodes, err := h.store.GetAllEpisodes(c.Request.Context(), limit, offset)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch episodes")
		return
	}

	c.JSON(http.StatusOK, episodes)
}

// ===============================
// CONTENT LIFECYCLE ENDPOINTS
// ===============================

func (h *EpisodeHandler) UpdateEpisode(c *gin.Context) {
	episodeID := c.Param("episodeId")
	userID := c.GetString("userID")

	if episodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode ID required"})
		return
	}

	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request models.UpdateEpisodeRequest
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Replacement video is optional on update; absent upload leaves the
	// stored URL untouched.
	newVideoURL := ""
	if fileHeader, err := c.FormFile("video"); err == nil {
		if fileHeader.Size > models.MaxEpisodeFileSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Video file too large"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read video file"})
			return
		}
		defer file.Close()

		newVideoURL, err = h.uploader.UploadEpisodeVideo(c.Request.Context(), file, fileHeader.Filename, userID)
		if err != nil {
			respondServiceError(c, err, "Failed to upload video")
			return
		}
	}

	err := h.store.UpdateEpisode(c.Request.Context(), episodeID, &request, newVideoURL)
	if err != nil {
		respondServiceError(c, err, "Failed to update episode")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Episode updated successfully"})
}

func (h *EpisodeHandler) UpdateEpisodeStatus(c *gin.Context) {
	episodeID := c.Param("episodeId")
	if episodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode ID required"})
		return
	}

	var request models.UpdateEpisodeStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.store.UpdateEpisodeStatus(c.Request.Context(), episodeID, request.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update episode status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Episode status updated successfully"})
}

func (h *EpisodeHandler) DeleteEpisode(c *gin.Context) {
	episodeID := c.Param("episodeId")
	if episodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode ID required"})
		return
	}

	err := h.store.DeleteEpisode(c.Request.Context(), episodeID)
	if err != nil {
		respondServiceError(c, err, "Failed to delete episode")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Episode deleted successfully"})
}
