// ===============================
// internal/services/upload.go - Episode Video Upload
// ===============================

package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"reelbe/internal/storage"

	"github.com/google/uuid"
)

// UploadService pushes episode videos to R2 and hands back durable URLs.
// Uploads land under reels/users/{ownerID}/episodes so each creator owns
// a folder, matching the media layout the mobile client expects.
type UploadService struct {
	r2Client *storage.R2Client
}

func NewUploadService(r2Client *storage.R2Client) *UploadService {
	return &UploadService{r2Client: r2Client}
}

// UploadEpisodeVideo uploads a video payload for an episode owned by
// ownerID and returns its public URL.
func (s *UploadService) UploadEpisodeVideo(ctx context.Context, file multipart.File, filename, ownerID string) (string, error) {
	ext := getFileExtension(filename)
	if !isVideoExtension(ext) {
		return "", ErrInvalidInput
	}

	key := fmt.Sprintf("reels/users/%s/episodes/%d_%s%s",
		ownerID, time.Now().Unix(), uuid.New().String()[:8], ext)

	contentType := getVideoContentType(ext)

	if err := s.r2Client.UploadFile(ctx, key, file, contentType); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return s.r2Client.GetPublicURL(key), nil
}

func getFileExtension(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return strings.ToLower(filename[i:])
		}
	}
	return ""
}

func isVideoExtension(ext string) bool {
	switch ext {
	case ".mp4", ".mov", ".avi", ".webm", ".mkv":
		return true
	}
	return false
}

func getVideoContentType(ext string) string {
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/avi"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
