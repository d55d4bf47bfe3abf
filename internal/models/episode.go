// ===============================
// internal/models/episode.go - Reel Episode Models
// ===============================

package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Episode limits
const (
	MaxEpisodeFileSizeBytes = 104857600 // 100MB upload cap per episode video
	MaxCaptionLength        = 2200
)

// Episode status values
const (
	EpisodeStatusPending  = "pending"
	EpisodeStatusApproved = "approved"
	EpisodeStatusRejected = "rejected"
)

// IsValidEpisodeStatus reports whether s is a known moderation status.
func IsValidEpisodeStatus(s string) bool {
	switch s {
	case EpisodeStatusPending, EpisodeStatusApproved, EpisodeStatusRejected:
		return true
	}
	return false
}

// ===============================
// STRING SLICE TYPE (for PostgreSQL arrays)
// ===============================

type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return "{" + strings.Join(s, ",") + "}", nil
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		str := string(v)
		str = strings.Trim(str, "{}")
		if str == "" {
			*s = []string{}
			return nil
		}
		*s = strings.Split(str, ",")
	case string:
		str := strings.Trim(v, "{}")
		if str == "" {
			*s = []string{}
			return nil
		}
		*s = strings.Split(str, ",")
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
	return nil
}

// Contains reports set membership. Stored arrays carry set semantics:
// every mutation path guards against duplicate entries.
func (s StringSlice) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// ===============================
// EPISODE MODEL
// ===============================

// Episode is one numbered video inside a reel. Likes and saves are
// per-user membership sets; access to a non-free episode is granted
// per-user through episode_unlocks.
type Episode struct {
	ID            string      `db:"id" json:"id"`
	ReelID        string      `db:"reel_id" json:"reelId"`
	UserID        string      `db:"user_id" json:"userId"`
	EpisodeNumber int         `db:"episode_number" json:"episodeNumber" binding:"required"`
	EpisodeName   string      `db:"episode_name" json:"episodeName" binding:"required"`
	Description   string      `db:"description" json:"description" binding:"required"`
	Caption       string      `db:"caption" json:"caption"`
	IsFree        bool        `db:"is_free" json:"isFree"`
	IsLocked      bool        `db:"is_locked" json:"isLocked"`
	VideoURL      string      `db:"video_url" json:"videoUrl"`
	Likes         StringSlice `db:"likes" json:"likes"`
	Saves         StringSlice `db:"saves" json:"saves"`
	Status        string      `db:"status" json:"status"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`

	// Runtime fields (not stored in DB)
	UnlockedBy StringSlice `db:"-" json:"unlockedBy"`
}

// Locked derives the paywall flag from IsFree so the two can never
// disagree in API responses. The stored is_locked column is kept for
// existing readers and recomputed on every write.
func (e *Episode) Locked() bool {
	return !e.IsFree
}

// IsAccessibleTo reports whether the user may watch this episode.
// Free episodes are accessible to everyone regardless of unlock records.
func (e *Episode) IsAccessibleTo(userID string) bool {
	if e.IsFree {
		return true
	}
	return e.UnlockedBy.Contains(userID)
}

func (e *Episode) HasLiked(userID string) bool {
	return e.Likes.Contains(userID)
}

func (e *Episode) HasSaved(userID string) bool {
	return e.Saves.Contains(userID)
}

func (e *Episode) LikeCount() int {
	return len(e.Likes)
}

func (e *Episode) SaveCount() int {
	return len(e.Saves)
}

// Normalize replaces nil engagement arrays with empty ones so responses
// never carry null where a sequence is expected.
func (e *Episode) Normalize() {
	if e.Likes == nil {
		e.Likes = StringSlice{}
	}
	if e.Saves == nil {
		e.Saves = StringSlice{}
	}
	if e.UnlockedBy == nil {
		e.UnlockedBy = StringSlice{}
	}
}

// Validate episode for creation
func (e *Episode) ValidateForCreation() []string {
	var errors []string

	if e.EpisodeNumber <= 0 {
		errors = append(errors, "Episode number must be greater than 0")
	}

	if strings.TrimSpace(e.EpisodeName) == "" {
		errors = append(errors, "Episode name is required")
	}

	if strings.TrimSpace(e.Description) == "" {
		errors = append(errors, "Description is required")
	}

	if len(e.Caption) > MaxCaptionLength {
		errors = append(errors, fmt.Sprintf("Caption must be %d characters or less", MaxCaptionLength))
	}

	if e.ReelID == "" {
		errors = append(errors, "Reel is required")
	}

	if e.UserID == "" {
		errors = append(errors, "Creator is required")
	}

	if e.VideoURL == "" {
		errors = append(errors, "Video is required")
	}

	return errors
}

func (e *Episode) IsValidForCreation() bool {
	return len(e.ValidateForCreation()) == 0
}

// ===============================
// EPISODE REQUEST MODELS
// ===============================

// CreateEpisodeRequest carries the multipart form fields of an episode
// upload. The video file itself travels beside it and is pushed to R2
// before the episode row is written.
type CreateEpisodeRequest struct {
	EpisodeNumber int    `form:"episodeNumber" binding:"required"`
	EpisodeName   string `form:"episodeName" binding:"required"`
	Description   string `form:"description" binding:"required"`
	Caption       string `form:"caption"`
	IsFree        bool   `form:"isFree"`
}

// UpdateEpisodeRequest carries a partial content update. Nil fields are
// left untouched; a new video upload replaces videoUrl separately.
type UpdateEpisodeRequest struct {
	EpisodeName *string `form:"episodeName"`
	Description *string `form:"description"`
	Caption     *string `form:"caption"`
	IsFree      *bool   `form:"isFree"`
}

type UpdateEpisodeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ===============================
// EPISODE RESPONSE MODELS
// ===============================

// EpisodeResponse is the detail shape with derived engagement counts.
type EpisodeResponse struct {
	Episode
	LikeCount int          `json:"likeCount"`
	SaveCount int          `json:"saveCount"`
	Creator   *UserSummary `json:"creator,omitempty"`
	Reel      *ReelSummary `json:"reel,omitempty"`
}

// NewEpisodeResponse shapes an episode for detail views.
func NewEpisodeResponse(e *Episode) *EpisodeResponse {
	e.Normalize()
	return &EpisodeResponse{
		Episode:   *e,
		LikeCount: e.LikeCount(),
		SaveCount: e.SaveCount(),
	}
}

type EpisodeListResponse struct {
	Count    int               `json:"count"`
	Episodes []EpisodeResponse `json:"episodes"`
}

// ToggleResult reports the action a like/save toggle resolved to.
type ToggleResult struct {
	Action  string           `json:"action"` // liked | unliked | saved | unsaved
	Episode *EpisodeResponse `json:"episode"`
}

// UnlockResult reports the outcome of an unlock call.
type UnlockResult struct {
	AlreadyUnlocked bool             `json:"alreadyUnlocked"`
	Free            bool             `json:"free"`
	Episode         *EpisodeResponse `json:"episode"`
}

// EpisodeUnlock is one per-user access grant for a locked episode.
type EpisodeUnlock struct {
	ID        string    `db:"id" json:"id"`
	EpisodeID string    `db:"episode_id" json:"episodeId"`
	UserID    string    `db:"user_id" json:"userId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
