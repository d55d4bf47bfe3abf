// ===============================
// internal/models/reel.go - Reel Models
// ===============================

package models

import (
	"strings"
	"time"
)

// Reel is the parent content container episodes belong to. Episodes are
// read-only against the reel: the engine checks existence and approval
// but never mutates the parent.
type Reel struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title" binding:"required"`
	Description string    `db:"description" json:"description" binding:"required"`
	UserID      string    `db:"user_id" json:"userId"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

func (r *Reel) IsApproved() bool {
	return r.Status == EpisodeStatusApproved
}

func (r *Reel) ValidateForCreation() []string {
	var errors []string

	if strings.TrimSpace(r.Title) == "" {
		errors = append(errors, "Title is required")
	}

	if strings.TrimSpace(r.Description) == "" {
		errors = append(errors, "Description is required")
	}

	if r.UserID == "" {
		errors = append(errors, "Creator is required")
	}

	return errors
}

func (r *Reel) IsValidForCreation() bool {
	return len(r.ValidateForCreation()) == 0
}

// ReelSummary is the compact reel shape embedded in episode responses.
type ReelSummary struct {
	ID          string `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
}

type CreateReelRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type UpdateReelStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
