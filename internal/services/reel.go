// ===============================
// internal/services/reel.go - Reel Service
// ===============================

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reelbe/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReelService struct {
	db *sqlx.DB
}

func NewReelService(db *sqlx.DB) *ReelService {
	return &ReelService{db: db}
}

// GetReels returns approved reels, newest first.
func (s *ReelService) GetReels(ctx context.Context, limit, offset int) ([]models.Reel, error) {
	query := `
		SELECT * FROM reels
		WHERE status = 'approved'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var reels []models.Reel
	err := s.db.SelectContext(ctx, &reels, query, limit, offset)
	return reels, err
}

func (s *ReelService) GetReel(ctx context.Context, reelID string) (*models.Reel, error) {
	query := `SELECT * FROM reels WHERE id = $1`

	var reel models.Reel
	err := s.db.GetContext(ctx, &reel, query, reelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReelNotFound
		}
		return nil, err
	}

	return &reel, nil
}

func (s *ReelService) CreateReel(ctx context.Context, reel *models.Reel) (string, error) {
	if !reel.IsValidForCreation() {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, reel.ValidateForCreation())
	}

	reel.ID = uuid.New().String()
	reel.Status = models.EpisodeStatusPending
	reel.CreatedAt = time.Now()
	reel.UpdatedAt = time.Now()

	query := `
		INSERT INTO reels (id, title, description, user_id, status, created_at, updated_at)
		VALUES (:id, :title, :description, :user_id, :status, :created_at, :updated_at)`

	_, err := s.db.NamedExecContext(ctx, query, reel)
	return reel.ID, err
}

// UpdateReelStatus moves a reel through moderation. Any transition
// between known statuses is allowed.
func (s *ReelService) UpdateReelStatus(ctx context.Context, reelID, status string) error {
	if !models.IsValidEpisodeStatus(status) {
		return ErrInvalidStatus
	}

	query := `
		UPDATE reels
		SET status = $1, updated_at = $2
		WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, status, time.Now(), reelID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrReelNotFound
	}

	return nil
}
