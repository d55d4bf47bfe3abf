// ===============================
// internal/services/episode.go - Episode Access & Engagement Engine
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
	"github.com/lib/pq"
)

type EpisodeService struct {
	db *sqlx.DB
}

func NewEpisodeService(db *sqlx.DB) *EpisodeService {
	return &EpisodeService{db: db}
}

// ===============================
// EPISODE CREATION
// ===============================

// CreateEpisode creates an episode against an existing reel. The caller
// must have uploaded the video first; episode.VideoURL carries the result.
// Episode numbers are unique per reel, enforced both here and by the
// store's unique index.
func (s *EpisodeService) CreateEpisode(ctx context.Context, episode *models.Episode) (string, error) {
	if !episode.IsValidForCreation() {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, episode.ValidateForCreation())
	}

	// Verify the creator exists
	var userCount int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE uid = $1", episode.UserID).Scan(&userCount)
	if err != nil {
		return "", err
	}
	if userCount == 0 {
		return "", ErrUserNotFound
	}

	// Verify the parent reel exists
	var reelCount int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reels WHERE id = $1", episode.ReelID).Scan(&reelCount)
	if err != nil {
		return "", err
	}
	if reelCount == 0 {
		return "", ErrReelNotFound
	}

	// Check the episode number is free for this reel
	var taken int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reel_episodes WHERE reel_id = $1 AND episode_number = $2",
		episode.ReelID, episode.EpisodeNumber).Scan(&taken)
	if err != nil {
		return "", err
	}
	if taken > 0 {
		return "", ErrEpisodeNumberTaken
	}

	episode.ID = uuid.New().String()
	episode.IsLocked = !episode.IsFree
	episode.Status = models.EpisodeStatusPending
	episode.Likes = models.StringSlice{}
	episode.Saves = models.StringSlice{}
	episode.CreatedAt = time.Now()
	episode.UpdatedAt = time.Now()

	query := `
		INSERT INTO reel_episodes (
			id, reel_id, user_id, episode_number, episode_name, description,
			caption, is_free, is_locked, video_url, likes, saves, status,
			created_at, updated_at
		) VALUES (
			:id, :reel_id, :user_id, :episode_number, :episode_name, :description,
			:caption, :is_free, :is_locked, :video_url, :likes, :saves, :status,
			:created_at, :updated_at
		)`

	_, err = s.db.NamedExecContext(ctx, query, episode)
	if err != nil {
		// Unique index backstop for concurrent creates of the same number
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", ErrEpisodeNumberTaken
		}
		return "", err
	}

	return episode.ID, nil
}

// ===============================
// ACCESS & UNLOCK
// ===============================

// UnlockEpisode records a per-user access grant for a locked episode.
// Free episodes need no grant and none is recorded; repeated unlocks are
// idempotent. Payment authorization happens upstream - this only records
// the grant.
func (s *EpisodeService) UnlockEpisode(ctx context.Context, episodeID, userID string) (*models.UnlockResult, error) {
	episode, err := s.getEpisodeRow(ctx, episodeID)
	if err != nil {
		return nil, err
	}

	result := &models.UnlockResult{}

	if episode.IsFree {
		result.Free = true
	} else {
		// ON CONFLICT makes concurrent unlocks for the same pair converge
		// on a single grant row
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO episode_unlocks (id, episode_id, user_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (episode_id, user_id) DO NOTHING`,
			uuid.New().String(), episodeID, userID, time.Now())
		if err != nil {
			return nil, err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		result.AlreadyUnlocked = rows == 0
	}

	populated, err := s.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	result.Episode = populated

	return result, nil
}

// HasAccess reports whether the user may watch the episode: free, or
// previously unlocked by this user.
func (s *EpisodeService) HasAccess(ctx context.Context, episodeID, userID string) (bool, error) {
	if episodeID == "" || userID == "" {
		return false, ErrInvalidInput
	}

	var hasAccess bool
	err := s.db.QueryRowContext(ctx, `
		SELECT is_free OR EXISTS (
			SELECT 1 FROM episode_unlocks WHERE episode_id = $1 AND user_id = $2
		)
		FROM reel_episodes WHERE id = $1`,
		episodeID, userID).Scan(&hasAccess)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrEpisodeNotFound
		}
		return false, err
	}

	return hasAccess, nil
}

// ===============================
// ENGAGEMENT TOGGLES
// ===============================

// ToggleLike flips the user's membership in the episode's like set. The
// guarded array update runs as a single statement, so concurrent toggles
// for the same episode cannot lose each other's writes.
func (s *EpisodeService) ToggleLike(ctx context.Context, episodeID, userID string) (*models.ToggleResult, error) {
	return s.toggleMembership(ctx, episodeID, userID, "likes", "liked", "unliked")
}

// ToggleSave flips the user's membership in the episode's save set with
// the same atomicity contract as ToggleLike.
func (s *EpisodeService) ToggleSave(ctx context.Context, episodeID, userID string) (*models.ToggleResult, error) {
	return s.toggleMembership(ctx, episodeID, userID, "saves", "saved", "unsaved")
}

func (s *EpisodeService) toggleMembership(ctx context.Context, episodeID, userID, column, addAction, removeAction string) (*models.ToggleResult, error) {
	if episodeID == "" || userID == "" {
		return nil, ErrInvalidInput
	}

	// RETURNING evaluates against the updated row: membership after the
	// flip tells us which way the toggle went.
	query := fmt.Sprintf(`
		UPDATE reel_episodes
		SET %s = CASE
			WHEN $1 = ANY(%s) THEN array_remove(%s, $1)
			ELSE array_append(%s, $1)
		END,
		updated_at = $2
		WHERE id = $3
		RETURNING $1 = ANY(%s)`, column, column, column, column, column)

	var nowMember bool
	err := s.db.QueryRowContext(ctx, query, userID, time.Now(), episodeID).Scan(&nowMember)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEpisodeNotFound
		}
		return nil, err
	}

	action := removeAction
	if nowMember {
		action = addAction
	}

	populated, err := s.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}

	return &models.ToggleResult{
		Action:  action,
		Episode: populated,
	}, nil
}

// HasLiked reports whether the user is in the episode's like set.
func (s *EpisodeService) HasLiked(ctx context.Context, episodeID, userID string) (bool, error) {
	return s.hasMembership(ctx, episodeID, userID, "likes")
}

// HasSaved reports whether the user is in the episode's save set.
func (s *EpisodeService) HasSaved(ctx context.Context, episodeID, userID string) (bool, error) {
	return s.hasMembership(ctx, episodeID, userID, "saves")
}

func (s *EpisodeService) hasMembership(ctx context.Context, episodeID, userID, column string) (bool, error) {
	if episodeID == "" || userID == "" {
		return false, ErrInvalidInput
	}

	query := fmt.Sprintf("SELECT $2 = ANY(%s) FROM reel_episodes WHERE id = $1", column)

	var isMember bool
	err := s.db.QueryRowContext(ctx, query, episodeID, userID).Scan(&isMember)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrEpisodeNotFound
		}
		return false, err
	}

	return isMember, nil
}

// ===============================
// QUERY PATHS
// ===============================

// GetEpisode returns the full detail view with creator and reel
// summaries, unlock list, and derived engagement counts.
func (s *EpisodeService) GetEpisode(ctx context.Context, episodeID string) (*models.EpisodeResponse, error) {
	if episodeID == "" {
		return nil, ErrInvalidInput
	}

	episode, err := s.getEpisodeRow(ctx, episodeID)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.loadUnlockedBy(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	episode.UnlockedBy = unlocked

	response := models.NewEpisodeResponse(episode)

	// Creator and reel summaries are best-effort population: a missing
	// parent row leaves the summary nil rather than failing the read.
	var creator models.UserSummary
	err = s.db.GetContext(ctx, &creator,
		"SELECT uid, name, email, profile_image FROM users WHERE uid = $1", episode.UserID)
	if err == nil {
		response.Creator = &creator
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var reel models.ReelSummary
	err = s.db.GetContext(ctx, &reel,
		"SELECT id, title, description FROM reels WHERE id = $1", episode.ReelID)
	if err == nil {
		response.Reel = &reel
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return response, nil
}

// GetReelEpisodes lists a reel's episodes ordered by episode number.
// With approvedOnly set, both the reel and each episode must be approved;
// a reel without approval reads as absent.
func (s *EpisodeService) GetReelEpisodes(ctx context.Context, reelID string, approvedOnly bool) (*models.EpisodeListResponse, error) {
	if reelID == "" {
		return nil, ErrInvalidInput
	}

	reelQuery := "SELECT COUNT(*) FROM reels WHERE id = $1"
	if approvedOnly {
		reelQuery += " AND status = 'approved'"
	}

	var reelCount int
	if err := s.db.QueryRowContext(ctx, reelQuery, reelID).Scan(&reelCount); err != nil {
		return nil, err
	}
	if reelCount == 0 {
		return nil, ErrReelNotFound
	}

	query := `
		SELECT * FROM reel_episodes
		WHERE reel_id = $1`
	if approvedOnly {
		query += " AND status = 'approved'"
	}
	query += " ORDER BY episode_number ASC"

	var episodes []models.Episode
	if err := s.db.SelectContext(ctx, &episodes, query, reelID); err != nil {
		return nil, err
	}

	return s.shapeList(episodes), nil
}

// GetSavedEpisodes lists every episode the user has saved, newest first.
func (s *EpisodeService) GetSavedEpisodes(ctx context.Context, userID string) (*models.EpisodeListResponse, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}

	query := `
		SELECT * FROM reel_episodes
		WHERE $1 = ANY(saves)
		ORDER BY created_at DESC`

	var episodes []models.Episode
	if err := s.db.SelectContext(ctx, &episodes, query, userID); err != nil {
		return nil, err
	}

	return s.shapeList(episodes), nil
}

// GetAllEpisodes is the administrative listing across reels, newest
// first, with creator and reel summaries attached.
func (s *EpisodeService) GetAllEpisodes(ctx context.Context, limit, offset int) ([]models.EpisodeResponse, error) {
	query := `
		SELECT
			e.*,
			u.name AS creator_name,
			u.email AS creator_email,
			r.title AS reel_title,
			r.description AS reel_description
		FROM reel_episodes e
		LEFT JOIN users u ON u.uid = e.user_id
		LEFT JOIN reels r ON r.id = e.reel_id
		ORDER BY e.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryxContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []models.EpisodeResponse{}
	for rows.Next() {
		var row struct {
			models.Episode
			CreatorName     sql.NullString `db:"creator_name"`
			CreatorEmail    sql.NullString `db:"creator_email"`
			ReelTitle       sql.NullString `db:"reel_title"`
			ReelDescription sql.NullString `db:"reel_description"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}

		response := models.NewEpisodeResponse(&row.Episode)
		if row.CreatorName.Valid {
			response.Creator = &models.UserSummary{
				UID:   row.Episode.UserID,
				Name:  row.CreatorName.String,
				Email: row.CreatorEmail.String,
			}
		}
		if row.ReelTitle.Valid {
			response.Reel = &models.ReelSummary{
				ID:          row.Episode.ReelID,
				Title:       row.ReelTitle.String,
				Description: row.ReelDescription.String,
			}
		}
		responses = append(responses, *response)
	}

	return responses, rows.Err()
}

// ===============================
// CONTENT LIFECYCLE
// ===============================

// UpdateEpisode applies a partial content update. A non-empty
// newVideoURL replaces the stored video; is_locked is recomputed
// whenever isFree changes so the two flags stay consistent.
func (s *EpisodeService) UpdateEpisode(ctx context.Context, episodeID string, req *models.UpdateEpisodeRequest, newVideoURL string) error {
	if episodeID == "" {
		return ErrInvalidInput
	}

	setClauses := "updated_at = $1"
	args := []interface{}{time.Now()}
	argIndex := 2

	if req.EpisodeName != nil {
		setClauses += fmt.Sprintf(", episode_name = $%d", argIndex)
		args = append(args, *req.EpisodeName)
		argIndex++
	}
	if req.Description != nil {
		setClauses += fmt.Sprintf(", description = $%d", argIndex)
		args = append(args, *req.Description)
		argIndex++
	}
	if req.Caption != nil {
		setClauses += fmt.Sprintf(", caption = $%d", argIndex)
		args = append(args, *req.Caption)
		argIndex++
	}
	if req.IsFree != nil {
		setClauses += fmt.Sprintf(", is_free = $%d, is_locked = $%d", argIndex, argIndex+1)
		args = append(args, *req.IsFree, !*req.IsFree)
		argIndex += 2
	}
	if newVideoURL != "" {
		setClauses += fmt.Sprintf(", video_url = $%d", argIndex)
		args = append(args, newVideoURL)
		argIndex++
	}

	query := fmt.Sprintf("UPDATE reel_episodes SET %s WHERE id = $%d", setClauses, argIndex)
	args = append(args, episodeID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEpisodeNotFound
	}

	return nil
}

// UpdateEpisodeStatus moves an episode through moderation. Any
// transition between known statuses is allowed.
func (s *EpisodeService) UpdateEpisodeStatus(ctx context.Context, episodeID, status string) error {
	if !models.IsValidEpisodeStatus(status) {
		return ErrInvalidStatus
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE reel_episodes SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now(), episodeID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEpisodeNotFound
	}

	return nil
}

// DeleteEpisode hard-deletes an episode and its unlock grants.
func (s *EpisodeService) DeleteEpisode(ctx context.Context, episodeID string) error {
	if episodeID == "" {
		return ErrInvalidInput
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM reel_episodes WHERE id = $1", episodeID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrEpisodeNotFound
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM episode_unlocks WHERE episode_id = $1", episodeID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM reel_episodes WHERE id = $1", episodeID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ===============================
// HELPERS
// ===============================

func (s *EpisodeService) getEpisodeRow(ctx context.Context, episodeID string) (*models.Episode, error) {
	var episode models.Episode
	err := s.db.GetContext(ctx, &episode, "SELECT * FROM reel_episodes WHERE id = $1", episodeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEpisodeNotFound
		}
		return nil, err
	}
	return &episode, nil
}

func (s *EpisodeService) loadUnlockedBy(ctx context.Context, episodeID string) (models.StringSlice, error) {
	var userIDs []string
	err := s.db.SelectContext(ctx, &userIDs,
		"SELECT user_id FROM episode_unlocks WHERE episode_id = $1 ORDER BY created_at ASC", episodeID)
	if err != nil {
		return nil, err
	}
	return models.StringSlice(userIDs), nil
}

func (s *EpisodeService) shapeList(episodes []models.Episode) *models.EpisodeListResponse {
	shaped := make([]models.EpisodeResponse, 0, len(episodes))
	for i := range episodes {
		shaped = append(shaped, *models.NewEpisodeResponse(&episodes[i]))
	}
	return &models.EpisodeListResponse{
		Count:    len(shaped),
		Episodes: shaped,
	}
}
