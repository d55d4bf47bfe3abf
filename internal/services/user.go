// ===============================
// internal/services/user.go - User Service
// ===============================

package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reelbe/internal/models"

	"github.com/jmoiron/sqlx"
)

type UserService struct {
	db *sqlx.DB
}

func NewUserService(db *sqlx.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE uid = $1", uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SyncUser upserts the local account row for a verified Firebase user.
// Called on first authenticated request so episode creators always exist
// in our own store.
func (s *UserService) SyncUser(ctx context.Context, user *models.User) error {
	if user.UID == "" {
		return ErrInvalidInput
	}

	if user.Name == "" {
		user.Name = "User"
	}
	if user.UserType == "" {
		user.UserType = models.UserTypeUser
	}
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	query := `
		INSERT INTO users (uid, name, email, profile_image, user_type, is_active, created_at, updated_at)
		VALUES (:uid, :name, :email, :profile_image, :user_type, :is_active, :created_at, :updated_at)
		ON CONFLICT (uid) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			profile_image = EXCLUDED.profile_image,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.NamedExecContext(ctx, query, user)
	return err
}
