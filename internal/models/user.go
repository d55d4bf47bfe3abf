// ===============================
// internal/models/user.go - User Models
// ===============================

package models

import "time"

// User roles
const (
	UserTypeUser      = "user"
	UserTypeAdmin     = "admin"
	UserTypeModerator = "moderator"
)

// User mirrors the Firebase account inside our own store. The uid is the
// Firebase UID, synced on first authenticated request.
type User struct {
	UID          string    `db:"uid" json:"uid"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	ProfileImage string    `db:"profile_image" json:"profileImage"`
	UserType     string    `db:"user_type" json:"userType"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

func (u *User) IsModerator() bool {
	return u.UserType == UserTypeModerator
}

// CanModerate reports whether the user may change episode/reel status.
func (u *User) CanModerate() bool {
	return u.IsAdmin() || u.IsModerator()
}

// UserSummary is the compact creator shape embedded in episode responses.
type UserSummary struct {
	UID          string `db:"uid" json:"uid"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	ProfileImage string `db:"profile_image" json:"profileImage"`
}
