// ===============================
// internal/services/errors.go - Service Error Taxonomy
// ===============================

package services

import "errors"

// Sentinel errors returned by the episode and reel services. Handlers
// map these to HTTP statuses; anything else surfaces as an upstream
// failure.
var (
	// ErrEpisodeNotFound indicates the episode does not exist
	ErrEpisodeNotFound = errors.New("episode_not_found")

	// ErrReelNotFound indicates the parent reel does not exist (or is not approved on approved-only paths)
	ErrReelNotFound = errors.New("reel_not_found")

	// ErrUserNotFound indicates the acting or referenced user does not exist
	ErrUserNotFound = errors.New("user_not_found")

	// ErrEpisodeNumberTaken indicates the (reel, episodeNumber) pair is already used
	ErrEpisodeNumberTaken = errors.New("episode_number_taken")

	// ErrInvalidInput indicates missing or malformed required fields
	ErrInvalidInput = errors.New("invalid_input")

	// ErrInvalidStatus indicates a status value outside pending/approved/rejected
	ErrInvalidStatus = errors.New("invalid_status")

	// ErrUploadFailed indicates the media gateway rejected or failed the upload
	ErrUploadFailed = errors.New("upload_failed")
)

// IsNotFound checks whether the error is any of the absence errors
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEpisodeNotFound) ||
		errors.Is(err, ErrReelNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsConflict checks whether the error is a duplicate episode number error
func IsConflict(err error) bool {
	return errors.Is(err, ErrEpisodeNumberTaken)
}

// IsInvalidInput checks whether the error is a validation error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidStatus)
}
