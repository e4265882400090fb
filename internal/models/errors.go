package models

import "errors"

// Sentinel errors shared across services and handlers. Services wrap these
// with context via fmt.Errorf("...: %w", err); handlers match with errors.Is.
var (
	// ErrDuplicateEmail is returned when registering with an email that
	// already has an account.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login email/password do not
	// match any account.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnknownUser is returned when an operation targets a user id that
	// is not in the directory.
	ErrUnknownUser = errors.New("user not found")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotFriends is returned when a caller asks for another user's
	// photos without a confirmed friendship.
	ErrNotFriends = errors.New("caller is not a friend of the owner")

	// ErrUploadFailed is returned when the object storage upload fails.
	// Save paths fall back to persisting the local uri.
	ErrUploadFailed = errors.New("upload failed")
)
