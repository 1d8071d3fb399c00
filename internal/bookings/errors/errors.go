package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDuplicate is returned when the unique (user_id, event_id) index
	// rejects a second booking for the same pair.
	ErrDuplicate = errors.New("booking already exists for this user and event")
)
