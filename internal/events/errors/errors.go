package errors

import "errors"

var (
	ErrNotFound = errors.New("event not found")

	ErrInvalidID = errors.New("invalid event ID format")

	// ErrCapacityExceeded is returned by the conditional seat increment when
	// the requested seats would push seats_booked past seat_limit.
	ErrCapacityExceeded = errors.New("not enough seats available")
)
