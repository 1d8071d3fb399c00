package model

import "time"

// Booking is the ledger document. At most one booking may exist per
// (user_id, event_id) pair; the unique compound index in the Bookings
// collection enforces this at the storage layer.
type Booking struct {
	ID          string    `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID      string    `json:"userId" bson:"user_id"`
	EventID     string    `json:"eventId" bson:"event_id"`
	Seats       int64     `json:"seats" bson:"seats"`
	BookingDate time.Time `json:"bookingDate" bson:"booking_date"`
}

type BookSeatsRequest struct {
	Seats int64 `json:"seats"`
}

// EventSnapshot is the denormalized slice of event display fields returned
// with a freshly admitted booking.
type EventSnapshot struct {
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Image string    `json:"image,omitempty"`
}

// BookingConfirmation mirrors the 201 payload of the API this backend replaces.
type BookingConfirmation struct {
	ID          string        `json:"_id"`
	Buyer       string        `json:"buyer"`
	Seats       int64         `json:"seats"`
	Total       float64       `json:"total"`
	Event       EventSnapshot `json:"event"`
	BookingDate time.Time     `json:"bookingDate"`
}

// BookingHistoryItem is one row of a user's booking history, newest first.
type BookingHistoryItem struct {
	ID          string          `json:"_id"`
	Seats       int64           `json:"seats"`
	BookingDate time.Time       `json:"bookingDate"`
	Event       HistoryEventRef `json:"eventId"`
}

type HistoryEventRef struct {
	ID    string    `json:"_id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Image string    `json:"image,omitempty"`
}
