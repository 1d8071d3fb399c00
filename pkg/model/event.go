package model

import "time"

// Event is the catalog document. SeatLimit is immutable after creation by
// convention; SeatsBooked moves only through the booking admission path and
// must stay within [0, SeatLimit].
type Event struct {
	ID          string    `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Description string    `json:"description" bson:"description" validate:"required,min=2,max=5000"`
	Date        time.Time `json:"date" bson:"date" validate:"required"`
	Time        string    `json:"time" bson:"time" validate:"required"`
	Venue       string    `json:"venue" bson:"venue" validate:"required,min=2,max=200"`
	Category    string    `json:"category" bson:"category" validate:"required,min=2,max=100"`
	Location    string    `json:"location" bson:"location" validate:"required,min=2,max=200"`
	Price       float64   `json:"price" bson:"price" validate:"gte=0"`
	SeatLimit   int64     `json:"seatLimit" bson:"seat_limit" validate:"required,gt=0"`
	SeatsBooked int64     `json:"seatsBooked" bson:"seats_booked" validate:"gte=0"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedBy   string    `json:"createdBy" bson:"created_by"`
	CreatedAt   time.Time `json:"createdAt,omitempty" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" bson:"updated_at"`
}

// SeatsAvailable feeds the admission fast path; the authoritative capacity
// check happens inside the catalog's conditional increment.
func (e *Event) SeatsAvailable() int64 {
	return e.SeatLimit - e.SeatsBooked
}

// EventUpdate carries field overwrites for an admin update. Nil/empty fields
// keep their stored values. SeatsBooked is deliberately absent: it is not
// client-writable.
type EventUpdate struct {
	Name        string     `validate:"omitempty,min=2,max=200"`
	Description string     `validate:"omitempty,min=2,max=5000"`
	Date        *time.Time `validate:"omitempty"`
	Time        string     `validate:"omitempty"`
	Venue       string     `validate:"omitempty,min=2,max=200"`
	Category    string     `validate:"omitempty,min=2,max=100"`
	Location    string     `validate:"omitempty,min=2,max=200"`
	Price       *float64   `validate:"omitempty,gte=0"`
	SeatLimit   *int64     `validate:"omitempty,gt=0"`
	Image       string     `validate:"omitempty"`
}

// EventFilter narrows the public event listing. Location and Category are
// case-insensitive exact matches; MaxPrice is an upper bound. Limit of 0
// means the client did not ask for pagination and the full listing is
// returned.
type EventFilter struct {
	Location string
	Category string
	MaxPrice *float64
	Limit    int
	Offset   int64
}

// FilterOptions lists the distinct values the catalog currently holds.
type FilterOptions struct {
	Locations  []string `json:"locations"`
	Categories []string `json:"categories"`
}
