package service

import (
	"context"
	"errors"
	"strings"
	"time"

	bookingerrors "eventbook/internal/bookings/errors"
	"eventbook/internal/bookings/repository"
	eventserrors "eventbook/internal/events/errors"
	"eventbook/pkg/config"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/kafka"
	"eventbook/pkg/metrics"
	"eventbook/pkg/middleware"
	"eventbook/pkg/model"
)

// Catalog is the slice of the event catalog the admission path needs.
// events/repository.EventRepository satisfies it.
type Catalog interface {
	FindByID(ctx context.Context, id string) (*model.Event, error)
	ConditionalIncrement(ctx context.Context, id string, delta int64) error
}

// Publisher emits booking lifecycle events. May be nil when no brokers are
// configured; publishing never affects the admission outcome.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

const (
	outcomeAdmitted         = "admitted"
	outcomeInvalidInput     = "invalid_input"
	outcomeDuplicate        = "duplicate"
	outcomeNotFound         = "not_found"
	outcomeCapacityExceeded = "capacity_exceeded"
	outcomeInternal         = "internal"
)

const eventTypeBookingCreated = "booking.created"

type BookingService interface {
	// AdmitBooking runs the full admission sequence: request validation,
	// duplicate fast path, catalog lookup, conditional seat increment,
	// ledger insert with compensation on failure.
	AdmitBooking(ctx context.Context, principal *middleware.Principal, eventID string, seats int64) (*model.BookingConfirmation, error)

	History(ctx context.Context, userID string) ([]*model.BookingHistoryItem, error)
}

type bookingService struct {
	ledger    repository.BookingRepository
	catalog   Catalog
	publisher Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
}

func NewBookingService(
	ledger repository.BookingRepository,
	catalog Catalog,
	publisher Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		ledger:    ledger,
		catalog:   catalog,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
	}
}

func (s *bookingService) AdmitBooking(ctx context.Context, principal *middleware.Principal, eventID string, seats int64) (*model.BookingConfirmation, error) {
	if seats <= 0 {
		s.metrics.ObserveAdmission(outcomeInvalidInput)
		return nil, apperrors.InvalidInput("Number of seats must be a positive integer")
	}

	// Fast path only; the unique index is the authority.
	exists, err := s.ledger.Exists(ctx, principal.ID, eventID)
	if err != nil {
		s.metrics.ObserveAdmission(outcomeInternal)
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}
	if exists {
		s.metrics.ObserveAdmission(outcomeDuplicate)
		return nil, apperrors.DuplicateBooking("You have already booked this event.")
	}

	event, err := s.catalog.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) || errors.Is(err, eventserrors.ErrInvalidID) {
			s.metrics.ObserveAdmission(outcomeNotFound)
			return nil, apperrors.NotFoundWithID("Event", eventID)
		}
		s.metrics.ObserveAdmission(outcomeInternal)
		return nil, apperrors.Internal("Failed to load event", err)
	}

	// Read-only fast path on the snapshot just loaded; the conditional
	// increment below remains the authority under concurrency.
	if seats > event.SeatsAvailable() {
		s.metrics.ObserveAdmission(outcomeCapacityExceeded)
		return nil, apperrors.CapacityExceeded("Not enough seats available")
	}

	// The conditional increment is the serialization point: concurrent
	// admissions for the same event race on this single atomic write.
	if err := s.catalog.ConditionalIncrement(ctx, eventID, seats); err != nil {
		if errors.Is(err, eventserrors.ErrCapacityExceeded) {
			s.metrics.ObserveAdmission(outcomeCapacityExceeded)
			return nil, apperrors.CapacityExceeded("Not enough seats available")
		}
		s.metrics.ObserveAdmission(outcomeInternal)
		return nil, apperrors.Internal("Failed to reserve seats", err)
	}

	booking := &model.Booking{
		UserID:      principal.ID,
		EventID:     eventID,
		Seats:       seats,
		BookingDate: time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := s.ledger.Insert(ctx, booking); err != nil {
		s.compensate(ctx, eventID, seats)
		if errors.Is(err, bookingerrors.ErrDuplicate) {
			s.metrics.ObserveAdmission(outcomeDuplicate)
			return nil, apperrors.DuplicateBooking("You have already booked this event.")
		}
		s.metrics.ObserveAdmission(outcomeInternal)
		return nil, apperrors.Internal("Failed to record booking", err)
	}

	s.metrics.ObserveAdmission(outcomeAdmitted)
	s.cfg.Log.Info("Booking admitted",
		"booking_id", booking.ID,
		"user_id", principal.ID,
		"event_id", eventID,
		"seats", seats,
	)

	s.publishCreated(ctx, booking, event)

	return &model.BookingConfirmation{
		ID:    booking.ID,
		Buyer: principal.Name,
		Seats: seats,
		Total: float64(seats) * event.Price,
		Event: model.EventSnapshot{
			Title: event.Name,
			Date:  event.Date,
			Image: s.absoluteImageURL(event.Image),
		},
		BookingDate: booking.BookingDate,
	}, nil
}

// compensate reverses a seat increment whose ledger insert failed. It runs on
// a context detached from the request so an expired deadline cannot strand
// the reserved seats.
func (s *bookingService) compensate(ctx context.Context, eventID string, seats int64) {
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.MongoWriteTimeout)
	defer cancel()

	if err := s.catalog.ConditionalIncrement(detached, eventID, -seats); err != nil {
		s.cfg.Log.Error("Failed to compensate seat increment",
			"event_id", eventID,
			"seats", seats,
			"error", err,
		)
	}
}

func (s *bookingService) publishCreated(ctx context.Context, booking *model.Booking, event *model.Event) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithEventType(eventTypeBookingCreated).
		WithSource("eventbook-api").
		WithValue(map[string]any{
			"bookingId":   booking.ID,
			"userId":      booking.UserID,
			"eventId":     booking.EventID,
			"eventName":   event.Name,
			"seats":       booking.Seats,
			"total":       float64(booking.Seats) * event.Price,
			"bookingDate": booking.BookingDate,
		}).
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build booking.created message", "booking_id", booking.ID, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking.created", "booking_id", booking.ID, "error", err)
	}
}

func (s *bookingService) History(ctx context.Context, userID string) ([]*model.BookingHistoryItem, error) {
	bookings, err := s.ledger.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load booking history", err)
	}

	items := make([]*model.BookingHistoryItem, 0, len(bookings))
	for _, booking := range bookings {
		event, err := s.catalog.FindByID(ctx, booking.EventID)
		if err != nil {
			if errors.Is(err, eventserrors.ErrNotFound) || errors.Is(err, eventserrors.ErrInvalidID) {
				s.cfg.Log.Warn("Booking references missing event", "booking_id", booking.ID, "event_id", booking.EventID)
				continue
			}
			return nil, apperrors.Internal("Failed to load event for booking", err)
		}

		items = append(items, &model.BookingHistoryItem{
			ID:          booking.ID,
			Seats:       booking.Seats,
			BookingDate: booking.BookingDate,
			Event: model.HistoryEventRef{
				ID:    event.ID,
				Title: event.Name,
				Date:  event.Date,
				Image: s.absoluteImageURL(event.Image),
			},
		})
	}

	return items, nil
}

func (s *bookingService) absoluteImageURL(image string) string {
	if image == "" || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	if !strings.HasPrefix(image, "/") {
		image = "/" + image
	}
	return s.cfg.BackendURL + image
}
