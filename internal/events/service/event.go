package service

import (
	"context"
	"errors"
	"time"

	eventserrors "eventbook/internal/events/errors"
	"eventbook/internal/events/repository"
	"eventbook/internal/events/validator"
	"eventbook/pkg/config"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/model"
	"eventbook/pkg/sanitizer"
)

// BookingCounter reports how many ledger entries reference an event. The
// bookings repository satisfies it; the catalog only needs the count to
// decide whether a delete is allowed.
type BookingCounter interface {
	CountByEvent(ctx context.Context, eventID string) (int64, error)
}

type EventService interface {
	Create(ctx context.Context, creatorID string, event *model.Event) (*model.Event, error)
	Get(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter model.EventFilter) ([]*model.Event, error)
	Upcoming(ctx context.Context) ([]*model.Event, error)
	ByAdmin(ctx context.Context, adminID string) ([]*model.Event, error)
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
	Update(ctx context.Context, id string, update *model.EventUpdate) (*model.Event, error)
	Delete(ctx context.Context, id string) error
}

type eventService struct {
	repo      repository.EventRepository
	bookings  BookingCounter
	validator *validator.EventValidator
	cfg       *config.Config
}

func NewEventService(
	repo repository.EventRepository,
	bookings BookingCounter,
	eventValidator *validator.EventValidator,
	cfg *config.Config,
) EventService {
	return &eventService{
		repo:      repo,
		bookings:  bookings,
		validator: eventValidator,
		cfg:       cfg,
	}
}

func (s *eventService) Create(ctx context.Context, creatorID string, event *model.Event) (*model.Event, error) {
	event.Name = sanitizer.CollapseSpaces(event.Name)
	event.Venue = sanitizer.CollapseSpaces(event.Venue)
	event.Category = sanitizer.CollapseSpaces(event.Category)
	event.Location = sanitizer.CollapseSpaces(event.Location)
	event.CreatedBy = creatorID
	event.SeatsBooked = 0

	if err := s.validator.ValidateCreate(event); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to create event", "name", event.Name, "error", err)
		return nil, apperrors.Internal("Failed to create event", err)
	}

	s.cfg.Log.Info("Event created", "event_id", event.ID, "created_by", creatorID)
	return event, nil
}

func (s *eventService) Get(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateCatalogError(err, id)
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	filter.Offset = config.NormalizeOffset(filter.Offset)
	// Limit 0 means no pagination was requested; any other value is clamped.
	if filter.Limit != 0 {
		filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	}

	events, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("Failed to list events", err)
	}
	if events == nil {
		events = []*model.Event{}
	}
	return events, nil
}

func (s *eventService) Upcoming(ctx context.Context) ([]*model.Event, error) {
	events, err := s.repo.FindUpcoming(ctx, time.Now().UTC())
	if err != nil {
		return nil, apperrors.Internal("Failed to list upcoming events", err)
	}
	if events == nil {
		events = []*model.Event{}
	}
	return events, nil
}

func (s *eventService) ByAdmin(ctx context.Context, adminID string) ([]*model.Event, error) {
	events, err := s.repo.FindByCreator(ctx, adminID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list events by creator", err)
	}
	if len(events) == 0 {
		return nil, apperrors.NotFound("No events found for this admin")
	}
	return events, nil
}

func (s *eventService) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	opts, err := s.repo.FilterOptions(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load filter options", err)
	}
	return opts, nil
}

func (s *eventService) Update(ctx context.Context, id string, update *model.EventUpdate) (*model.Event, error) {
	update.Name = sanitizer.CollapseSpaces(update.Name)
	update.Venue = sanitizer.CollapseSpaces(update.Venue)
	update.Category = sanitizer.CollapseSpaces(update.Category)
	update.Location = sanitizer.CollapseSpaces(update.Location)

	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateCatalogError(err, id)
	}

	applyUpdate(event, update)

	if err := s.repo.Update(ctx, id, event); err != nil {
		return nil, translateCatalogError(err, id)
	}

	s.cfg.Log.Info("Event updated", "event_id", id)
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translateCatalogError(err, id)
	}

	count, err := s.bookings.CountByEvent(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check event bookings", err)
	}
	if count > 0 {
		return apperrors.Conflict("Cannot delete an event that has bookings")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateCatalogError(err, id)
	}

	s.cfg.Log.Info("Event deleted", "event_id", id)
	return nil
}

func applyUpdate(event *model.Event, update *model.EventUpdate) {
	if update.Name != "" {
		event.Name = update.Name
	}
	if update.Description != "" {
		event.Description = update.Description
	}
	if update.Date != nil {
		event.Date = *update.Date
	}
	if update.Time != "" {
		event.Time = update.Time
	}
	if update.Venue != "" {
		event.Venue = update.Venue
	}
	if update.Category != "" {
		event.Category = update.Category
	}
	if update.Location != "" {
		event.Location = update.Location
	}
	if update.Price != nil {
		event.Price = *update.Price
	}
	if update.SeatLimit != nil {
		event.SeatLimit = *update.SeatLimit
	}
	if update.Image != "" {
		event.Image = update.Image
	}
}

func translateCatalogError(err error, id string) error {
	if errors.Is(err, eventserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Event", id)
	}
	if errors.Is(err, eventserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid event ID format")
	}
	return apperrors.Internal("Failed to access event", err)
}
