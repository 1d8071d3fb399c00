package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	eventserrors "eventbook/internal/events/errors"
	"eventbook/pkg/config"
	"eventbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Events"

type EventRepository interface {
	Insert(ctx context.Context, event *model.Event) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	Find(ctx context.Context, filter model.EventFilter) ([]*model.Event, error)
	FindUpcoming(ctx context.Context, now time.Time) ([]*model.Event, error)
	FindByCreator(ctx context.Context, creatorID string) ([]*model.Event, error)
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
	Update(ctx context.Context, id string, event *model.Event) error
	Delete(ctx context.Context, id string) error

	// ConditionalIncrement adjusts seats_booked by delta as one atomic
	// update. A positive delta only matches while the post-increment count
	// stays within seat_limit; a negative delta only matches while the
	// count stays non-negative. This single conditional write is what
	// serializes concurrent admissions for the same event.
	ConditionalIncrement(ctx context.Context, id string, delta int64) error
}

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoEventRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoEventRepository) Insert(ctx context.Context, event *model.Event) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	event.CreatedAt = now
	event.UpdatedAt = now
	event.SeatsBooked = 0

	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", eventserrors.ErrInvalidID, id)
	}

	var event model.Event
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, eventserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	return &event, nil
}

func (r *mongoEventRepository) Find(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Location != "" {
		query["location"] = caseInsensitiveExact(filter.Location)
	}
	if filter.Category != "" {
		query["category"] = caseInsensitiveExact(filter.Category)
	}
	if filter.MaxPrice != nil {
		query["price"] = bson.M{"$lte": *filter.MaxPrice}
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(filter.Offset)
	}

	return r.findEvents(ctx, query, opts)
}

func (r *mongoEventRepository) FindUpcoming(ctx context.Context, now time.Time) ([]*model.Event, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	return r.findSortedByDate(ctx, bson.M{"date": bson.M{"$gte": now}})
}

func (r *mongoEventRepository) FindByCreator(ctx context.Context, creatorID string) ([]*model.Event, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	return r.findSortedByDate(ctx, bson.M{"created_by": creatorID})
}

func (r *mongoEventRepository) findSortedByDate(ctx context.Context, query bson.M) ([]*model.Event, error) {
	return r.findEvents(ctx, query, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

func (r *mongoEventRepository) findEvents(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*model.Event, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*model.Event
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return events, nil
}

func (r *mongoEventRepository) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	locations, err := r.distinctStrings(ctx, "location")
	if err != nil {
		return nil, err
	}
	categories, err := r.distinctStrings(ctx, "category")
	if err != nil {
		return nil, err
	}

	return &model.FilterOptions{
		Locations:  locations,
		Categories: categories,
	}, nil
}

func (r *mongoEventRepository) distinctStrings(ctx context.Context, field string) ([]string, error) {
	values, err := r.collection.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s values: %w", field, err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *mongoEventRepository) Update(ctx context.Context, id string, event *model.Event) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", eventserrors.ErrInvalidID, id)
	}

	// seats_booked is deliberately not part of the update: it moves only
	// through ConditionalIncrement.
	update := bson.M{
		"$set": bson.M{
			"name":        event.Name,
			"description": event.Description,
			"date":        event.Date,
			"time":        event.Time,
			"venue":       event.Venue,
			"category":    event.Category,
			"location":    event.Location,
			"price":       event.Price,
			"seat_limit":  event.SeatLimit,
			"image":       event.Image,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if result.MatchedCount == 0 {
		return eventserrors.ErrNotFound
	}

	return nil
}

func (r *mongoEventRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", eventserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.DeletedCount == 0 {
		return eventserrors.ErrNotFound
	}

	return nil
}

func (r *mongoEventRepository) ConditionalIncrement(ctx context.Context, id string, delta int64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", eventserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	if delta >= 0 {
		filter["$expr"] = bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$seats_booked", delta}},
				"$seat_limit",
			},
		}
	} else {
		filter["seats_booked"] = bson.M{"$gte": -delta}
	}

	update := bson.M{
		"$inc": bson.M{"seats_booked": delta},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to adjust seats_booked: %w", err)
	}
	if result.MatchedCount == 0 {
		if delta >= 0 {
			return eventserrors.ErrCapacityExceeded
		}
		return eventserrors.ErrNotFound
	}

	return nil
}

func caseInsensitiveExact(value string) bson.M {
	return bson.M{"$regex": "^" + escapeRegex(value) + "$", "$options": "i"}
}

// escapeRegex neutralizes regex metacharacters so a filter value like
// "rock+roll" matches literally.
func escapeRegex(value string) string {
	const meta = `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		if c := value[i]; containsByte(meta, c) {
			out = append(out, '\\', c)
		} else {
			out = append(out, c)
		}
	}
	return string(out)
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}
