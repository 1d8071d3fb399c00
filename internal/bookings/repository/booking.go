package repository

import (
	"context"
	"fmt"
	"time"

	bookingerrors "eventbook/internal/bookings/errors"
	"eventbook/pkg/config"
	"eventbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Bookings"

type BookingRepository interface {
	// Exists reports whether the user already holds a booking for the event.
	// It is a fast-path check only; Insert remains the authority through the
	// unique compound index.
	Exists(ctx context.Context, userID, eventID string) (bool, error)

	// Insert writes one ledger entry. A duplicate-key rejection from the
	// (user_id, event_id) index surfaces as ErrDuplicate.
	Insert(ctx context.Context, booking *model.Booking) error

	// FindByUser returns the user's bookings, newest first.
	FindByUser(ctx context.Context, userID string) ([]*model.Booking, error)

	CountByEvent(ctx context.Context, eventID string) (int64, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id":  userID,
		"event_id": eventID,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check booking existence: %w", err)
	}

	return count > 0, nil
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	if booking.BookingDate.IsZero() {
		booking.BookingDate = time.Now().UTC().Truncate(time.Millisecond)
	}

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingerrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "booking_date", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}
