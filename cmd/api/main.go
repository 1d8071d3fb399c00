package main

import (
	"context"
	"time"

	authhandler "eventbook/internal/auth/handler"
	authrepository "eventbook/internal/auth/repository"
	authservice "eventbook/internal/auth/service"
	authvalidator "eventbook/internal/auth/validator"
	bookinghandler "eventbook/internal/bookings/handler"
	bookingrepository "eventbook/internal/bookings/repository"
	bookingservice "eventbook/internal/bookings/service"
	eventhandler "eventbook/internal/events/handler"
	eventrepository "eventbook/internal/events/repository"
	eventservice "eventbook/internal/events/service"
	eventvalidator "eventbook/internal/events/validator"
	mongoMigration "eventbook/internal/migrations/mongo"
	"eventbook/pkg/app"
	"eventbook/pkg/config"
	"eventbook/pkg/imagestore"
	"eventbook/pkg/kafka"
	"eventbook/pkg/metrics"
	"eventbook/pkg/middleware"
	"eventbook/pkg/token"
)

const ServiceName = "eventbook-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	migrate(cfg)

	m := metrics.New()
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)

	userRepo := authrepository.NewMongoUserRepository(cfg)
	authService := authservice.NewAuthService(
		userRepo,
		authvalidator.NewUserValidator(cfg.Log),
		tokens,
		cfg,
	)
	auth := middleware.NewAuthenticator(tokens, authService, cfg.Log)

	eventRepo := eventrepository.NewMongoEventRepository(cfg)
	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)

	images, err := imagestore.NewDiskStore(cfg.UploadDir)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize image store", "dir", cfg.UploadDir, "error", err)
	}

	eventService := eventservice.NewEventService(
		eventRepo,
		bookingRepo,
		eventvalidator.NewEventValidator(cfg.Log),
		cfg,
	)

	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		eventRepo,
		newPublisher(cfg),
		m,
		cfg,
	)

	cfg.Log.Info("Eventbook services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(m,
		authhandler.NewAuthHandler(authService, auth, cfg.Log),
		eventhandler.NewEventHandler(eventService, images, auth, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, auth, cfg.Log),
	)
	serverApp.Run()
}

func migrate(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
}

// newPublisher returns nil when no brokers are configured; the booking
// service treats a nil publisher as "stream disabled".
func newPublisher(cfg *config.Config) bookingservice.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, booking stream disabled")
		return nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaBookingTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}
	return producer
}
