package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "eventbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "5000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultBackendURL = "http://localhost:5000"
	DefaultUploadDir  = "uploads"

	DefaultJWTExpiry = 30 * 24 * time.Hour
	DefaultJWTIssuer = "eventbook"

	DefaultKafkaBookingTopic = "bookings.events"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 8 * 1024 * 1024 // multipart event uploads

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMongoReadTimeout  = 5 * time.Second
	DefaultMongoWriteTimeout = 10 * time.Second

	DefaultPaginationLimit = 100
)
