package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvBackendURL = "BACKEND_URL"
	EnvUploadDir  = "UPLOAD_DIR"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTExpiry = "JWT_EXPIRY"
	EnvJWTIssuer = "JWT_ISSUER"

	EnvKafkaBrokers      = "KAFKA_BROKERS"
	EnvKafkaBookingTopic = "KAFKA_BOOKING_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMongoReadTimeout  = "MONGO_READ_TIMEOUT"
	EnvMongoWriteTimeout = "MONGO_WRITE_TIMEOUT"
)
