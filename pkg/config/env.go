package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort           = "PORT"
	EnvServiceVersion = "SERVICE_VERSION"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRateAppointmentsPerHour = "RATE_LIMIT_APPOINTMENTS_PER_HOUR"
	EnvRateContactsPerHour     = "RATE_LIMIT_CONTACTS_PER_HOUR"
	EnvRateListPerMinute       = "RATE_LIMIT_LIST_PER_MINUTE"
	EnvRateBurstPerMinute      = "RATE_LIMIT_BURST_PER_MINUTE"
	EnvRateSustainedPerHour    = "RATE_LIMIT_SUSTAINED_PER_HOUR"
	EnvRateAdminPerMinute      = "RATE_LIMIT_ADMIN_PER_MINUTE"
	EnvRateLimitFailOpen       = "RATE_LIMIT_FAIL_OPEN"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvAdminAPIToken      = "ADMIN_API_TOKEN"
	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	EnvTrustProxyHeaders  = "TRUST_PROXY_HEADERS"

	EnvClinicTimezone     = "CLINIC_TIMEZONE"
	EnvBookingHorizonDays = "BOOKING_HORIZON_DAYS"
	EnvClinicProfilePath  = "CLINIC_PROFILE_PATH"

	EnvNotificationTransport = "NOTIFICATION_TRANSPORT"
	EnvNotificationTimeout   = "NOTIFICATION_TIMEOUT"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPFrom     = "SMTP_FROM"

	EnvKafkaBrokers           = "KAFKA_BROKERS"
	EnvKafkaNotificationTopic = "KAFKA_NOTIFICATION_TOPIC"
	EnvKafkaDLQTopic          = "KAFKA_DLQ_TOPIC"
	EnvKafkaCompression       = "KAFKA_PRODUCER_COMPRESSION"
	EnvKafkaRequireAcks       = "KAFKA_PRODUCER_REQUIRE_ACKS"
	EnvKafkaMaxAttempts       = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaBatchTimeout      = "KAFKA_PRODUCER_BATCH_TIMEOUT"
)
