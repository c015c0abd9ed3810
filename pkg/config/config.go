package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"truerelief/pkg/client"
	"truerelief/pkg/kafka"
	"truerelief/pkg/logger"
)

type Config struct {
	ServiceName    string
	ServiceVersion string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	RateAppointmentsPerHour int
	RateContactsPerHour     int
	RateListPerMinute       int
	RateBurstPerMinute      int
	RateSustainedPerHour    int
	RateAdminPerMinute      int
	RateLimitFailOpen       bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminAPIToken      string
	CORSAllowedOrigins []string
	TrustProxyHeaders  bool

	ClinicTimezone     string
	BookingHorizonDays int
	ClinicProfilePath  string
	Clinic             ClinicProfile

	NotificationTransport string
	NotificationTimeout   time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	KafkaBrokers           []string
	KafkaNotificationTopic string
	KafkaDLQTopic          string
	KafkaCompression       string
	KafkaRequireAcks       int
	KafkaMaxAttempts       int
	KafkaBatchTimeout      time.Duration

	Log    *logger.Logger
	Client *client.Client
}

// Load reads .env (if present) and the environment, validates the result and
// exits the process on invalid configuration.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := FromEnv(serviceName)
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})

	if cfg.ClinicProfilePath != "" {
		profile, err := LoadClinicProfile(cfg.ClinicProfilePath, cfg.Clinic)
		if err != nil {
			cfg.Log.Fatal("Failed to load clinic profile", "path", cfg.ClinicProfilePath, "error", err)
		}
		cfg.Clinic = profile
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()

	cfg.Client = client.NewClient(cfg.Log)
	return cfg
}

// FromEnv builds a Config from environment variables and defaults without
// validating it or opening any connection.
func FromEnv(serviceName string) *Config {
	return &Config{
		ServiceName:    serviceName,
		ServiceVersion: getEnvStr(EnvServiceVersion, DefaultServiceVersion),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		RateAppointmentsPerHour: getEnvNum(EnvRateAppointmentsPerHour, DefaultRateAppointmentsPerHour),
		RateContactsPerHour:     getEnvNum(EnvRateContactsPerHour, DefaultRateContactsPerHour),
		RateListPerMinute:       getEnvNum(EnvRateListPerMinute, DefaultRateListPerMinute),
		RateBurstPerMinute:      getEnvNum(EnvRateBurstPerMinute, DefaultRateBurstPerMinute),
		RateSustainedPerHour:    getEnvNum(EnvRateSustainedPerHour, DefaultRateSustainedPerHour),
		RateAdminPerMinute:      getEnvNum(EnvRateAdminPerMinute, DefaultRateAdminPerMinute),
		RateLimitFailOpen:       getEnvBool(EnvRateLimitFailOpen, DefaultRateLimitFailOpen),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, 0),

		AdminAPIToken:      getEnvStr(EnvAdminAPIToken, ""),
		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins, nil),
		TrustProxyHeaders:  getEnvBool(EnvTrustProxyHeaders, false),

		ClinicTimezone:     getEnvStr(EnvClinicTimezone, DefaultClinicTimezone),
		BookingHorizonDays: getEnvNum(EnvBookingHorizonDays, DefaultBookingHorizonDays),
		ClinicProfilePath:  getEnvStr(EnvClinicProfilePath, ""),
		Clinic:             DefaultClinicProfile(),

		NotificationTransport: strings.ToLower(getEnvStr(EnvNotificationTransport, DefaultNotificationTransport)),
		NotificationTimeout:   getEnvDuration(EnvNotificationTimeout, DefaultNotificationTimeout),

		SMTPHost:     getEnvStr(EnvSMTPHost, ""),
		SMTPPort:     getEnvNum(EnvSMTPPort, DefaultSMTPPort),
		SMTPUsername: getEnvStr(EnvSMTPUsername, ""),
		SMTPPassword: getEnvStr(EnvSMTPPassword, ""),
		SMTPFrom:     getEnvStr(EnvSMTPFrom, ""),

		KafkaBrokers:           getEnvList(EnvKafkaBrokers, nil),
		KafkaNotificationTopic: getEnvStr(EnvKafkaNotificationTopic, DefaultKafkaNotificationTopic),
		KafkaDLQTopic:          getEnvStr(EnvKafkaDLQTopic, ""),
		KafkaCompression:       getEnvStr(EnvKafkaCompression, DefaultKafkaCompression),
		KafkaRequireAcks:       getEnvNum(EnvKafkaRequireAcks, DefaultKafkaRequireAcks),
		KafkaMaxAttempts:       getEnvNum(EnvKafkaMaxAttempts, DefaultKafkaMaxAttempts),
		KafkaBatchTimeout:      getEnvDuration(EnvKafkaBatchTimeout, DefaultKafkaBatchTimeout),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the shared rate-limit store when REDIS_ADDR is set.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		return
	}
	cfg.Client.SetRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

// SetKafka creates the notification producer when the kafka transport is selected.
func (cfg *Config) SetKafka() {
	if cfg.NotificationTransport != TransportKafka {
		return
	}
	cfg.Client.SetKafka(cfg.KafkaProducerConfig())
}

func (cfg *Config) KafkaProducerConfig() kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaNotificationTopic,
		DLQTopic:     cfg.KafkaDLQTopic,
		MaxAttempts:  cfg.KafkaMaxAttempts,
		BatchTimeout: cfg.KafkaBatchTimeout,
		RequireAcks:  cfg.KafkaRequireAcks,
		Compression:  cfg.KafkaCompression,
	}
}

func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"NotificationTimeout", cfg.NotificationTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	quotas := []struct {
		name  string
		value int
	}{
		{"MaxRequestSize", cfg.MaxRequestSize},
		{"RateAppointmentsPerHour", cfg.RateAppointmentsPerHour},
		{"RateContactsPerHour", cfg.RateContactsPerHour},
		{"RateListPerMinute", cfg.RateListPerMinute},
		{"RateBurstPerMinute", cfg.RateBurstPerMinute},
		{"RateSustainedPerHour", cfg.RateSustainedPerHour},
		{"RateAdminPerMinute", cfg.RateAdminPerMinute},
		{"BookingHorizonDays", cfg.BookingHorizonDays},
	}
	for _, q := range quotas {
		if q.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", q.name, q.value))
		}
	}

	if _, err := time.LoadLocation(cfg.ClinicTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("ClinicTimezone must be a valid IANA zone, got: %s", cfg.ClinicTimezone))
	}

	switch cfg.NotificationTransport {
	case TransportLog:
	case TransportSMTP:
		if cfg.SMTPHost == "" {
			errors = append(errors, "SMTPHost is required when NotificationTransport is smtp")
		}
		if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
			errors = append(errors, fmt.Sprintf("SMTPPort must be between 1 and 65535, got: %d", cfg.SMTPPort))
		}
	case TransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			errors = append(errors, "KafkaBrokers is required when NotificationTransport is kafka")
		}
		if cfg.KafkaNotificationTopic == "" {
			errors = append(errors, "KafkaNotificationTopic cannot be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("NotificationTransport must be one of log, smtp, kafka, got: %s", cfg.NotificationTransport))
	}

	if cfg.Clinic.OwnerEmail == "" {
		errors = append(errors, "Clinic owner email cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"version", cfg.ServiceVersion,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"rate_appointments_per_hour", cfg.RateAppointmentsPerHour,
		"rate_contacts_per_hour", cfg.RateContactsPerHour,
		"rate_list_per_minute", cfg.RateListPerMinute,
		"rate_burst_per_minute", cfg.RateBurstPerMinute,
		"rate_sustained_per_hour", cfg.RateSustainedPerHour,
		"rate_admin_per_minute", cfg.RateAdminPerMinute,
		"rate_limit_fail_open", cfg.RateLimitFailOpen,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"admin_token_set", cfg.AdminAPIToken != "",
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"trust_proxy_headers", cfg.TrustProxyHeaders,
		"clinic_timezone", cfg.ClinicTimezone,
		"booking_horizon_days", cfg.BookingHorizonDays,
		"clinic_name", cfg.Clinic.Name,
		"notification_transport", cfg.NotificationTransport,
		"notification_timeout", cfg.NotificationTimeout,
		"smtp_host", cfg.SMTPHost,
		"smtp_password_set", cfg.SMTPPassword != "",
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaNotificationTopic,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
