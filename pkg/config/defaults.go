package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "truerelief"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort           = "8000"
	DefaultServiceVersion = "1.0.0"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRateAppointmentsPerHour = 5
	DefaultRateContactsPerHour     = 3
	DefaultRateListPerMinute       = 30
	DefaultRateBurstPerMinute      = 20
	DefaultRateSustainedPerHour    = 1000
	DefaultRateAdminPerMinute      = 100
	DefaultRateLimitFailOpen       = true

	DefaultClinicTimezone     = "Asia/Kolkata"
	DefaultBookingHorizonDays = 180

	TransportLog   = "log"
	TransportSMTP  = "smtp"
	TransportKafka = "kafka"

	DefaultNotificationTransport = TransportLog
	DefaultNotificationTimeout   = 10 * time.Second

	DefaultSMTPPort = 587

	DefaultKafkaNotificationTopic = "truerelief.notifications"
	DefaultKafkaCompression       = "snappy"
	DefaultKafkaRequireAcks       = -1
	DefaultKafkaMaxAttempts       = 3
	DefaultKafkaBatchTimeout      = 10 * time.Millisecond
)

// DefaultClinicProfile is used when no profile file is configured.
func DefaultClinicProfile() ClinicProfile {
	return ClinicProfile{
		Name:              "True Relief Physio",
		DoctorName:        "Dr. Rajan Sharma",
		DoctorSignature:   "Dr. RAJAN SHARMA [PT]",
		DoctorCredentials: "Reg. HSCP - PT(1994), BPT, CMT, CDMT",
		Phones:            []string{"9625891710", "8449555400"},
		OwnerEmail:        "doctor@truereliefphysio.com",
		FromEmail:         "noreply@truereliefphysio.com",
	}
}
