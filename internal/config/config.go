package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Behavior of order placement when a discount code fails validation.
const (
	InvalidDiscountSkip   = "skip"
	InvalidDiscountReject = "reject"
)

// Config holds application configuration from environment variables.
type Config struct {
	Port string

	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	MigrationsPath   string

	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string

	PaymentProviderURL string
	PaymentTimeout     time.Duration

	ReservationTTL  time.Duration
	DefaultCurrency string

	// OnInvalidDiscount controls whether a failing discount code aborts
	// order placement ("reject") or lets the order proceed without the
	// discount ("skip").
	OnInvalidDiscount string

	// StrictStatusTransitions enforces the order state machine on status
	// updates. When false any status-to-status transition is accepted.
	StrictStatusTransitions bool
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			log.Printf("Warning: error loading .env file: %v", err)
		}
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DatabaseHost:     getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:     getEnv("DATABASE_PORT", "5432"),
		DatabaseUser:     getEnv("DATABASE_USER", "root"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", "pass"),
		DatabaseName:     getEnv("DATABASE_NAME", "shop_db"),
		MigrationsPath:   getEnv("MIGRATIONS_PATH", "migrations"),

		ServiceName:    getEnv("SERVICE_NAME", "order-core"),
		ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),

		PaymentProviderURL: getEnv("PAYMENT_PROVIDER_URL", "http://payment-provider:9090"),
		PaymentTimeout:     getEnvDuration("PAYMENT_TIMEOUT", 10*time.Second),

		ReservationTTL:  getEnvDuration("RESERVATION_TTL", 15*time.Minute),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "USD"),

		OnInvalidDiscount:       getEnv("ON_INVALID_DISCOUNT", InvalidDiscountSkip),
		StrictStatusTransitions: getEnvBool("STRICT_STATUS_TRANSITIONS", false),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid bool for %s=%q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s=%q, using default", key, value)
		return defaultValue
	}
	return parsed
}
