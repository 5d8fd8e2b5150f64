package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	Postgres Postgres `validate:"required"`

	Stream Stream

	Pricing Pricing `validate:"required"`

	Cache Cache `validate:"required"`

	Auth Auth
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required,number"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1"`
}

type Postgres struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	DBName   string `validate:"required"`
	User     string `validate:"required"`
	Password string `validate:"required"`

	SSLMode string `validate:"required,oneof=disable require verify-ca verify-full"`

	MaxOpenConns    int           `validate:"gte=1"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

// Stream configures the outbound order-events feed. When disabled the
// service runs with a no-op publisher.
type Stream struct {
	Enabled      bool
	Brokers      []string `validate:"required_if=Enabled true"`
	Topic        string   `validate:"required_if=Enabled true"`
	BatchTimeout time.Duration
}

// Pricing holds the order charge parameters. Amounts are in paise, the
// tax rate in basis points.
type Pricing struct {
	DeliveryFee int64 `validate:"gte=0"`
	TaxRateBPS  int64 `validate:"gte=0,lte=10000"`
}

type Cache struct {
	Capacity int           `validate:"gte=1"`
	TTL      time.Duration `validate:"gt=0"`
}

// Auth configures the development token resolver. Tokens is a
// comma-separated list of token:userID:ROLE triples; production
// deployments replace the resolver at the composition root.
type Auth struct {
	Tokens string
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", "localhost"),
			Port: env("PORT", "8080"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Postgres: Postgres{
			Port:     envInt("POSTGRES_PORT", 5432),
			Host:     env("POSTGRES_HOST", "localhost"),
			DBName:   env("POSTGRES_DB", "marketplace"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),

			SSLMode: env("POSTGRES_SSL_MODE", "disable"),

			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Stream: Stream{
			Enabled:      envBool("STREAM_ENABLED", false),
			Brokers:      strings.Split(env("STREAM_BROKERS", "localhost:9092"), ","),
			Topic:        env("STREAM_TOPIC", "order-events"),
			BatchTimeout: envDuration("STREAM_BATCH_TIMEOUT", 10*time.Millisecond),
		},

		Pricing: Pricing{
			DeliveryFee: envInt64("DELIVERY_FEE_PAISE", 5000),
			TaxRateBPS:  envInt64("TAX_RATE_BPS", 500),
		},

		Cache: Cache{
			Capacity: envInt("CATALOG_CACHE_CAPACITY", 1000),
			TTL:      envDuration("CATALOG_CACHE_TTL", time.Minute),
		},

		Auth: Auth{
			Tokens: env("AUTH_TOKENS", ""),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
