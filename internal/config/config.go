package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
)

// Backend modes
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

// Deactivation precisions
const (
	PrecisionDay     = "day"
	PrecisionInstant = "instant"
)

// Config stores service settings.
type Config struct {
	Port             int           `envconfig:"PORT"`
	OperationTimeout time.Duration `envconfig:"OPERATION_TIMEOUT"`
	Backend          Backend
	DB               DB
	Kafka            Kafka
	Redis            Redis
	Auth             Auth
	RateLimit        RateLimit
	Deactivation     Deactivation
	Notifications    Notifications
	Log              Log
}

// Backend describes the system of record.
type Backend struct {
	Mode    string        `envconfig:"BACKEND_MODE"`
	URL     string        `envconfig:"BACKEND_URL"`
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT"`
	Retry   Retry
}

// Retry configures retries of backend reads.
type Retry struct {
	MaxAttempts int           `envconfig:"BACKEND_RETRY_MAX_ATTEMPTS"`
	BaseDelay   time.Duration `envconfig:"BACKEND_RETRY_BASE_DELAY"`
	MaxDelay    time.Duration `envconfig:"BACKEND_RETRY_MAX_DELAY"`
}

// DB holds Postgres connection settings.
type DB struct {
	Host string `envconfig:"POSTGRES_HOST"`
	Port string `envconfig:"POSTGRES_PORT"`
	User string `envconfig:"POSTGRES_USER"`
	Pass string `envconfig:"POSTGRES_PASSWORD"`
	Name string `envconfig:"POSTGRES_DB"`
}

// DSN returns a postgres connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Kafka configures the cross-instance event relay.
type Kafka struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID"`
}

// Enabled reports whether the relay is configured.
func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0 && strings.TrimSpace(k.Topic) != ""
}

// Redis configures the idempotency store.
type Redis struct {
	URL            string        `envconfig:"REDIS_URL"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL"`
}

// Auth configures bearer token verification.
type Auth struct {
	JWTSecret string `envconfig:"JWT_SECRET"`
	Issuer    string `envconfig:"JWT_ISSUER"`
}

// RateLimit configures the per-viewer limiter.
type RateLimit struct {
	Enabled bool          `envconfig:"RATE_LIMIT_ENABLED"`
	Rate    float64       `envconfig:"RATE_LIMIT_RATE"`
	Burst   int           `envconfig:"RATE_LIMIT_BURST"`
	TTL     time.Duration `envconfig:"RATE_LIMIT_TTL"`
	MaxKeys int           `envconfig:"RATE_LIMIT_MAX_KEYS"`
}

// Deactivation configures window evaluation.
type Deactivation struct {
	Precision string `envconfig:"DEACTIVATION_PRECISION"`
	TZ        string `envconfig:"DEACTIVATION_TZ"`
}

// Location resolves TZ; Load has already validated it.
func (d Deactivation) Location() *time.Location {
	loc, err := time.LoadLocation(d.TZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Notifications configures per-session reconcilers.
type Notifications struct {
	MaxHeld    int           `envconfig:"NOTIFICATIONS_MAX_HELD"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL"`
}

// Log configures the logger.
type Log struct {
	Level   string `envconfig:"LOG_LEVEL"`
	Backend string `envconfig:"LOG_BACKEND"`
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Defaults()
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	port := cfg.Port
	mode := cfg.Backend.Mode
	pflag.IntVarP(&port, "port", "p", port, "port to listen on")
	pflag.StringVar(&mode, "backend", mode, "backend mode: rest or postgres")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	cfg.Port = port
	cfg.Backend.Mode = strings.ToLower(strings.TrimSpace(mode))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Backend.Mode {
	case BackendREST:
		if _, err := url.ParseRequestURI(c.Backend.URL); err != nil {
			return fmt.Errorf("invalid BACKEND_URL %q: %w", c.Backend.URL, err)
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("invalid backend mode: %q", c.Backend.Mode)
	}
	if c.Backend.Retry.MaxAttempts < 1 {
		return fmt.Errorf("invalid BACKEND_RETRY_MAX_ATTEMPTS: %d", c.Backend.Retry.MaxAttempts)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid rate limit: rate=%v burst=%d", c.RateLimit.Rate, c.RateLimit.Burst)
	}
	switch c.Deactivation.Precision {
	case PrecisionDay, PrecisionInstant:
	default:
		return fmt.Errorf("invalid DEACTIVATION_PRECISION: %q", c.Deactivation.Precision)
	}
	if _, err := time.LoadLocation(c.Deactivation.TZ); err != nil {
		return fmt.Errorf("invalid DEACTIVATION_TZ %q: %w", c.Deactivation.TZ, err)
	}
	if c.Notifications.MaxHeld <= 0 {
		return fmt.Errorf("invalid NOTIFICATIONS_MAX_HELD: %d", c.Notifications.MaxHeld)
	}
	return nil
}
