package config

import "time"

const defaultPort = 8080

const defaultOperationTimeout = 3 * time.Second

var defaultBackend = Backend{
	Mode:    BackendREST,
	URL:     "http://localhost:8000/api",
	Timeout: 5 * time.Second,
	Retry: Retry{
		MaxAttempts: 4,
		BaseDelay:   150 * time.Millisecond,
		MaxDelay:    time.Second,
	},
}

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "console",
	Pass: "console",
	Name: "shipments",
}

var defaultRateLimit = RateLimit{
	Enabled: true,
	Rate:    20,
	Burst:   40,
	TTL:     10 * time.Minute,
	MaxKeys: 10000,
}

var defaultNotifications = Notifications{
	MaxHeld:    100,
	SessionTTL: 30 * time.Minute,
}

// Defaults returns a config populated with default values.
func Defaults() Config {
	return Config{
		Port:             defaultPort,
		OperationTimeout: defaultOperationTimeout,
		Backend:          DefaultBackend(),
		DB:               DefaultDB(),
		Kafka:            Kafka{GroupID: "shipment-console"},
		Redis:            Redis{IdempotencyTTL: 24 * time.Hour},
		Auth:             Auth{Issuer: "shipment-console"},
		RateLimit:        defaultRateLimit,
		Deactivation:     Deactivation{Precision: PrecisionDay, TZ: "UTC"},
		Notifications:    defaultNotifications,
		Log:              Log{Level: "info", Backend: "slog"},
	}
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultBackend returns the default backend settings.
func DefaultBackend() Backend {
	return defaultBackend
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}
