package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"shipment-console/internal/apperr"
	"shipment-console/internal/config"
	"shipment-console/internal/domain"
	restbackend "shipment-console/internal/gateway/backend"
	"shipment-console/internal/http/handlers"
	httpmw "shipment-console/internal/http/middleware"
	"shipment-console/internal/http/middleware/ratelimit"
	"shipment-console/internal/http/router"
	"shipment-console/internal/idempotency"
	"shipment-console/internal/logx"
	"shipment-console/internal/metrics"
	ports "shipment-console/internal/ports/backend"
	"shipment-console/internal/repository"
	"shipment-console/internal/service/deactivation"
	"shipment-console/internal/service/notification"
	"shipment-console/internal/service/transition"
	"shipment-console/internal/transport/kafka"
)

// requestTimeout bounds a whole request; bulk transitions run item by item.
const requestTimeout = 30 * time.Second

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerBackend(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerMessaging(container); err != nil {
		return nil, fmt.Errorf("messaging: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		NewLogger,
		newMetrics,
		func(reg *prometheus.Registry) prometheus.Gatherer {
			return prometheus.Gatherers{reg, prometheus.DefaultGatherer}
		},
	)
}

func newMetrics() (*prometheus.Registry, *metrics.Set, error) {
	reg := prometheus.NewRegistry()
	set, err := metrics.NewSet(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}
	return reg, set, nil
}

func registerBackend(container *dig.Container, dbConnect dbConnectFunc) error {
	providePool := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		if cfg.Backend.Mode != config.BackendPostgres {
			return nil, nil
		}
		return dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providePool, newBackend)
}

// newBackend picks the system of record: the REST API with retried reads, or
// Postgres directly.
func newBackend(cfg *config.Config, pool *pgxpool.Pool, set *metrics.Set, logger logx.Logger) (ports.Backend, error) {
	switch cfg.Backend.Mode {
	case config.BackendPostgres:
		if pool == nil {
			return nil, errors.New("postgres backend without a pool")
		}
		return repository.NewBackend(pool), nil
	case config.BackendREST:
		client, err := restbackend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
		if err != nil {
			return nil, err
		}
		return restbackend.NewRetryingBackend(client, logger, set.BackendRetries, restbackend.RetryConfig{
			MaxAttempts: cfg.Backend.Retry.MaxAttempts,
			BaseDelay:   cfg.Backend.Retry.BaseDelay,
			MaxDelay:    cfg.Backend.Retry.MaxDelay,
		}), nil
	default:
		return nil, fmt.Errorf("unknown backend mode %q", cfg.Backend.Mode)
	}
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, logger logx.Logger) (*kafka.Publisher, error) {
			return kafka.NewPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		},
		func(cfg *config.Config, b ports.Backend, logger logx.Logger) *deactivation.Service {
			eval := deactivation.NewEvaluator(
				deactivation.ParsePrecision(cfg.Deactivation.Precision),
				cfg.Deactivation.Location(),
			)
			return deactivation.NewService(b, eval, cfg.OperationTimeout, logger)
		},
		func(cfg *config.Config, b ports.Backend, pub *kafka.Publisher, set *metrics.Set, logger logx.Logger) *notification.Hub {
			return notification.NewHub(b, pub, notification.Config{
				MaxHeld:    cfg.Notifications.MaxHeld,
				SessionTTL: cfg.Notifications.SessionTTL,
				Timeout:    cfg.OperationTimeout,
				Location:   cfg.Deactivation.Location(),
				Warnings:   set.SyncWarnings,
				Sessions:   set.ActiveSessions,
			}, logger)
		},
		func(
			cfg *config.Config,
			b ports.Backend,
			hub *notification.Hub,
			deact *deactivation.Service,
			set *metrics.Set,
			logger logx.Logger,
		) *transition.Service {
			return transition.NewService(b, hub, deact, cfg.OperationTimeout, logger,
				transition.WithMetrics(set.Transitions, set.BulkItems))
		},
	)
}

func registerMessaging(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, hub *notification.Hub, logger logx.Logger) (*kafka.Consumer, error) {
			return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, relayHandler(hub))
		},
	)
}

// relayHandler delivers events from other instances to local sessions.
// Malformed events are skipped instead of redelivered.
func relayHandler(hub *notification.Hub) kafka.HandleFunc {
	return func(ctx context.Context, ev domain.Event) error {
		if !ev.Type.Valid() {
			return kafka.Permanent(apperr.Validation(fmt.Sprintf("unknown event type %q", ev.Type)))
		}
		if err := hub.Receive(ctx, ev); err != nil {
			if errors.Is(err, apperr.ErrValidation) {
				return kafka.Permanent(err)
			}
			return err
		}
		return nil
	}
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      requestTimeout + 5*time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		func(svc *transition.Service, logger logx.Logger) *handlers.ShipmentHandler {
			return handlers.NewShipmentHandler(svc, logger)
		},
		func(svc *deactivation.Service, logger logx.Logger) *handlers.DeactivationHandler {
			return handlers.NewDeactivationHandler(svc, logger)
		},
		func(hub *notification.Hub, logger logx.Logger) *handlers.NotificationHandler {
			return handlers.NewNotificationHandler(handlers.HubSessions{Hub: hub}, logger)
		},
		func(hub *notification.Hub, logger logx.Logger) *handlers.EventHandler {
			return handlers.NewEventHandler(hub, logger)
		},
		func(cfg *config.Config, svc *deactivation.Service, logger logx.Logger) *httpmw.Authenticator {
			return httpmw.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, svc, logger)
		},
		httpmw.NewAuthorizer,
		newRateLimiter,
		newRateLimitMiddleware,
		newRedisClient,
		newIdempotencyStore,
		newIdempotencyMiddleware,
		newRouter,
		serverProvider,
	)
}

func newRateLimiter(cfg *config.Config) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.NewNopLimiter()
	}
	return ratelimit.NewKeyedLimiter(ratelimit.RealClock{}, ratelimit.Config{
		Rate:    rl.Rate,
		Burst:   rl.Burst,
		TTL:     rl.TTL,
		MaxKeys: rl.MaxKeys,
	})
}

func newRateLimitMiddleware(logger logx.Logger, set *metrics.Set, limiter ratelimit.Limiter) *ratelimit.Middleware {
	return ratelimit.New(logger, set.RateLimitExceeded, limiter, ratelimit.WithKeyFunc(httpmw.ViewerKey))
}

// newRedisClient connects when REDIS_URL is set; otherwise it returns nil.
func newRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if strings.TrimSpace(cfg.Redis.URL) == "" {
		return nil, nil
	}
	return idempotency.NewRedisClient(ctx, cfg.Redis.URL)
}

func newIdempotencyStore(client *redis.Client, logger logx.Logger) idempotency.Store {
	if client == nil {
		logger.Warn("REDIS_URL not set, idempotency keys are kept in memory")
		return idempotency.NewMemoryStore()
	}
	return idempotency.NewRedisStore(client, "shipment-console:idem:")
}

func newIdempotencyMiddleware(cfg *config.Config, store idempotency.Store, logger logx.Logger) *idempotency.Middleware {
	return idempotency.New(store, cfg.Redis.IdempotencyTTL, logger, httpmw.ViewerKey)
}

type routerIn struct {
	dig.In

	Logger        logx.Logger
	Gatherer      prometheus.Gatherer
	Base          *handlers.Handlers
	Shipments     *handlers.ShipmentHandler
	Deactivations *handlers.DeactivationHandler
	Notifications *handlers.NotificationHandler
	Events        *handlers.EventHandler
	Authn         *httpmw.Authenticator
	Authz         *httpmw.Authorizer
	RateLimit     *ratelimit.Middleware
	Idempotency   *idempotency.Middleware
}

func newRouter(in routerIn) http.Handler {
	return router.New(router.Deps{
		Base:          in.Base,
		Shipments:     in.Shipments,
		Deactivations: in.Deactivations,
		Notifications: in.Notifications,
		Events:        in.Events,
		Logger:        in.Logger,
		Gatherer:      in.Gatherer,
		Timeout:       requestTimeout,
		Authn:         in.Authn.Handler(),
		Authz:         in.Authz.Handler(),
		RateLimit:     in.RateLimit.Handler(),
		Idempotency:   in.Idempotency.Handler(),
	})
}
