package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/multierr"

	"shipment-console/internal/logx"
	"shipment-console/internal/transport/kafka"
)

// Runner runs the HTTP server and the event relay consumer.
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a Runner wired to the real run loop.
func NewRunner() *Runner {
	return &Runner{runFn: run}
}

// MustRun starts the service using the provided DI container
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := loggerFrom(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		log.Fatalf("run error: %v", err)
	}
}

func loggerFrom(container *dig.Container) logx.Logger {
	var logger logx.Logger = logx.Nop()
	_ = container.Invoke(func(l logx.Logger) { logger = l })
	return logger
}

type runIn struct {
	dig.In

	Ctx       context.Context
	Server    *http.Server
	Logger    logx.Logger
	Consumer  *kafka.Consumer  `optional:"true"`
	Publisher *kafka.Publisher `optional:"true"`
	Pool      *pgxpool.Pool    `optional:"true"`
	Redis     *redis.Client    `optional:"true"`
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(in runIn) error {
	serverErr := startServer(in.Server, in.Logger)
	startConsumer(in.Ctx, in.Consumer, in.Logger)

	var runErr error
	select {
	case <-in.Ctx.Done():
		in.Logger.Info("shutting down shipment-console...")
		runErr = in.Ctx.Err()
	case err := <-serverErr:
		runErr = fmt.Errorf("listen: %w", err)
	}

	gracefulShutdown(in.Server, in.Logger, 15*time.Second)
	if err := closeResources(in); err != nil {
		in.Logger.Error("close resources", logx.Err(err))
	}
	_ = in.Logger.Sync()
	return runErr
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("shipment-console listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func startConsumer(ctx context.Context, consumer *kafka.Consumer, logger logx.Logger) {
	if consumer == nil {
		logger.Info("kafka relay disabled")
		return
	}
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("kafka consumer stopped", logx.Err(err))
		}
	}()
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(in runIn) error {
	var errs error
	if in.Consumer != nil {
		errs = multierr.Append(errs, in.Consumer.Close())
	}
	if in.Publisher != nil {
		errs = multierr.Append(errs, in.Publisher.Close())
	}
	if in.Redis != nil {
		errs = multierr.Append(errs, in.Redis.Close())
	}
	if in.Pool != nil {
		in.Pool.Close()
	}
	return errs
}
