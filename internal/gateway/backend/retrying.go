package backend

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
	ports "shipment-console/internal/ports/backend"
)

var errBulkUnsupported = errors.New("backend has no batch endpoint")

type counter interface {
	Inc()
}

// RetryConfig describes how reads are retried.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingBackend retries idempotent reads on transient failures.
// Writes pass through untouched: a write is never replayed.
type RetryingBackend struct {
	ports.Backend

	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	sleep   func(context.Context, time.Duration) bool
}

// NewRetryingBackend wraps next; returns nil when next is nil.
func NewRetryingBackend(next ports.Backend, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingBackend {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RetryingBackend{Backend: next, logger: logger, retries: retries, cfg: cfg, sleep: sleepWithContext}
}

// FetchShipment retries next.FetchShipment.
func (b *RetryingBackend) FetchShipment(ctx context.Context, id string) (domain.Shipment, error) {
	return retry(ctx, b, "FetchShipment", func() (domain.Shipment, error) {
		return b.Backend.FetchShipment(ctx, id)
	})
}

// FetchDeactivationWindow retries next.FetchDeactivationWindow.
func (b *RetryingBackend) FetchDeactivationWindow(ctx context.Context, kind domain.EntityKind, id string) (domain.DeactivationWindow, error) {
	return retry(ctx, b, "FetchDeactivationWindow", func() (domain.DeactivationWindow, error) {
		return b.Backend.FetchDeactivationWindow(ctx, kind, id)
	})
}

// FetchNotifications retries next.FetchNotifications.
func (b *RetryingBackend) FetchNotifications(ctx context.Context, viewer domain.Viewer) ([]domain.Notification, error) {
	return retry(ctx, b, "FetchNotifications", func() ([]domain.Notification, error) {
		return b.Backend.FetchNotifications(ctx, viewer)
	})
}

// FetchNewOrdersCount retries next.FetchNewOrdersCount.
func (b *RetryingBackend) FetchNewOrdersCount(ctx context.Context) (int, error) {
	return retry(ctx, b, "FetchNewOrdersCount", func() (int, error) {
		return b.Backend.FetchNewOrdersCount(ctx)
	})
}

// FetchTodayOrdersCount retries next.FetchTodayOrdersCount.
func (b *RetryingBackend) FetchTodayOrdersCount(ctx context.Context, viewer domain.Viewer) (int, error) {
	return retry(ctx, b, "FetchTodayOrdersCount", func() (int, error) {
		return b.Backend.FetchTodayOrdersCount(ctx, viewer)
	})
}

// PersistBulkStatusTransition forwards to the batch endpoint of next when it has one.
// Without one the call fails and callers fall back to per-item writes.
func (b *RetryingBackend) PersistBulkStatusTransition(ctx context.Context, ids []string, status domain.ShipmentStatus) error {
	bulk, ok := b.Backend.(ports.BulkShipments)
	if !ok {
		return apperr.Transport(errBulkUnsupported, "bulk status transition")
	}
	return bulk.PersistBulkStatusTransition(ctx, ids, status)
}

func retry[T any](ctx context.Context, b *RetryingBackend, method string, call func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= b.cfg.MaxAttempts; attempt++ {
		v, err := call()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == b.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(b.cfg.BaseDelay, b.cfg.MaxDelay, attempt)
		if b.retries != nil {
			b.retries.Inc()
		}
		b.logger.Warn("backend retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !b.sleep(ctx, delay) {
			break
		}
	}
	return zero, lastErr
}

// isRetryable reports transient failures such as throttling, gateway errors or dropped connections.
func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// backoff doubles base per attempt, capped at max.
func backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt && d < max; i++ {
		d *= 2
	}
	if d <= 0 || d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
