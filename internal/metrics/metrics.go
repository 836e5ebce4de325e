package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewBackendRetriesTotal returns a Prometheus counter for the number of retried backend reads
func NewBackendRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backend_retries_total",
		Help: "Total number of retry attempts performed against the backend",
	})
}

// NewStatusTransitionsTotal counts transition attempts by role, target status and outcome.
func NewStatusTransitionsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipment_status_transitions_total",
		Help: "Total number of shipment status transition attempts",
	}, []string{"role", "status", "result"})
}

// NewBulkItemsTotal counts bulk items by outcome reason ("ok" for successes).
func NewBulkItemsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipment_bulk_items_total",
		Help: "Total number of items processed by bulk transitions",
	}, []string{"result"})
}

// NewSyncWarningsTotal counts backend failures that left local notification state ahead of the backend.
func NewSyncWarningsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_sync_warnings_total",
		Help: "Total number of non-fatal backend failures during notification reconciliation",
	}, []string{"operation"})
}

// NewActiveSessions tracks live viewer sessions.
func NewActiveSessions() prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notification_sessions_active",
		Help: "Number of viewer sessions held in memory",
	})
}

// Set groups the service collectors.
type Set struct {
	RateLimitExceeded prometheus.Counter
	BackendRetries    prometheus.Counter
	Transitions       *prometheus.CounterVec
	BulkItems         *prometheus.CounterVec
	SyncWarnings      *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
}

// NewSet creates all collectors and registers them on reg.
func NewSet(reg prometheus.Registerer) (*Set, error) {
	s := &Set{
		RateLimitExceeded: NewRateLimitExceededTotal(),
		BackendRetries:    NewBackendRetriesTotal(),
		Transitions:       NewStatusTransitionsTotal(),
		BulkItems:         NewBulkItemsTotal(),
		SyncWarnings:      NewSyncWarningsTotal(),
		ActiveSessions:    NewActiveSessions(),
	}
	for _, c := range []prometheus.Collector{
		s.RateLimitExceeded, s.BackendRetries, s.Transitions, s.BulkItems, s.SyncWarnings, s.ActiveSessions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}
