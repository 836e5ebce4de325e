package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shipment-console/internal/http/handlers"
	httpmw "shipment-console/internal/http/middleware"
	"shipment-console/internal/logx"
)

// Middleware is a chi-compatible middleware constructor.
type Middleware = func(http.Handler) http.Handler

// Deps groups everything the router mounts.
type Deps struct {
	Base          *handlers.Handlers
	Shipments     *handlers.ShipmentHandler
	Deactivations *handlers.DeactivationHandler
	Notifications *handlers.NotificationHandler
	Events        *handlers.EventHandler

	Logger   logx.Logger
	Gatherer prometheus.Gatherer
	Timeout  time.Duration

	// Authenticated routes run Authn, Authz and RateLimit in that order.
	Authn       Middleware
	Authz       Middleware
	RateLimit   Middleware
	Idempotency Middleware
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	if d.Timeout <= 0 {
		d.Timeout = 5 * time.Second
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmw.Observability(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.Timeout))

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	r.NotFound(http.HandlerFunc(d.Base.NotFound))
	r.MethodNotAllowed(http.HandlerFunc(d.Base.MethodNotAllowed))

	r.Group(func(r chi.Router) {
		use(r, d.Authn, d.Authz, d.RateLimit)

		r.Route("/shipments", func(r chi.Router) {
			r.With(optional(d.Idempotency)).Post("/status/bulk", d.Shipments.BulkChangeStatus)
			r.Get("/{id}/allowed-statuses", d.Shipments.AllowedStatuses)
			r.Post("/{id}/status", d.Shipments.ChangeStatus)
			r.Post("/{id}/assign", d.Shipments.Assign)
		})

		r.Route("/deactivations/{kind}/{id}", func(r chi.Router) {
			r.Get("/", d.Deactivations.Get)
			r.Put("/", d.Deactivations.Schedule)
			r.Delete("/", d.Deactivations.Clear)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", d.Notifications.Snapshot)
			r.Delete("/", d.Notifications.ClearAll)
			r.Post("/refresh", d.Notifications.Refresh)
			r.Post("/read-all", d.Notifications.MarkAllAsRead)
			r.Post("/{id}/read", d.Notifications.MarkAsRead)
		})

		r.Post("/events", d.Events.Publish)
	})

	return r
}

func use(r chi.Router, mws ...Middleware) {
	for _, m := range mws {
		if m != nil {
			r.Use(m)
		}
	}
}

func optional(m Middleware) Middleware {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return m
}
