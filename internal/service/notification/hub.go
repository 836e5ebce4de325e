package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
)

// Config configures reconcilers created by the Hub.
type Config struct {
	MaxHeld    int
	SessionTTL time.Duration
	Timeout    time.Duration
	Location   *time.Location
	Now        func() time.Time
	Warnings   *prometheus.CounterVec
	Sessions   prometheus.Gauge
}

func (c Config) withDefaults() Config {
	if c.MaxHeld <= 0 {
		c.MaxHeld = 100
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * time.Minute
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type session struct {
	rec      *Reconciler
	lastSeen time.Time
}

// Hub keeps one Reconciler per live viewer and fans events out to them.
// Sessions idle longer than SessionTTL are dropped.
type Hub struct {
	mu        sync.Mutex
	sessions  map[string]*session
	lastSweep time.Time

	backend notificationBackend
	relay   eventRelay
	origin  string
	cfg     Config
	logger  logx.Logger
}

// NewHub creates a Hub. relay may be nil when there are no other instances.
func NewHub(backend notificationBackend, relay eventRelay, cfg Config, logger logx.Logger) *Hub {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Hub{
		sessions: make(map[string]*session),
		backend:  backend,
		relay:    relay,
		origin:   uuid.NewString(),
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// Origin identifies this instance on relayed events.
func (h *Hub) Origin() string { return h.origin }

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Session returns the viewer's reconciler, creating it if needed. created is
// true for a fresh session that has not been refreshed yet.
func (h *Hub) Session(viewer domain.Viewer) (rec *Reconciler, created bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.cfg.Now()
	h.maybeSweepLocked(now)

	key := viewer.Key()
	if s, ok := h.sessions[key]; ok {
		s.lastSeen = now
		return s.rec, false
	}
	rec = NewReconciler(viewer, h.backend, h.cfg, h.logger)
	h.sessions[key] = &session{rec: rec, lastSeen: now}
	h.updateGaugeLocked()
	return rec, true
}

// Publish stamps ev, applies it to local sessions and relays it to other
// instances. A relay failure is returned as a warning after local delivery.
func (h *Hub) Publish(ctx context.Context, ev domain.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Origin == "" {
		ev.Origin = h.origin
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = h.cfg.Now().UTC()
	}

	h.Deliver(ctx, ev)

	if h.relay == nil {
		return nil
	}
	if err := h.relay.Publish(ctx, ev); err != nil {
		h.logger.Warn("event relay failed",
			logx.String("event_id", ev.ID),
			logx.String("type", string(ev.Type)),
			logx.Err(err),
		)
		return wrapTransport(err, "relay event")
	}
	return nil
}

// Receive handles an event relayed by another instance. Events this instance
// published are skipped.
func (h *Hub) Receive(ctx context.Context, ev domain.Event) error {
	if ev.Origin == h.origin {
		return nil
	}
	h.Deliver(ctx, ev)
	return nil
}

// Deliver applies ev to every live session. Per-session backend failures are
// logged by the session and do not stop delivery.
func (h *Hub) Deliver(ctx context.Context, ev domain.Event) {
	h.mu.Lock()
	recs := make([]*Reconciler, 0, len(h.sessions))
	for _, s := range h.sessions {
		recs = append(recs, s.rec)
	}
	h.mu.Unlock()

	for _, rec := range recs {
		_ = rec.Apply(ctx, ev)
	}
}

func (h *Hub) maybeSweepLocked(now time.Time) {
	if now.Sub(h.lastSweep) < h.cfg.SessionTTL/2 {
		return
	}
	h.lastSweep = now
	for key, s := range h.sessions {
		if now.Sub(s.lastSeen) > h.cfg.SessionTTL {
			delete(h.sessions, key)
		}
	}
	h.updateGaugeLocked()
}

func (h *Hub) updateGaugeLocked() {
	if h.cfg.Sessions != nil {
		h.cfg.Sessions.Set(float64(len(h.sessions)))
	}
}
