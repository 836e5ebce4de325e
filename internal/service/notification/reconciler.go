package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
)

const seenLimit = 1024

// Reconciler owns one viewer session's notification list and counters. All
// mutations go through its methods; the unread count is always derived.
//
// Backend calls happen after the local update. A backend failure is logged and
// returned as a warning; local state is not rolled back.
type Reconciler struct {
	mu            sync.Mutex
	viewer        domain.Viewer
	notifications []domain.Notification // newest first
	newOrders     int
	today         int
	seen          map[string]struct{}
	seenOrder     []string

	backend  notificationBackend
	logger   logx.Logger
	timeout  time.Duration
	maxHeld  int
	loc      *time.Location
	now      func() time.Time
	warnings *prometheus.CounterVec
}

// NewReconciler creates an empty session for viewer. Call Refresh to load server state.
func NewReconciler(viewer domain.Viewer, backend notificationBackend, cfg Config, logger logx.Logger) *Reconciler {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logx.Nop()
	}
	return &Reconciler{
		viewer:   viewer,
		seen:     make(map[string]struct{}),
		backend:  backend,
		logger:   logger.With(logx.String("viewer_id", viewer.ID), logx.String("role", string(viewer.Role))),
		timeout:  cfg.Timeout,
		maxHeld:  cfg.MaxHeld,
		loc:      cfg.Location,
		now:      cfg.Now,
		warnings: cfg.Warnings,
	}
}

// Viewer returns the session owner.
func (r *Reconciler) Viewer() domain.Viewer { return r.viewer }

// Counters returns the current counters.
func (r *Reconciler) Counters() domain.NotificationCounters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countersLocked()
}

// Snapshot returns counters and a copy of the notification list.
func (r *Reconciler) Snapshot() (domain.NotificationCounters, []domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, len(r.notifications))
	copy(out, r.notifications)
	return r.countersLocked(), out
}

func (r *Reconciler) countersLocked() domain.NotificationCounters {
	unread := 0
	for _, n := range r.notifications {
		if !n.Read {
			unread++
		}
	}
	return domain.NotificationCounters{
		UnreadCount:      unread,
		NewOrdersCount:   r.newOrders,
		TodayOrdersCount: r.today,
	}
}

// Apply dispatches ev to the matching handler. Events already seen by this
// session are ignored.
func (r *Reconciler) Apply(ctx context.Context, ev domain.Event) error {
	switch ev.Type {
	case domain.NotificationOrderCreated:
		return r.OnOrderCreated(ctx, ev)
	case domain.NotificationOrderAssigned:
		return r.OnOrderAssigned(ctx, ev)
	case domain.NotificationStatusChanged:
		return r.OnStatusChanged(ctx, ev)
	default:
		return apperr.Validation(fmt.Sprintf("unknown event type %q", ev.Type))
	}
}

// OnOrderCreated counts a new order for admin viewers.
func (r *Reconciler) OnOrderCreated(ctx context.Context, ev domain.Event) error {
	if !r.viewer.Role.IsAdmin() {
		return nil
	}
	n, ok := r.record(ev, func() {
		r.newOrders++
		if r.sameDay(ev.OccurredAt) {
			r.today++
		}
	})
	if !ok {
		return nil
	}
	return r.persistNotification(ctx, n)
}

// OnOrderAssigned notifies the assigned agent. An empty agent id is a broadcast
// to every agent.
func (r *Reconciler) OnOrderAssigned(ctx context.Context, ev domain.Event) error {
	if r.viewer.Role != domain.RoleAgent {
		return nil
	}
	if ev.AssignedAgentID != "" && ev.AssignedAgentID != r.viewer.ID {
		return nil
	}
	n, ok := r.record(ev, nil)
	if !ok {
		return nil
	}
	return r.persistNotification(ctx, n)
}

// OnStatusChanged notifies sellers and admins. Leaving status new takes the
// order out of the admin's new-orders count, never below zero.
func (r *Reconciler) OnStatusChanged(ctx context.Context, ev domain.Event) error {
	switch {
	case r.viewer.Role.IsAdmin():
	case r.viewer.Role == domain.RoleSeller:
		if ev.SellerID != "" && ev.SellerID != r.viewer.ID {
			return nil
		}
	default:
		return nil
	}
	n, ok := r.record(ev, func() {
		if ev.OldStatus == domain.StatusNew && ev.NewStatus != domain.StatusNew && r.viewer.Role.IsAdmin() {
			r.newOrders = clamp(r.newOrders - 1)
		}
	})
	if !ok {
		return nil
	}
	return r.persistNotification(ctx, n)
}

// record appends the notification for ev and runs mutate under the lock.
// It reports false for duplicate events.
func (r *Reconciler) record(ev domain.Event, mutate func()) (domain.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.ID != "" {
		if _, dup := r.seen[ev.ID]; dup {
			return domain.Notification{}, false
		}
		r.remember(ev.ID)
	}
	if mutate != nil {
		mutate()
	}
	n := notificationFor(ev, r.now())
	r.notifications = append([]domain.Notification{n}, r.notifications...)
	if len(r.notifications) > r.maxHeld {
		r.notifications = r.notifications[:r.maxHeld]
	}
	return n, true
}

func (r *Reconciler) remember(id string) {
	r.seen[id] = struct{}{}
	r.seenOrder = append(r.seenOrder, id)
	if len(r.seenOrder) > seenLimit {
		delete(r.seen, r.seenOrder[0])
		r.seenOrder = r.seenOrder[1:]
	}
}

// MarkAsRead flags one notification as read. Unknown ids leave local state
// unchanged but are still sent to the backend.
func (r *Reconciler) MarkAsRead(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.Validation("notification id is required")
	}
	r.mu.Lock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications[i].Read = true
		}
	}
	r.mu.Unlock()

	return r.sync(ctx, "mark_as_read", func(ctx context.Context) error {
		return r.backend.PersistMarkAsRead(ctx, r.viewer, id)
	})
}

// MarkAllAsRead flags every held notification as read.
func (r *Reconciler) MarkAllAsRead(ctx context.Context) error {
	r.mu.Lock()
	for i := range r.notifications {
		r.notifications[i].Read = true
	}
	r.mu.Unlock()

	return r.sync(ctx, "mark_all_as_read", func(ctx context.Context) error {
		return r.backend.PersistMarkAllAsRead(ctx, r.viewer)
	})
}

// ClearAll empties the list. New-orders and today counters are untouched.
func (r *Reconciler) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	r.notifications = nil
	r.mu.Unlock()

	return r.sync(ctx, "clear_all", func(ctx context.Context) error {
		return r.backend.PersistClearAll(ctx, r.viewer)
	})
}

// Refresh replaces local state with a fresh backend fetch. On error the local
// state is left as it was.
func (r *Reconciler) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	list, err := r.backend.FetchNotifications(ctx, r.viewer)
	if err != nil {
		return wrapTransport(err, "fetch notifications")
	}
	newOrders := 0
	if r.viewer.Role.IsAdmin() {
		if newOrders, err = r.backend.FetchNewOrdersCount(ctx); err != nil {
			return wrapTransport(err, "fetch new orders count")
		}
	}
	today, err := r.backend.FetchTodayOrdersCount(ctx, r.viewer)
	if err != nil {
		return wrapTransport(err, "fetch today orders count")
	}

	if len(list) > r.maxHeld {
		list = list[:r.maxHeld]
	}
	held := make([]domain.Notification, len(list))
	copy(held, list)

	r.mu.Lock()
	r.notifications = held
	r.newOrders = clamp(newOrders)
	r.today = clamp(today)
	r.mu.Unlock()

	r.logger.Debug("notifications refreshed",
		logx.Int("held", len(held)),
		logx.Int("new_orders", newOrders),
		logx.Int("today", today),
	)
	return nil
}

func (r *Reconciler) persistNotification(ctx context.Context, n domain.Notification) error {
	return r.sync(ctx, "persist_notification", func(ctx context.Context) error {
		return r.backend.PersistNotification(ctx, r.viewer, n)
	})
}

// sync runs a backend write and turns its failure into a logged warning.
func (r *Reconciler) sync(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		if r.warnings != nil {
			r.warnings.WithLabelValues(op).Inc()
		}
		r.logger.Warn("notification backend sync failed",
			logx.String("operation", op),
			logx.Err(err),
		)
		return wrapTransport(err, op)
	}
	return nil
}

func (r *Reconciler) sameDay(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	y1, m1, d1 := t.In(r.loc).Date()
	y2, m2, d2 := r.now().In(r.loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func notificationFor(ev domain.Event, now time.Time) domain.Notification {
	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = now
	}
	ref := ev.OrderNumber
	if ref == "" {
		ref = ev.OrderID
	}
	n := domain.Notification{
		ID:          uuid.NewString(),
		Type:        ev.Type,
		Timestamp:   ts,
		OrderID:     ev.OrderID,
		OrderNumber: ev.OrderNumber,
		OldStatus:   ev.OldStatus,
		NewStatus:   ev.NewStatus,
	}
	switch ev.Type {
	case domain.NotificationOrderCreated:
		n.Title = "New order"
		n.Message = fmt.Sprintf("Order %s was created", ref)
	case domain.NotificationOrderAssigned:
		n.Title = "Order assigned"
		n.Message = fmt.Sprintf("Order %s was assigned to you", ref)
	case domain.NotificationStatusChanged:
		n.Title = "Status updated"
		n.Message = fmt.Sprintf("Order %s changed from %s to %s", ref, ev.OldStatus, ev.NewStatus)
	}
	return n
}

func wrapTransport(err error, op string) error {
	if apperr.KindOf(err) != nil {
		return err
	}
	return apperr.Transport(err, op)
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
