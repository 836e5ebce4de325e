package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"shipment-console/internal/domain"
	mw "shipment-console/internal/http/middleware"
	"shipment-console/internal/service/deactivation"
)

var (
	agent  = domain.Viewer{ID: "a1", Role: domain.RoleAgent}
	admin  = domain.Viewer{ID: "ad1", Role: domain.RoleAdmin}
	seller = domain.Viewer{ID: "s1", Role: domain.RoleSeller}
)

// serve routes one request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern, target, body string, v *domain.Viewer, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if v != nil {
		req = req.WithContext(mw.WithViewer(req.Context(), *v))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type shipmentUCStub struct {
	allowedFn func(ctx context.Context, actor domain.Viewer, id string) (domain.Shipment, []domain.ShipmentStatus, error)
	changeFn  func(ctx context.Context, actor domain.Viewer, id string, target domain.ShipmentStatus) (domain.Shipment, error)
	bulkFn    func(ctx context.Context, actor domain.Viewer, ids []string, target domain.ShipmentStatus) (domain.BulkResult, error)
	assignFn  func(ctx context.Context, actor domain.Viewer, id, agentID string) (domain.Shipment, error)
}

func (s *shipmentUCStub) AllowedStatuses(ctx context.Context, actor domain.Viewer, id string) (domain.Shipment, []domain.ShipmentStatus, error) {
	return s.allowedFn(ctx, actor, id)
}

func (s *shipmentUCStub) RequestStatusChange(ctx context.Context, actor domain.Viewer, id string, target domain.ShipmentStatus) (domain.Shipment, error) {
	return s.changeFn(ctx, actor, id, target)
}

func (s *shipmentUCStub) RequestBulkStatusChange(ctx context.Context, actor domain.Viewer, ids []string, target domain.ShipmentStatus) (domain.BulkResult, error) {
	return s.bulkFn(ctx, actor, ids, target)
}

func (s *shipmentUCStub) AssignAgent(ctx context.Context, actor domain.Viewer, id, agentID string) (domain.Shipment, error) {
	return s.assignFn(ctx, actor, id, agentID)
}

type deactivationUCStub struct {
	scheduleFn func(ctx context.Context, req deactivation.ScheduleRequest) (domain.DeactivationWindow, error)
	clearFn    func(ctx context.Context, kind domain.EntityKind, id string) (domain.DeactivationWindow, error)
	stateFn    func(ctx context.Context, kind domain.EntityKind, id string) (domain.DeactivationWindow, domain.DeactivationState, error)
}

func (s *deactivationUCStub) ScheduleDeactivation(ctx context.Context, req deactivation.ScheduleRequest) (domain.DeactivationWindow, error) {
	return s.scheduleFn(ctx, req)
}

func (s *deactivationUCStub) ClearDeactivation(ctx context.Context, kind domain.EntityKind, id string) (domain.DeactivationWindow, error) {
	return s.clearFn(ctx, kind, id)
}

func (s *deactivationUCStub) EntityState(ctx context.Context, kind domain.EntityKind, id string) (domain.DeactivationWindow, domain.DeactivationState, error) {
	return s.stateFn(ctx, kind, id)
}

func (s *deactivationUCStub) GetDeactivationState(w domain.DeactivationWindow, _ time.Time) domain.DeactivationState {
	if w.Bounds.Shape() == domain.BoundsUnset {
		return domain.StateActive
	}
	return domain.StateCurrentlyDeactivated
}

type sessionStub struct {
	counters domain.NotificationCounters
	list     []domain.Notification

	refreshErr error
	readErr    error
	refreshes  int
	readIDs    []string
	cleared    bool
}

func (s *sessionStub) Snapshot() (domain.NotificationCounters, []domain.Notification) {
	return s.counters, s.list
}

func (s *sessionStub) Refresh(context.Context) error {
	s.refreshes++
	return s.refreshErr
}

func (s *sessionStub) MarkAsRead(_ context.Context, id string) error {
	s.readIDs = append(s.readIDs, id)
	return s.readErr
}

func (s *sessionStub) MarkAllAsRead(context.Context) error { return s.readErr }

func (s *sessionStub) ClearAll(context.Context) error {
	s.cleared = true
	s.list = nil
	return nil
}

type providerStub struct {
	sess    *sessionStub
	created bool
	seen    []domain.Viewer
}

func (p *providerStub) Session(v domain.Viewer) (session, bool) {
	p.seen = append(p.seen, v)
	return p.sess, p.created
}

type publisherStub struct {
	err    error
	events []domain.Event
}

func (p *publisherStub) Publish(_ context.Context, ev domain.Event) error {
	p.events = append(p.events, ev)
	return p.err
}
