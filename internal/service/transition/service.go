package transition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
)

// Service applies role-scoped status transitions and agent assignments.
type Service struct {
	backend          shipmentBackend
	batch            bulkPersister
	publisher        eventPublisher
	agents           agentChecker
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
	transitions      *prometheus.CounterVec
	bulkItems        *prometheus.CounterVec
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithMetrics attaches transition and bulk item counters.
func WithMetrics(transitions, bulkItems *prometheus.CounterVec) Option {
	return func(s *Service) {
		s.transitions = transitions
		s.bulkItems = bulkItems
	}
}

// WithClock overrides the event clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a transition Service. If backend also offers the batch
// endpoint, bulk requests use it.
func NewService(
	backend shipmentBackend,
	publisher eventPublisher,
	agents agentChecker,
	timeout time.Duration,
	logger logx.Logger,
	opts ...Option,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	s := &Service{
		backend:          backend,
		publisher:        publisher,
		agents:           agents,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
	if bp, ok := backend.(bulkPersister); ok {
		s.batch = bp
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// RequestStatusChange moves one shipment to target on behalf of actor.
// Sellers are rejected without any backend call. The current status is always
// fetched fresh.
func (s *Service) RequestStatusChange(
	ctx context.Context,
	actor domain.Viewer,
	shipmentID string,
	target domain.ShipmentStatus,
) (domain.Shipment, error) {
	shipmentID = strings.TrimSpace(shipmentID)
	if err := precheck(actor, target); err != nil {
		s.observe(actor.Role, target, err)
		return domain.Shipment{}, err
	}
	if shipmentID == "" {
		err := apperr.Validation("shipment id is required")
		s.observe(actor.Role, target, err)
		return domain.Shipment{}, err
	}

	sh, err := s.fetch(ctx, shipmentID)
	if err == nil {
		err = CheckTransition(actor.Role, sh.Status, target)
	}
	if err == nil {
		err = s.persist(ctx, shipmentID, target)
	}
	s.observe(actor.Role, target, err)
	if err != nil {
		return domain.Shipment{}, err
	}

	old := sh.Status
	sh.Status = target
	s.logger.Info("shipment status changed",
		logx.String("event", "status_changed"),
		logx.String("shipment_id", shipmentID),
		logx.String("role", string(actor.Role)),
		logx.String("actor_id", actor.ID),
		logx.String("old_status", string(old)),
		logx.String("new_status", string(target)),
	)
	s.publish(ctx, statusChangedEvent(sh, old, actor, s.now()))
	return sh, nil
}

// AssignAgent assigns agentID to a shipment. Admins only; deactivated agents
// cannot receive work.
func (s *Service) AssignAgent(ctx context.Context, actor domain.Viewer, shipmentID, agentID string) (domain.Shipment, error) {
	if !actor.Role.IsAdmin() {
		return domain.Shipment{}, apperr.Permission("only admins can assign agents")
	}
	shipmentID = strings.TrimSpace(shipmentID)
	agentID = strings.TrimSpace(agentID)
	if shipmentID == "" || agentID == "" {
		return domain.Shipment{}, apperr.Validation("shipment id and agent id are required")
	}

	if s.agents != nil {
		cctx, cancel := s.withTimeout(ctx)
		deactivated, err := s.agents.IsDeactivated(cctx, domain.EntityAgent, agentID)
		cancel()
		if err != nil {
			return domain.Shipment{}, err
		}
		if deactivated {
			return domain.Shipment{}, apperr.Validation("agent is deactivated")
		}
	}

	sh, err := s.fetch(ctx, shipmentID)
	if err != nil {
		return domain.Shipment{}, err
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.backend.PersistAssignment(cctx, shipmentID, agentID); err != nil {
		return domain.Shipment{}, classify(err, "persist assignment")
	}
	sh.AgentID = agentID

	s.logger.Info("agent assigned",
		logx.String("event", "order_assigned"),
		logx.String("shipment_id", shipmentID),
		logx.String("agent_id", agentID),
		logx.String("actor_id", actor.ID),
	)
	s.publish(ctx, domain.Event{
		Type:            domain.NotificationOrderAssigned,
		OrderID:         sh.ID,
		OrderNumber:     sh.OrderNumber,
		SellerID:        sh.SellerID,
		AssignedAgentID: agentID,
		NewStatus:       sh.Status,
		ActorRole:       actor.Role,
		OccurredAt:      s.now(),
	})
	return sh, nil
}

// AllowedStatuses returns the shipment and the statuses actor may pick for it.
// Sellers get an empty set without a backend call.
func (s *Service) AllowedStatuses(ctx context.Context, actor domain.Viewer, shipmentID string) (domain.Shipment, []domain.ShipmentStatus, error) {
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return domain.Shipment{}, nil, apperr.Validation("shipment id is required")
	}
	if !CanTransition(actor.Role) {
		return domain.Shipment{ID: shipmentID}, AllowedNextStatuses(actor.Role, ""), nil
	}
	sh, err := s.fetch(ctx, shipmentID)
	if err != nil {
		return domain.Shipment{}, nil, err
	}
	return sh, AllowedNextStatuses(actor.Role, sh.Status), nil
}

// precheck rejects non-transitioning roles before looking at the target so a
// seller always gets a permission error.
func precheck(actor domain.Viewer, target domain.ShipmentStatus) error {
	if !CanTransition(actor.Role) {
		return apperr.Permission(fmt.Sprintf("role %q cannot change shipment status", actor.Role)).
			WithReason(domain.ReasonNotPermitted)
	}
	if !target.Valid() {
		return apperr.Validation(fmt.Sprintf("unknown shipment status %q", target))
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, id string) (domain.Shipment, error) {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	sh, err := s.backend.FetchShipment(cctx, id)
	if err != nil {
		return domain.Shipment{}, classify(err, "fetch shipment")
	}
	if sh.ID == "" {
		sh.ID = id
	}
	return sh, nil
}

func (s *Service) persist(ctx context.Context, id string, target domain.ShipmentStatus) error {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.backend.PersistStatusTransition(cctx, id, target); err != nil {
		return classify(err, "persist status transition")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, ev domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("event relay failed",
			logx.String("event", string(ev.Type)),
			logx.String("order_id", ev.OrderID),
			logx.Err(err),
		)
	}
}

func (s *Service) observe(role domain.Role, target domain.ShipmentStatus, err error) {
	if s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(string(role), string(target), resultLabel(err)).Inc()
}

func statusChangedEvent(sh domain.Shipment, old domain.ShipmentStatus, actor domain.Viewer, at time.Time) domain.Event {
	return domain.Event{
		Type:            domain.NotificationStatusChanged,
		OrderID:         sh.ID,
		OrderNumber:     sh.OrderNumber,
		SellerID:        sh.SellerID,
		AssignedAgentID: sh.AgentID,
		OldStatus:       old,
		NewStatus:       sh.Status,
		ActorRole:       actor.Role,
		OccurredAt:      at,
	}
}

// classify keeps typed backend errors and treats anything else as a transport failure.
func classify(err error, op string) error {
	if apperr.KindOf(err) != nil {
		return err
	}
	return apperr.Transport(err, op)
}

func resultLabel(err error) string {
	switch apperr.KindOf(err) {
	case nil:
		if err != nil {
			return "error"
		}
		return "ok"
	case apperr.ErrValidation:
		return "validation"
	case apperr.ErrPermission:
		return "permission"
	case apperr.ErrNotFound:
		return "not_found"
	default:
		return "transport"
	}
}
