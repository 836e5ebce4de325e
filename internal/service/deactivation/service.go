package deactivation

import (
	"context"
	"errors"
	"strings"
	"time"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
)

// ScheduleRequest asks to deactivate an account until To, optionally starting at From.
type ScheduleRequest struct {
	Kind     domain.EntityKind
	EntityID string
	From     *time.Time
	To       time.Time
}

// Service schedules, clears and evaluates deactivation windows.
type Service struct {
	store            windowStore
	eval             Evaluator
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates a deactivation Service.
func NewService(store windowStore, eval Evaluator, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		store:            store,
		eval:             eval,
		operationTimeout: timeout,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// ScheduleDeactivation validates and persists a window. Input errors are
// returned before any backend call.
func (s *Service) ScheduleDeactivation(ctx context.Context, req ScheduleRequest) (domain.DeactivationWindow, error) {
	id, err := validateTarget(req.Kind, req.EntityID)
	if err != nil {
		return domain.DeactivationWindow{}, err
	}
	if req.To.IsZero() {
		return domain.DeactivationWindow{}, apperr.Validation("an end date must be chosen")
	}
	now := s.now()
	if !s.eval.EffectiveTo(req.To).After(now) {
		return domain.DeactivationWindow{}, apperr.Validation("end date must be in the future")
	}

	w := domain.DeactivationWindow{
		EntityKind: req.Kind,
		EntityID:   id,
		Bounds:     domain.NewBounds(req.From, &req.To),
	}
	if w.Bounds.Shape() == domain.BoundsBounded {
		from, _, to, _ := s.eval.normalize(w.Bounds)
		if from.After(to) {
			return domain.DeactivationWindow{}, apperr.Validation("start date must not be after end date")
		}
	}

	if err := s.persist(ctx, w); err != nil {
		return domain.DeactivationWindow{}, err
	}

	s.logger.Info("deactivation scheduled",
		logx.String("event", "deactivation_scheduled"),
		logx.String("entity_kind", string(w.EntityKind)),
		logx.String("entity_id", w.EntityID),
		logx.String("shape", w.Bounds.Shape().String()),
		logx.Time("to", req.To),
	)
	return w, nil
}

// ClearDeactivation resets the window to Unset. The record itself is kept.
func (s *Service) ClearDeactivation(ctx context.Context, kind domain.EntityKind, entityID string) (domain.DeactivationWindow, error) {
	id, err := validateTarget(kind, entityID)
	if err != nil {
		return domain.DeactivationWindow{}, err
	}
	w := domain.DeactivationWindow{EntityKind: kind, EntityID: id, Bounds: domain.Unset()}
	if err := s.persist(ctx, w); err != nil {
		return domain.DeactivationWindow{}, err
	}
	s.logger.Info("deactivation cleared",
		logx.String("event", "deactivation_cleared"),
		logx.String("entity_kind", string(kind)),
		logx.String("entity_id", id),
	)
	return w, nil
}

// GetDeactivationState classifies w at now.
func (s *Service) GetDeactivationState(w domain.DeactivationWindow, now time.Time) domain.DeactivationState {
	return s.eval.State(w, now)
}

// EntityState fetches the account's window and classifies it at the current
// time. An account without a record is active.
func (s *Service) EntityState(
	ctx context.Context,
	kind domain.EntityKind,
	entityID string,
) (domain.DeactivationWindow, domain.DeactivationState, error) {
	id, err := validateTarget(kind, entityID)
	if err != nil {
		return domain.DeactivationWindow{}, "", err
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	w, err := s.store.FetchDeactivationWindow(cctx, kind, id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		w = domain.DeactivationWindow{EntityKind: kind, EntityID: id, Bounds: domain.Unset()}
	case err != nil:
		if apperr.KindOf(err) == nil {
			err = apperr.Transport(err, "fetch deactivation window")
		}
		return domain.DeactivationWindow{}, "", err
	}
	return w, s.eval.State(w, s.now()), nil
}

// IsDeactivated reports whether the account is deactivated right now.
func (s *Service) IsDeactivated(ctx context.Context, kind domain.EntityKind, entityID string) (bool, error) {
	_, st, err := s.EntityState(ctx, kind, entityID)
	if err != nil {
		return false, err
	}
	return st == domain.StateCurrentlyDeactivated, nil
}

// EnsureActive rejects a currently deactivated viewer. Super admins cannot be deactivated.
func (s *Service) EnsureActive(ctx context.Context, viewer domain.Viewer) error {
	kind, ok := viewer.EntityKind()
	if !ok {
		return nil
	}
	deactivated, err := s.IsDeactivated(ctx, kind, viewer.ID)
	if err != nil {
		return err
	}
	if deactivated {
		return apperr.Permission("account is deactivated")
	}
	return nil
}

func (s *Service) persist(ctx context.Context, w domain.DeactivationWindow) error {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.PersistDeactivationWindow(cctx, w); err != nil {
		if apperr.KindOf(err) != nil {
			return err
		}
		return apperr.Transport(err, "persist deactivation window")
	}
	return nil
}

func validateTarget(kind domain.EntityKind, id string) (string, error) {
	if !kind.Valid() {
		return "", apperr.Validation("unknown entity kind " + string(kind))
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperr.Validation("entity id is required")
	}
	return id, nil
}
