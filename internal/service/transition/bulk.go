package transition

import (
	"context"
	"strings"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	"shipment-console/internal/logx"
)

// RequestBulkStatusChange moves every shipment in ids to target. Items are
// processed one at a time in the given order; a failing item never aborts the
// rest and failures are reported in input order. Request-level problems
// (unknown status, non-transitioning role, empty list) fail the whole call
// before any backend access. A repeated id is processed once; later copies
// fail as same-status.
func (s *Service) RequestBulkStatusChange(
	ctx context.Context,
	actor domain.Viewer,
	ids []string,
	target domain.ShipmentStatus,
) (domain.BulkResult, error) {
	if err := precheck(actor, target); err != nil {
		return domain.BulkResult{}, err
	}
	if len(ids) == 0 {
		return domain.BulkResult{}, apperr.Validation("select at least one shipment")
	}

	slots := make([]bulkItem, len(ids))
	pending := make([]int, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for i, raw := range ids {
		id := strings.TrimSpace(raw)
		slots[i].id = id
		if id == "" {
			slots[i].id = raw
			slots[i].fail(domain.BulkFailure{
				ID: raw, Reason: domain.ReasonInvalidID, Message: "shipment id is required",
			})
			continue
		}
		if _, dup := seen[id]; dup {
			slots[i].fail(domain.BulkFailure{
				ID: id, Reason: domain.ReasonSameStatus, Message: "shipment is listed more than once",
			})
			continue
		}
		seen[id] = struct{}{}

		sh, err := s.fetch(ctx, id)
		if err == nil {
			err = CheckTransition(actor.Role, sh.Status, target)
		}
		if err != nil {
			slots[i].fail(failureFor(id, err))
			continue
		}
		slots[i].shipment = sh
		if s.batch == nil {
			s.persistOne(ctx, actor, &slots[i], target)
			continue
		}
		pending = append(pending, i)
	}

	if s.batch != nil && len(pending) > 0 {
		s.persistBatch(ctx, actor, slots, pending, target)
	}

	res := domain.BulkResult{Succeeded: []string{}, Failed: []domain.BulkFailure{}}
	for _, it := range slots {
		if it.failure != nil {
			res.Failed = append(res.Failed, *it.failure)
			s.observeBulk(it.failure.Reason)
			continue
		}
		res.Succeeded = append(res.Succeeded, it.id)
		s.observeBulk("ok")
	}
	s.logger.Info("bulk status transition",
		logx.String("event", "bulk_transition"),
		logx.String("role", string(actor.Role)),
		logx.String("actor_id", actor.ID),
		logx.String("new_status", string(target)),
		logx.Int("requested", len(ids)),
		logx.Int("succeeded", len(res.Succeeded)),
		logx.Int("failed", len(res.Failed)),
	)
	return res, nil
}

// bulkItem is the outcome slot of one requested id.
type bulkItem struct {
	id       string
	shipment domain.Shipment
	failure  *domain.BulkFailure
}

func (it *bulkItem) fail(f domain.BulkFailure) { it.failure = &f }

func (s *Service) persistOne(ctx context.Context, actor domain.Viewer, it *bulkItem, target domain.ShipmentStatus) {
	if err := s.persist(ctx, it.id, target); err != nil {
		it.fail(failureFor(it.id, err))
		return
	}
	s.applied(ctx, actor, it.shipment, target)
}

// persistBatch tries the batch endpoint first and degrades to per-item calls
// when it fails so every failure is attributed to its own id.
func (s *Service) persistBatch(
	ctx context.Context,
	actor domain.Viewer,
	slots []bulkItem,
	pending []int,
	target domain.ShipmentStatus,
) {
	ids := make([]string, len(pending))
	for n, i := range pending {
		ids[n] = slots[i].id
	}

	cctx, cancel := s.withTimeout(ctx)
	err := s.batch.PersistBulkStatusTransition(cctx, ids, target)
	cancel()
	if err == nil {
		for _, i := range pending {
			s.applied(ctx, actor, slots[i].shipment, target)
		}
		return
	}

	s.logger.Warn("batch status transition failed, falling back to per-item",
		logx.Int("items", len(ids)),
		logx.Err(err),
	)
	for _, i := range pending {
		s.persistOne(ctx, actor, &slots[i], target)
	}
}

func (s *Service) applied(ctx context.Context, actor domain.Viewer, sh domain.Shipment, target domain.ShipmentStatus) {
	old := sh.Status
	sh.Status = target
	s.publish(ctx, statusChangedEvent(sh, old, actor, s.now()))
}

func (s *Service) observeBulk(result string) {
	if s.bulkItems == nil {
		return
	}
	s.bulkItems.WithLabelValues(result).Inc()
}

func failureFor(id string, err error) domain.BulkFailure {
	f := domain.BulkFailure{ID: id, Message: err.Error()}
	if ae, ok := apperr.As(err); ok {
		if ae.Kind() != apperr.ErrTransport {
			f.Message = ae.Message()
		}
		if ae.Reason() != "" {
			f.Reason = ae.Reason()
			return f
		}
	}
	switch apperr.KindOf(err) {
	case apperr.ErrPermission:
		f.Reason = domain.ReasonNotPermitted
	case apperr.ErrNotFound:
		f.Reason = domain.ReasonNotFound
	case apperr.ErrValidation:
		f.Reason = domain.ReasonInvalidID
	default:
		f.Reason = domain.ReasonTransport
	}
	return f
}
