package deactivation

import (
	"time"

	"shipment-console/internal/domain"
)

// Precision selects how window bounds are compared with now.
type Precision int

// Precisions
const (
	// PrecisionDay widens from to start-of-day and to to end-of-day.
	PrecisionDay Precision = iota
	// PrecisionInstant compares bounds exactly.
	PrecisionInstant
)

// ParsePrecision maps "instant" to PrecisionInstant; anything else is day precision.
func ParsePrecision(s string) Precision {
	if s == "instant" {
		return PrecisionInstant
	}
	return PrecisionDay
}

// Evaluator answers deactivation questions about a window at a given instant.
// It is pure and never fails.
type Evaluator struct {
	precision Precision
	loc       *time.Location
}

// NewEvaluator creates an Evaluator. A nil location means UTC.
func NewEvaluator(precision Precision, loc *time.Location) Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	return Evaluator{precision: precision, loc: loc}
}

// normalize returns the effective bounds. Both bounds share one precision.
func (e Evaluator) normalize(b domain.Bounds) (from time.Time, hasFrom bool, to time.Time, hasTo bool) {
	from, hasFrom = b.From()
	to, hasTo = b.To()
	if e.precision == PrecisionInstant {
		return from, hasFrom, to, hasTo
	}
	if hasFrom {
		from = startOfDay(from, e.loc)
	}
	if hasTo {
		to = endOfDay(to, e.loc)
	}
	return from, hasFrom, to, hasTo
}

// IsCurrentlyDeactivated reports whether now falls inside the window.
// Bounded: from <= now <= to. ToOnly: now <= to. FromOnly: now >= from (open-ended).
func (e Evaluator) IsCurrentlyDeactivated(w domain.DeactivationWindow, now time.Time) bool {
	from, hasFrom, to, hasTo := e.normalize(w.Bounds)
	switch {
	case hasFrom && hasTo:
		return !now.Before(from) && !now.After(to)
	case hasTo:
		return !now.After(to)
	case hasFrom:
		return !now.Before(from)
	default:
		return false
	}
}

// IsScheduledForFuture reports whether the window starts after now.
func (e Evaluator) IsScheduledForFuture(w domain.DeactivationWindow, now time.Time) bool {
	from, hasFrom, _, _ := e.normalize(w.Bounds)
	return hasFrom && from.After(now)
}

// IsActive is the negation of IsCurrentlyDeactivated.
func (e Evaluator) IsActive(w domain.DeactivationWindow, now time.Time) bool {
	return !e.IsCurrentlyDeactivated(w, now)
}

// State classifies the window at now.
func (e Evaluator) State(w domain.DeactivationWindow, now time.Time) domain.DeactivationState {
	switch {
	case e.IsCurrentlyDeactivated(w, now):
		return domain.StateCurrentlyDeactivated
	case e.IsScheduledForFuture(w, now):
		return domain.StateScheduledFuture
	default:
		return domain.StateActive
	}
}

// EffectiveTo returns the normalized end bound, used to validate new schedules.
func (e Evaluator) EffectiveTo(to time.Time) time.Time {
	if e.precision == PrecisionInstant {
		return to
	}
	return endOfDay(to, e.loc)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	return startOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
