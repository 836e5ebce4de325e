package domain

import (
	"fmt"
	"strings"
	"time"

	"shipment-console/internal/apperr"
)

// EntityKind is the kind of account that can be deactivated.
type EntityKind string

// List of deactivatable entity kinds
const (
	EntityAgent  EntityKind = "agent"
	EntitySeller EntityKind = "seller"
	EntityAdmin  EntityKind = "admin"
)

var allowedEntityKinds = [...]EntityKind{EntityAgent, EntitySeller, EntityAdmin}

// Valid checks if the EntityKind is known
func (k EntityKind) Valid() bool {
	for _, v := range allowedEntityKinds {
		if k == v {
			return true
		}
	}
	return false
}

// ParseEntityKind maps a wire value to an EntityKind.
func ParseEntityKind(raw string) (EntityKind, error) {
	k := EntityKind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", apperr.Validation(fmt.Sprintf("unknown entity kind %q", raw))
	}
	return k, nil
}

// BoundsShape tags which bounds of a deactivation window are present.
type BoundsShape int

// Window shapes
const (
	BoundsUnset BoundsShape = iota
	BoundsFromOnly
	BoundsToOnly
	BoundsBounded
)

func (s BoundsShape) String() string {
	switch s {
	case BoundsFromOnly:
		return "from_only"
	case BoundsToOnly:
		return "to_only"
	case BoundsBounded:
		return "bounded"
	default:
		return "unset"
	}
}

// Bounds is a tagged variant: Unset, FromOnly, ToOnly or Bounded.
// Accessors report presence so absent bounds are never read as zero times.
type Bounds struct {
	shape BoundsShape
	from  time.Time
	to    time.Time
}

// Unset returns empty bounds (no deactivation).
func Unset() Bounds { return Bounds{} }

// FromOnly returns an open-ended window starting at from.
func FromOnly(from time.Time) Bounds { return Bounds{shape: BoundsFromOnly, from: from} }

// ToOnly returns a window effective immediately until to.
func ToOnly(to time.Time) Bounds { return Bounds{shape: BoundsToOnly, to: to} }

// Bounded returns a window between from and to inclusive.
func Bounded(from, to time.Time) Bounds { return Bounds{shape: BoundsBounded, from: from, to: to} }

// NewBounds builds the variant from optional bounds; zero times count as absent.
func NewBounds(from, to *time.Time) Bounds {
	hasFrom := from != nil && !from.IsZero()
	hasTo := to != nil && !to.IsZero()
	switch {
	case hasFrom && hasTo:
		return Bounded(*from, *to)
	case hasFrom:
		return FromOnly(*from)
	case hasTo:
		return ToOnly(*to)
	default:
		return Unset()
	}
}

// Shape returns the variant tag.
func (b Bounds) Shape() BoundsShape { return b.shape }

// From returns the start bound and whether it is present.
func (b Bounds) From() (time.Time, bool) {
	if b.shape == BoundsFromOnly || b.shape == BoundsBounded {
		return b.from, true
	}
	return time.Time{}, false
}

// To returns the end bound and whether it is present.
func (b Bounds) To() (time.Time, bool) {
	if b.shape == BoundsToOnly || b.shape == BoundsBounded {
		return b.to, true
	}
	return time.Time{}, false
}

// FromPtr returns the start bound or nil.
func (b Bounds) FromPtr() *time.Time {
	if t, ok := b.From(); ok {
		return &t
	}
	return nil
}

// ToPtr returns the end bound or nil.
func (b Bounds) ToPtr() *time.Time {
	if t, ok := b.To(); ok {
		return &t
	}
	return nil
}

// DeactivationWindow is the deactivation record of one account. Clearing sets Unset bounds.
type DeactivationWindow struct {
	EntityKind EntityKind
	EntityID   string
	Bounds     Bounds
}

// DeactivationState classifies a window at a point in time.
type DeactivationState string

// List of deactivation states
const (
	StateActive               DeactivationState = "active"
	StateCurrentlyDeactivated DeactivationState = "currently_deactivated"
	StateScheduledFuture      DeactivationState = "scheduled_future"
)
