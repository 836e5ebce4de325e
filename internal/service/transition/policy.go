package transition

import (
	"fmt"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
)

// agentTargets is the flat allow-list for delivery agents. It does not depend on
// the current status.
var agentTargets = [...]domain.ShipmentStatus{
	domain.StatusDelivered,
	domain.StatusPostponed,
	domain.StatusCustomerUnreachable,
	domain.StatusRejectedNoShippingFees,
	domain.StatusRejectedWithShippingFees,
	domain.StatusPartiallyDelivered,
	domain.StatusReturned,
}

// AllowedNextStatuses returns the statuses role may move a shipment to.
// Sellers and unknown roles get an empty set.
func AllowedNextStatuses(role domain.Role, _ domain.ShipmentStatus) []domain.ShipmentStatus {
	switch {
	case role == domain.RoleAgent:
		out := make([]domain.ShipmentStatus, len(agentTargets))
		copy(out, agentTargets[:])
		return out
	case role.IsAdmin():
		return domain.AllStatuses()
	default:
		return []domain.ShipmentStatus{}
	}
}

func allowed(role domain.Role, target domain.ShipmentStatus) bool {
	switch {
	case role == domain.RoleAgent:
		for _, s := range agentTargets {
			if s == target {
				return true
			}
		}
		return false
	case role.IsAdmin():
		return target.Valid()
	default:
		return false
	}
}

// CanTransition reports whether role may ever request target.
func CanTransition(role domain.Role) bool {
	return role == domain.RoleAgent || role.IsAdmin()
}

// CheckTransition validates a single transition. Same-status is reported before
// role membership so the caller gets the more actionable message.
func CheckTransition(role domain.Role, current, target domain.ShipmentStatus) error {
	if !CanTransition(role) {
		return apperr.Permission(fmt.Sprintf("role %q cannot change shipment status", role)).
			WithReason(domain.ReasonNotPermitted)
	}
	if !target.Valid() {
		return apperr.Validation(fmt.Sprintf("unknown shipment status %q", target))
	}
	if current == target {
		return apperr.Validation("select a different status").WithReason(domain.ReasonSameStatus)
	}
	if !allowed(role, target) {
		return apperr.Permission(fmt.Sprintf("status %q is not permitted for role %q", target, role)).
			WithReason(domain.ReasonNotPermitted)
	}
	return nil
}
