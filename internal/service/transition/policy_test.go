package transition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
)

func TestAllowedNextStatuses_AgentIsFlat(t *testing.T) {
	t.Parallel()

	want := []domain.ShipmentStatus{
		domain.StatusDelivered,
		domain.StatusPostponed,
		domain.StatusCustomerUnreachable,
		domain.StatusRejectedNoShippingFees,
		domain.StatusRejectedWithShippingFees,
		domain.StatusPartiallyDelivered,
		domain.StatusReturned,
	}
	for _, current := range domain.AllStatuses() {
		require.Equalf(t, want, AllowedNextStatuses(domain.RoleAgent, current), "current=%s", current)
	}
}

func TestAllowedNextStatuses_ByRole(t *testing.T) {
	t.Parallel()

	require.Equal(t, domain.AllStatuses(), AllowedNextStatuses(domain.RoleAdmin, domain.StatusNew))
	require.Equal(t, domain.AllStatuses(), AllowedNextStatuses(domain.RoleSuperAdmin, domain.StatusReturned))
	require.Empty(t, AllowedNextStatuses(domain.RoleSeller, domain.StatusNew))
	require.Empty(t, AllowedNextStatuses(domain.Role("courier"), domain.StatusNew))
}

func TestAllowedNextStatuses_ReturnsCopy(t *testing.T) {
	t.Parallel()

	got := AllowedNextStatuses(domain.RoleAgent, domain.StatusNew)
	got[0] = domain.StatusNew
	require.Equal(t, domain.StatusDelivered, AllowedNextStatuses(domain.RoleAgent, domain.StatusNew)[0])
}

func TestCheckTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		role    domain.Role
		current domain.ShipmentStatus
		target  domain.ShipmentStatus
		kind    error
		reason  string
	}{
		{"agent delivers new", domain.RoleAgent, domain.StatusNew, domain.StatusDelivered, nil, ""},
		{"agent to warehouse", domain.RoleAgent, domain.StatusNew, domain.StatusInWarehouse, apperr.ErrPermission, domain.ReasonNotPermitted},
		{"agent same status wins over membership", domain.RoleAgent, domain.StatusInWarehouse, domain.StatusInWarehouse, apperr.ErrValidation, domain.ReasonSameStatus},
		{"admin any", domain.RoleAdmin, domain.StatusDelivered, domain.StatusNew, nil, ""},
		{"super admin any", domain.RoleSuperAdmin, domain.StatusNew, domain.StatusRejectedByUs, nil, ""},
		{"admin same status", domain.RoleAdmin, domain.StatusNew, domain.StatusNew, apperr.ErrValidation, domain.ReasonSameStatus},
		{"seller", domain.RoleSeller, domain.StatusNew, domain.StatusCanceledByMerchant, apperr.ErrPermission, domain.ReasonNotPermitted},
		{"unknown target", domain.RoleAdmin, domain.StatusNew, domain.ShipmentStatus("lost"), apperr.ErrValidation, ""},
		{"seller unknown target", domain.RoleSeller, domain.StatusNew, domain.ShipmentStatus("lost"), apperr.ErrPermission, domain.ReasonNotPermitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckTransition(tt.role, tt.current, tt.target)
			if tt.kind == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.kind)
			ae, ok := apperr.As(err)
			require.True(t, ok)
			require.Equal(t, tt.reason, ae.Reason())
		})
	}
}

func TestCheckTransition_SameStatusAlwaysValidation(t *testing.T) {
	t.Parallel()

	for _, role := range []domain.Role{domain.RoleAgent, domain.RoleAdmin, domain.RoleSuperAdmin} {
		for _, s := range domain.AllStatuses() {
			err := CheckTransition(role, s, s)
			require.ErrorIsf(t, err, apperr.ErrValidation, "role=%s status=%s", role, s)
		}
	}
}
