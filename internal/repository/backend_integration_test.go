//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	"shipment-console/internal/repository"
)

func TestShipmentRepo_FetchAndTransition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewShipmentRepo(tcPool)

	seedShipment(t, "it-ship-1", "new", "seller-1", time.Now())

	got, err := repo.FetchShipment(ctx, "it-ship-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusNew, got.Status)
	require.True(t, got.Price.Equal(decimal.RequireFromString("100.5")))
	require.True(t, got.Total().Equal(decimal.RequireFromString("107.75")))
	require.Empty(t, got.AgentID)

	require.NoError(t, repo.PersistStatusTransition(ctx, "it-ship-1", domain.StatusInWarehouse))
	require.NoError(t, repo.PersistAssignment(ctx, "it-ship-1", "agent-1"))

	got, err = repo.FetchShipment(ctx, "it-ship-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusInWarehouse, got.Status)
	require.Equal(t, "agent-1", got.AgentID)
}

func TestShipmentRepo_Missing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewShipmentRepo(tcPool)

	_, err := repo.FetchShipment(ctx, "it-missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, repo.PersistStatusTransition(ctx, "it-missing", domain.StatusDelivered), apperr.ErrNotFound)
	require.ErrorIs(t, repo.PersistAssignment(ctx, "it-missing", "a"), apperr.ErrNotFound)
}

func TestShipmentRepo_BulkIsAllOrNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewShipmentRepo(tcPool)

	seedShipment(t, "it-bulk-1", "new", "seller-1", time.Now())
	seedShipment(t, "it-bulk-2", "new", "seller-1", time.Now())

	err := repo.PersistBulkStatusTransition(ctx, []string{"it-bulk-1", "it-bulk-absent"}, domain.StatusDelivered)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := repo.FetchShipment(ctx, "it-bulk-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusNew, got.Status, "rolled back")

	require.NoError(t, repo.PersistBulkStatusTransition(ctx,
		[]string{"it-bulk-1", "it-bulk-2", "it-bulk-1"}, domain.StatusDelivered))
	for _, id := range []string{"it-bulk-1", "it-bulk-2"} {
		got, err := repo.FetchShipment(ctx, id)
		require.NoError(t, err)
		require.Equal(t, domain.StatusDelivered, got.Status)
	}
}

func TestDeactivationRepo_Upsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewDeactivationRepo(tcPool)

	_, err := repo.FetchDeactivationWindow(ctx, domain.EntityAgent, "it-agent")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.PersistDeactivationWindow(ctx, domain.DeactivationWindow{
		EntityKind: domain.EntityAgent, EntityID: "it-agent", Bounds: domain.Bounded(from, to),
	}))

	got, err := repo.FetchDeactivationWindow(ctx, domain.EntityAgent, "it-agent")
	require.NoError(t, err)
	require.Equal(t, domain.BoundsBounded, got.Bounds.Shape())
	gotFrom, _ := got.Bounds.From()
	require.True(t, gotFrom.Equal(from))

	require.NoError(t, repo.PersistDeactivationWindow(ctx, domain.DeactivationWindow{
		EntityKind: domain.EntityAgent, EntityID: "it-agent", Bounds: domain.FromOnly(from),
	}))
	got, err = repo.FetchDeactivationWindow(ctx, domain.EntityAgent, "it-agent")
	require.NoError(t, err)
	require.Equal(t, domain.BoundsFromOnly, got.Bounds.Shape())

	require.NoError(t, repo.PersistDeactivationWindow(ctx, domain.DeactivationWindow{
		EntityKind: domain.EntityAgent, EntityID: "it-agent", Bounds: domain.Unset(),
	}))
	got, err = repo.FetchDeactivationWindow(ctx, domain.EntityAgent, "it-agent")
	require.NoError(t, err)
	require.Equal(t, domain.BoundsUnset, got.Bounds.Shape())
}

func TestNotificationRepo_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := repository.NewNotificationRepo(tcPool)
	viewer := domain.Viewer{ID: "it-admin", Role: domain.RoleAdmin}
	other := domain.Viewer{ID: "it-admin", Role: domain.RoleSeller}

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"n1", "n2"} {
		require.NoError(t, repo.PersistNotification(ctx, viewer, domain.Notification{
			ID: id, Type: domain.NotificationOrderCreated, Title: "New order",
			Timestamp: base.Add(time.Duration(i) * time.Minute), OrderID: "o-" + id,
		}))
	}
	require.NoError(t, repo.PersistNotification(ctx, viewer, domain.Notification{
		ID: "n1", Type: domain.NotificationOrderCreated, Title: "dup", Timestamp: base,
	}), "duplicate insert is a no-op")

	list, err := repo.FetchNotifications(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "n2", list[0].ID, "newest first")
	require.Equal(t, "New order", list[1].Title)

	others, err := repo.FetchNotifications(ctx, other)
	require.NoError(t, err)
	require.Empty(t, others, "keyed by role and id")

	require.NoError(t, repo.PersistMarkAsRead(ctx, viewer, "n1"))
	require.ErrorIs(t, repo.PersistMarkAsRead(ctx, viewer, "absent"), apperr.ErrNotFound)
	require.NoError(t, repo.PersistMarkAllAsRead(ctx, viewer))

	list, err = repo.FetchNotifications(ctx, viewer)
	require.NoError(t, err)
	for _, n := range list {
		require.True(t, n.Read)
	}

	require.NoError(t, repo.PersistClearAll(ctx, viewer))
	list, err = repo.FetchNotifications(ctx, viewer)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestNotificationRepo_Counts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := repository.NewBackend(tcPool)

	seedShipment(t, "it-count-1", "new", "it-count-seller", time.Now())
	seedShipment(t, "it-count-2", "delivered", "it-count-seller", time.Now())
	seedShipment(t, "it-count-3", "new", "it-count-seller", time.Now().Add(-72*time.Hour))

	newCount, err := backend.FetchNewOrdersCount(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, newCount, 2)

	today, err := backend.FetchTodayOrdersCount(ctx, domain.Viewer{ID: "it-count-seller", Role: domain.RoleSeller})
	require.NoError(t, err)
	require.Equal(t, 2, today)

	today, err = backend.FetchTodayOrdersCount(ctx, domain.Viewer{ID: "it-nobody", Role: domain.RoleAgent})
	require.NoError(t, err)
	require.Zero(t, today)
}
