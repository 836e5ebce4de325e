package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
)

func TestShipmentHandler_AllowedStatuses(t *testing.T) {
	t.Parallel()

	uc := &shipmentUCStub{
		allowedFn: func(_ context.Context, actor domain.Viewer, id string) (domain.Shipment, []domain.ShipmentStatus, error) {
			require.Equal(t, agent, actor)
			require.Equal(t, "s-1", id)
			return domain.Shipment{ID: id, Status: domain.StatusInWarehouse},
				[]domain.ShipmentStatus{domain.StatusDelivered, domain.StatusReturned}, nil
		},
	}
	h := NewShipmentHandler(uc, nil)

	rr := serve(t, http.MethodGet, "/shipments/{id}/allowed-statuses", "/shipments/s-1/allowed-statuses", "", &agent, h.AllowedStatuses)
	require.Equal(t, http.StatusOK, rr.Code)

	var body allowedStatusesResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, "s-1", body.ShipmentID)
	require.Equal(t, domain.StatusInWarehouse, body.CurrentStatus)
	require.Equal(t, []domain.ShipmentStatus{domain.StatusDelivered, domain.StatusReturned}, body.Allowed)
}

func TestShipmentHandler_RequiresViewer(t *testing.T) {
	t.Parallel()

	h := NewShipmentHandler(&shipmentUCStub{}, nil)
	rr := serve(t, http.MethodPost, "/shipments/{id}/status", "/shipments/s-1/status", `{"status":"delivered"}`, nil, h.ChangeStatus)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestShipmentHandler_ChangeStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantReason string
	}{
		{name: "ok", body: `{"status":"delivered"}`, wantStatus: http.StatusOK},
		{
			name:       "unknown status",
			body:       `{"status":"teleported"}`,
			err:        apperr.Validation(`unknown shipment status "teleported"`),
			wantStatus: http.StatusBadRequest,
		},
		{name: "missing status", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"status":"delivered","x":1}`, wantStatus: http.StatusBadRequest},
		{name: "trailing data", body: `{"status":"delivered"}{}`, wantStatus: http.StatusBadRequest},
		{
			name:       "same status",
			body:       `{"status":"delivered"}`,
			err:        apperr.Validation("select a different status").WithReason(domain.ReasonSameStatus),
			wantStatus: http.StatusBadRequest,
			wantReason: domain.ReasonSameStatus,
		},
		{
			name:       "not permitted",
			body:       `{"status":"delivered"}`,
			err:        apperr.Permission("nope").WithReason(domain.ReasonNotPermitted),
			wantStatus: http.StatusForbidden,
			wantReason: domain.ReasonNotPermitted,
		},
		{name: "missing shipment", body: `{"status":"delivered"}`, err: apperr.NotFound("shipment s-1 not found"), wantStatus: http.StatusNotFound},
		{name: "backend down", body: `{"status":"delivered"}`, err: apperr.Transport(nil, "fetch shipment"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := &shipmentUCStub{
				changeFn: func(_ context.Context, _ domain.Viewer, id string, target domain.ShipmentStatus) (domain.Shipment, error) {
					if tt.err != nil {
						return domain.Shipment{}, tt.err
					}
					return domain.Shipment{
						ID:           id,
						Status:       target,
						Price:        decimal.RequireFromString("100.50"),
						DeliveryCost: decimal.RequireFromString("20"),
					}, nil
				},
			}
			h := NewShipmentHandler(uc, nil)
			rr := serve(t, http.MethodPost, "/shipments/{id}/status", "/shipments/s-1/status", tt.body, &agent, h.ChangeStatus)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			if tt.wantStatus == http.StatusOK {
				var body shipmentDTO
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				require.Equal(t, domain.StatusDelivered, body.Status)
				require.True(t, decimal.RequireFromString("120.5").Equal(body.Total))
				return
			}
			var body errResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			require.NotEmpty(t, body.Error)
			require.Equal(t, tt.wantReason, body.Reason)
		})
	}
}

func TestShipmentHandler_BulkChangeStatus(t *testing.T) {
	t.Parallel()

	var gotIDs []string
	uc := &shipmentUCStub{
		bulkFn: func(_ context.Context, _ domain.Viewer, ids []string, target domain.ShipmentStatus) (domain.BulkResult, error) {
			gotIDs = ids
			require.Equal(t, domain.StatusReturned, target)
			return domain.BulkResult{
				Succeeded: []string{"a"},
				Failed:    []domain.BulkFailure{{ID: "b", Reason: domain.ReasonSameStatus, Message: "select a different status"}},
			}, nil
		},
	}
	h := NewShipmentHandler(uc, nil)

	rr := serve(t, http.MethodPost, "/shipments/status/bulk", "/shipments/status/bulk", `{"ids":["a","b"],"status":"returned"}`, &admin, h.BulkChangeStatus)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []string{"a", "b"}, gotIDs)

	var body bulkResultDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, []string{"a"}, body.Succeeded)
	require.Len(t, body.Failed, 1)
	require.Equal(t, domain.ReasonSameStatus, body.Failed[0].Reason)
}

func TestShipmentHandler_BulkSellerRejected(t *testing.T) {
	t.Parallel()

	uc := &shipmentUCStub{
		bulkFn: func(context.Context, domain.Viewer, []string, domain.ShipmentStatus) (domain.BulkResult, error) {
			return domain.BulkResult{}, apperr.Permission(`role "seller" cannot change shipment status`)
		},
	}
	h := NewShipmentHandler(uc, nil)

	rr := serve(t, http.MethodPost, "/shipments/status/bulk", "/shipments/status/bulk", `{"ids":["a"],"status":"returned"}`, &seller, h.BulkChangeStatus)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestShipmentHandler_BulkRejectsRepeatedIDs(t *testing.T) {
	t.Parallel()

	uc := &shipmentUCStub{
		bulkFn: func(context.Context, domain.Viewer, []string, domain.ShipmentStatus) (domain.BulkResult, error) {
			t.Error("usecase must not be called")
			return domain.BulkResult{}, nil
		},
	}
	h := NewShipmentHandler(uc, nil)

	rr := serve(t, http.MethodPost, "/shipments/status/bulk", "/shipments/status/bulk", `{"ids":["s1","s1"],"status":"returned"}`, &admin, h.BulkChangeStatus)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body errResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, "ids must not repeat", body.Error)
}

func TestShipmentHandler_Assign(t *testing.T) {
	t.Parallel()

	uc := &shipmentUCStub{
		assignFn: func(_ context.Context, actor domain.Viewer, id, agentID string) (domain.Shipment, error) {
			require.Equal(t, admin, actor)
			return domain.Shipment{ID: id, Status: domain.StatusNew, AgentID: agentID}, nil
		},
	}
	h := NewShipmentHandler(uc, nil)

	rr := serve(t, http.MethodPost, "/shipments/{id}/assign", "/shipments/s-9/assign", `{"agent_id":"a7"}`, &admin, h.Assign)
	require.Equal(t, http.StatusOK, rr.Code)

	var body shipmentDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, "s-9", body.ID)
	require.Equal(t, "a7", body.AgentID)

	rr = serve(t, http.MethodPost, "/shipments/{id}/assign", "/shipments/s-9/assign", `{}`, &admin, h.Assign)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "agent_id is required")
}
