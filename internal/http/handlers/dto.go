package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"shipment-console/internal/domain"
)

type shipmentDTO struct {
	ID           string                `json:"id"`
	OrderNumber  string                `json:"order_number,omitempty"`
	Status       domain.ShipmentStatus `json:"status"`
	SellerID     string                `json:"seller_id,omitempty"`
	AgentID      string                `json:"agent_id,omitempty"`
	Price        decimal.Decimal       `json:"price"`
	DeliveryCost decimal.Decimal       `json:"delivery_cost"`
	Total        decimal.Decimal       `json:"total"`
	CreatedAt    *time.Time            `json:"created_at,omitempty"`
}

func toShipmentDTO(s domain.Shipment) shipmentDTO {
	dto := shipmentDTO{
		ID:           s.ID,
		OrderNumber:  s.OrderNumber,
		Status:       s.Status,
		SellerID:     s.SellerID,
		AgentID:      s.AgentID,
		Price:        s.Price,
		DeliveryCost: s.DeliveryCost,
		Total:        s.Total(),
	}
	if !s.CreatedAt.IsZero() {
		at := s.CreatedAt
		dto.CreatedAt = &at
	}
	return dto
}

type allowedStatusesResponse struct {
	ShipmentID    string                  `json:"shipment_id"`
	CurrentStatus domain.ShipmentStatus   `json:"current_status,omitempty"`
	Allowed       []domain.ShipmentStatus `json:"allowed"`
}

type statusChangeRequest struct {
	Status string `json:"status" validate:"required"`
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids" validate:"max=500,unique"`
	Status string   `json:"status" validate:"required"`
}

type bulkFailureDTO struct {
	ID      string `json:"id"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type bulkResultDTO struct {
	Succeeded []string         `json:"succeeded"`
	Failed    []bulkFailureDTO `json:"failed"`
}

func toBulkResultDTO(res domain.BulkResult) bulkResultDTO {
	out := bulkResultDTO{
		Succeeded: append([]string{}, res.Succeeded...),
		Failed:    make([]bulkFailureDTO, 0, len(res.Failed)),
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, bulkFailureDTO{ID: f.ID, Reason: f.Reason, Message: f.Message})
	}
	return out
}

type assignRequest struct {
	AgentID string `json:"agent_id" validate:"required"`
}

type scheduleRequest struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to"`
}

type windowDTO struct {
	EntityKind domain.EntityKind        `json:"entity_kind"`
	EntityID   string                   `json:"entity_id"`
	Shape      string                   `json:"shape"`
	From       *time.Time               `json:"from,omitempty"`
	To         *time.Time               `json:"to,omitempty"`
	State      domain.DeactivationState `json:"state"`
}

func toWindowDTO(w domain.DeactivationWindow, st domain.DeactivationState) windowDTO {
	return windowDTO{
		EntityKind: w.EntityKind,
		EntityID:   w.EntityID,
		Shape:      w.Bounds.Shape().String(),
		From:       w.Bounds.FromPtr(),
		To:         w.Bounds.ToPtr(),
		State:      st,
	}
}

type notificationDTO struct {
	ID          string                  `json:"id"`
	Type        domain.NotificationType `json:"type"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	Read        bool                    `json:"read"`
	Timestamp   time.Time               `json:"timestamp"`
	OrderID     string                  `json:"order_id,omitempty"`
	OrderNumber string                  `json:"order_number,omitempty"`
	OldStatus   domain.ShipmentStatus   `json:"old_status,omitempty"`
	NewStatus   domain.ShipmentStatus   `json:"new_status,omitempty"`
}

type countersDTO struct {
	Unread      int `json:"unread_count"`
	NewOrders   int `json:"new_orders_count"`
	TodayOrders int `json:"today_orders_count"`
}

type snapshotResponse struct {
	Counters      countersDTO       `json:"counters"`
	Notifications []notificationDTO `json:"notifications"`
	Warning       string            `json:"warning,omitempty"`
}

func toSnapshot(c domain.NotificationCounters, list []domain.Notification) snapshotResponse {
	out := snapshotResponse{
		Counters: countersDTO{
			Unread:      c.UnreadCount,
			NewOrders:   c.NewOrdersCount,
			TodayOrders: c.TodayOrdersCount,
		},
		Notifications: make([]notificationDTO, 0, len(list)),
	}
	for _, n := range list {
		out.Notifications = append(out.Notifications, notificationDTO{
			ID:          n.ID,
			Type:        n.Type,
			Title:       n.Title,
			Message:     n.Message,
			Read:        n.Read,
			Timestamp:   n.Timestamp,
			OrderID:     n.OrderID,
			OrderNumber: n.OrderNumber,
			OldStatus:   n.OldStatus,
			NewStatus:   n.NewStatus,
		})
	}
	return out
}

type eventRequest struct {
	ID              string     `json:"id"`
	Type            string     `json:"type" validate:"required"`
	OrderID         string     `json:"order_id" validate:"required"`
	OrderNumber     string     `json:"order_number"`
	SellerID        string     `json:"seller_id"`
	AssignedAgentID string     `json:"assigned_agent_id"`
	OldStatus       string     `json:"old_status"`
	NewStatus       string     `json:"new_status"`
	OccurredAt      *time.Time `json:"occurred_at"`
}

type warningResponse struct {
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}
