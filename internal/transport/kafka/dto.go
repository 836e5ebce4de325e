package kafka

import (
	"strings"
	"time"

	"shipment-console/internal/domain"
)

// EventDTO is the wire form of domain.Event.
type EventDTO struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	OrderID         string    `json:"order_id"`
	OrderNumber     string    `json:"order_number,omitempty"`
	SellerID        string    `json:"seller_id,omitempty"`
	AssignedAgentID string    `json:"assigned_agent_id,omitempty"`
	OldStatus       string    `json:"old_status,omitempty"`
	NewStatus       string    `json:"new_status,omitempty"`
	ActorRole       string    `json:"actor_role,omitempty"`
	Origin          string    `json:"origin,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// ToDomain converts EventDTO to domain.Event, trimming identifiers.
func ToDomain(dto EventDTO) domain.Event {
	return domain.Event{
		ID:              strings.TrimSpace(dto.ID),
		Type:            domain.NotificationType(strings.TrimSpace(dto.Type)),
		OrderID:         strings.TrimSpace(dto.OrderID),
		OrderNumber:     strings.TrimSpace(dto.OrderNumber),
		SellerID:        strings.TrimSpace(dto.SellerID),
		AssignedAgentID: strings.TrimSpace(dto.AssignedAgentID),
		OldStatus:       domain.ShipmentStatus(strings.TrimSpace(dto.OldStatus)),
		NewStatus:       domain.ShipmentStatus(strings.TrimSpace(dto.NewStatus)),
		ActorRole:       domain.Role(strings.TrimSpace(dto.ActorRole)),
		Origin:          strings.TrimSpace(dto.Origin),
		OccurredAt:      dto.OccurredAt,
	}
}

// FromDomain converts domain.Event to its wire form.
func FromDomain(ev domain.Event) EventDTO {
	return EventDTO{
		ID:              ev.ID,
		Type:            string(ev.Type),
		OrderID:         ev.OrderID,
		OrderNumber:     ev.OrderNumber,
		SellerID:        ev.SellerID,
		AssignedAgentID: ev.AssignedAgentID,
		OldStatus:       string(ev.OldStatus),
		NewStatus:       string(ev.NewStatus),
		ActorRole:       string(ev.ActorRole),
		Origin:          ev.Origin,
		OccurredAt:      ev.OccurredAt,
	}
}
