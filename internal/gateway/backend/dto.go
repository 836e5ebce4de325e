package backend

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shipment-console/internal/domain"
)

type shipmentDTO struct {
	ID           string          `json:"id"`
	OrderNumber  string          `json:"order_number"`
	Status       string          `json:"status"`
	SellerID     string          `json:"seller_id"`
	AgentID      string          `json:"agent_id,omitempty"`
	Price        decimal.Decimal `json:"price"`
	DeliveryCost decimal.Decimal `json:"delivery_cost"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (d shipmentDTO) toDomain() (domain.Shipment, error) {
	st, err := domain.ParseShipmentStatus(d.Status)
	if err != nil {
		return domain.Shipment{}, err
	}
	return domain.Shipment{
		ID:           strings.TrimSpace(d.ID),
		OrderNumber:  d.OrderNumber,
		Status:       st,
		SellerID:     d.SellerID,
		AgentID:      d.AgentID,
		Price:        d.Price,
		DeliveryCost: d.DeliveryCost,
		CreatedAt:    d.CreatedAt,
	}, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

type assignRequest struct {
	AgentID string `json:"agent_id"`
}

type windowDTO struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

func windowToDTO(w domain.DeactivationWindow) windowDTO {
	return windowDTO{From: w.Bounds.FromPtr(), To: w.Bounds.ToPtr()}
}

func (d windowDTO) toDomain(kind domain.EntityKind, id string) domain.DeactivationWindow {
	return domain.DeactivationWindow{EntityKind: kind, EntityID: id, Bounds: domain.NewBounds(d.From, d.To)}
}

type notificationDTO struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	Timestamp   time.Time `json:"timestamp"`
	OrderID     string    `json:"order_id,omitempty"`
	OrderNumber string    `json:"order_number,omitempty"`
	OldStatus   string    `json:"old_status,omitempty"`
	NewStatus   string    `json:"new_status,omitempty"`
}

func notificationToDTO(n domain.Notification) notificationDTO {
	return notificationDTO{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Read:        n.Read,
		Timestamp:   n.Timestamp,
		OrderID:     n.OrderID,
		OrderNumber: n.OrderNumber,
		OldStatus:   string(n.OldStatus),
		NewStatus:   string(n.NewStatus),
	}
}

func (d notificationDTO) toDomain() domain.Notification {
	return domain.Notification{
		ID:          d.ID,
		Type:        domain.NotificationType(d.Type),
		Title:       d.Title,
		Message:     d.Message,
		Read:        d.Read,
		Timestamp:   d.Timestamp,
		OrderID:     d.OrderID,
		OrderNumber: d.OrderNumber,
		OldStatus:   domain.ShipmentStatus(d.OldStatus),
		NewStatus:   domain.ShipmentStatus(d.NewStatus),
	}
}

type countDTO struct {
	Count int `json:"count"`
}
