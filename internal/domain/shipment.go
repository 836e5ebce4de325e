package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipment is a single order tracked through the lifecycle. The backend owns it.
type Shipment struct {
	ID           string
	OrderNumber  string
	Status       ShipmentStatus
	SellerID     string
	AgentID      string
	Price        decimal.Decimal
	DeliveryCost decimal.Decimal
	CreatedAt    time.Time
}

// Total is the amount collected on delivery.
func (s Shipment) Total() decimal.Decimal {
	return s.Price.Add(s.DeliveryCost)
}

// Bulk failure reasons
const (
	ReasonSameStatus   = "same-status"
	ReasonNotPermitted = "not-permitted"
	ReasonNotFound     = "not-found"
	ReasonTransport    = "transport"
	ReasonInvalidID    = "invalid-id"
)

// BulkFailure describes a single item that was not transitioned.
type BulkFailure struct {
	ID      string
	Reason  string
	Message string
}

// BulkResult aggregates per-item outcomes of a bulk transition.
type BulkResult struct {
	Succeeded []string
	Failed    []BulkFailure
}
