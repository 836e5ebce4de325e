package domain

import (
	"fmt"
	"strings"

	"shipment-console/internal/apperr"
)

// ShipmentStatus is a lifecycle state of a shipment.
type ShipmentStatus string

// List of shipment statuses
const (
	StatusNew                      ShipmentStatus = "new"
	StatusInPickupStage            ShipmentStatus = "in_pickup_stage"
	StatusInWarehouse              ShipmentStatus = "in_warehouse"
	StatusDeliveredToAgent         ShipmentStatus = "delivered_to_agent"
	StatusDelivered                ShipmentStatus = "delivered"
	StatusPostponed                ShipmentStatus = "postponed"
	StatusCustomerUnreachable      ShipmentStatus = "customer_unreachable"
	StatusRejectedNoShippingFees   ShipmentStatus = "rejected_no_shipping_fees"
	StatusRejectedWithShippingFees ShipmentStatus = "rejected_with_shipping_fees"
	StatusCanceledByMerchant       ShipmentStatus = "canceled_by_merchant"
	StatusPartiallyDelivered       ShipmentStatus = "partially_delivered"
	StatusRejectedByUs             ShipmentStatus = "rejected_by_us"
	StatusReturned                 ShipmentStatus = "returned"
)

// allowedShipmentStatuses keeps declaration order
var allowedShipmentStatuses = [...]ShipmentStatus{
	StatusNew,
	StatusInPickupStage,
	StatusInWarehouse,
	StatusDeliveredToAgent,
	StatusDelivered,
	StatusPostponed,
	StatusCustomerUnreachable,
	StatusRejectedNoShippingFees,
	StatusRejectedWithShippingFees,
	StatusCanceledByMerchant,
	StatusPartiallyDelivered,
	StatusRejectedByUs,
	StatusReturned,
}

// Valid checks if the ShipmentStatus is a member of the taxonomy.
func (s ShipmentStatus) Valid() bool {
	for _, v := range allowedShipmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s ShipmentStatus) String() string { return string(s) }

// AllStatuses returns every status in declaration order.
func AllStatuses() []ShipmentStatus {
	out := make([]ShipmentStatus, len(allowedShipmentStatuses))
	copy(out, allowedShipmentStatuses[:])
	return out
}

// ParseShipmentStatus maps a wire value to a status. Unknown values are rejected, never coerced.
func ParseShipmentStatus(raw string) (ShipmentStatus, error) {
	s := ShipmentStatus(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", apperr.Validation(fmt.Sprintf("unknown shipment status %q", raw))
	}
	return s, nil
}
