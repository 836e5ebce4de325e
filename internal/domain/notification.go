package domain

import "time"

// NotificationType is the kind of event a notification reports.
type NotificationType string

// List of notification types
const (
	NotificationOrderCreated  NotificationType = "order_created"
	NotificationOrderAssigned NotificationType = "order_assigned"
	NotificationStatusChanged NotificationType = "status_changed"
)

var allowedNotificationTypes = [...]NotificationType{
	NotificationOrderCreated, NotificationOrderAssigned, NotificationStatusChanged,
}

// Valid checks if the NotificationType is known
func (t NotificationType) Valid() bool {
	for _, v := range allowedNotificationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Notification is an entry in a viewer's notification list.
type Notification struct {
	ID          string
	Type        NotificationType
	Title       string
	Message     string
	Read        bool
	Timestamp   time.Time
	OrderID     string
	OrderNumber string
	OldStatus   ShipmentStatus
	NewStatus   ShipmentStatus
}

// NotificationCounters are the badge counters of a viewer session.
type NotificationCounters struct {
	UnreadCount      int
	NewOrdersCount   int
	TodayOrdersCount int
}

// Event is a shipment domain event relayed between sessions and instances.
type Event struct {
	ID              string
	Type            NotificationType
	OrderID         string
	OrderNumber     string
	SellerID        string
	AssignedAgentID string
	OldStatus       ShipmentStatus
	NewStatus       ShipmentStatus
	ActorRole       Role
	Origin          string
	OccurredAt      time.Time
}
