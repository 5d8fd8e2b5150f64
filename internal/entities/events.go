package entities

import "time"

// OrderEvent is a lifecycle record published to the downstream
// order-events feed. It is not the user notification path.
type OrderEvent struct {
	Type        string      `json:"type"`
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Status      OrderStatus `json:"status"`
	At          time.Time   `json:"at"`
}

const (
	OrderEventCreated       = "order_created"
	OrderEventStatusChanged = "order_status_changed"
	OrderEventAssigned      = "order_assigned"
)
