package entities

import "time"

// Delivery links an order to the partner fulfilling it. The order's own
// status field stays the single source of truth for fulfillment state;
// this record only carries timing and attribution.
type Delivery struct {
	ID           string
	OrderID      string
	PartnerID    string
	Fee          int64
	AssignedAt   time.Time
	PickupTime   *time.Time
	DeliveryTime *time.Time
}

// PartnerDelivery is a delivery with its order loaded, as returned to a
// partner listing their work.
type PartnerDelivery struct {
	Delivery Delivery
	Order    Order
}

type DeliveryPartner struct {
	ID         string
	UserID     string
	Vehicle    string
	City       string
	IsVerified bool
	IsOnline   bool
	CreatedAt  time.Time
}

// DeliveryFilter scopes a partner's delivery listing.
type DeliveryFilter string

const (
	DeliveryFilterNone    DeliveryFilter = ""
	DeliveryFilterActive  DeliveryFilter = "active"
	DeliveryFilterHistory DeliveryFilter = "history"
)

// activeStatuses are the order statuses a partner is still working.
var activeStatuses = map[OrderStatus]bool{
	StatusAssigned:        true,
	StatusEnRouteToPickup: true,
	StatusPickedUp:        true,
	StatusOutForDelivery:  true,
}

// historyStatuses are the order statuses of finished deliveries.
var historyStatuses = map[OrderStatus]bool{
	StatusDelivered: true,
	StatusCancelled: true,
}

// Matches reports whether an order status falls inside the filter.
func (f DeliveryFilter) Matches(s OrderStatus) bool {
	switch f {
	case DeliveryFilterActive:
		return activeStatuses[s]
	case DeliveryFilterHistory:
		return historyStatuses[s]
	}
	return true
}
