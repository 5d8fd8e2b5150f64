package entities

import "time"

type OrderStatus string

const (
	StatusPlaced          OrderStatus = "PLACED"
	StatusAccepted        OrderStatus = "ACCEPTED"
	StatusPreparing       OrderStatus = "PREPARING"
	StatusReady           OrderStatus = "READY"
	StatusAssigned        OrderStatus = "ASSIGNED"
	StatusEnRouteToPickup OrderStatus = "EN_ROUTE_TO_PICKUP"
	StatusPickedUp        OrderStatus = "PICKED_UP"
	StatusOutForDelivery  OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered       OrderStatus = "DELIVERED"
	StatusCancelled       OrderStatus = "CANCELLED"
	StatusRejected        OrderStatus = "REJECTED"
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "ONLINE"
	PaymentCOD    PaymentMethod = "COD"
	PaymentWallet PaymentMethod = "WALLET"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Order is the central entity. All monetary amounts are in paise.
type Order struct {
	ID            string
	OrderNumber   string
	CustomerID    string
	ShopID        string
	AddressID     string
	Items         []OrderItem
	Subtotal      int64
	DeliveryFee   int64
	Tax           int64
	Discount      int64
	Total         int64
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	Status        OrderStatus
	CreatedAt     time.Time
}

// OrderItem carries the price snapshotted at order creation,
// never re-read from the catalog.
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     int64
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok || s.Terminal()
}

func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// transitions holds the forward edge of the fulfillment state machine.
// CANCELLED and REJECTED are reachable from every non-terminal status
// and are therefore not listed per-row.
var transitions = map[OrderStatus]OrderStatus{
	StatusPlaced:          StatusAccepted,
	StatusAccepted:        StatusPreparing,
	StatusPreparing:       StatusReady,
	StatusReady:           StatusAssigned,
	StatusAssigned:        StatusEnRouteToPickup,
	StatusEnRouteToPickup: StatusPickedUp,
	StatusPickedUp:        StatusOutForDelivery,
	StatusOutForDelivery:  StatusDelivered,
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled || to == StatusRejected {
		return true
	}
	return transitions[from] == to
}

// RequiresAssignment reports whether a status is only reachable once a
// delivery partner has been assigned to the order.
func (s OrderStatus) RequiresAssignment() bool {
	switch s {
	case StatusAssigned, StatusEnRouteToPickup, StatusPickedUp, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}
