package service

import (
	"fmt"
	"time"

	"github.com/avolkov/marketplace-order-service/internal/entities"
)

// Event names pushed over the live channel.
const (
	EventNewOrder    = "new_order"
	EventOrderUpdate = "order_update"
	EventNewDelivery = "new_delivery"
)

// Notification is one pending push: who gets which event with what
// payload. Mutations build the full list first and dispatch only after
// persistence has committed, so the transition core stays testable
// without a live channel.
type Notification struct {
	UserID  string
	Event   string
	Payload any
}

type NewOrderPayload struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Message     string    `json:"message"`
	Order       OrderView `json:"order"`
}

type OrderUpdatePayload struct {
	OrderID string               `json:"orderId"`
	Status  entities.OrderStatus `json:"status"`
	Message string               `json:"message"`
}

type NewDeliveryPayload struct {
	OrderID string    `json:"orderId"`
	Message string    `json:"message"`
	Order   OrderView `json:"order"`
}

// OrderView is the JSON shape of an order inside event payloads.
type OrderView struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	CustomerID    string          `json:"customerId"`
	ShopID        string          `json:"shopId"`
	AddressID     string          `json:"addressId"`
	Items         []OrderItemView `json:"items"`
	Subtotal      int64           `json:"subtotal"`
	DeliveryFee   int64           `json:"deliveryFee"`
	Tax           int64           `json:"tax"`
	Discount      int64           `json:"discount"`
	Total         int64           `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderItemView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

func NewOrderView(o entities.Order) OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return OrderView{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		ShopID:        o.ShopID,
		AddressID:     o.AddressID,
		Items:         items,
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Tax:           o.Tax,
		Discount:      o.Discount,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}

func newOrderNotification(ownerID string, o entities.Order) Notification {
	return Notification{
		UserID: ownerID,
		Event:  EventNewOrder,
		Payload: NewOrderPayload{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			Message:     fmt.Sprintf("New order %s received", o.OrderNumber),
			Order:       NewOrderView(o),
		},
	}
}

func customerUpdateNotification(o entities.Order) Notification {
	return Notification{
		UserID: o.CustomerID,
		Event:  EventOrderUpdate,
		Payload: OrderUpdatePayload{
			OrderID: o.ID,
			Status:  o.Status,
			Message: fmt.Sprintf("Your order is now %s", o.Status),
		},
	}
}

func vendorUpdateNotification(ownerID string, o entities.Order) Notification {
	return Notification{
		UserID: ownerID,
		Event:  EventOrderUpdate,
		Payload: OrderUpdatePayload{
			OrderID: o.ID,
			Status:  o.Status,
			Message: fmt.Sprintf("Order %s is now %s", o.OrderNumber, o.Status),
		},
	}
}

func newDeliveryNotification(partnerUserID string, o entities.Order) Notification {
	return Notification{
		UserID: partnerUserID,
		Event:  EventNewDelivery,
		Payload: NewDeliveryPayload{
			OrderID: o.ID,
			Message: fmt.Sprintf("You have been assigned order %s", o.OrderNumber),
			Order:   NewOrderView(o),
		},
	}
}
