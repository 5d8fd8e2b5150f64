package handler

import (
	"time"

	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/internal/service"
)

type CreateOrderRequest struct {
	ShopID            string                   `json:"shopId" validate:"required"`
	DeliveryAddressID string                   `json:"deliveryAddressId" validate:"required"`
	PaymentMethod     string                   `json:"paymentMethod" validate:"required,oneof=ONLINE COD WALLET"`
	Items             []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED PREPARING READY EN_ROUTE_TO_PICKUP PICKED_UP OUT_FOR_DELIVERY DELIVERED CANCELLED REJECTED"`
}

type AssignRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PartnerID string `json:"partnerId" validate:"required"`
}

type ToggleOnlineRequest struct {
	IsOnline *bool `json:"isOnline" validate:"required"`
}

type VerifyPartnerRequest struct {
	IsVerified *bool `json:"isVerified" validate:"required"`
}

// DeliveryView is the JSON shape of a delivery record.
type DeliveryView struct {
	ID           string     `json:"id"`
	OrderID      string     `json:"orderId"`
	PartnerID    string     `json:"partnerId"`
	Fee          int64      `json:"fee"`
	AssignedAt   time.Time  `json:"assignedAt"`
	PickupTime   *time.Time `json:"pickupTime,omitempty"`
	DeliveryTime *time.Time `json:"deliveryTime,omitempty"`
}

type PartnerView struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	Vehicle    string `json:"vehicle"`
	City       string `json:"city"`
	IsVerified bool   `json:"isVerified"`
	IsOnline   bool   `json:"isOnline"`
}

type PartnerDeliveryView struct {
	Delivery DeliveryView      `json:"delivery"`
	Order    service.OrderView `json:"order"`
}

func DeliveryEntityToJSON(d entities.Delivery) DeliveryView {
	return DeliveryView{
		ID:           d.ID,
		OrderID:      d.OrderID,
		PartnerID:    d.PartnerID,
		Fee:          d.Fee,
		AssignedAt:   d.AssignedAt,
		PickupTime:   d.PickupTime,
		DeliveryTime: d.DeliveryTime,
	}
}

func PartnerEntityToJSON(p entities.DeliveryPartner) PartnerView {
	return PartnerView{
		ID:         p.ID,
		UserID:     p.UserID,
		Vehicle:    p.Vehicle,
		City:       p.City,
		IsVerified: p.IsVerified,
		IsOnline:   p.IsOnline,
	}
}

func PartnerDeliveryEntityToJSON(d entities.PartnerDelivery) PartnerDeliveryView {
	return PartnerDeliveryView{
		Delivery: DeliveryEntityToJSON(d.Delivery),
		Order:    service.NewOrderView(d.Order),
	}
}
