package service

import (
	"context"
	"time"

	"github.com/avolkov/marketplace-order-service/internal/entities"
)

type OrderRepo interface {
	SaveOrder(ctx context.Context, o entities.Order) error
	SaveItems(ctx context.Context, orderID string, items []entities.OrderItem) error
	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	ListOrders(ctx context.Context, q entities.OrderQuery) ([]entities.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) error
	SetPaymentStatus(ctx context.Context, orderID string, status entities.PaymentStatus) error
}

type DeliveryRepo interface {
	SaveDelivery(ctx context.Context, d entities.Delivery) error
	GetDeliveryByOrderID(ctx context.Context, orderID string) (entities.Delivery, error)
	SetPickupTime(ctx context.Context, orderID string, t time.Time) error
	SetDeliveryTime(ctx context.Context, orderID string, t time.Time) error
	ListByPartner(ctx context.Context, partnerID string) ([]entities.PartnerDelivery, error)

	GetPartnerByID(ctx context.Context, partnerID string) (entities.DeliveryPartner, error)
	GetPartnerByUserID(ctx context.Context, userID string) (entities.DeliveryPartner, error)
	SetPartnerOnline(ctx context.Context, partnerID string, online bool) error
	SetPartnerVerified(ctx context.Context, partnerID string, verified bool) error
	ListPartners(ctx context.Context, q entities.PartnerQuery) ([]entities.DeliveryPartner, error)
}

type ShopRepo interface {
	GetShopByID(ctx context.Context, shopID string) (entities.Shop, error)
	GetShopByOwner(ctx context.Context, ownerID string) (entities.Shop, error)
}

// Catalog resolves product price snapshots at order-creation time.
type Catalog interface {
	GetProduct(ctx context.Context, productID string) (entities.Product, error)
}

// Dispatcher pushes a named event to one user's live channel, if any.
// Best-effort: it never returns and never blocks.
type Dispatcher interface {
	EmitToUser(userID string, event string, payload any)
}

// Publisher writes lifecycle records to the downstream order-events
// feed. Failures are logged by the caller, never surfaced.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, ev entities.OrderEvent) error
}
