package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avolkov/marketplace-order-service/internal/auth"
	"github.com/avolkov/marketplace-order-service/internal/config"
	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/pkg/trm"
	"github.com/avolkov/marketplace-order-service/pkg/utils"

	"github.com/google/uuid"
)

type CreateOrderInput struct {
	CustomerID    string
	ShopID        string
	AddressID     string
	PaymentMethod entities.PaymentMethod
	Items         []CreateOrderItem
}

type CreateOrderItem struct {
	ProductID string
	Quantity  int
}

type ListOrdersInput struct {
	Status entities.OrderStatus
	Page   uint64
	Limit  uint64
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 10000
)

type OrderService struct {
	logger     *slog.Logger
	txManager  trm.Manager
	orders     OrderRepo
	deliveries DeliveryRepo
	shops      ShopRepo
	catalog    Catalog
	dispatcher Dispatcher
	publisher  Publisher
	pricing    config.Pricing
	now        func() time.Time
}

func NewOrderService(
	logger *slog.Logger,
	txManager trm.Manager,
	orders OrderRepo,
	deliveries DeliveryRepo,
	shops ShopRepo,
	catalog Catalog,
	dispatcher Dispatcher,
	publisher Publisher,
	pricing config.Pricing,
) *OrderService {
	return &OrderService{
		logger:     logger.With(slog.String("service", "order")),
		txManager:  txManager,
		orders:     orders,
		deliveries: deliveries,
		shops:      shops,
		catalog:    catalog,
		dispatcher: dispatcher,
		publisher:  publisher,
		pricing:    pricing,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates the requested items against the catalog,
// snapshots their prices, computes the totals server-side and persists
// the order in PLACED. The shop owner is notified after the commit.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (entities.Order, error) {
	shop, err := s.shops.GetShopByID(ctx, in.ShopID)
	if err != nil {
		return entities.Order{}, err
	}

	now := s.now()
	var items []entities.OrderItem
	var subtotal int64
	for _, req := range in.Items {
		product, err := s.catalog.GetProduct(ctx, req.ProductID)
		if errors.Is(err, entities.ErrProductNotFound) {
			// Items whose product vanished since the cart was built are
			// skipped, not a hard failure.
			s.logger.DebugContext(ctx, "skipping unknown product", slog.String("product_id", req.ProductID))
			continue
		}
		if err != nil {
			return entities.Order{}, fmt.Errorf("failed to resolve product: %w", err)
		}
		price := product.EffectivePrice()
		items = append(items, entities.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  req.Quantity,
			Price:     price,
		})
		subtotal += price * int64(req.Quantity)
	}
	if len(items) == 0 {
		return entities.Order{}, entities.ErrEmptyOrder
	}

	tax := subtotal * s.pricing.TaxRateBPS / 10000
	var discount int64

	id := uuid.NewString()
	order := entities.Order{
		ID:            id,
		OrderNumber:   orderNumber(now, id),
		CustomerID:    in.CustomerID,
		ShopID:        in.ShopID,
		AddressID:     in.AddressID,
		Items:         items,
		Subtotal:      subtotal,
		DeliveryFee:   s.pricing.DeliveryFee,
		Tax:           tax,
		Discount:      discount,
		Total:         subtotal + s.pricing.DeliveryFee + tax - discount,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: entities.PaymentPending,
		Status:        entities.StatusPlaced,
		CreatedAt:     now,
	}

	err = utils.Retry(saveRetryConfig, func() error {
		return s.txManager.Do(ctx, func(ctx context.Context) error {
			if err := s.orders.SaveOrder(ctx, order); err != nil {
				return err
			}
			return s.orders.SaveItems(ctx, order.ID, order.Items)
		})
	})
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID), slog.String("order_number", order.OrderNumber))

	s.notify(ctx, newOrderNotification(shop.OwnerID, order))
	s.publish(ctx, entities.OrderEvent{
		Type:        entities.OrderEventCreated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		At:          now,
	})

	return order, nil
}

// GetOrder returns an order to its customer, the owning vendor, or any
// ADMIN/DELIVERY caller.
func (s *OrderService) GetOrder(ctx context.Context, orderID string, id auth.Identity) (entities.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}
	if err := s.authorizeRead(ctx, order, id); err != nil {
		return entities.Order{}, err
	}
	return order, nil
}

func (s *OrderService) authorizeRead(ctx context.Context, order entities.Order, id auth.Identity) error {
	switch id.Role {
	case entities.RoleAdmin, entities.RoleDelivery:
		return nil
	case entities.RoleCustomer:
		if order.CustomerID == id.UserID {
			return nil
		}
	case entities.RoleVendor:
		shop, err := s.shops.GetShopByID(ctx, order.ShopID)
		if err != nil {
			return err
		}
		if shop.OwnerID == id.UserID {
			return nil
		}
	}
	return entities.ErrForbidden
}

// ListOrders returns the caller's role-scoped slice of orders, newest
// first. Vendors without a shop get NotFound.
func (s *OrderService) ListOrders(ctx context.Context, in ListOrdersInput, id auth.Identity) ([]entities.Order, error) {
	q := entities.OrderQuery{Status: in.Status}

	switch id.Role {
	case entities.RoleCustomer:
		q.CustomerID = id.UserID
	case entities.RoleVendor:
		shop, err := s.shops.GetShopByOwner(ctx, id.UserID)
		if err != nil {
			return nil, err
		}
		q.ShopID = shop.ID
	case entities.RoleAdmin:
		// unscoped
	default:
		return nil, entities.ErrForbidden
	}

	q.Limit, q.Offset = pageWindow(in.Page, in.Limit)

	return s.orders.ListOrders(ctx, q)
}

// UpdateStatus moves an order along the fulfillment state machine,
// applying the documented side effects, and notifies the customer and
// the vendor once the change is committed.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, newStatus entities.OrderStatus, id auth.Identity) (entities.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Order{}, err
	}

	shop, err := s.shops.GetShopByID(ctx, order.ShopID)
	if err != nil {
		return entities.Order{}, err
	}

	if err := s.authorizeTransition(ctx, order, shop, id); err != nil {
		return entities.Order{}, err
	}

	if !entities.CanTransition(order.Status, newStatus) {
		return entities.Order{}, fmt.Errorf("%w: %s -> %s", entities.ErrInvalidTransition, order.Status, newStatus)
	}
	if newStatus.RequiresAssignment() {
		if _, err := s.deliveries.GetDeliveryByOrderID(ctx, order.ID); err != nil {
			return entities.Order{}, err
		}
	}

	now := s.now()
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.orders.UpdateStatus(ctx, order.ID, newStatus); err != nil {
			return err
		}
		switch newStatus {
		case entities.StatusPickedUp:
			return s.deliveries.SetPickupTime(ctx, order.ID, now)
		case entities.StatusDelivered:
			if err := s.deliveries.SetDeliveryTime(ctx, order.ID, now); err != nil {
				return err
			}
			return s.orders.SetPaymentStatus(ctx, order.ID, entities.PaymentPaid)
		}
		return nil
	})
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = newStatus
	if newStatus == entities.StatusDelivered {
		order.PaymentStatus = entities.PaymentPaid
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID), slog.String("status", string(newStatus)))

	s.notify(ctx, customerUpdateNotification(order), vendorUpdateNotification(shop.OwnerID, order))
	s.publish(ctx, entities.OrderEvent{
		Type:        entities.OrderEventStatusChanged,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      newStatus,
		At:          now,
	})

	return order, nil
}

func (s *OrderService) authorizeTransition(ctx context.Context, order entities.Order, shop entities.Shop, id auth.Identity) error {
	switch id.Role {
	case entities.RoleAdmin:
		return nil
	case entities.RoleVendor:
		if shop.OwnerID != id.UserID {
			return entities.ErrForbidden
		}
		return nil
	case entities.RoleDelivery:
		partner, err := s.deliveries.GetPartnerByUserID(ctx, id.UserID)
		if err != nil {
			return err
		}
		delivery, err := s.deliveries.GetDeliveryByOrderID(ctx, order.ID)
		if err != nil {
			return err
		}
		if delivery.PartnerID != partner.ID {
			return entities.ErrForbidden
		}
		return nil
	}
	return entities.ErrForbidden
}

// notify is fire-and-forget: the persisted state is authoritative no
// matter what happens on the channel layer.
func (s *OrderService) notify(ctx context.Context, notifications ...Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "notification dispatch panicked", slog.Any("panic", r))
		}
	}()
	for _, n := range notifications {
		s.dispatcher.EmitToUser(n.UserID, n.Event, n.Payload)
	}
}

func (s *OrderService) publish(ctx context.Context, ev entities.OrderEvent) {
	if err := s.publisher.PublishOrderEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order event",
			slog.String("order_id", ev.OrderID), slog.Any("error", err))
	}
}

// pageWindow turns 1-based page/limit inputs into a bounded limit and
// offset. Page is capped so the offset cannot wrap.
func pageWindow(page, limit uint64) (uint64, uint64) {
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if page == 0 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	return limit, (page - 1) * limit
}

var saveRetryConfig = utils.RetryConfig{
	InitialDelay: 100 * time.Millisecond,
	MaxAttempts:  5,
	Multiplier:   2,
}

// orderNumber derives a human-readable sequence number from the creation
// time, with an id-derived suffix to keep concurrent orders distinct.
func orderNumber(t time.Time, id string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	return fmt.Sprintf("ORD-%d-%s", t.UnixMilli(), suffix[:6])
}
