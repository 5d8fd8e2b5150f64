package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avolkov/marketplace-order-service/internal/auth"
	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/pkg/trm"

	"github.com/google/uuid"
)

// orderStatusUpdater is the slice of the order service the delivery
// side reuses for partner-driven transitions.
type orderStatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID string, newStatus entities.OrderStatus, id auth.Identity) (entities.Order, error)
}

type ListPartnersInput struct {
	City     string
	Verified *bool
	Page     uint64
	Limit    uint64
}

type DeliveryService struct {
	logger     *slog.Logger
	txManager  trm.Manager
	orders     OrderRepo
	deliveries DeliveryRepo
	shops      ShopRepo
	orderSvc   orderStatusUpdater
	dispatcher Dispatcher
	publisher  Publisher
	now        func() time.Time
}

func NewDeliveryService(
	logger *slog.Logger,
	txManager trm.Manager,
	orders OrderRepo,
	deliveries DeliveryRepo,
	shops ShopRepo,
	orderSvc orderStatusUpdater,
	dispatcher Dispatcher,
	publisher Publisher,
) *DeliveryService {
	return &DeliveryService{
		logger:     logger.With(slog.String("service", "delivery")),
		txManager:  txManager,
		orders:     orders,
		deliveries: deliveries,
		shops:      shops,
		orderSvc:   orderSvc,
		dispatcher: dispatcher,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Assign links a verified partner to an order and moves it to ASSIGNED.
// The Delivery record and the status change commit in one transaction;
// the partner, customer and vendor are notified afterwards.
func (s *DeliveryService) Assign(ctx context.Context, orderID, partnerID string, id auth.Identity) (entities.Delivery, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return entities.Delivery{}, err
	}

	shop, err := s.shops.GetShopByID(ctx, order.ShopID)
	if err != nil {
		return entities.Delivery{}, err
	}
	if id.Role == entities.RoleVendor && shop.OwnerID != id.UserID {
		return entities.Delivery{}, entities.ErrForbidden
	}

	partner, err := s.deliveries.GetPartnerByID(ctx, partnerID)
	if err != nil {
		return entities.Delivery{}, err
	}
	if !partner.IsVerified {
		return entities.Delivery{}, entities.ErrPartnerNotVerified
	}

	if !entities.CanTransition(order.Status, entities.StatusAssigned) {
		return entities.Delivery{}, fmt.Errorf("%w: %s -> %s",
			entities.ErrInvalidTransition, order.Status, entities.StatusAssigned)
	}

	now := s.now()
	delivery := entities.Delivery{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		PartnerID:  partner.ID,
		Fee:        order.DeliveryFee,
		AssignedAt: now,
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.deliveries.SaveDelivery(ctx, delivery); err != nil {
			return err
		}
		return s.orders.UpdateStatus(ctx, order.ID, entities.StatusAssigned)
	})
	if err != nil {
		return entities.Delivery{}, fmt.Errorf("failed to assign order: %w", err)
	}

	order.Status = entities.StatusAssigned

	s.logger.InfoContext(ctx, "order assigned",
		slog.String("order_id", order.ID), slog.String("partner_id", partner.ID))

	s.notify(ctx,
		newDeliveryNotification(partner.UserID, order),
		customerUpdateNotification(order),
		vendorUpdateNotification(shop.OwnerID, order),
	)
	s.publish(ctx, entities.OrderEvent{
		Type:        entities.OrderEventAssigned,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		At:          now,
	})

	return delivery, nil
}

// UpdateDeliveryStatus is the partner-facing wrapper over the order
// transition: the assigned-partner check lives in the order service's
// authorization step.
func (s *DeliveryService) UpdateDeliveryStatus(ctx context.Context, orderID string, newStatus entities.OrderStatus, id auth.Identity) (entities.Order, error) {
	return s.orderSvc.UpdateStatus(ctx, orderID, newStatus, id)
}

// ListMyDeliveries returns the partner's deliveries with their orders,
// filtered to active or finished work.
func (s *DeliveryService) ListMyDeliveries(ctx context.Context, userID string, filter entities.DeliveryFilter) ([]entities.PartnerDelivery, error) {
	partner, err := s.deliveries.GetPartnerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.deliveries.ListByPartner(ctx, partner.ID)
	if err != nil {
		return nil, err
	}

	result := make([]entities.PartnerDelivery, 0, len(all))
	for _, d := range all {
		if filter.Matches(d.Order.Status) {
			result = append(result, d)
		}
	}
	return result, nil
}

func (s *DeliveryService) ToggleOnline(ctx context.Context, userID string, online bool) (entities.DeliveryPartner, error) {
	partner, err := s.deliveries.GetPartnerByUserID(ctx, userID)
	if err != nil {
		return entities.DeliveryPartner{}, err
	}
	if err := s.deliveries.SetPartnerOnline(ctx, partner.ID, online); err != nil {
		return entities.DeliveryPartner{}, err
	}
	partner.IsOnline = online
	return partner, nil
}

func (s *DeliveryService) ListPartners(ctx context.Context, in ListPartnersInput) ([]entities.DeliveryPartner, error) {
	q := entities.PartnerQuery{
		City:     in.City,
		Verified: in.Verified,
	}
	q.Limit, q.Offset = pageWindow(in.Page, in.Limit)
	return s.deliveries.ListPartners(ctx, q)
}

func (s *DeliveryService) VerifyPartner(ctx context.Context, partnerID string, verified bool) error {
	if err := s.deliveries.SetPartnerVerified(ctx, partnerID, verified); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "partner verification updated",
		slog.String("partner_id", partnerID), slog.Bool("verified", verified))
	return nil
}

func (s *DeliveryService) notify(ctx context.Context, notifications ...Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "notification dispatch panicked", slog.Any("panic", r))
		}
	}()
	for _, n := range notifications {
		s.dispatcher.EmitToUser(n.UserID, n.Event, n.Payload)
	}
}

func (s *DeliveryService) publish(ctx context.Context, ev entities.OrderEvent) {
	if err := s.publisher.PublishOrderEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order event",
			slog.String("order_id", ev.OrderID), slog.Any("error", err))
	}
}
