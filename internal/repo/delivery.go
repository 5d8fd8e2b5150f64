package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type deliveryRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewDeliveryRepo(db *sqlx.DB) *deliveryRepo {
	return &deliveryRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *deliveryRepo) SaveDelivery(ctx context.Context, d entities.Delivery) error {
	query, args := r.qb.Insert("deliveries").
		Columns("id", "order_id", "partner_id", "fee", "assigned_at").
		Values(d.ID, d.OrderID, d.PartnerID, d.Fee, d.AssignedAt).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}
	return nil
}

func (r *deliveryRepo) GetDeliveryByOrderID(ctx context.Context, orderID string) (entities.Delivery, error) {
	query, args := r.qb.Select("id", "order_id", "partner_id", "fee", "assigned_at", "pickup_time", "delivery_time").
		From("deliveries").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var d Delivery
	err := r.getContext(ctx, &d, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Delivery{}, entities.ErrDeliveryNotFound
	}
	if err != nil {
		return entities.Delivery{}, fmt.Errorf("failed to get delivery: %w", err)
	}
	return DeliveryToEntity(d), nil
}

// SetPickupTime records the pickup moment. The column is written only
// once; a second transition attempt keeps the original value.
func (r *deliveryRepo) SetPickupTime(ctx context.Context, orderID string, t time.Time) error {
	query, args := r.qb.Update("deliveries").
		Set("pickup_time", t).
		Where(sq.Eq{"order_id": orderID}).
		Where("pickup_time IS NULL").
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set pickup time: %w", err)
	}
	return nil
}

func (r *deliveryRepo) SetDeliveryTime(ctx context.Context, orderID string, t time.Time) error {
	query, args := r.qb.Update("deliveries").
		Set("delivery_time", t).
		Where(sq.Eq{"order_id": orderID}).
		Where("delivery_time IS NULL").
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set delivery time: %w", err)
	}
	return nil
}

func (r *deliveryRepo) ListByPartner(ctx context.Context, partnerID string) ([]entities.PartnerDelivery, error) {
	query, args := r.qb.Select("id", "order_id", "partner_id", "fee", "assigned_at", "pickup_time", "delivery_time").
		From("deliveries").
		Where(sq.Eq{"partner_id": partnerID}).
		OrderBy("assigned_at DESC").
		MustSql()

	var deliveries []Delivery
	if err := r.selectContext(ctx, &deliveries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select deliveries: %w", err)
	}
	if len(deliveries) == 0 {
		return []entities.PartnerDelivery{}, nil
	}

	orderIDs := make([]string, len(deliveries))
	for i, d := range deliveries {
		orderIDs[i] = d.OrderID
	}

	query, args = r.qb.Select(
		"id", "order_number", "customer_id", "shop_id", "address_id",
		"subtotal", "delivery_fee", "tax", "discount", "total",
		"payment_method", "payment_status", "status", "created_at").
		From("orders").
		Where(sq.Eq{"id": orderIDs}).
		MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select delivery orders: %w", err)
	}

	query, args = r.qb.Select("order_id", "product_id", "name", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select delivery order items: %w", err)
	}
	itemsMap := make(map[string][]OrderItem, len(orderIDs))
	for _, it := range items {
		itemsMap[it.OrderID] = append(itemsMap[it.OrderID], it)
	}

	orderMap := make(map[string]entities.Order, len(orders))
	for _, o := range orders {
		orderMap[o.ID] = OrderToEntity(o, itemsMap[o.ID])
	}

	result := make([]entities.PartnerDelivery, 0, len(deliveries))
	for _, d := range deliveries {
		result = append(result, entities.PartnerDelivery{
			Delivery: DeliveryToEntity(d),
			Order:    orderMap[d.OrderID],
		})
	}
	return result, nil
}

func (r *deliveryRepo) GetPartnerByID(ctx context.Context, partnerID string) (entities.DeliveryPartner, error) {
	return r.getPartner(ctx, sq.Eq{"id": partnerID})
}

func (r *deliveryRepo) GetPartnerByUserID(ctx context.Context, userID string) (entities.DeliveryPartner, error) {
	return r.getPartner(ctx, sq.Eq{"user_id": userID})
}

func (r *deliveryRepo) getPartner(ctx context.Context, where sq.Eq) (entities.DeliveryPartner, error) {
	query, args := r.qb.Select("id", "user_id", "vehicle", "city", "is_verified", "is_online", "created_at").
		From("delivery_partners").
		Where(where).
		MustSql()

	var p DeliveryPartner
	err := r.getContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.DeliveryPartner{}, entities.ErrPartnerNotFound
	}
	if err != nil {
		return entities.DeliveryPartner{}, fmt.Errorf("failed to get delivery partner: %w", err)
	}
	return PartnerToEntity(p), nil
}

func (r *deliveryRepo) SetPartnerOnline(ctx context.Context, partnerID string, online bool) error {
	query, args := r.qb.Update("delivery_partners").
		Set("is_online", online).
		Where(sq.Eq{"id": partnerID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set partner online flag: %w", err)
	}
	return requireRow(res, entities.ErrPartnerNotFound)
}

func (r *deliveryRepo) SetPartnerVerified(ctx context.Context, partnerID string, verified bool) error {
	query, args := r.qb.Update("delivery_partners").
		Set("is_verified", verified).
		Where(sq.Eq{"id": partnerID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set partner verified flag: %w", err)
	}
	return requireRow(res, entities.ErrPartnerNotFound)
}

func (r *deliveryRepo) ListPartners(ctx context.Context, q entities.PartnerQuery) ([]entities.DeliveryPartner, error) {
	builder := r.qb.Select("id", "user_id", "vehicle", "city", "is_verified", "is_online", "created_at").
		From("delivery_partners").
		OrderBy("created_at DESC")

	if q.City != "" {
		builder = builder.Where(sq.Eq{"city": q.City})
	}
	if q.Verified != nil {
		builder = builder.Where(sq.Eq{"is_verified": *q.Verified})
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit).Offset(q.Offset)
	}

	query, args := builder.MustSql()

	var partners []DeliveryPartner
	if err := r.selectContext(ctx, &partners, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select partners: %w", err)
	}

	result := make([]entities.DeliveryPartner, 0, len(partners))
	for _, p := range partners {
		result = append(result, PartnerToEntity(p))
	}
	return result, nil
}

func (r *deliveryRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *deliveryRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *deliveryRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
