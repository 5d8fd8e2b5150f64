package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type orderRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewOrderRepo(db *sqlx.DB) *orderRepo {
	return &orderRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *orderRepo) SaveOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns(
			"id", "order_number", "customer_id", "shop_id", "address_id",
			"subtotal", "delivery_fee", "tax", "discount", "total",
			"payment_method", "payment_status", "status", "created_at",
		).
		Values(
			o.ID, o.OrderNumber, o.CustomerID, o.ShopID, o.AddressID,
			o.Subtotal, o.DeliveryFee, o.Tax, o.Discount, o.Total,
			string(o.PaymentMethod), string(o.PaymentStatus), string(o.Status), o.CreatedAt,
		).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *orderRepo) SaveItems(ctx context.Context, orderID string, items []entities.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_id", "product_id", "name", "quantity", "price")

	for _, it := range items {
		q = q.Values(orderID, it.ProductID, it.Name, it.Quantity, it.Price)
	}

	query, args := q.MustSql()
	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save order items: %w", err)
	}
	return nil
}

func (r *orderRepo) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	query, args := r.qb.Select(
		"id", "order_number", "customer_id", "shop_id", "address_id",
		"subtotal", "delivery_fee", "tax", "discount", "total",
		"payment_method", "payment_status", "status", "created_at").
		From("orders").
		Where(sq.Eq{"id": orderID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select("order_id", "product_id", "name", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order items: %w", err)
	}

	return OrderToEntity(order, items), nil
}

func (r *orderRepo) ListOrders(ctx context.Context, q entities.OrderQuery) ([]entities.Order, error) {
	builder := r.qb.Select(
		"id", "order_number", "customer_id", "shop_id", "address_id",
		"subtotal", "delivery_fee", "tax", "discount", "total",
		"payment_method", "payment_status", "status", "created_at").
		From("orders").
		OrderBy("created_at DESC")

	if q.CustomerID != "" {
		builder = builder.Where(sq.Eq{"customer_id": q.CustomerID})
	}
	if q.ShopID != "" {
		builder = builder.Where(sq.Eq{"shop_id": q.ShopID})
	}
	if q.Status != "" {
		builder = builder.Where(sq.Eq{"status": string(q.Status)})
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit).Offset(q.Offset)
	}

	query, args := builder.MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}

	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	query, args = r.qb.Select("order_id", "product_id", "name", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}
	itemsMap := make(map[string][]OrderItem, len(ids))
	for _, it := range items {
		itemsMap[it.OrderID] = append(itemsMap[it.OrderID], it)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o, itemsMap[o.ID]))
	}
	return result, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus) error {
	query, args := r.qb.Update("orders").
		Set("status", string(status)).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return requireRow(res, entities.ErrOrderNotFound)
}

func (r *orderRepo) SetPaymentStatus(ctx context.Context, orderID string, status entities.PaymentStatus) error {
	query, args := r.qb.Update("orders").
		Set("payment_status", string(status)).
		Where(sq.Eq{"id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return requireRow(res, entities.ErrOrderNotFound)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (r *orderRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *orderRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *orderRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
