package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkov/marketplace-order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// shopRepo exposes the slices of the shop and product catalog this
// service reads: ownership resolution and price snapshots. Catalog CRUD
// lives in another service.
type shopRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewShopRepo(db *sqlx.DB) *shopRepo {
	return &shopRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *shopRepo) GetShopByID(ctx context.Context, shopID string) (entities.Shop, error) {
	return r.getShop(ctx, sq.Eq{"id": shopID})
}

func (r *shopRepo) GetShopByOwner(ctx context.Context, ownerID string) (entities.Shop, error) {
	return r.getShop(ctx, sq.Eq{"owner_id": ownerID})
}

func (r *shopRepo) getShop(ctx context.Context, where sq.Eq) (entities.Shop, error) {
	query, args := r.qb.Select("id", "owner_id", "name").
		From("shops").
		Where(where).
		MustSql()

	var s Shop
	err := r.db.GetContext(ctx, &s, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Shop{}, entities.ErrShopNotFound
	}
	if err != nil {
		return entities.Shop{}, fmt.Errorf("failed to get shop: %w", err)
	}
	return ShopToEntity(s), nil
}

func (r *shopRepo) GetProduct(ctx context.Context, productID string) (entities.Product, error) {
	query, args := r.qb.Select("id", "name", "price", "discounted_price").
		From("products").
		Where(sq.Eq{"id": productID}).
		MustSql()

	var p Product
	err := r.db.GetContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return ProductToEntity(p), nil
}
