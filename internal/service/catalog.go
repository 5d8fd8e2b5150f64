package service

import (
	"context"
	"encoding/json"

	"github.com/avolkov/marketplace-order-service/internal/entities"
)

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// CachedCatalog fronts the catalog with a TTL'd cache. Order creation
// is read-heavy on products, and a slightly stale price snapshot is
// acceptable there.
type CachedCatalog struct {
	inner Catalog
	cache Cache
}

func NewCachedCatalog(inner Catalog, cache Cache) *CachedCatalog {
	return &CachedCatalog{inner: inner, cache: cache}
}

func (c *CachedCatalog) GetProduct(ctx context.Context, productID string) (entities.Product, error) {
	if data, ok := c.cache.Get(productID); ok {
		var product entities.Product
		if err := json.Unmarshal(data, &product); err == nil {
			return product, nil
		}
	}

	product, err := c.inner.GetProduct(ctx, productID)
	if err != nil {
		return entities.Product{}, err
	}

	if data, err := json.Marshal(product); err == nil {
		c.cache.Set(productID, data)
	}
	return product, nil
}
