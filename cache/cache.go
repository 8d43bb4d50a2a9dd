package cache

import (
	"context"
	"time"

	"pos-app/models"
)

// ProductCache caches product-search results. The no-op implementation keeps
// call sites unconditional when no redis is configured.
type ProductCache interface {
	Get(ctx context.Context, key string) ([]models.Product, bool, error)
	Set(ctx context.Context, key string, products []models.Product, ttl time.Duration) error
}

type NoopProductCache struct{}

func (NoopProductCache) Get(_ context.Context, _ string) ([]models.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(_ context.Context, _ string, _ []models.Product, _ time.Duration) error {
	return nil
}
