// internal/service/order/infrastructure/catalog_cache.go
package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/redis"
	"storefront/internal/service/order/domain"
)

const (
	catalogCacheKey = "catalog:products"
	catalogCacheTTL = 5 * time.Minute
)

// CachedProductRepository 在目录仓储外包一层 Redis 读穿缓存。
// 每次结账都要全量读目录，缓存把这个热点从数据库挪走。
type CachedProductRepository struct {
	inner domain.ProductRepository
	cache *redis.Client
}

// NewCachedProductRepository 创建带缓存的目录仓储
func NewCachedProductRepository(inner domain.ProductRepository, cache *redis.Client) *CachedProductRepository {
	return &CachedProductRepository{inner: inner, cache: cache}
}

// FindAll 优先读缓存，未命中时回源并回填。
// 缓存故障只降级为直读数据库，不影响结账流程。
func (r *CachedProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	data, hit, err := r.cache.GetBytes(ctx, catalogCacheKey)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("catalog cache read failed, falling back to database")
	} else if hit {
		var products []domain.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		logger.Ctx(ctx).Warn().Msg("catalog cache entry corrupt, falling back to database")
	}

	products, err := r.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		if err := r.cache.SetBytes(ctx, catalogCacheKey, data, catalogCacheTTL); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return products, nil
}
