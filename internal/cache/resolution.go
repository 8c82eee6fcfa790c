package cache

import (
	"Linkboard-Backend/internal/domain"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const linkKeyPrefix = "resolve:link:"

// ResolutionCache кэширует разрешение slug -> партнерская ссылка на
// публичном редиректе. Любая ошибка redis трактуется как промах: кэш
// никогда не ломает редирект. Все методы безопасны на nil-получателе,
// так что выключенный кэш не требует ветвлений у вызывающего кода.
type ResolutionCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// New подключается к redis и проверяет соединение
func New(ctx context.Context, addr string, ttl time.Duration, log *zap.Logger) (*ResolutionCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	log.Info("resolution cache connected", zap.String("addr", addr), zap.Duration("ttl", ttl))

	return &ResolutionCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}, nil
}

// NewWithClient оборачивает готовый клиент (используется в тестах с miniredis)
func NewWithClient(client *redis.Client, ttl time.Duration, log *zap.Logger) *ResolutionCache {
	return &ResolutionCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// GetLink возвращает закэшированную ссылку по slug (регистрозависимо)
func (c *ResolutionCache) GetLink(ctx context.Context, slug string) (*domain.AffiliateLink, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, linkKeyPrefix+slug).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("cache get failed", zap.String("slug", slug), zap.Error(err))
		return nil, false
	}

	var link domain.AffiliateLink
	if err := json.Unmarshal(data, &link); err != nil {
		c.log.Warn("cache entry corrupted", zap.String("slug", slug), zap.Error(err))
		return nil, false
	}

	return &link, true
}

// SetLink кладет ссылку в кэш с TTL
func (c *ResolutionCache) SetLink(ctx context.Context, link *domain.AffiliateLink) {
	if c == nil {
		return
	}

	data, err := json.Marshal(link)
	if err != nil {
		c.log.Warn("cache marshal failed", zap.String("slug", link.Slug), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, linkKeyPrefix+link.Slug, data, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("slug", link.Slug), zap.Error(err))
	}
}

// Invalidate удаляет запись кэша; вызывается при изменении ссылки
func (c *ResolutionCache) Invalidate(ctx context.Context, slug string) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, linkKeyPrefix+slug).Err(); err != nil {
		c.log.Warn("cache invalidation failed", zap.String("slug", slug), zap.Error(err))
	}
}

// Close закрывает соединение с redis
func (c *ResolutionCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
