package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/praval-labs/praval/internal/embed"
)

// Cache holds category centroids, refreshed on expiry. Refreshing
// embeds every configured phrase, so results are cached for the
// configured TTL and swapped atomically. Invalidate forces the next
// read to refresh, for configuration changes.
type Cache struct {
	service    embed.Service
	categories []Category
	ttl        time.Duration
	logger     *slog.Logger

	mu        sync.RWMutex
	centroids []centroid
	expiresAt time.Time
}

// NewCache creates a Cache over the configured categories.
func NewCache(service embed.Service, categories []Category, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Cache{
		service:    service,
		categories: categories,
		ttl:        ttl,
		logger:     logger.With("system", "trigger"),
	}
}

// Centroids returns current category centroids, refreshing if expired.
// A refresh failure with a previously populated cache returns the
// stale centroids and logs; with an empty cache it returns an error.
func (c *Cache) Centroids(ctx context.Context) ([]centroid, error) {
	c.mu.RLock()
	if time.Now().Before(c.expiresAt) && c.centroids != nil {
		defer c.mu.RUnlock()
		return c.centroids, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.expiresAt) && c.centroids != nil {
		return c.centroids, nil
	}

	refreshed, err := c.refresh(ctx)
	if err != nil {
		if c.centroids != nil {
			c.logger.Warn("trigger cache refresh failed, serving stale centroids", "error", err)
			return c.centroids, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStaleCache, err)
	}

	c.centroids = refreshed
	c.expiresAt = time.Now().Add(c.ttl)

	c.logger.Info("trigger cache refreshed", "categories", len(refreshed))
	return c.centroids, nil
}

// Invalidate expires the cache so the next read refreshes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiresAt = time.Time{}
}

func (c *Cache) refresh(ctx context.Context) ([]centroid, error) {
	if len(c.categories) == 0 {
		return nil, ErrNoCategories
	}

	centroids := make([]centroid, 0, len(c.categories))
	for _, cat := range c.categories {
		if len(cat.Phrases) == 0 {
			continue
		}

		vectors, err := c.service.EmbedBatch(ctx, cat.Phrases)
		if err != nil {
			return nil, fmt.Errorf("embed phrases for %s: %w", cat.Name, err)
		}

		centroids = append(centroids, centroid{
			category: cat,
			vector:   meanVector(vectors),
		})
	}

	if len(centroids) == 0 {
		return nil, ErrNoCategories
	}

	return centroids, nil
}
