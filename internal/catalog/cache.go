package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const menuKey = "pos:menu"

// Cache serves the menu through Redis with a TTL, falling back to the loaded
// catalog on a miss and repopulating. The settings and item lookups always
// come from the in-process catalog; only the browsing payload (items and
// categories) goes through Redis, so a fleet of registers can share one warm
// copy.
type Cache struct {
	rdb *redis.Client
	src *Catalog
	ttl time.Duration
	log *zap.Logger
}

// Menu is the cached browsing payload.
type Menu struct {
	Items      []Item     `json:"items"`
	Categories []Category `json:"categories"`
}

func NewCache(rdb *redis.Client, src *Catalog, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{rdb: rdb, src: src, ttl: ttl, log: log}
}

// Menu returns the browsing payload, from Redis when warm. Redis being down
// degrades to the in-process catalog rather than failing the request.
func (c *Cache) Menu(ctx context.Context) Menu {
	if c.rdb != nil {
		b, err := c.rdb.Get(ctx, menuKey).Bytes()
		if err == nil {
			var m Menu
			if err := json.Unmarshal(b, &m); err == nil {
				return m
			}
			c.log.Warn("menu cache entry corrupt, refilling", zap.Error(err))
		} else if err != redis.Nil {
			c.log.Warn("menu cache read failed", zap.Error(err))
		}
	}
	m := Menu{Items: c.src.Items, Categories: c.src.SortedCategories()}
	if c.rdb != nil {
		if err := c.fill(ctx, m); err != nil {
			c.log.Warn("menu cache fill failed", zap.Error(err))
		}
	}
	return m
}

// Invalidate drops the cached payload, forcing the next read to refill.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, menuKey).Err()
}

func (c *Cache) fill(ctx context.Context, m Menu) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal menu: %w", err)
	}
	return c.rdb.Set(ctx, menuKey, b, c.ttl).Err()
}
