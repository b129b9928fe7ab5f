package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/VitaQuote/internal/domain/catalog"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

const catalogCacheKey = "catalog:rows"

// CatalogLoader produces the authoritative catalog snapshot on a cache miss.
type CatalogLoader func(ctx context.Context) ([]catalog.Row, error)

// CatalogCache is a read-through Redis cache for the price catalog.  Misses
// are collapsed through singleflight so one stampede of quote requests after
// an import costs a single database read.
type CatalogCache struct {
	client *Client
	ttl    time.Duration
	loader CatalogLoader
	group  singleflight.Group
	log    logging.Logger

	// onHit and onMiss are optional metric hooks.
	onHit  func()
	onMiss func()
}

// NewCatalogCache builds a catalog cache over the given loader.
func NewCatalogCache(client *Client, ttl time.Duration, loader CatalogLoader, log logging.Logger) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl, loader: loader, log: log}
}

// SetHooks installs hit/miss callbacks.  Either may be nil.
func (c *CatalogCache) SetHooks(onHit, onMiss func()) {
	c.onHit = onHit
	c.onMiss = onMiss
}

func (c *CatalogCache) key() string {
	return c.client.Key(catalogCacheKey)
}

// Rows returns the cached catalog, loading and caching it on a miss.  A
// Redis read failure degrades to a direct load; the cache never turns a
// healthy database into an outage.
func (c *CatalogCache) Rows(ctx context.Context) ([]catalog.Row, error) {
	raw, err := c.client.Raw().Get(ctx, c.key()).Result()
	if err == nil {
		var rows []catalog.Row
		if jsonErr := json.Unmarshal([]byte(raw), &rows); jsonErr == nil {
			if c.onHit != nil {
				c.onHit()
			}
			return rows, nil
		}
		// Corrupt cache entry; fall through to a reload.
		c.log.Warn("discarding corrupt catalog cache entry")
	} else if err != goredis.Nil {
		c.log.Warn("catalog cache read failed, loading from database", logging.Err(err))
	}

	if c.onMiss != nil {
		c.onMiss()
	}

	v, err, _ := c.group.Do(c.key(), func() (interface{}, error) {
		rows, err := c.loader(ctx)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(rows); err == nil {
			if err := c.client.Raw().Set(ctx, c.key(), payload, c.ttl).Err(); err != nil {
				c.log.Warn("failed to populate catalog cache", logging.Err(err))
			}
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	rows, ok := v.([]catalog.Row)
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "unexpected catalog cache value type")
	}
	return rows, nil
}

// Invalidate drops the cached snapshot, forcing the next read to hit the
// database.  Called after every catalog import.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Raw().Del(ctx, c.key()).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to invalidate catalog cache")
	}
	return nil
}
