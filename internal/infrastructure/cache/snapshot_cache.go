package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"rateboard-service/internal/application"
	"rateboard-service/internal/domain"
)

// SnapshotView is the cached dashboard payload for one group.
type SnapshotView struct {
	Group   domain.Group
	Pending []application.PendingQuote
	Items   []application.SnapshotItem
}

// SnapshotCache keeps recently assembled snapshots keyed by group slug so the
// dashboard does not hit Postgres on every refresh. Entries expire after the
// TTL and are dropped explicitly when a group publishes.
type SnapshotCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewSnapshotCache(maxItems int64, ttl time.Duration) (*SnapshotCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache failed: %w", err)
	}
	return &SnapshotCache{cache: c, ttl: ttl}, nil
}

func (c *SnapshotCache) Get(slug string) (SnapshotView, bool) {
	if v, ok := c.cache.Get(slug); ok {
		view, ok := v.(SnapshotView)
		return view, ok
	}
	return SnapshotView{}, false
}

func (c *SnapshotCache) Set(slug string, view SnapshotView) {
	c.cache.SetWithTTL(slug, view, 1, c.ttl)
}

func (c *SnapshotCache) Invalidate(slug string) { c.cache.Del(slug) }

func (c *SnapshotCache) Close() { c.cache.Close() }
