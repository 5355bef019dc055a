package cache

import (
	"sync"
	"time"

	"github.com/xswap/router/pkg/types"
)

type priceItem struct {
	price      types.Price
	expiration int64
}

// PriceCache is a TTL cache for oracle price samples. Cached entries still go
// through staleness validation on every read path; the cache only saves the
// feed lookup itself.
type PriceCache struct {
	items sync.Map
	ttl   time.Duration
}

// NewPriceCache creates a cache with the given entry TTL. A zero TTL disables
// expiry-based eviction.
func NewPriceCache(ttl time.Duration) *PriceCache {
	c := &PriceCache{ttl: ttl}
	go c.cleanupExpired()
	return c
}

// Put stores a price sample for a feed.
func (c *PriceCache) Put(id types.FeedID, p types.Price) {
	var expiration int64
	if c.ttl > 0 {
		expiration = time.Now().Add(c.ttl).UnixNano()
	}
	c.items.Store(id, &priceItem{price: p, expiration: expiration})
}

// Get returns the cached sample for a feed, if present and unexpired.
func (c *PriceCache) Get(id types.FeedID) (types.Price, bool) {
	v, ok := c.items.Load(id)
	if !ok {
		return types.Price{}, false
	}
	item := v.(*priceItem)
	if item.expiration > 0 && time.Now().UnixNano() > item.expiration {
		c.items.Delete(id)
		return types.Price{}, false
	}
	return item.price, true
}

// Delete evicts one feed.
func (c *PriceCache) Delete(id types.FeedID) {
	c.items.Delete(id)
}

// Clear evicts everything.
func (c *PriceCache) Clear() {
	c.items.Range(func(key, _ interface{}) bool {
		c.items.Delete(key)
		return true
	})
}

func (c *PriceCache) cleanupExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now().UnixNano()
		c.items.Range(func(key, value interface{}) bool {
			item := value.(*priceItem)
			if item.expiration > 0 && now > item.expiration {
				c.items.Delete(key)
			}
			return true
		})
	}
}
