package geocode

import (
	"container/list"
	"sync"
	"time"

	"pincheck/internal/models"
)

const (
	// DefaultCacheSize matches the number of distinct places worth remembering.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is how long a resolved place stays usable.
	DefaultCacheTTL = 7 * 24 * time.Hour
)

type cacheEntry struct {
	key       string
	value     models.GeoResult
	expiresAt time.Time
}

// Cache is a size-bounded LRU of geocode results with a fixed TTL.
// Expired entries are dropped on read and by Sweep.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	ll       *list.List
	items    map[string]*list.Element
	now      func() time.Time
}

// NewCache creates a cache holding at most capacity entries for ttl each.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
}

// Get returns the live entry for key and marks it most recently used.
func (c *Cache) Get(key string) (models.GeoResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return models.GeoResult{}, false
	}
	entry := el.Value.(*cacheEntry)
	if !c.now().Before(entry.expiresAt) {
		c.removeElement(el)
		return models.GeoResult{}, false
	}
	c.ll.MoveToFront(el)
	return entry.value, true
}

// Put stores result under key, evicting the least recently used entry when full.
func (c *Cache) Put(key string, result models.GeoResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.value = result
		entry.expiresAt = expiresAt
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, value: result, expiresAt: expiresAt})
	for c.ll.Len() > c.capacity {
		c.removeElement(c.ll.Back())
	}
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*cacheEntry).expiresAt) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the number of entries currently held, including expired ones
// not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Cache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*cacheEntry).key)
}
