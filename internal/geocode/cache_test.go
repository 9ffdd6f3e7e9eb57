package geocode

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pincheck/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

var paris = models.GeoResult{Latitude: 48.8566, Longitude: 2.3522, DisplayName: "Paris, France"}

func TestCache_GetPut(t *testing.T) {
	c := NewCache(10, time.Hour)

	_, ok := c.Get("paris")
	assert.False(t, ok)

	c.Put("paris", paris)
	got, ok := c.Get("paris")
	require.True(t, ok)
	assert.Equal(t, paris, got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Overwrite(t *testing.T) {
	c := NewCache(10, time.Hour)
	c.Put("paris", paris)

	updated := paris
	updated.DisplayName = "Paris"
	c.Put("paris", updated)

	got, ok := c.Get("paris")
	require.True(t, ok)
	assert.Equal(t, "Paris", got.DisplayName)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(10, time.Minute)
	c.now = clock.Now

	c.Put("paris", paris)

	clock.Advance(59 * time.Second)
	_, ok := c.Get("paris")
	assert.True(t, ok, "entry should be live before the TTL")

	clock.Advance(time.Second)
	_, ok = c.Get("paris")
	assert.False(t, ok, "entry must not be returned once the TTL has elapsed")
	assert.Equal(t, 0, c.Len(), "expired entry should be dropped on read")
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, time.Hour)
	c.Put("a", paris)
	c.Put("b", paris)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", paris)

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_Sweep(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(10, time.Minute)
	c.now = clock.Now

	c.Put("old1", paris)
	c.Put("old2", paris)
	clock.Advance(30 * time.Second)
	c.Put("fresh", paris)
	clock.Advance(45 * time.Second)

	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestCache_Defaults(t *testing.T) {
	c := NewCache(0, 0)
	assert.Equal(t, DefaultCacheSize, c.capacity)
	assert.Equal(t, DefaultCacheTTL, c.ttl)
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache(50, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", (i*j)%80)
				c.Put(key, paris)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}
