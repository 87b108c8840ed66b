package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache returns a cache with a controllable clock.
func newTestCache() (*Cache, *time.Time) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c := New()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache()

	c.Set("k", "hello", time.Minute)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c, now := newTestCache()

	c.Set("k", 42, 5*time.Minute)

	*now = now.Add(5 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok, "an entry exactly at its TTL is still fresh")

	*now = now.Add(time.Nanosecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len(), "expired read removes the entry")
}

func TestCache_Overwrite(t *testing.T) {
	c, now := newTestCache()

	c.Set("k", "old", time.Minute)
	*now = now.Add(50 * time.Second)
	c.Set("k", "new", time.Minute)

	// The rewrite restarted the clock.
	*now = now.Add(50 * time.Second)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newTestCache()

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestCache_InvalidateAll(t *testing.T) {
	c, _ := newTestCache()

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.InvalidateAll()
	assert.Zero(t, c.Len())
}

func TestCache_InvalidatePattern(t *testing.T) {
	c, _ := newTestCache()

	c.Set("refdata:stores", 1, time.Minute)
	c.Set("refdata:stores:refs", 2, time.Minute)
	c.Set("refdata:cashiers", 3, time.Minute)

	c.InvalidatePattern("refdata:stores")

	_, ok := c.Get("refdata:stores")
	assert.False(t, ok)
	_, ok = c.Get("refdata:stores:refs")
	assert.False(t, ok)
	_, ok = c.Get("refdata:cashiers")
	assert.True(t, ok)
}

func TestGetTyped(t *testing.T) {
	c, _ := newTestCache()

	c.Set("names", []string{"Palatino"}, time.Minute)

	names, ok := Get[[]string](c, "names")
	require.True(t, ok)
	assert.Equal(t, []string{"Palatino"}, names)

	// Type mismatch reads as a miss.
	_, ok = Get[int](c, "names")
	assert.False(t, ok)

	_, ok = Get[[]string](c, "absent")
	assert.False(t, ok)
}
