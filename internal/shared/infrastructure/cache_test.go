package infrastructure

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryCache_SetGetExpire(t *testing.T) {
	cache := NewInMemoryCache(0)
	defer cache.Close()

	now := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("k", "v", time.Minute)
	got, ok := cache.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("k")
	assert.False(t, ok)

	cache.purge()
	assert.Equal(t, 0, cache.Len())
}

func TestInMemoryCache_ZeroTTLDisablesCaching(t *testing.T) {
	cache := NewInMemoryCache(0)
	defer cache.Close()

	cache.Set("k", "v", 0)
	_, ok := cache.Get("k")
	assert.False(t, ok)
}

func TestShardedCache_Clear(t *testing.T) {
	cache := NewShardedCache(4, time.Minute)
	defer cache.Close()

	for i := 0; i < 32; i++ {
		cache.Set(fmt.Sprintf("key%d", i), i, time.Minute)
	}
	v, ok := cache.Get("key7")
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	cache.Clear()
	for i := 0; i < 32; i++ {
		_, ok := cache.Get(fmt.Sprintf("key%d", i))
		assert.False(t, ok)
	}
}

func TestNewShardedCache_PanicsOnBadShardCount(t *testing.T) {
	assert.Panics(t, func() { NewShardedCache(3, 0) })
}

func TestCacheKeyBuilder(t *testing.T) {
	key := NewCacheKeyBuilder("orders").AddInt64(1002).Add("2021-01-01").Build()
	assert.Equal(t, "orders:1002:2021-01-01", key)
}

// BenchmarkShardedCache_Get_HighContention teste Get avec haute contention
func BenchmarkShardedCache_Get_HighContention(b *testing.B) {
	cache := NewShardedCache(16, 0)
	defer cache.Close()
	cache.Set("shared_key", "shared_value", 5*time.Minute)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = cache.Get("shared_key")
		}
	})
}
