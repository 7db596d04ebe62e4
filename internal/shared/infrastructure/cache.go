package infrastructure

import (
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CacheEntry représente une entrée de cache avec expiration
type CacheEntry struct {
	Value      interface{}
	Expiration time.Time
}

// IsExpired vérifie si l'entrée est expirée
func (e CacheEntry) IsExpired(now time.Time) bool {
	return now.After(e.Expiration)
}

// Cache interface pour l'abstraction du cache
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Clear()
	Close()
}

// InMemoryCache implémentation en mémoire du cache avec TTL
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewInMemoryCache crée un cache en mémoire; les entrées expirées sont purgées
// toutes les cleanupInterval jusqu'à Close.
func NewInMemoryCache(cleanupInterval time.Duration) *InMemoryCache {
	cache := &InMemoryCache{
		entries: make(map[string]CacheEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go cache.cleanupExpired(cleanupInterval)
	}
	return cache
}

// Get récupère une valeur non expirée
func (c *InMemoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || entry.IsExpired(c.now()) {
		return nil, false
	}
	return entry.Value, true
}

// Set ajoute ou met à jour une valeur; un ttl <= 0 n'enregistre rien
func (c *InMemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = CacheEntry{
		Value:      value,
		Expiration: c.now().Add(ttl),
	}
}

// Clear vide complètement le cache
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]CacheEntry)
}

// Len retourne le nombre d'entrées (expirées comprises)
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close arrête la purge périodique
func (c *InMemoryCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *InMemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purge()
		}
	}
}

func (c *InMemoryCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if entry.IsExpired(now) {
			delete(c.entries, key)
		}
	}
}

// ShardedCache cache avec sharding pour réduire la contention
type ShardedCache struct {
	shards    []*InMemoryCache
	shardMask uint32
}

// NewShardedCache crée un cache avec shardCount shards (puissance de 2)
func NewShardedCache(shardCount int, cleanupInterval time.Duration) *ShardedCache {
	if shardCount <= 0 || (shardCount&(shardCount-1)) != 0 {
		panic("shardCount must be a power of 2")
	}

	shards := make([]*InMemoryCache, shardCount)
	for i := range shards {
		shards[i] = NewInMemoryCache(cleanupInterval)
	}

	return &ShardedCache{
		shards:    shards,
		shardMask: uint32(shardCount - 1),
	}
}

func (sc *ShardedCache) getShard(key string) *InMemoryCache {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return sc.shards[h.Sum32()&sc.shardMask]
}

// Get récupère une valeur du cache
func (sc *ShardedCache) Get(key string) (interface{}, bool) {
	return sc.getShard(key).Get(key)
}

// Set ajoute ou met à jour une valeur dans le cache
func (sc *ShardedCache) Set(key string, value interface{}, ttl time.Duration) {
	sc.getShard(key).Set(key, value, ttl)
}

// Clear vide tous les shards
func (sc *ShardedCache) Clear() {
	for _, shard := range sc.shards {
		shard.Clear()
	}
}

// Close arrête la purge de tous les shards
func (sc *ShardedCache) Close() {
	for _, shard := range sc.shards {
		shard.Close()
	}
}

// CacheKeyBuilder aide à construire des clés de cache cohérentes
type CacheKeyBuilder struct {
	parts []string
}

// NewCacheKeyBuilder crée un nouveau builder de clé
func NewCacheKeyBuilder(prefix string) *CacheKeyBuilder {
	return &CacheKeyBuilder{
		parts: append(make([]string, 0, 4), prefix),
	}
}

// Add ajoute une partie à la clé
func (b *CacheKeyBuilder) Add(part string) *CacheKeyBuilder {
	b.parts = append(b.parts, part)
	return b
}

// AddInt64 ajoute un entier à la clé
func (b *CacheKeyBuilder) AddInt64(value int64) *CacheKeyBuilder {
	b.parts = append(b.parts, strconv.FormatInt(value, 10))
	return b
}

// Build construit la clé finale
func (b *CacheKeyBuilder) Build() string {
	return strings.Join(b.parts, ":")
}
