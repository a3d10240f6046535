package emailsvc

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/ignite/email-insights/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ProfileCache memoizes user profiles by user id for the lifetime of the
// process (or the key TTL for the shared backend). There is no
// single-flight discipline: concurrent misses for the same id may each
// issue an upstream call, which is acceptable because profile lookups are
// idempotent and cheap.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, bool)
	Put(ctx context.Context, userID string, profile *domain.UserProfile)
}

// MemoryCache is the default in-process cache: an unbounded map with
// process lifetime, guarded by a RWMutex.
type MemoryCache struct {
	mu       sync.RWMutex
	profiles map[string]*domain.UserProfile
}

// NewMemoryCache creates an empty in-process profile cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{profiles: make(map[string]*domain.UserProfile)}
}

func (c *MemoryCache) Get(_ context.Context, userID string) (*domain.UserProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[userID]
	return p, ok
}

func (c *MemoryCache) Put(_ context.Context, userID string, profile *domain.UserProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[userID] = profile
}

// RedisCache shares profile lookups across dashboard replicas. Entries
// expire after the configured TTL instead of living forever, since the
// shared cache outlives any one process. Redis failures degrade to cache
// misses; they never fail a lookup.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed profile cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func profileKey(userID string) string {
	return "emailinsights:profile:" + userID
}

func (c *RedisCache) Get(ctx context.Context, userID string) (*domain.UserProfile, bool) {
	data, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[cache] redis get failed for user %s: %v", userID, err)
		}
		return nil, false
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		log.Printf("[cache] corrupt cached profile for user %s: %v", userID, err)
		return nil, false
	}
	return &profile, true
}

func (c *RedisCache) Put(ctx context.Context, userID string, profile *domain.UserProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		log.Printf("[cache] failed to marshal profile for user %s: %v", userID, err)
		return
	}
	if err := c.client.Set(ctx, profileKey(userID), data, c.ttl).Err(); err != nil {
		log.Printf("[cache] redis set failed for user %s: %v", userID, err)
	}
}
