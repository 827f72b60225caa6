package redis

import (
	"aligner-lab/internal/config"
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var Ctx = context.Background()
var RedisClient *redis.Client

func InitRedis() {
	RedisClient = redis.NewClient(&redis.Options{
		Addr: config.AppConfig.RedisAddress,
	})
	_, err := RedisClient.Ping(Ctx).Result()
	if err != nil {
		log.Println("Redis not available. Running without Redis.")
		RedisClient = nil
		return
	}

	log.Println("Redis connected successfully.")
}

// Cache is a thin JSON cache with versioned keys. Readers build keys from the
// current version; writers bump the version so stale entries age out on TTL
// instead of being deleted one by one.
type Cache struct {
	client *redis.Client
}

func NewCache() *Cache {
	return &Cache{client: RedisClient}
}

// Get loads a cached value into dest, reporting whether it was found
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value as JSON with a TTL
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache marshal failed for %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("cache set failed for %s: %v", key, err)
	}
}

// GetVersion returns the current version for a version key (0 when unset)
func (c *Cache) GetVersion(ctx context.Context, key string) int64 {
	if c.client == nil {
		return 0
	}
	v, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return v
}

// IncrementVersion bumps a version key, invalidating every derived cache key
func (c *Cache) IncrementVersion(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		log.Printf("cache version bump failed for %s: %v", key, err)
	}
}
