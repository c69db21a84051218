package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
)

var client *redis.Client

// ErrMiss is returned when a key does not exist.
var ErrMiss = redis.Nil

// SetupCache initializes the connection to the Redis compatible cache server
func SetupCache(cfg config.CacheConfig) *redis.Client {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnf("[Cache] Could not connect to cache at %s: %v", cfg.Addr(), err)
	} else {
		log.Infof("[Cache] Connected to cache: %s", pong)
	}
	return client
}

// SetClient replaces the shared client, e.g. with one pointing at a test server.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the shared client, or nil before SetupCache.
func GetClient() *redis.Client {
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return errors.New("cache: not initialized")
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(ctx context.Context, key string) (string, error) {
	if client == nil {
		return "", ErrMiss
	}
	return client.Get(ctx, key).Result()
}

// SetJSON stores v encoded as JSON.
func SetJSON(ctx context.Context, key string, v interface{}, expiration time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return Set(ctx, key, data, expiration)
}

// GetJSON decodes the JSON value stored under key into v. A missing key
// yields ErrMiss.
func GetJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}

// Delete removes a value from the cache by key
func Delete(ctx context.Context, key string) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, key).Err()
}
