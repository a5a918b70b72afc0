package cache

import (
	"context"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/CleanCity/internal/pkg/env"
)

var (
	mu     sync.Mutex
	client *redis.Client
)

// SetupCache (re)connects the redis client shared by the job queue, the
// statistics cache and the queue inspection endpoints. The rate limiter opens
// its own connection from Options on another database.
func SetupCache() {
	c := redis.NewClient(Options())
	mu.Lock()
	old := client
	client = c
	mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: redis at %s is not reachable yet: %v", c.Options().Addr, err)
		return
	}
	log.Printf("Connected to redis at %s (db %d)", c.Options().Addr, c.Options().DB)
}

// Options reads CACHE_HOST, CACHE_PORT, CACHE_PASSWORD and CACHE_DB.
func Options() *redis.Options {
	db, err := strconv.Atoi(env.GetEnv("CACHE_DB", "0"))
	if err != nil || db < 0 {
		db = 0
	}
	return &redis.Options{
		Addr:        net.JoinHostPort(env.GetEnv("CACHE_HOST", "localhost"), env.GetEnv("CACHE_PORT", "6379")),
		Password:    env.GetEnv("CACHE_PASSWORD", ""),
		DB:          db,
		DialTimeout: 3 * time.Second,
	}
}

// GetClient returns the shared client, connecting lazily.
func GetClient() *redis.Client {
	mu.Lock()
	c := client
	mu.Unlock()
	if c == nil {
		SetupCache()
		mu.Lock()
		c = client
		mu.Unlock()
	}
	return c
}

// Ping checks that redis answers within the context deadline.
func Ping(ctx context.Context) error {
	return GetClient().Ping(ctx).Err()
}

// Set stores value under key for expiration.
func Set(key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(context.Background(), key, value, expiration).Err()
}

// Get returns the value of key or redis.Nil.
func Get(key string) (string, error) {
	return GetClient().Get(context.Background(), key).Result()
}
