package jobqueue

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/CleanCity/internal/pkg/cache"
	"github.com/ManuelReschke/CleanCity/internal/pkg/env"
)

// isolatedRedisDB is flushed by tests and must not be used by the app.
const isolatedRedisDB = 14

type redisEndpoint struct {
	host, port, password string
}

// resolveTestRedis finds a reachable redis or skips the test.
func resolveTestRedis(t *testing.T) redisEndpoint {
	t.Helper()

	hosts := []string{env.GetEnv("CACHE_HOST", ""), "cache", "localhost"}
	passwords := []string{env.GetEnv("CACHE_PASSWORD", ""), "cleancity"}
	port := env.GetEnv("CACHE_PORT", "6379")

	var lastErr error
	for _, host := range hosts {
		if host == "" {
			continue
		}
		for _, password := range passwords {
			client := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(host, port), Password: password})
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			lastErr = client.Ping(ctx).Err()
			cancel()
			_ = client.Close()
			if lastErr == nil {
				return redisEndpoint{host, port, password}
			}
		}
	}
	t.Skipf("Skipping redis test: no reachable endpoint (%v)", lastErr)
	return redisEndpoint{}
}

// configureTestCache points the shared cache client at ep.
func configureTestCache(ep redisEndpoint) {
	for k, v := range map[string]string{"CACHE_HOST": ep.host, "CACHE_PORT": ep.port, "CACHE_PASSWORD": ep.password} {
		env.Set(k, v)
	}
	cache.SetupCache()
}

func resetJobQueueRedis(t *testing.T, client *redis.Client) {
	t.Helper()
	ctx := context.Background()

	keys := []string{JobQueueKey, JobProcessingKey, JobDelayedKey, JobStatsKey}
	iter := client.Scan(ctx, 0, JobKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		t.Fatalf("failed to scan redis keys: %v", err)
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		t.Fatalf("failed to clean redis keys: %v", err)
	}
}

// newIsolatedRedisClient returns a client on a flushed scratch database.
func newIsolatedRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ep := resolveTestRedis(t)
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(ep.host, ep.port),
		Password: ep.password,
		DB:       isolatedRedisDB,
	})
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Skipping redis test: cannot flush db %d (%v)", isolatedRedisDB, err)
	}
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}
