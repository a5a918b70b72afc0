package repository

import (
	"context"
	"sort"
	"strconv"

	"github.com/ManuelReschke/CleanCity/internal/pkg/cache"
)

// queueRepository inspects the job queue keys on the shared redis client
type queueRepository struct{}

// NewQueueRepository creates a new queue repository instance
func NewQueueRepository() QueueRepository {
	return &queueRepository{}
}

// GetListLength returns the length of a redis list
func (r *queueRepository) GetListLength(key string) (int64, error) {
	return cache.GetClient().LLen(context.Background(), key).Result()
}

// GetHashCounts reads a counter hash such as the per-status job statistics.
// Non-numeric fields are skipped.
func (r *queueRepository) GetHashCounts(key string) (map[string]int64, error) {
	raw, err := cache.GetClient().HGetAll(context.Background(), key).Result()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(raw))
	for field, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counts[field] = n
	}
	return counts, nil
}

// FindKeysByPatterns retrieves keys for the provided match patterns using SCAN.
func (r *queueRepository) FindKeysByPatterns(patterns []string) ([]string, error) {
	client := cache.GetClient()
	ctx := context.Background()

	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		var cursor uint64
		for {
			keys, next, err := client.Scan(ctx, cursor, pattern, 500).Result()
			if err != nil {
				return nil, err
			}
			for _, key := range keys {
				seen[key] = struct{}{}
			}
			if cursor = next; cursor == 0 {
				break
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteKeys deletes keys in batches and returns the number of deleted keys.
func (r *queueRepository) DeleteKeys(keys []string) (int64, error) {
	const batchSize = 500
	client := cache.GetClient()
	ctx := context.Background()

	var total int64
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		n, err := client.Del(ctx, keys[i:end]...).Result()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
