package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
)

const backendName = "redis"

type kvStore struct {
	client *redis.Client
}

var (
	_ domain.KeyValueStore = (*kvStore)(nil)
	_ domain.Swapper       = (*kvStore)(nil)
)

// NewKVStore creates a Redis-backed key-value store. Keys carry no TTL;
// durability depends on the server's persistence settings.
func NewKVStore(client *redis.Client) domain.KeyValueStore {
	return &kvStore{client: client}
}

func (s *kvStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordKVOperation(backendName, "get", "miss")
			return "", false, nil
		}
		metrics.RecordKVOperation(backendName, "get", "error")
		logger.Error("Failed to get key from redis",
			logger.String("key", key),
			logger.ErrorField(err),
		)
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	metrics.RecordKVOperation(backendName, "get", "hit")
	return value, true, nil
}

func (s *kvStore) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		metrics.RecordKVOperation(backendName, "set", "error")
		logger.Error("Failed to set key in redis",
			logger.String("key", key),
			logger.ErrorField(err),
		)
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	metrics.RecordKVOperation(backendName, "set", "ok")
	return nil
}

// CompareAndSwap uses WATCH/MULTI so the write is discarded when another
// client touched key after it was read.
func (s *kvStore) CompareAndSwap(ctx context.Context, key, old string, oldFound bool, value string) (bool, error) {
	swapped := false
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return err
		}
		if found != oldFound || current != old {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, 0)
			return nil
		})
		if err == nil {
			swapped = true
		}
		return err
	}, key)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		metrics.RecordKVOperation(backendName, "cas", "conflict")
		return false, nil
	case err != nil:
		metrics.RecordKVOperation(backendName, "cas", "error")
		logger.Error("Failed to swap key in redis",
			logger.String("key", key),
			logger.ErrorField(err),
		)
		return false, fmt.Errorf("failed to swap %s: %w", key, err)
	case !swapped:
		metrics.RecordKVOperation(backendName, "cas", "conflict")
		return false, nil
	}

	metrics.RecordKVOperation(backendName, "cas", "ok")
	return true, nil
}
