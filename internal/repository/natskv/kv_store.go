package natskv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
)

const backendName = "nats"

type kvStore struct {
	bucket jetstream.KeyValue
}

var (
	_ domain.KeyValueStore = (*kvStore)(nil)
	_ domain.Swapper       = (*kvStore)(nil)
)

// NewKVStore opens (or creates) the bucket on js. History is kept at one
// revision since only the latest queue snapshot matters.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string) (domain.KeyValueStore, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "Offline mutation queue",
		History:     1,
		Storage:     jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create/update kv bucket: %w", err)
	}
	return &kvStore{bucket: kv}, nil
}

// FromBucket wraps an existing bucket handle.
func FromBucket(kv jetstream.KeyValue) domain.KeyValueStore {
	return &kvStore{bucket: kv}
}

// natsKey maps a queue key onto the NATS KV key alphabet.
func natsKey(key string) string {
	return strings.NewReplacer(":", ".", " ", "_").Replace(key)
}

func (s *kvStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.bucket.Get(ctx, natsKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			metrics.RecordKVOperation(backendName, "get", "miss")
			return "", false, nil
		}
		metrics.RecordKVOperation(backendName, "get", "error")
		logger.Error("Failed to get key from nats kv",
			logger.String("key", key),
			logger.ErrorField(err),
		)
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}

	metrics.RecordKVOperation(backendName, "get", "hit")
	return string(entry.Value()), true, nil
}

func (s *kvStore) SetItem(ctx context.Context, key, value string) error {
	if _, err := s.bucket.PutString(ctx, natsKey(key), value); err != nil {
		metrics.RecordKVOperation(backendName, "set", "error")
		logger.Error("Failed to put key in nats kv",
			logger.String("key", key),
			logger.ErrorField(err),
		)
		return fmt.Errorf("put %s: %w", key, err)
	}

	metrics.RecordKVOperation(backendName, "set", "ok")
	return nil
}

// CompareAndSwap maps onto the bucket's revision checks: Create when the key
// was absent, Update against the revision holding old otherwise.
func (s *kvStore) CompareAndSwap(ctx context.Context, key, old string, oldFound bool, value string) (bool, error) {
	k := natsKey(key)

	var err error
	if !oldFound {
		_, err = s.bucket.Create(ctx, k, []byte(value))
	} else {
		var entry jetstream.KeyValueEntry
		entry, err = s.bucket.Get(ctx, k)
		switch {
		case errors.Is(err, jetstream.ErrKeyNotFound):
			metrics.RecordKVOperation(backendName, "cas", "conflict")
			return false, nil
		case err != nil:
		case string(entry.Value()) != old:
			metrics.RecordKVOperation(backendName, "cas", "conflict")
			return false, nil
		default:
			_, err = s.bucket.Update(ctx, k, []byte(value), entry.Revision())
		}
	}

	if errors.Is(err, jetstream.ErrKeyExists) {
		metrics.RecordKVOperation(backendName, "cas", "conflict")
		return false, nil
	}
	if err != nil {
		metrics.RecordKVOperation(backendName, "cas", "error")
		logger.Error("Failed to swap key in nats kv",
			logger.String("key", key),
			logger.ErrorField(err),
		)
		return false, fmt.Errorf("swap %s: %w", key, err)
	}

	metrics.RecordKVOperation(backendName, "cas", "ok")
	return true, nil
}
