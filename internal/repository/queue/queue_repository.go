package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/clock"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
)

// DefaultKey is the key the whole queue is stored under.
const DefaultKey = "sitecomply:offline_queue"

const maxSwapAttempts = 10

// queueRepository keeps the offline queue as one JSON array under a single
// key. Every mutation rewrites the whole array with one store write.
type queueRepository struct {
	store domain.KeyValueStore
	key   string
	clock clock.Clock
	owner string
	mu    sync.Mutex
}

var _ domain.QueueRepository = (*queueRepository)(nil)

// NewQueueRepository creates the durable queue over store.
func NewQueueRepository(store domain.KeyValueStore, key string, c clock.Clock) domain.QueueRepository {
	if key == "" {
		key = DefaultKey
	}
	if c == nil {
		c = clock.RealClock{}
	}
	return &queueRepository{store: store, key: key, clock: c, owner: uuid.New().String()}
}

func (r *queueRepository) Enqueue(ctx context.Context, table domain.Tag, payload interface{}) (string, error) {
	ids, err := r.EnqueueBatch(ctx, []domain.PendingWrite{{Table: table, Payload: payload}})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (r *queueRepository) EnqueueBatch(ctx context.Context, entries []domain.PendingWrite) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	now := r.clock.Now()
	batch := make([]domain.QueueRecord, len(entries))
	ids := make([]string, len(entries))
	for i, e := range entries {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", e.Table, err)
		}
		ids[i] = uuid.New().String()
		batch[i] = domain.QueueRecord{
			ID:         ids[i],
			Table:      e.Table,
			Payload:    raw,
			EnqueuedAt: now,
		}
	}

	size, err := r.mutate(ctx, func(records []domain.QueueRecord) ([]domain.QueueRecord, bool) {
		return append(records, batch...), true
	})
	if err != nil {
		return nil, err
	}

	for _, rec := range batch {
		logger.Debug("Record enqueued",
			logger.RecordID(rec.ID),
			logger.Tag(string(rec.Table)),
			logger.Int("queue_size", size),
		)
	}

	return ids, nil
}

func (r *queueRepository) PeekAll(ctx context.Context) ([]domain.QueueRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, _, _, err := r.load(ctx)
	return records, err
}

func (r *queueRepository) Remove(ctx context.Context, id string) error {
	removed := false
	size, err := r.mutate(ctx, func(records []domain.QueueRecord) ([]domain.QueueRecord, bool) {
		kept := make([]domain.QueueRecord, 0, len(records))
		for _, rec := range records {
			if rec.ID != id {
				kept = append(kept, rec)
			}
		}
		removed = len(kept) != len(records)
		return kept, removed
	})
	if err != nil || !removed {
		return err
	}

	logger.Debug("Record removed",
		logger.RecordID(id),
		logger.Int("queue_size", size),
	)

	return nil
}

func (r *queueRepository) Len(ctx context.Context) (int, error) {
	records, err := r.PeekAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// mutate runs one read-modify-write of the queue. The mutex orders writers
// in this process. When the store is a domain.Swapper the write only lands
// if no other process changed the queue since it was read, otherwise the
// change is re-applied to the fresh value.
func (r *queueRepository) mutate(ctx context.Context, change func([]domain.QueueRecord) ([]domain.QueueRecord, bool)) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	swapper, canSwap := r.store.(domain.Swapper)

	for attempt := 1; ; attempt++ {
		records, raw, found, err := r.load(ctx)
		if err != nil {
			return 0, err
		}

		next, changed := change(records)
		if !changed {
			return len(records), nil
		}

		data, err := json.Marshal(next)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to encode queue: %v", domain.ErrPersistence, err)
		}

		if !canSwap {
			if err := r.write(ctx, string(data), len(next)); err != nil {
				return 0, err
			}
			metrics.SetOfflineQueueSize(len(next))
			return len(next), nil
		}

		swapped, err := swapper.CompareAndSwap(ctx, r.key, raw, found, string(data))
		if err != nil {
			logger.Error("Failed to write offline queue",
				logger.String("key", r.key),
				logger.Int("records", len(next)),
				logger.ErrorField(err),
			)
			return 0, fmt.Errorf("%w: failed to write queue: %v", domain.ErrPersistence, err)
		}
		if swapped {
			metrics.SetOfflineQueueSize(len(next))
			return len(next), nil
		}

		if attempt >= maxSwapAttempts {
			logger.Error("Offline queue kept changing underneath write",
				logger.String("key", r.key),
				logger.Int("attempts", attempt),
			)
			return 0, fmt.Errorf("%w: queue changed concurrently %d times", domain.ErrPersistence, attempt)
		}
		logger.Warn("Offline queue changed by another writer, retrying",
			logger.String("key", r.key),
			logger.Int("attempt", attempt),
		)
	}
}

// load returns the decoded queue with the raw stored value it came from.
func (r *queueRepository) load(ctx context.Context) ([]domain.QueueRecord, string, bool, error) {
	raw, found, err := r.store.GetItem(ctx, r.key)
	if err != nil {
		logger.Error("Failed to read offline queue",
			logger.String("key", r.key),
			logger.ErrorField(err),
		)
		return nil, "", false, fmt.Errorf("%w: failed to read queue: %v", domain.ErrPersistence, err)
	}
	if !found || raw == "" {
		return []domain.QueueRecord{}, raw, found, nil
	}

	var records []domain.QueueRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		logger.Error("Stored offline queue is corrupt",
			logger.String("key", r.key),
			logger.ErrorField(err),
		)
		return nil, "", false, fmt.Errorf("%w: failed to decode queue: %v", domain.ErrPersistence, err)
	}
	if records == nil {
		records = []domain.QueueRecord{}
	}
	return records, raw, found, nil
}

func (r *queueRepository) write(ctx context.Context, data string, n int) error {
	if err := r.store.SetItem(ctx, r.key, data); err != nil {
		logger.Error("Failed to write offline queue",
			logger.String("key", r.key),
			logger.Int("records", n),
			logger.ErrorField(err),
		)
		return fmt.Errorf("%w: failed to write queue: %v", domain.ErrPersistence, err)
	}
	return nil
}
