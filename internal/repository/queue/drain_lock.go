package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
)

// DrainLockTTL bounds how long a crashed holder can block other drains.
const DrainLockTTL = 15 * time.Minute

type drainLease struct {
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var _ domain.DrainLocker = (*queueRepository)(nil)

func (r *queueRepository) lockKey() string {
	return r.key + ":drain_lock"
}

// TryLockDrain takes the drain lease stored next to the queue. Stores that
// cannot compare-and-swap are assumed to be private to this process.
func (r *queueRepository) TryLockDrain(ctx context.Context) (func(), bool, error) {
	swapper, ok := r.store.(domain.Swapper)
	if !ok {
		return func() {}, true, nil
	}

	raw, found, err := r.store.GetItem(ctx, r.lockKey())
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to read drain lock: %v", domain.ErrPersistence, err)
	}

	now := r.clock.Now()
	if found && raw != "" {
		var held drainLease
		if err := json.Unmarshal([]byte(raw), &held); err == nil && held.Owner != r.owner && now.Before(held.ExpiresAt) {
			logger.Info("Drain lock held elsewhere",
				logger.String("owner", held.Owner),
				logger.Duration("expires_in", held.ExpiresAt.Sub(now)),
			)
			return nil, false, nil
		}
	}

	data, err := json.Marshal(drainLease{Owner: r.owner, ExpiresAt: now.Add(DrainLockTTL)})
	if err != nil {
		return nil, false, err
	}
	lease := string(data)

	swapped, err := swapper.CompareAndSwap(ctx, r.lockKey(), raw, found, lease)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to take drain lock: %v", domain.ErrPersistence, err)
	}
	if !swapped {
		return nil, false, nil
	}

	unlock := func() {
		ctx := context.WithoutCancel(ctx)
		if _, err := swapper.CompareAndSwap(ctx, r.lockKey(), lease, true, ""); err != nil {
			logger.Warn("Failed to release drain lock",
				logger.String("key", r.lockKey()),
				logger.ErrorField(err),
			)
		}
	}
	return unlock, true, nil
}
