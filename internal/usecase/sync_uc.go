package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
)

const defaultOperationTimeout = 30 * time.Second

type syncUsecase struct {
	queue     domain.QueueRepository
	oracle    domain.ConnectivityOracle
	router    domain.MutationRouter
	publisher domain.EventPublisher
	opTimeout time.Duration

	running atomic.Bool

	mu   sync.RWMutex
	last *domain.DrainResult
}

// NewSyncUsecase creates the engine that drains queue through router.
// publisher may be nil.
func NewSyncUsecase(
	queue domain.QueueRepository,
	oracle domain.ConnectivityOracle,
	router domain.MutationRouter,
	publisher domain.EventPublisher,
	opTimeout time.Duration,
) domain.SyncUsecase {
	if opTimeout <= 0 {
		opTimeout = defaultOperationTimeout
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &syncUsecase{
		queue:     queue,
		oracle:    oracle,
		router:    router,
		publisher: publisher,
		opTimeout: opTimeout,
	}
}

// Drain applies queued records in order until the queue is empty or one fails.
// A failed record and everything after it stay queued for the next run.
func (uc *syncUsecase) Drain(ctx context.Context) (*domain.DrainResult, error) {
	if !uc.running.CompareAndSwap(false, true) {
		metrics.RecordSyncRun(domain.DrainOutcomeBusy, 0)
		return nil, domain.ErrSyncInProgress
	}
	defer uc.running.Store(false)

	result := &domain.DrainResult{StartedAt: time.Now()}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
		metrics.RecordSyncRun(result.Outcome, result.Duration.Seconds())
		uc.setLast(result)
	}()

	if !uc.oracle.CurrentState(ctx).Connected {
		result.Outcome = domain.DrainOutcomeOffline
		result.Skipped = true
		result.Reason = "offline"
		return result, nil
	}

	// Another process sharing the store may be draining.
	if locker, ok := uc.queue.(domain.DrainLocker); ok {
		unlock, held, err := locker.TryLockDrain(ctx)
		if err != nil {
			result.Outcome = domain.DrainOutcomeHalted
			result.Halted = true
			result.Error = err.Error()
			logger.Error("Sync could not take the drain lock", logger.ErrorField(err))
			return result, err
		}
		if !held {
			result.Outcome = domain.DrainOutcomeBusy
			result.Skipped = true
			result.Reason = "drain running in another process"
			return nil, domain.ErrSyncInProgress
		}
		defer unlock()
	}

	records, err := uc.queue.PeekAll(ctx)
	if err != nil {
		result.Outcome = domain.DrainOutcomeHalted
		result.Halted = true
		result.Error = err.Error()
		logger.Error("Sync could not read the queue", logger.ErrorField(err))
		return result, err
	}

	result.Total = len(records)
	if result.Total == 0 {
		result.Outcome = domain.DrainOutcomeIdle
		result.Skipped = true
		result.Reason = "queue empty"
		return result, nil
	}

	logger.Info("Sync started", logger.Int("pending", result.Total))
	uc.publisher.Publish(domain.EventSyncStarted, map[string]interface{}{
		"total": result.Total,
	})

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return result, uc.halt(result, record, err)
		}

		if err := uc.apply(ctx, record); err != nil {
			return result, uc.halt(result, record, err)
		}

		// The remote write is confirmed; shutdown must not leave it queued for replay.
		if err := uc.queue.Remove(context.WithoutCancel(ctx), record.ID); err != nil {
			uc.halt(result, record, err)
			return result, err
		}

		result.Applied++
		result.Remaining = result.Total - result.Applied
		uc.publisher.Publish(domain.EventSyncProgress, map[string]interface{}{
			"id":        record.ID,
			"table":     string(record.Table),
			"applied":   result.Applied,
			"remaining": result.Remaining,
		})
	}

	result.Outcome = domain.DrainOutcomeApplied
	logger.Info("Sync completed",
		logger.Int("applied", result.Applied),
		logger.Duration("took", time.Since(result.StartedAt)),
	)
	uc.publisher.Publish(domain.EventSyncCompleted, map[string]interface{}{
		"applied": result.Applied,
	})
	return result, nil
}

func (uc *syncUsecase) apply(ctx context.Context, record domain.QueueRecord) error {
	intent := string(domain.Classify(record.Table).Kind)

	opCtx, cancel := context.WithTimeout(ctx, uc.opTimeout)
	defer cancel()

	err := uc.router.Apply(opCtx, record)
	if err == nil {
		metrics.RecordSyncRecord(intent, "applied")
		return nil
	}

	metrics.RecordSyncRecord(intent, "failed")
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("timed out after %s: %w", uc.opTimeout, err)
	}
	return err
}

// halt records the failing record on result and returns the run error.
func (uc *syncUsecase) halt(result *domain.DrainResult, record domain.QueueRecord, cause error) error {
	result.Outcome = domain.DrainOutcomeHalted
	result.Halted = true
	result.FailedRecordID = record.ID
	result.FailedTag = record.Table
	result.Error = cause.Error()
	result.Remaining = result.Total - result.Applied

	logger.Error("Sync halted",
		logger.RecordID(record.ID),
		logger.Tag(string(record.Table)),
		logger.Int("applied", result.Applied),
		logger.Int("remaining", result.Remaining),
		logger.ErrorField(cause),
	)
	uc.publisher.Publish(domain.EventSyncFailed, map[string]interface{}{
		"id":        record.ID,
		"table":     string(record.Table),
		"applied":   result.Applied,
		"remaining": result.Remaining,
		"error":     cause.Error(),
	})

	return fmt.Errorf("%w: record %s (%s): %w", domain.ErrSyncHalted, record.ID, record.Table, cause)
}

func (uc *syncUsecase) setLast(result *domain.DrainResult) {
	snapshot := *result
	uc.mu.Lock()
	uc.last = &snapshot
	uc.mu.Unlock()
}

func (uc *syncUsecase) Status(ctx context.Context) (*domain.SyncStatus, error) {
	size, err := uc.queue.Len(ctx)
	if err != nil {
		return nil, err
	}

	status := &domain.SyncStatus{
		Running:   uc.running.Load(),
		Connected: uc.oracle.CurrentState(ctx).Connected,
		QueueSize: size,
	}

	uc.mu.RLock()
	if uc.last != nil {
		last := *uc.last
		status.LastResult = &last
	}
	uc.mu.RUnlock()

	return status, nil
}

func (uc *syncUsecase) Pending(ctx context.Context) ([]domain.QueueRecord, error) {
	return uc.queue.PeekAll(ctx)
}

// Drop removes a record by hand, typically one that keeps halting the drain.
func (uc *syncUsecase) Drop(ctx context.Context, id string) error {
	if err := uc.queue.Remove(ctx, id); err != nil {
		return err
	}
	logger.Warn("Queue record dropped without being applied", logger.RecordID(id))
	return nil
}
