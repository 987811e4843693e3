package worker

import (
	"context"
	"errors"
	"time"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
)

// SyncWorker owns queue draining. Triggers from the API, connectivity
// changes, the app coming to the foreground and the optional interval are
// coalesced so at most one drain is pending at a time. Callers manage the
// lifecycle through the context passed to Start.
type SyncWorker struct {
	syncUC    domain.SyncUsecase
	oracle    domain.ConnectivityOracle
	publisher domain.EventPublisher
	interval  time.Duration
	trigger   chan struct{}
}

// SyncWorkerConfig defines runtime options for the worker.
type SyncWorkerConfig struct {
	// DrainInterval adds a periodic drain. Zero disables it.
	DrainInterval time.Duration
}

// NewSyncWorker builds a new sync worker instance. publisher may be nil.
func NewSyncWorker(syncUC domain.SyncUsecase, oracle domain.ConnectivityOracle, publisher domain.EventPublisher, cfg SyncWorkerConfig) *SyncWorker {
	return &SyncWorker{
		syncUC:    syncUC,
		oracle:    oracle,
		publisher: publisher,
		interval:  cfg.DrainInterval,
		trigger:   make(chan struct{}, 1),
	}
}

// Trigger requests a drain. It never blocks; a request made while one is
// already pending is merged into it.
func (w *SyncWorker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// AppActive is called when the app returns to the foreground.
func (w *SyncWorker) AppActive(ctx context.Context) {
	if w.oracle.CurrentState(ctx).Connected {
		w.Trigger()
	}
}

// Start launches the worker loop. It blocks until context cancellation.
func (w *SyncWorker) Start(ctx context.Context) {
	unsubscribe := w.oracle.Subscribe(w.onConnectivity)
	defer unsubscribe()

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	logger.Info("Sync worker started", logger.Duration("interval", w.interval))

	// Records left over from a previous run are drained as soon as possible.
	w.Trigger()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Sync worker stopping", logger.ErrorField(ctx.Err()))
			return
		case <-w.trigger:
			w.drain(ctx)
		case <-tick:
			w.drain(ctx)
		}
	}
}

func (w *SyncWorker) onConnectivity(state domain.ConnectivityState) {
	if w.publisher != nil {
		w.publisher.Publish(domain.EventConnectivityChanged, map[string]interface{}{
			"connected": state.Connected,
		})
	}
	if state.Connected {
		w.Trigger()
	}
}

func (w *SyncWorker) drain(ctx context.Context) {
	result, err := w.syncUC.Drain(ctx)
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		logger.Debug("Sync already running, trigger dropped")
	case err != nil:
		logger.Warn("Sync run did not complete", logger.ErrorField(err))
	case result.Skipped:
		logger.Debug("Sync skipped", logger.String("reason", result.Reason))
	default:
		logger.Info("Sync run finished",
			logger.Int("applied", result.Applied),
			logger.Duration("duration", result.Duration),
		)
	}
}
