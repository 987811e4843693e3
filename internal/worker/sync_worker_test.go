package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
)

func init() {
	logger.Init("test")
}

type countingSync struct {
	drains atomic.Int32
}

func (s *countingSync) Drain(context.Context) (*domain.DrainResult, error) {
	s.drains.Add(1)
	return &domain.DrainResult{Outcome: domain.DrainOutcomeIdle, Skipped: true, Reason: "queue empty"}, nil
}

func (s *countingSync) Status(context.Context) (*domain.SyncStatus, error) { return &domain.SyncStatus{}, nil }

func (s *countingSync) Pending(context.Context) ([]domain.QueueRecord, error) { return nil, nil }

func (s *countingSync) Drop(context.Context, string) error { return nil }

type stubOracle struct {
	mu        sync.Mutex
	connected bool
	listener  domain.ConnectivityListener
}

func (o *stubOracle) CurrentState(context.Context) domain.ConnectivityState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return domain.ConnectivityState{Connected: o.connected}
}

func (o *stubOracle) Subscribe(l domain.ConnectivityListener) func() {
	o.mu.Lock()
	o.listener = l
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		o.listener = nil
		o.mu.Unlock()
	}
}

func (o *stubOracle) set(connected bool) {
	o.mu.Lock()
	o.connected = connected
	l := o.listener
	o.mu.Unlock()
	if l != nil {
		l(domain.ConnectivityState{Connected: connected})
	}
}

func (o *stubOracle) subscribed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.listener != nil
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) Publish(eventType string, _ map[string]interface{}) {
	e.mu.Lock()
	e.events = append(e.events, eventType)
	e.mu.Unlock()
}

func TestTriggerCoalesces(t *testing.T) {
	w := NewSyncWorker(&countingSync{}, &stubOracle{}, nil, SyncWorkerConfig{})
	w.Trigger()
	w.Trigger()
	w.Trigger()
	assert.Len(t, w.trigger, 1)
}

func TestAppActiveOnlyWhenConnected(t *testing.T) {
	oracle := &stubOracle{}
	w := NewSyncWorker(&countingSync{}, oracle, nil, SyncWorkerConfig{})

	w.AppActive(context.Background())
	assert.Len(t, w.trigger, 0)

	oracle.set(true)
	w.AppActive(context.Background())
	assert.Len(t, w.trigger, 1)
}

func TestWorkerDrainsOnReconnect(t *testing.T) {
	syncUC := &countingSync{}
	oracle := &stubOracle{}
	events := &eventLog{}
	w := NewSyncWorker(syncUC, oracle, events, SyncWorkerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// Startup drain.
	require.Eventually(t, func() bool { return syncUC.drains.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, oracle.subscribed, time.Second, 5*time.Millisecond)

	oracle.set(true)
	require.Eventually(t, func() bool { return syncUC.drains.Load() == 2 }, time.Second, 5*time.Millisecond)

	oracle.set(false)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), syncUC.drains.Load())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.False(t, oracle.subscribed())

	events.mu.Lock()
	assert.Equal(t, []string{domain.EventConnectivityChanged, domain.EventConnectivityChanged}, events.events)
	events.mu.Unlock()
}

func TestWorkerDrainInterval(t *testing.T) {
	syncUC := &countingSync{}
	w := NewSyncWorker(syncUC, &stubOracle{}, nil, SyncWorkerConfig{DrainInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.Eventually(t, func() bool { return syncUC.drains.Load() >= 3 }, time.Second, 5*time.Millisecond)
}
