package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/internal/repository/memory"
	"github.com/alfanzaky/sitecomply/internal/repository/queue"
)

func enqueueThree(t *testing.T, h *harness) []string {
	t.Helper()
	ctx := context.Background()

	var ids []string
	for _, r := range []struct {
		tag     domain.Tag
		payload domain.Row
	}{
		{domain.TagAssets, domain.Row{"id": "a1", "asset_name": "Boiler A"}},
		{domain.TagIncidents, domain.Row{"id": "i1", "title": "Spill"}},
		{domain.TagAssetsDeletions, domain.Row{"id": "a0"}},
	} {
		id, err := h.queue.Enqueue(ctx, r.tag, r.payload)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestDrainAppliesInOrder(t *testing.T) {
	h := newHarness(t, true)
	enqueueThree(t, h)

	result, err := h.sync.Drain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DrainOutcomeApplied, result.Outcome)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Applied)
	assert.Equal(t, 0, result.Remaining)
	assert.Empty(t, h.pending(t))

	calls := h.gateway.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"insert", "insert", "delete"}, []string{calls[0].Op, calls[1].Op, calls[2].Op})
	assert.Equal(t, []string{"assets", "incidents", "assets"}, []string{calls[0].Table, calls[1].Table, calls[2].Table})

	assert.Equal(t, []string{
		domain.EventSyncStarted,
		domain.EventSyncProgress,
		domain.EventSyncProgress,
		domain.EventSyncProgress,
		domain.EventSyncCompleted,
	}, h.publisher.Events())
}

func TestDrainHaltsOnFailureAndResumes(t *testing.T) {
	h := newHarness(t, true)
	ids := enqueueThree(t, h)

	h.gateway.setFail(func(c gatewayCall) error {
		if c.Table == "incidents" {
			return errors.New("connection reset")
		}
		return nil
	})

	result, err := h.sync.Drain(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSyncHalted)

	assert.True(t, result.Halted)
	assert.Equal(t, domain.DrainOutcomeHalted, result.Outcome)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 2, result.Remaining)
	assert.Equal(t, ids[1], result.FailedRecordID)
	assert.Equal(t, domain.TagIncidents, result.FailedTag)
	assert.Contains(t, result.Error, "connection reset")
	assert.Equal(t, ids[1:], recordIDs(h.pending(t)))
	assert.Len(t, h.gateway.Calls(), 2)
	assert.Contains(t, h.publisher.Events(), domain.EventSyncFailed)

	h.gateway.setFail(nil)

	result, err = h.sync.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.Empty(t, h.pending(t))

	// A further run finds nothing to do and makes no remote calls.
	before := len(h.gateway.Calls())
	result, err = h.sync.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DrainOutcomeIdle, result.Outcome)
	assert.True(t, result.Skipped)
	assert.Len(t, h.gateway.Calls(), before)
}

func TestDrainSkipsWhenOffline(t *testing.T) {
	h := newHarness(t, false)
	enqueueThree(t, h)

	result, err := h.sync.Drain(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, domain.DrainOutcomeOffline, result.Outcome)
	assert.Equal(t, "offline", result.Reason)
	assert.Len(t, h.pending(t), 3)
	assert.Empty(t, h.gateway.Calls())
}

func TestDrainRejectsConcurrentRun(t *testing.T) {
	h := newHarness(t, true)
	enqueueThree(t, h)

	gate := make(chan struct{})
	h.gateway.gate = gate

	done := make(chan error, 1)
	go func() {
		_, err := h.sync.Drain(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return len(h.gateway.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	result, err := h.sync.Drain(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	status, err := h.sync.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Running)

	close(gate)
	require.NoError(t, <-done)
	assert.Empty(t, h.pending(t))
	assert.Len(t, h.gateway.Calls(), 3)
}

func TestDrainRejectsRunFromAnotherProcess(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	gw := &fakeGateway{}
	oracle := newFakeOracle(true)

	server := queue.NewQueueRepository(store, "k", nil)
	ctl := queue.NewQueueRepository(store, "k", nil)
	serverSync := NewSyncUsecase(server, oracle, NewMutationRouter(gw), nil, time.Second)
	ctlSync := NewSyncUsecase(ctl, oracle, NewMutationRouter(gw), nil, time.Second)

	for _, id := range []string{"a1", "a2"} {
		_, err := server.Enqueue(ctx, domain.TagAssets, domain.Row{"id": id, "asset_name": "Boiler"})
		require.NoError(t, err)
	}

	gate := make(chan struct{})
	gw.gate = gate

	done := make(chan error, 1)
	go func() {
		_, err := serverSync.Drain(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return len(gw.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	result, err := ctlSync.Drain(ctx)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(gate)
	require.NoError(t, <-done)
	assert.Len(t, gw.Calls(), 2, "each record applied once")

	result, err = ctlSync.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DrainOutcomeIdle, result.Outcome)
}

func TestDrainOperationTimeoutHalts(t *testing.T) {
	h := newHarness(t, true)
	ids := enqueueThree(t, h)

	h.gateway.gate = make(chan struct{})
	engine := NewSyncUsecase(h.queue, h.oracle, NewMutationRouter(h.gateway), nil, 20*time.Millisecond)

	result, err := engine.Drain(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncHalted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ids[0], result.FailedRecordID)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, ids, recordIDs(h.pending(t)))
}

func TestDrainRemoveFailureIsPersistenceError(t *testing.T) {
	h := newHarness(t, true)
	ids := enqueueThree(t, h)
	h.queue.failRemove = true

	result, err := h.sync.Drain(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, result.Halted)
	assert.Equal(t, ids[0], result.FailedRecordID)
	assert.Len(t, h.gateway.Calls(), 1)
}

func TestDrainStopsWhenCancelled(t *testing.T) {
	h := newHarness(t, true)
	ids := enqueueThree(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.gateway.setFail(func(gatewayCall) error {
		cancel()
		return nil
	})

	result, err := h.sync.Drain(ctx)
	assert.ErrorIs(t, err, domain.ErrSyncHalted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, ids[1], result.FailedRecordID)
	assert.Equal(t, ids[1:], recordIDs(h.pending(t)))
}

func TestSyncStatusAndDrop(t *testing.T) {
	h := newHarness(t, false)
	ids := enqueueThree(t, h)
	ctx := context.Background()

	status, err := h.sync.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, 3, status.QueueSize)
	assert.Nil(t, status.LastResult)

	_, err = h.sync.Drain(ctx)
	require.NoError(t, err)

	require.NoError(t, h.sync.Drop(ctx, ids[0]))
	require.NoError(t, h.sync.Drop(ctx, "missing"))

	pending, err := h.sync.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[1:], recordIDs(pending))

	status, err = h.sync.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.QueueSize)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, domain.DrainOutcomeOffline, status.LastResult.Outcome)
}
