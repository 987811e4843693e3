package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/alfanzaky/sitecomply/internal/adapter/connectivity"
	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/internal/repository/memory"
	queuerepo "github.com/alfanzaky/sitecomply/internal/repository/queue"
	"github.com/alfanzaky/sitecomply/internal/usecase"
	"github.com/alfanzaky/sitecomply/pkg/clock"
	"github.com/alfanzaky/sitecomply/pkg/logger"
)

func init() {
	logger.Init("test")
}

// rejectingRouter fails every record whose tag is in reject.
type rejectingRouter struct {
	reject  map[domain.Tag]bool
	applied []string
}

func (r *rejectingRouter) Apply(_ context.Context, record domain.QueueRecord) error {
	if r.reject[record.Table] {
		return errors.New("row violates check constraint")
	}
	r.applied = append(r.applied, record.ID)
	return nil
}

type fixture struct {
	queue  domain.QueueRepository
	router *rejectingRouter
	oracle *connectivity.Oracle
	closed int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		queue:  queuerepo.NewQueueRepository(memory.NewKVStore(), "test:queue", clock.NewFake(time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))),
		router: &rejectingRouter{reject: map[domain.Tag]bool{}},
		oracle: connectivity.NewOracle(false, nil, connectivity.Config{}),
	}
	ctx := context.Background()
	_, err := f.queue.Enqueue(ctx, domain.TagAssets, map[string]interface{}{"id": "a1", "asset_name": "Boiler A"})
	require.NoError(t, err)
	_, err = f.queue.Enqueue(ctx, domain.TagAssetsDeletions, domain.IDPayload{ID: "a0"})
	require.NoError(t, err)
	return f
}

func (f *fixture) run(args ...string) (string, error) {
	syncUC := usecase.NewSyncUsecase(f.queue, f.oracle, f.router, nil, time.Second)
	open := func(context.Context) (*Session, error) {
		return &Session{
			Sync:   syncUC,
			Online: f.oracle.Set,
			Close:  func() error { f.closed++; return nil },
		}, nil
	}

	var out bytes.Buffer
	cmd := NewRootCommand(open)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	for _, name := range []string{"list", "status", "drain", "drop"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	flag := cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "o", flag.Shorthand)
	assert.Equal(t, FormatTable, flag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	f := newFixture(t)
	_, err := f.run("list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output")
}

func TestList(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "assets_deletions")
	assert.Contains(t, out, "delete")
	assert.Equal(t, 1, f.closed)

	out, err = f.run("list", "-o", "json")
	require.NoError(t, err)
	var views []recordView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "insert", views[0].Intent)
	assert.Equal(t, "Boiler A", views[0].Payload["asset_name"])

	out, err = f.run("list", "-o", "yaml")
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "a0", decoded[1]["payload"].(map[string]interface{})["id"])
}

func TestDrainOfflineSkips(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("drain")
	require.NoError(t, err)
	assert.Contains(t, out, "offline")
	assert.Empty(t, f.router.applied)
}

func TestDrainAssumeOnline(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("drain", "--assume-online", "-o", "json")
	require.NoError(t, err)

	var result domain.DrainResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Applied)
	assert.Len(t, f.router.applied, 2)

	n, err := f.queue.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDrainHaltReportsFailure(t *testing.T) {
	f := newFixture(t)
	f.router.reject[domain.TagAssetsDeletions] = true

	out, err := f.run("drain", "--assume-online")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSyncHalted)
	assert.Contains(t, out, "Stopped at:")

	n, err := f.queue.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDrop(t *testing.T) {
	f := newFixture(t)
	records, err := f.queue.PeekAll(context.Background())
	require.NoError(t, err)

	out, err := f.run("drop", records[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "dropped "+records[0].ID)

	remaining, err := f.queue.PeekAll(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, records[1].ID, remaining[0].ID)

	_, err = f.run("drop")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending:")
	assert.Contains(t, out, "2")
}
