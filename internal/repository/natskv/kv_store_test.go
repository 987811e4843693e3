package natskv

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

type fakeEntry struct {
	jetstream.KeyValueEntry
	value    []byte
	revision uint64
}

func (e fakeEntry) Value() []byte    { return e.value }
func (e fakeEntry) Revision() uint64 { return e.revision }

// fakeBucket implements the KeyValue methods the store calls, with one
// revision counter per key.
type fakeBucket struct {
	jetstream.KeyValue
	items     map[string]string
	revisions map[string]uint64
	putErr    error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{items: map[string]string{}, revisions: map[string]uint64{}}
}

func (b *fakeBucket) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	v, ok := b.items[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return fakeEntry{value: []byte(v), revision: b.revisions[key]}, nil
}

func (b *fakeBucket) PutString(_ context.Context, key, value string) (uint64, error) {
	if b.putErr != nil {
		return 0, b.putErr
	}
	b.items[key] = value
	b.revisions[key]++
	return b.revisions[key], nil
}

func (b *fakeBucket) Create(ctx context.Context, key string, value []byte, _ ...jetstream.KVCreateOpt) (uint64, error) {
	if _, ok := b.items[key]; ok {
		return 0, jetstream.ErrKeyExists
	}
	return b.PutString(ctx, key, string(value))
}

func (b *fakeBucket) Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error) {
	if b.revisions[key] != revision {
		return 0, jetstream.ErrKeyExists
	}
	return b.PutString(ctx, key, string(value))
}

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	bucket := newFakeBucket()
	store := FromBucket(bucket)

	_, found, err := store.GetItem(ctx, "sitecomply:offline_queue")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetItem(ctx, "sitecomply:offline_queue", "[]"))
	assert.Contains(t, bucket.items, "sitecomply.offline_queue")

	value, found, err := store.GetItem(ctx, "sitecomply:offline_queue")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", value)

	bucket.putErr = errors.New("no responders")
	assert.Error(t, store.SetItem(ctx, "k", "v"))
}

func TestKVStoreCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	bucket := newFakeBucket()
	swapper := FromBucket(bucket).(domain.Swapper)

	ok, err := swapper.CompareAndSwap(ctx, "q:k", "", false, "[1]")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = swapper.CompareAndSwap(ctx, "q:k", "", false, "[2]")
	require.NoError(t, err)
	assert.False(t, ok, "create over an existing key")

	ok, err = swapper.CompareAndSwap(ctx, "q:k", "[0]", true, "[2]")
	require.NoError(t, err)
	assert.False(t, ok, "stale value")

	ok, err = swapper.CompareAndSwap(ctx, "q:k", "[1]", true, "[1,2]")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,2]", bucket.items["q.k"])
	assert.Equal(t, uint64(2), bucket.revisions["q.k"])

	bucket.putErr = errors.New("no responders")
	_, err = swapper.CompareAndSwap(ctx, "q:k", "[1,2]", true, "[]")
	assert.Error(t, err)
}

func TestNatsKey(t *testing.T) {
	assert.Equal(t, "sitecomply.offline_queue", natsKey("sitecomply:offline_queue"))
	assert.Equal(t, "site_a.queue", natsKey("site a:queue"))
}
