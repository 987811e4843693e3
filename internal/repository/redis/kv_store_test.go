package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

func TestKVStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := NewKVStore(client)
	ctx := context.Background()

	_, found, err := store.GetItem(ctx, "sitecomply:offline_queue")
	assert.Error(t, err)
	assert.False(t, found)

	assert.Error(t, store.SetItem(ctx, "sitecomply:offline_queue", "[]"))

	swapped, err := store.(domain.Swapper).CompareAndSwap(ctx, "sitecomply:offline_queue", "", false, "[]")
	assert.Error(t, err)
	assert.False(t, swapped)
}
