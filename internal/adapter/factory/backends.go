package factory

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/alfanzaky/sitecomply/config"
	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/internal/repository/memory"
	"github.com/alfanzaky/sitecomply/internal/repository/natskv"
	redisrepo "github.com/alfanzaky/sitecomply/internal/repository/redis"
	"github.com/alfanzaky/sitecomply/internal/repository/sqlite"
)

// RegisterDefaultBackends wires every queue backend the app ships with.
func RegisterDefaultBackends(f domain.KeyValueStoreFactory, cfg *config.Config) {
	f.RegisterBackend(config.QueueBackendSQLite, func(ctx context.Context) (domain.KeyValueStore, func() error, error) {
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	})

	f.RegisterBackend(config.QueueBackendRedis, func(ctx context.Context) (domain.KeyValueStore, func() error, error) {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return redisrepo.NewKVStore(client), client.Close, nil
	})

	f.RegisterBackend(config.QueueBackendNATS, func(ctx context.Context) (domain.KeyValueStore, func() error, error) {
		conn, err := nats.Connect(cfg.NATS.URL, nats.Name(cfg.App.Name))
		if err != nil {
			return nil, nil, fmt.Errorf("nats connect: %w", err)
		}
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("jetstream: %w", err)
		}
		store, err := natskv.NewKVStore(ctx, js, cfg.NATS.Bucket)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return store, func() error { return conn.Drain() }, nil
	})

	// not durable, development only
	f.RegisterBackend(config.QueueBackendMemory, func(ctx context.Context) (domain.KeyValueStore, func() error, error) {
		return memory.NewKVStore(), nil, nil
	})
}
