// Package bootstrap assembles the sync core from configuration so the API
// server and the queuectl tool wire it identically.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/alfanzaky/sitecomply/config"
	"github.com/alfanzaky/sitecomply/internal/adapter/connectivity"
	adapterfactory "github.com/alfanzaky/sitecomply/internal/adapter/factory"
	"github.com/alfanzaky/sitecomply/internal/adapter/gateway"
	"github.com/alfanzaky/sitecomply/internal/adapter/storage"
	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/internal/repository/postgres"
	queuerepo "github.com/alfanzaky/sitecomply/internal/repository/queue"
	"github.com/alfanzaky/sitecomply/internal/usecase"
	"github.com/alfanzaky/sitecomply/pkg/clock"
	"github.com/alfanzaky/sitecomply/pkg/logger"
)

// Core is everything below the transport layer.
type Core struct {
	DB      *sqlx.DB
	Store   domain.KeyValueStore
	Queue   domain.QueueRepository
	Gateway domain.Gateway
	Oracle  *connectivity.Oracle
	Sync    domain.SyncUsecase

	closeStore func() error
}

// NewCore opens the remote database handle, the queue backend and the
// connectivity oracle. The database handle is lazy so the core starts
// while the remote is unreachable.
func NewCore(ctx context.Context, cfg *config.Config, publisher domain.EventPublisher) (*Core, error) {
	db, err := sqlx.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxIdleConns(cfg.Database.MaxIdle)
	db.SetMaxOpenConns(cfg.Database.MaxOpen)
	db.SetConnMaxLifetime(cfg.Database.MaxLife)

	kvFactory := adapterfactory.NewKVStoreFactory()
	adapterfactory.RegisterDefaultBackends(kvFactory, cfg)

	store, closeStore, err := kvFactory.Open(ctx, cfg.Queue.Backend)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open queue backend %s: %w", cfg.Queue.Backend, err)
	}
	logger.Info("Queue backend opened",
		logger.String("backend", cfg.Queue.Backend),
		logger.String("key", cfg.Queue.Key),
	)

	httpClient := &http.Client{Timeout: time.Duration(cfg.Storage.TimeoutSeconds) * time.Second}
	gw := gateway.New(postgres.NewRowGateway(db), storage.NewAdapter(cfg.Storage, httpClient))

	var checker connectivity.Checker
	if cfg.Sync.ProbeURL != "" {
		checker = connectivity.NewHTTPChecker(cfg.Sync.ProbeURL, nil)
	}
	oracle := connectivity.NewOracle(cfg.Sync.StartOnline, checker, connectivity.Config{
		ProbeTimeout:  cfg.Sync.ProbeTimeout,
		ProbeInterval: cfg.Sync.ProbeInterval,
	})

	queue := queuerepo.NewQueueRepository(store, cfg.Queue.Key, clock.RealClock{})
	syncUC := usecase.NewSyncUsecase(queue, oracle, usecase.NewMutationRouter(gw), publisher, cfg.Sync.OperationTimeout)

	return &Core{
		DB:         db,
		Store:      store,
		Queue:      queue,
		Gateway:    gw,
		Oracle:     oracle,
		Sync:       syncUC,
		closeStore: closeStore,
	}, nil
}

// WriteDeps returns the shared dependencies of the domain write services.
func (c *Core) WriteDeps(cfg *config.Config, publisher domain.EventPublisher) usecase.WriteDeps {
	return usecase.WriteDeps{
		Gateway:   c.Gateway,
		Queue:     c.Queue,
		Oracle:    c.Oracle,
		Clock:     clock.RealClock{},
		Publisher: publisher,
		Buckets: usecase.Buckets{
			Evidence:     cfg.Storage.EvidenceBucket,
			Accidents:    cfg.Storage.AccidentBucket,
			Certificates: cfg.Storage.CertificateBucket,
		},
	}
}

// Ping checks the remote database.
func (c *Core) Ping(ctx context.Context) error {
	return postgres.Ping(ctx, c.DB)
}

// PingStore checks that the queue backend answers reads.
func (c *Core) PingStore(ctx context.Context) error {
	_, _, err := c.Store.GetItem(ctx, "sitecomply:health")
	return err
}

// Close releases the queue backend and the database handle.
func (c *Core) Close() error {
	var firstErr error
	if c.closeStore != nil {
		if err := c.closeStore(); err != nil {
			firstErr = fmt.Errorf("close queue backend: %w", err)
		}
	}
	if err := c.DB.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close database: %w", err)
	}
	return firstErr
}
