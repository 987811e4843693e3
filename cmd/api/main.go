package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/config"
	"github.com/alfanzaky/sitecomply/internal/bootstrap"
	apihandler "github.com/alfanzaky/sitecomply/internal/handler/api"
	"github.com/alfanzaky/sitecomply/internal/usecase"
	"github.com/alfanzaky/sitecomply/internal/worker"
	"github.com/alfanzaky/sitecomply/pkg/auth"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/observability"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	defer logger.Close()

	// Print configuration in development mode
	if cfg.App.IsDevelopment() {
		cfg.Print()
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Event hub for websocket observers
	hub := apihandler.NewEventHub(cfg.API.AllowedOrigins)
	defer hub.Close()

	// Queue backend, remote gateway, connectivity oracle and sync engine
	core, err := bootstrap.NewCore(rootCtx, cfg, hub)
	if err != nil {
		logger.Fatal("Failed to initialize sync core", logger.ErrorField(err))
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("Failed to close sync core", logger.ErrorField(err))
		}
	}()
	go core.Oracle.Run(rootCtx)

	// Initialize use cases
	deps := core.WriteDeps(cfg, hub)
	assetUC := usecase.NewAssetUsecase(deps)
	incidentUC := usecase.NewIncidentUsecase(deps)
	contractorUC := usecase.NewContractorUsecase(deps)
	settingsUC := usecase.NewSettingsUsecase(deps)
	workOrderUC := usecase.NewWorkOrderUsecase(deps)

	// Start background sync worker
	syncWorker := worker.NewSyncWorker(core.Sync, core.Oracle, hub, worker.SyncWorkerConfig{
		DrainInterval: cfg.Sync.DrainInterval,
	})
	go syncWorker.Start(rootCtx)

	// Set Gin mode
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize auth service
	authService := auth.NewJWTAuthService(cfg.Auth)

	// Initialize metrics handler
	metricsHandler := observability.NewMetricsHandler(cfg.App.Name)
	metricsHandler.AddReadinessCheck("queue", core.PingStore)
	metricsHandler.AddReadinessCheck("database", core.Ping)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(observability.ObservabilityMiddleware())
	router.Use(apihandler.RecoveryMiddleware())
	router.Use(apihandler.CORSMiddleware(cfg.API.AllowedOrigins))

	// Setup metrics and health endpoints
	router.GET("/metrics", metricsHandler.MetricsEndpoint())
	router.GET("/health", metricsHandler.HealthEndpoint())
	router.GET("/ready", metricsHandler.ReadinessEndpoint())
	router.GET("/live", metricsHandler.LivenessEndpoint())

	// Setup API routes
	apihandler.SetupRoutes(router, apihandler.Handlers{
		Assets:      apihandler.NewAssetHandler(assetUC),
		Incidents:   apihandler.NewIncidentHandler(incidentUC),
		Contractors: apihandler.NewContractorHandler(contractorUC),
		Settings:    apihandler.NewSettingsHandler(settingsUC),
		WorkOrders:  apihandler.NewWorkOrderHandler(workOrderUC),
		Sync:        apihandler.NewSyncHandler(core.Sync, core.Oracle, syncWorker),
		Events:      hub,
	}, authService, cfg.API.MaxRequestSize)

	// Create HTTP server. WriteTimeout stays zero for the websocket stream.
	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			logger.String("port", cfg.App.Port),
			logger.String("environment", cfg.App.Environment),
			logger.String("queue_backend", cfg.Queue.Backend),
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	rootCancel()

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server exited")
}
