package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/bootstrap"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/config"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/logger"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/handler"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/middleware"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting supplier sync service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := bootstrap.New(context.Background(), cfg, log, version)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}

	// HTTP layer
	httpMetrics, err := middleware.NewHTTPMetrics(app.Metrics.Registry())
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}
	engineCfg := router.EngineConfig{
		Logger:         log,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS:           middleware.DefaultCORSConfig(),
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		HTTPMetrics: httpMetrics,
	}
	if cfg.Metrics.Enabled {
		engineCfg.MetricsHandler = app.Metrics.Handler()
		engineCfg.MetricsPath = cfg.Metrics.Path
	}
	engine, err := router.NewEngine(engineCfg)
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}

	syncHandler := handler.NewInventorySyncHandler(app.Service, log,
		handler.WithScheduler(app.Scheduler),
		handler.WithCacheStats(app.Cache),
		handler.WithManualTimeout(cfg.Sync.ManualTimeout),
	)

	routesCfg := router.DefaultInventoryRoutesConfig()
	routesCfg.Webhook = middleware.WebhookSignatureConfig{
		Required: cfg.Webhook.RequireSignature,
		Secrets:  app.WebhookSecrets(),
		Logger:   log,
	}

	r := router.NewRouter(engine)
	r.Register(router.NewInventoryRoutes(syncHandler, routesCfg))
	r.Setup()
	router.RegisterSystemRoutes(engine, handler.NewSystemHandler(cfg.App.Name, version, app.DB))

	// Background workers
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if err := app.Relay.Start(bgCtx); err != nil {
		log.Fatal("Failed to start change relay", zap.Error(err))
	}
	if err := app.Scheduler.Start(bgCtx); err != nil {
		log.Fatal("Failed to start sync scheduler", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := app.Scheduler.Stop(ctx); err != nil {
		log.Error("Scheduler did not stop cleanly", zap.Error(err))
	}
	// manual syncs still running in the background
	if err := syncHandler.Wait(ctx); err != nil {
		log.Warn("Background syncs still running at shutdown", zap.Error(err))
	}
	if err := app.Relay.Stop(ctx); err != nil {
		log.Error("Change relay did not stop cleanly", zap.Error(err))
	}
	stopBackground()
	if err := app.Close(ctx); err != nil {
		log.Error("Error releasing resources", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
