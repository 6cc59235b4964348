// Package bootstrap assembles the sync engine from configuration. The API
// server and the syncctl command share it so both run the same orchestrator
// against the same stores.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/inventorysync"
	"github.com/hypnotizedent/printshop-os-sub018/internal/application/normalizer"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/cache"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/config"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/event"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/logger"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/persistence"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/scheduler"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/supplier"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/telemetry"
)

// App holds every long-lived component of the sync engine
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Tracer    *telemetry.TracerProvider
	DB        *persistence.Database
	Metrics   *telemetry.SyncMetrics
	Cache     *cache.Cached
	Registry  *supplier.Registry
	Service   *inventorysync.Service
	Relay     *event.ChangeRelay
	Scheduler *scheduler.InventorySyncScheduler

	cacheClient cache.Client
	publisher   event.Publisher
}

// New wires the application. On error every component created so far is
// released before returning.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, version string) (app *App, err error) {
	app = &App{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			app.Close(context.Background())
			app = nil
		}
	}()

	app.Tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return app, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	app.DB, err = persistence.NewDatabaseWithOptions(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	})
	if err != nil {
		return app, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err = app.DB.AutoMigrate(); err != nil {
			return app, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	if err = telemetry.RegisterDBTracing(app.DB.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		return app, err
	}

	app.Metrics = telemetry.NewSyncMetrics()

	if err = app.buildCache(); err != nil {
		return app, err
	}

	connectors, err := buildConnectors(cfg, app.Cache, app.Metrics, log)
	if err != nil {
		return app, err
	}
	app.Registry = supplier.NewRegistry(connectors...)

	norm := normalizer.New(normalizer.Options{
		Pricing:           catalog.MarkupRule(cfg.Pricing.DefaultMarkupPercent),
		LowStockThreshold: cfg.Sync.LowStockThreshold,
	})

	changes := persistence.NewGormChangeRepository(app.DB.DB)
	app.Service = inventorysync.NewService(
		app.Registry,
		norm,
		inventorysync.Repositories{
			Products:    persistence.NewGormProductRepository(app.DB.DB),
			Variants:    persistence.NewGormVariantRepository(app.DB.DB),
			Inventories: persistence.NewGormSupplierInventoryRepository(app.DB.DB),
			SyncLogs:    persistence.NewGormSyncLogRepository(app.DB.DB),
			Changes:     changes,
		},
		persistence.NewGormTransactionScope(app.DB.DB),
		log,
		inventorysync.Config{
			HighPriorityLimit: cfg.Sync.HighPriorityLimit,
			Concurrency:       cfg.Sync.Concurrency,
			LowStockThreshold: cfg.Sync.LowStockThreshold,
		},
	)
	app.Service.SetMatcher(catalog.NewMatcher(catalog.DefaultMatcherConfig()))
	app.Service.SetCache(app.Cache)
	app.Service.SetMetrics(app.Metrics)

	app.publisher = event.NewLogPublisher(log)
	if cfg.Kafka.Enabled {
		app.publisher = event.NewMultiPublisher(app.publisher, event.NewKafkaPublisher(event.KafkaConfig{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
		}))
	}
	app.Relay = event.NewChangeRelay(changes, app.publisher, event.DefaultRelayConfig(), log)
	app.Service.SetNotifier(app.Relay)

	app.Scheduler = scheduler.NewInventorySyncScheduler(app.Service, log, scheduler.InventorySyncSchedulerConfig{
		Enabled:              cfg.Scheduler.Enabled,
		FullSyncInterval:     cfg.Scheduler.FullSyncInterval,
		PrioritySyncInterval: cfg.Scheduler.PrioritySyncInterval,
		RunOnStart:           cfg.Scheduler.RunOnStart,
	})

	log.Info("Sync engine assembled",
		zap.Int("suppliers", len(connectors)),
		zap.Bool("cache", app.Cache.Enabled()),
		zap.Bool("kafka", cfg.Kafka.Enabled),
	)
	return app, nil
}

func (a *App) buildCache() error {
	cfg := a.Config
	if cfg.Cache.Enabled {
		factory := cache.NewClientFactory(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
			cache.WithLogger(a.Logger),
			cache.WithInMemoryFallback(!cfg.App.IsProduction()),
		)
		client, err := factory.CreateClient(cfg.Cache.Backend)
		if err != nil {
			return fmt.Errorf("failed to create cache client: %w", err)
		}
		a.cacheClient = client
	}

	a.Cache = cache.NewCached(a.cacheClient, cache.Options{
		Enabled: cfg.Cache.Enabled,
		Prefix:  cfg.Cache.Prefix,
		TTLs: map[cache.Category]time.Duration{
			cache.CategoryProducts:  cfg.Cache.TTLProducts,
			cache.CategoryProduct:   cfg.Cache.TTLProduct,
			cache.CategoryInventory: cfg.Cache.TTLInventory,
			cache.CategoryPricing:   cfg.Cache.TTLPricing,
		},
		CostPerCall: cfg.Cache.CostPerCall,
		Logger:      a.Logger,
		Recorder:    a.Metrics,
	})
	return nil
}

// buildConnectors creates the enabled supplier connectors, each behind the
// response cache and sharing one retry policy.
func buildConnectors(cfg *config.Config, cached *cache.Cached, metrics *telemetry.SyncMetrics, log *zap.Logger) ([]integration.SupplierConnector, error) {
	retryer := supplier.NewRetryer(supplier.RetryPolicy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
		Multiplier:   cfg.Retry.Multiplier,
		Jitter:       cfg.Retry.Jitter,
	},
		supplier.WithRetryLogger(log),
		supplier.WithRetryObserver(metrics.ConnectorRetry),
	)
	opts := func(ratePerMinute int) supplier.CoreOptions {
		return supplier.CoreOptions{Retryer: retryer, Logger: log, RatePerMinute: ratePerMinute}
	}

	var connectors []integration.SupplierConnector
	add := func(conn integration.SupplierConnector, err error) error {
		if err != nil {
			return err
		}
		connectors = append(connectors, cache.NewCachedConnector(conn, cached))
		return nil
	}

	s := cfg.Suppliers
	if s.ASColour.Enabled {
		conn, err := supplier.NewASColourConnector(&supplier.ASColourConfig{
			APIKey:         s.ASColour.APIKey,
			Email:          s.ASColour.Email,
			Password:       s.ASColour.Password,
			BaseURL:        s.ASColour.BaseURL,
			PageSize:       s.ASColour.PageSize,
			TimeoutSeconds: s.ASColour.TimeoutSeconds,
			RatePerMinute:  s.ASColour.RatePerMinute,
		}, opts(s.ASColour.RatePerMinute))
		if err := add(conn, err); err != nil {
			return nil, fmt.Errorf("as-colour connector: %w", err)
		}
	}
	if s.SSActivewear.Enabled {
		conn, err := supplier.NewSSActivewearConnector(&supplier.SSActivewearConfig{
			AccountNumber:  s.SSActivewear.AccountNumber,
			APIKey:         s.SSActivewear.APIKey,
			BaseURL:        s.SSActivewear.BaseURL,
			PageSize:       s.SSActivewear.PageSize,
			TimeoutSeconds: s.SSActivewear.TimeoutSeconds,
			RatePerMinute:  s.SSActivewear.RatePerMinute,
		}, opts(s.SSActivewear.RatePerMinute))
		if err := add(conn, err); err != nil {
			return nil, fmt.Errorf("ss-activewear connector: %w", err)
		}
	}
	if s.SanMar.Enabled {
		var err error
		if s.SanMar.CatalogPath != "" {
			conn, cerr := supplier.NewCatalogFileConnector(integration.SupplierSanMar, s.SanMar.CatalogPath, "style")
			err = add(conn, cerr)
		} else {
			conn, cerr := supplier.NewSanMarConnector(&supplier.SanMarConfig{
				ClientID:       s.SanMar.ClientID,
				ClientSecret:   s.SanMar.ClientSecret,
				Scopes:         s.SanMar.Scopes,
				BaseURL:        s.SanMar.BaseURL,
				TokenURL:       s.SanMar.TokenURL,
				PageSize:       s.SanMar.PageSize,
				TimeoutSeconds: s.SanMar.TimeoutSeconds,
				RatePerMinute:  s.SanMar.RatePerMinute,
			}, opts(s.SanMar.RatePerMinute))
			err = add(conn, cerr)
		}
		if err != nil {
			return nil, fmt.Errorf("sanmar connector: %w", err)
		}
	}
	return connectors, nil
}

// WebhookSecrets returns the configured signing secrets keyed by supplier
func (a *App) WebhookSecrets() map[integration.SupplierID]string {
	secrets := make(map[integration.SupplierID]string, len(a.Config.Webhook.Secrets))
	for id, secret := range a.Config.Webhook.Secrets {
		secrets[integration.NormalizeSupplierID(id)] = secret
	}
	return secrets
}

// Close releases the stores and flushes telemetry. It is safe on a partially
// built App.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.Tracer != nil {
		errs = append(errs, a.Tracer.Shutdown(ctx))
	}
	if a.cacheClient != nil {
		errs = append(errs, a.cacheClient.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
