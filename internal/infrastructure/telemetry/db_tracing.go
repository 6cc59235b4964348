package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled    bool   // Enable database tracing
	LogFullSQL bool   // Include query variables in spans (dev only)
	DBSystem   string // Database name reported on spans (default: the dialector name)

	// Provider overrides the global tracer provider.
	Provider trace.TracerProvider
}

// RegisterDBTracing installs the otelgorm plugin on db so every query runs
// inside a span parented by the caller's context.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	dbName := cfg.DBSystem
	if dbName == "" {
		dbName = db.Dialector.Name()
	}
	opts := []otelgorm.Option{
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutMetrics(),
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.Provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.Provider))
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.String("db_system", dbName),
	)
	return nil
}
