package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/logger"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/middleware"
)

// EngineConfig configures the global middleware chain
type EngineConfig struct {
	Logger         *zap.Logger
	TrustedProxies []string
	MaxBodySize    int64
	CORS           middleware.CORSConfig
	Tracing        middleware.TracingConfig

	// HTTPMetrics records request counters when set
	HTTPMetrics *middleware.HTTPMetrics

	// MetricsHandler is served at MetricsPath when set
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewEngine creates a gin engine with the global middleware chain.
// The request ID is assigned first so every later layer can log it.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.TracingWithConfig(cfg.Tracing))
		engine.Use(middleware.SpanAttributes())
		engine.Use(middleware.SpanErrorMarker())
	}
	if cfg.HTTPMetrics != nil {
		engine.Use(cfg.HTTPMetrics.Middleware())
	}
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	return engine, nil
}
