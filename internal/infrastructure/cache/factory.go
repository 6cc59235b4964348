package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Backend names accepted by the factory
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ClientFactory creates cache clients based on configuration
type ClientFactory struct {
	redisConfig           RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	cleanupInterval       time.Duration
}

// ClientFactoryOption is a functional option for configuring the factory
type ClientFactoryOption func(*ClientFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ClientFactoryOption {
	return func(f *ClientFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory client when Redis is unavailable.
// Default is true (allow fallback).
func WithInMemoryFallback(allow bool) ClientFactoryOption {
	return func(f *ClientFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithCleanupInterval sets how often the in-memory client drops expired entries
func WithCleanupInterval(d time.Duration) ClientFactoryOption {
	return func(f *ClientFactory) {
		f.cleanupInterval = d
	}
}

// NewClientFactory creates a new factory
func NewClientFactory(cfg RedisConfig, opts ...ClientFactoryOption) *ClientFactory {
	f := &ClientFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		cleanupInterval:       5 * time.Minute,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisClient creates a Redis-backed client
func (f *ClientFactory) CreateRedisClient() (Client, error) {
	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cache client: %w", err)
	}
	return client, nil
}

// CreateInMemoryClient creates an in-memory client.
// In-memory caches are not shared across process instances.
func (f *ClientFactory) CreateInMemoryClient() Client {
	return NewMemoryClient(f.cleanupInterval)
}

// CreateClient creates a client for the configured backend. For Redis it falls
// back to the in-memory client when Redis is unreachable and fallback is allowed.
func (f *ClientFactory) CreateClient(backend string) (Client, error) {
	if backend == BackendMemory {
		f.logger.Info("Using in-memory supplier cache")
		return f.CreateInMemoryClient(), nil
	}

	client, err := f.CreateRedisClient()
	if err == nil {
		f.logger.Info("Using Redis supplier cache")
		return client, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for supplier cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory supplier cache. "+
		"Cached supplier responses will not be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryClient(), nil
}
