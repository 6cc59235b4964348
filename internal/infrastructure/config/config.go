package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Sync      SyncConfig
	Pricing   PricingConfig
	Retry     RetryConfig
	Webhook   WebhookConfig
	Suppliers SuppliersConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the service runs with production safeguards
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file path, ":memory:" for an in-process database
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int    // in minutes
	ConnMaxIdleTime int    // in minutes
	AutoMigrate     bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds supplier response cache settings
type CacheConfig struct {
	Enabled      bool
	Backend      string        // redis or memory
	Prefix       string
	TTLProducts  time.Duration
	TTLProduct   time.Duration
	TTLInventory time.Duration
	TTLPricing   time.Duration
	CostPerCall  float64       // assumed cost of one supplier API call, for savings estimates
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// SchedulerConfig holds the sync scheduler cadences
type SchedulerConfig struct {
	Enabled              bool
	FullSyncInterval     time.Duration
	PrioritySyncInterval time.Duration
	RunOnStart           bool
}

// SyncConfig holds sync orchestrator settings
type SyncConfig struct {
	ManualTimeout     time.Duration // how long a manual trigger waits before answering "running in background"
	LowStockThreshold int
	HighPriorityLimit int
	Concurrency       int           // suppliers synced in parallel by a full sync
}

// PricingConfig holds retail pricing settings
type PricingConfig struct {
	DefaultMarkupPercent float64
}

// RetryConfig holds the shared connector retry policy
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64
}

// WebhookConfig holds supplier push settings
type WebhookConfig struct {
	RequireSignature bool
	// Secrets maps a canonical supplier id to its HMAC signing secret
	Secrets map[string]string
}

// SuppliersConfig holds per-supplier credentials and endpoints
type SuppliersConfig struct {
	ASColour     ASColourConfig
	SSActivewear SSActivewearConfig
	SanMar       SanMarConfig
}

// ASColourConfig holds AS Colour API settings
type ASColourConfig struct {
	Enabled        bool
	BaseURL        string
	APIKey         string
	Email          string
	Password       string
	PageSize       int
	RatePerMinute  int
	TimeoutSeconds int
	WebhookSecret  string
}

// SSActivewearConfig holds S&S Activewear API settings
type SSActivewearConfig struct {
	Enabled        bool
	BaseURL        string
	AccountNumber  string
	APIKey         string
	PageSize       int
	RatePerMinute  int
	TimeoutSeconds int
	WebhookSecret  string
}

// SanMarConfig holds SanMar API settings. When CatalogPath is set the
// connector reads a local JSONL catalog export instead of the API.
type SanMarConfig struct {
	Enabled        bool
	BaseURL        string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	Scopes         []string
	CatalogPath    string
	PageSize       int
	RatePerMinute  int
	TimeoutSeconds int
	WebhookSecret  string
}

// KafkaConfig holds change event publishing settings
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	Topic    string
	ClientID string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
}

// MetricsConfig holds the Prometheus endpoint settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// legacyEnv maps config keys to the supplier variables used by the existing
// tooling, so one .env serves both.
var legacyEnv = map[string]string{
	"suppliers.ascolour.api_key":            "ASCOLOUR_API_KEY",
	"suppliers.ascolour.email":              "ASCOLOUR_EMAIL",
	"suppliers.ascolour.password":           "ASCOLOUR_PASSWORD",
	"suppliers.ssactivewear.api_key":        "SS_ACTIVEWEAR_API_KEY",
	"suppliers.ssactivewear.account_number": "SS_ACTIVEWEAR_ACCOUNT_NUMBER",
	"suppliers.sanmar.client_id":            "SANMAR_CLIENT_ID",
	"suppliers.sanmar.client_secret":        "SANMAR_CLIENT_SECRET",
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PRINTSHOP_ prefix (e.g., PRINTSHOP_DATABASE_PASSWORD)
// 2. Legacy supplier variables (e.g., ASCOLOUR_API_KEY)
// 3. config.toml
// 4. Built-in defaults
//
// A .env file in the working directory is loaded into the environment first
// when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("PRINTSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "PRINTSHOP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Enabled:      !v.IsSet("cache.enabled") || v.GetBool("cache.enabled"),
			Backend:      v.GetString("cache.backend"),
			Prefix:       v.GetString("cache.prefix"),
			TTLProducts:  v.GetDuration("cache.ttl_products"),
			TTLProduct:   v.GetDuration("cache.ttl_product"),
			TTLInventory: v.GetDuration("cache.ttl_inventory"),
			TTLPricing:   v.GetDuration("cache.ttl_pricing"),
			CostPerCall:  v.GetFloat64("cache.cost_per_call"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Scheduler: SchedulerConfig{
			Enabled:              !v.IsSet("scheduler.enabled") || v.GetBool("scheduler.enabled"),
			FullSyncInterval:     v.GetDuration("scheduler.full_sync_interval"),
			PrioritySyncInterval: v.GetDuration("scheduler.priority_sync_interval"),
			RunOnStart:           v.GetBool("scheduler.run_on_start"),
		},
		Sync: SyncConfig{
			ManualTimeout:     v.GetDuration("sync.manual_timeout"),
			LowStockThreshold: v.GetInt("sync.low_stock_threshold"),
			HighPriorityLimit: v.GetInt("sync.high_priority_limit"),
			Concurrency:       v.GetInt("sync.concurrency"),
		},
		Pricing: PricingConfig{
			DefaultMarkupPercent: v.GetFloat64("pricing.default_markup_percent"),
		},
		Retry: RetryConfig{
			MaxAttempts:  v.GetInt("retry.max_attempts"),
			InitialDelay: v.GetDuration("retry.initial_delay"),
			MaxDelay:     v.GetDuration("retry.max_delay"),
			Multiplier:   v.GetFloat64("retry.multiplier"),
			Jitter:       v.GetFloat64("retry.jitter"),
		},
		Webhook: WebhookConfig{
			RequireSignature: v.GetBool("webhook.require_signature"),
		},
		Suppliers: SuppliersConfig{
			ASColour: ASColourConfig{
				Enabled:        v.GetBool("suppliers.ascolour.enabled"),
				BaseURL:        v.GetString("suppliers.ascolour.base_url"),
				APIKey:         v.GetString("suppliers.ascolour.api_key"),
				Email:          v.GetString("suppliers.ascolour.email"),
				Password:       v.GetString("suppliers.ascolour.password"),
				PageSize:       v.GetInt("suppliers.ascolour.page_size"),
				RatePerMinute:  v.GetInt("suppliers.ascolour.rate_per_minute"),
				TimeoutSeconds: v.GetInt("suppliers.ascolour.timeout_seconds"),
				WebhookSecret:  v.GetString("suppliers.ascolour.webhook_secret"),
			},
			SSActivewear: SSActivewearConfig{
				Enabled:        v.GetBool("suppliers.ssactivewear.enabled"),
				BaseURL:        v.GetString("suppliers.ssactivewear.base_url"),
				AccountNumber:  v.GetString("suppliers.ssactivewear.account_number"),
				APIKey:         v.GetString("suppliers.ssactivewear.api_key"),
				PageSize:       v.GetInt("suppliers.ssactivewear.page_size"),
				RatePerMinute:  v.GetInt("suppliers.ssactivewear.rate_per_minute"),
				TimeoutSeconds: v.GetInt("suppliers.ssactivewear.timeout_seconds"),
				WebhookSecret:  v.GetString("suppliers.ssactivewear.webhook_secret"),
			},
			SanMar: SanMarConfig{
				Enabled:        v.GetBool("suppliers.sanmar.enabled"),
				BaseURL:        v.GetString("suppliers.sanmar.base_url"),
				TokenURL:       v.GetString("suppliers.sanmar.token_url"),
				ClientID:       v.GetString("suppliers.sanmar.client_id"),
				ClientSecret:   v.GetString("suppliers.sanmar.client_secret"),
				Scopes:         v.GetStringSlice("suppliers.sanmar.scopes"),
				CatalogPath:    v.GetString("suppliers.sanmar.catalog_path"),
				PageSize:       v.GetInt("suppliers.sanmar.page_size"),
				RatePerMinute:  v.GetInt("suppliers.sanmar.rate_per_minute"),
				TimeoutSeconds: v.GetInt("suppliers.sanmar.timeout_seconds"),
				WebhookSecret:  v.GetString("suppliers.sanmar.webhook_secret"),
			},
		},
		Kafka: KafkaConfig{
			Enabled:  v.GetBool("kafka.enabled"),
			Brokers:  v.GetStringSlice("kafka.brokers"),
			Topic:    v.GetString("kafka.topic"),
			ClientID: v.GetString("kafka.client_id"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		Metrics: MetricsConfig{
			Enabled: !v.IsSet("metrics.enabled") || v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "supplier-sync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "printshop"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "printshop.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "redis"
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "supplier"
	}
	if cfg.Cache.TTLProducts == 0 {
		cfg.Cache.TTLProducts = 24 * time.Hour
	}
	if cfg.Cache.TTLProduct == 0 {
		cfg.Cache.TTLProduct = 6 * time.Hour
	}
	if cfg.Cache.TTLInventory == 0 {
		cfg.Cache.TTLInventory = 15 * time.Minute
	}
	if cfg.Cache.TTLPricing == 0 {
		cfg.Cache.TTLPricing = time.Hour
	}
	if cfg.Cache.CostPerCall == 0 {
		cfg.Cache.CostPerCall = 0.01
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.Scheduler.FullSyncInterval == 0 {
		cfg.Scheduler.FullSyncInterval = 6 * time.Hour
	}
	if cfg.Scheduler.PrioritySyncInterval == 0 {
		cfg.Scheduler.PrioritySyncInterval = time.Hour
	}
	if cfg.Sync.ManualTimeout == 0 {
		cfg.Sync.ManualTimeout = 30 * time.Second
	}
	if cfg.Sync.LowStockThreshold == 0 {
		cfg.Sync.LowStockThreshold = 10
	}
	if cfg.Sync.HighPriorityLimit == 0 {
		cfg.Sync.HighPriorityLimit = 500
	}
	if cfg.Sync.Concurrency == 0 {
		cfg.Sync.Concurrency = 3
	}
	if cfg.Pricing.DefaultMarkupPercent == 0 {
		cfg.Pricing.DefaultMarkupPercent = 50
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = time.Second
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 10 * time.Second
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = 2
	}
	if cfg.Retry.Jitter == 0 {
		cfg.Retry.Jitter = 0.3
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "inventory.changes"
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = cfg.App.Name
	}
	// Telemetry defaults
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	cfg.Webhook.Secrets = map[string]string{}
	if s := cfg.Suppliers.ASColour.WebhookSecret; s != "" {
		cfg.Webhook.Secrets["as-colour"] = s
	}
	if s := cfg.Suppliers.SSActivewear.WebhookSecret; s != "" {
		cfg.Webhook.Secrets["ss-activewear"] = s
	}
	if s := cfg.Suppliers.SanMar.WebhookSecret; s != "" {
		cfg.Webhook.Secrets["sanmar"] = s
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}

	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("cache.backend must be redis or memory, got %q", c.Cache.Backend)
	}

	if c.Scheduler.FullSyncInterval < time.Minute || c.Scheduler.PrioritySyncInterval < time.Minute {
		return fmt.Errorf("scheduler intervals must be at least one minute")
	}
	if c.Sync.LowStockThreshold < 0 {
		return fmt.Errorf("sync.low_stock_threshold cannot be negative")
	}
	if c.Pricing.DefaultMarkupPercent < 0 {
		return fmt.Errorf("pricing.default_markup_percent cannot be negative")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter >= 1 {
		return fmt.Errorf("retry.jitter must be in [0, 1), got %f", c.Retry.Jitter)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}

	// Production-specific validations
	if c.App.IsProduction() {
		if c.Database.Driver == "postgres" {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		if !c.Webhook.RequireSignature {
			return fmt.Errorf("webhook.require_signature must be true in production")
		}
		// Database tracing: full SQL logging is a security risk in production
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	// Validate telemetry configuration (all environments)
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Address returns the Redis host:port address
func (r *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
