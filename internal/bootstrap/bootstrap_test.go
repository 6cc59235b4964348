package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/cache"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/config"
)

const sanMarExport = `{"style":"PC54","title":"Core Cotton Tee","brand":"Port & Company","category":"Tees","variants":[{"uniqueKey":"PC54-JN-XXL","color":"Jet Black","size":"XXL","price":3.10,"qty":12}]}
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sanmar.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sanMarExport), 0o600))

	return &config.Config{
		App:      config.AppConfig{Name: "supplier-sync", Env: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", AutoMigrate: true},
		Cache:    config.CacheConfig{Enabled: true, Backend: cache.BackendMemory, Prefix: "test"},
		Log:      config.LogConfig{Level: "error"},
		Pricing:  config.PricingConfig{DefaultMarkupPercent: 50},
		Retry:    config.RetryConfig{MaxAttempts: 1},
		Webhook: config.WebhookConfig{Secrets: map[string]string{
			"S&S":    "ss-secret",
			"sanmar": "sm-secret",
		}},
		Suppliers: config.SuppliersConfig{
			SanMar: config.SanMarConfig{Enabled: true, CatalogPath: path},
		},
	}
}

func TestNew_SyncsFromCatalogExport(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, testConfig(t), zap.NewNop(), "test")
	require.NoError(t, err)
	defer func() { assert.NoError(t, app.Close(ctx)) }()

	assert.Equal(t, []integration.SupplierID{integration.SupplierSanMar}, app.Registry.IDs())
	assert.True(t, app.Cache.Enabled())
	assert.False(t, app.Scheduler.IsRunning())

	runLog, err := app.Service.SyncSupplier(ctx, integration.SupplierSanMar, inventory.SyncTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, inventory.SyncStatusCompleted, runLog.Status)
	assert.Equal(t, 1, runLog.VariantsSynced)

	found, err := app.Service.InventoryBySKU(ctx, "PC54-JN-XXL")
	require.NoError(t, err)
	assert.Equal(t, 12, found.TotalQuantity)
	assert.True(t, found.InStock)

	history, err := app.Service.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestNew_InvalidDatabaseDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "oracle"

	app, err := New(context.Background(), cfg, zap.NewNop(), "test")
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestNew_SupplierMisconfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.Suppliers.SanMar.CatalogPath = ""

	_, err := New(context.Background(), cfg, zap.NewNop(), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sanmar connector")
}

func TestApp_WebhookSecrets(t *testing.T) {
	app := &App{Config: testConfig(t)}

	assert.Equal(t, map[integration.SupplierID]string{
		integration.SupplierSSActivewear: "ss-secret",
		integration.SupplierSanMar:       "sm-secret",
	}, app.WebhookSecrets())
}
