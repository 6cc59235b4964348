//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/persistence/models"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("printshop_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func TestPostgres_SupplierInventoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(t)

	products := NewGormProductRepository(db)
	productID, err := products.Save(ctx, testProduct(integration.SupplierSSActivewear, "B00760", "Ultra Cotton Tee"))
	require.NoError(t, err)

	variants := NewGormVariantRepository(db)
	variantID, err := variants.Save(ctx, testVariant(productID, "SKU-001", 50))
	require.NoError(t, err)

	supplierInv := NewGormSupplierInventoryRepository(db)
	inv := inventory.NewSupplierInventory(variantID, "SKU-001", integration.SupplierSSActivewear, "B00760003",
		inventory.NewSnapshot(50, decimal.RequireFromString("14.99")), time.Now().UTC())
	inv.IsPrimary = true
	require.NoError(t, supplierInv.Save(ctx, inv))

	changes := inv.Apply(inventory.NewSnapshot(100, decimal.RequireFromString("15.99")), time.Now().UTC())
	require.NoError(t, supplierInv.Save(ctx, inv))
	require.NoError(t, NewGormChangeRepository(db).Append(ctx, changes))

	got, err := supplierInv.FindBySupplierSKU(ctx, integration.SupplierSSActivewear, "B00760003")
	require.NoError(t, err)
	assert.Equal(t, 100, got.Quantity)
	assert.True(t, got.SupplierPrice.Equal(decimal.RequireFromString("15.99")))

	recent, err := NewGormChangeRepository(db).FindRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	logs := NewGormSyncLogRepository(db)
	log := inventory.NewInventorySyncLog(integration.SupplierSSActivewear, inventory.SyncTriggerManual)
	require.NoError(t, log.Start(time.Now().UTC()))
	require.NoError(t, logs.Create(ctx, log))
	latest, err := logs.FindLatestBySupplier(ctx)
	require.NoError(t, err)
	assert.Equal(t, log.ID, latest[integration.SupplierSSActivewear].ID)
	assert.NotEqual(t, uuid.Nil, latest[integration.SupplierSSActivewear].ID)
}
