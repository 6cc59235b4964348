package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/inventorysync"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
)

func testProduct(supplier integration.SupplierID, sku, name string) *catalog.Product {
	return catalog.NewProduct(catalog.UnifiedProduct{
		SKU:         sku,
		Name:        name,
		Brand:       "AS Colour",
		Category:    "t-shirts",
		Sizes:       []catalog.Size{"S", "M"},
		Colors:      []catalog.Color{{Name: "Black", Slug: "black"}},
		BasePrice:   decimal.RequireFromString("12.50"),
		BulkBreaks:  []catalog.PriceBreak{{MinQuantity: 12, Price: decimal.RequireFromString("11.00")}},
		SupplierID:  supplier,
		LastUpdated: time.Now().UTC(),
	})
}

func testVariant(productID uuid.UUID, sku string, qty int) *catalog.ProductVariant {
	v := &catalog.ProductVariant{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		ProductSKU: "5001",
		SKU:        sku,
		Color:      catalog.Color{Name: "Black", Slug: "black"},
		Size:       "M",
		Price:      decimal.RequireFromString("18.75"),
	}
	v.SetInventory(qty, catalog.DefaultLowStockThreshold)
	return v
}

func TestGormProductRepository_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDB(t))

	first := testProduct(integration.SupplierASColour, "5001", "Staple Tee")
	id, err := repo.Save(ctx, first)
	require.NoError(t, err)

	again := testProduct(integration.SupplierASColour, "5001", "Staple Tee v2")
	id2, err := repo.Save(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	other := testProduct(integration.SupplierSanMar, "5001", "Different supplier")
	id3, err := repo.Save(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, id, id3)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := repo.FindBySKU(ctx, "5001")
	require.NoError(t, err)
	assert.Equal(t, "5001", got.SKU)
	assert.Len(t, got.Colors, 1)
	require.Len(t, got.BulkBreaks, 1)
	assert.True(t, got.BulkBreaks[0].Price.Equal(decimal.RequireFromString("11.00")))
}

func TestGormProductRepository_FindBySKU_NotFound(t *testing.T) {
	repo := NewGormProductRepository(newTestDB(t))

	_, err := repo.FindBySKU(context.Background(), "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormVariantRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormVariantRepository(newTestDB(t))
	productID := uuid.New()

	t.Run("save keeps the stored id for an existing sku", func(t *testing.T) {
		id, err := repo.Save(ctx, testVariant(productID, "ASC-5001-BLK-M-a1b2", 50))
		require.NoError(t, err)

		updated := testVariant(productID, "ASC-5001-BLK-M-a1b2", 4)
		id2, err := repo.Save(ctx, updated)
		require.NoError(t, err)
		assert.Equal(t, id, id2)

		got, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 4, got.InventoryQty)
		assert.Equal(t, catalog.InventoryStatusLowStock, got.InventoryStatus)
	})

	t.Run("find by sku and product", func(t *testing.T) {
		_, err := repo.Save(ctx, testVariant(productID, "ASC-5001-BLK-L-c3d4", 100))
		require.NoError(t, err)

		got, err := repo.FindBySKU(ctx, "ASC-5001-BLK-L-c3d4")
		require.NoError(t, err)
		assert.Equal(t, "black", got.Color.Slug)

		variants, err := repo.FindByProduct(ctx, productID)
		require.NoError(t, err)
		assert.Len(t, variants, 2)
	})

	t.Run("sync priority returns flagged first then low stock", func(t *testing.T) {
		flagged := testVariant(productID, "ASC-5001-WHT-S-e5f6", 500)
		flagged.HighPriority = true
		_, err := repo.Save(ctx, flagged)
		require.NoError(t, err)

		priority, err := repo.FindSyncPriority(ctx, 10)
		require.NoError(t, err)
		require.Len(t, priority, 2)
		assert.Equal(t, "ASC-5001-WHT-S-e5f6", priority[0].SKU)
		assert.Equal(t, "ASC-5001-BLK-M-a1b2", priority[1].SKU)

		limited, err := repo.FindSyncPriority(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("unknown sku", func(t *testing.T) {
		_, err := repo.FindBySKU(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSupplierInventoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierInventoryRepository(newTestDB(t))
	variantID := uuid.New()
	now := time.Now().UTC()

	primary := inventory.NewSupplierInventory(variantID, "SKU-001", integration.SupplierSSActivewear, "B00760003",
		inventory.NewSnapshot(50, decimal.RequireFromString("3.10")), now)
	primary.IsPrimary = true
	require.NoError(t, repo.Save(ctx, primary))

	t.Run("lookup by mapping key", func(t *testing.T) {
		got, err := repo.FindByVariantAndSupplier(ctx, variantID, integration.SupplierSSActivewear, "B00760003")
		require.NoError(t, err)
		assert.Equal(t, primary.ID, got.ID)
		assert.Equal(t, 50, got.Quantity)
		assert.True(t, got.InStock)
	})

	t.Run("saving a fresh entity for the same key updates in place", func(t *testing.T) {
		fresh := inventory.NewSupplierInventory(variantID, "SKU-001", integration.SupplierSSActivewear, "B00760003",
			inventory.NewSnapshot(100, decimal.RequireFromString("3.10")), now)
		fresh.IsPrimary = true
		require.NoError(t, repo.Save(ctx, fresh))
		assert.Equal(t, primary.ID, fresh.ID)

		got, err := repo.FindBySupplierSKU(ctx, integration.SupplierSSActivewear, "B00760003")
		require.NoError(t, err)
		assert.Equal(t, 100, got.Quantity)
	})

	t.Run("a new primary demotes the previous one", func(t *testing.T) {
		second := inventory.NewSupplierInventory(variantID, "SKU-001", integration.SupplierSanMar, "PC61-BLK-M",
			inventory.NewSnapshot(7, decimal.RequireFromString("3.40")), now)
		second.IsPrimary = true
		require.NoError(t, repo.Save(ctx, second))

		mappings, err := repo.FindByVariantSKU(ctx, "SKU-001")
		require.NoError(t, err)
		require.Len(t, mappings, 2)
		assert.Equal(t, integration.SupplierSanMar, mappings[0].SupplierID)
		assert.True(t, mappings[0].IsPrimary)
		assert.False(t, mappings[1].IsPrimary)
	})

	t.Run("unknown supplier sku", func(t *testing.T) {
		_, err := repo.FindBySupplierSKU(ctx, integration.SupplierASColour, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSyncLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSyncLogRepository(newTestDB(t))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older := inventory.NewInventorySyncLog(integration.SupplierASColour, inventory.SyncTriggerScheduled)
	require.NoError(t, older.Start(base))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, older.Finish(10, 2, base.Add(time.Minute)))
	require.NoError(t, repo.Update(ctx, older))

	newer := inventory.NewInventorySyncLog(integration.SupplierASColour, inventory.SyncTriggerManual)
	require.NoError(t, newer.Start(base.Add(time.Hour)))
	require.NoError(t, repo.Create(ctx, newer))

	other := inventory.NewInventorySyncLog(integration.SupplierSanMar, inventory.SyncTriggerScheduled)
	require.NoError(t, other.Start(base.Add(30*time.Minute)))
	require.NoError(t, repo.Create(ctx, other))
	require.NoError(t, other.Fail("sanmar: auth error", base.Add(31*time.Minute)))
	require.NoError(t, repo.Update(ctx, other))

	t.Run("find by id round trips the terminal state", func(t *testing.T) {
		got, err := repo.FindByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.SyncStatusCompleted, got.Status)
		assert.Equal(t, 10, got.VariantsSynced)
		assert.Equal(t, 2, got.ChangesDetected)
		require.NotNil(t, got.CompletedAt)
		assert.Empty(t, got.Errors)

		failed, err := repo.FindByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"sanmar: auth error"}, failed.Errors)
	})

	t.Run("recent is newest first", func(t *testing.T) {
		logs, err := repo.FindRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, newer.ID, logs[0].ID)
		assert.Equal(t, other.ID, logs[1].ID)
	})

	t.Run("latest per supplier", func(t *testing.T) {
		latest, err := repo.FindLatestBySupplier(ctx)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, newer.ID, latest[integration.SupplierASColour].ID)
		assert.Equal(t, inventory.SyncStatusRunning, latest[integration.SupplierASColour].Status)
		assert.Equal(t, other.ID, latest[integration.SupplierSanMar].ID)
	})

	t.Run("update of unknown log", func(t *testing.T) {
		ghost := inventory.NewInventorySyncLog(integration.SupplierSanMar, inventory.SyncTriggerManual)
		assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
	})
}

func TestGormChangeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormChangeRepository(newTestDB(t))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	variantID := uuid.New()

	changes := []inventory.InventoryChange{
		{VariantID: variantID, SKU: "SKU-001", SupplierID: integration.SupplierSSActivewear, ChangeType: inventory.ChangeTypeQuantity, OldValue: "50", NewValue: "100", DetectedAt: base},
		{VariantID: variantID, SKU: "SKU-001", SupplierID: integration.SupplierSSActivewear, ChangeType: inventory.ChangeTypePrice, OldValue: "14.99", NewValue: "15.99", DetectedAt: base.Add(time.Second)},
	}
	require.NoError(t, repo.Append(ctx, changes))
	assert.NotEqual(t, uuid.Nil, changes[0].ID)
	require.NoError(t, repo.Append(ctx, nil))

	recent, err := repo.FindRecent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, inventory.ChangeTypePrice, recent[0].ChangeType)
	assert.Equal(t, "50", recent[1].OldValue)
	assert.Equal(t, "100", recent[1].NewValue)

	pending, err := repo.FindUnnotified(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, inventory.ChangeTypeQuantity, pending[0].ChangeType)

	require.NoError(t, repo.MarkNotified(ctx, []uuid.UUID{changes[0].ID}))
	require.NoError(t, repo.MarkNotified(ctx, nil))

	pending, err = repo.FindUnnotified(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, changes[1].ID, pending[0].ID)
}

// newMockGormDB creates a GORM handle over a mocked postgres connection
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormVariantRepository_FindBySKU_DatabaseError(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "product_variants" WHERE sku = \$1`).
		WillReturnError(errors.New("connection reset"))

	_, err := NewGormVariantRepository(db).FindBySKU(context.Background(), "SKU-001")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormChangeRepository_MarkNotified_Query(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	mock.ExpectExec(`UPDATE "inventory_changes" SET "notified"=\$1 WHERE id IN \(\$2,\$3\)`).
		WithArgs(true, ids[0], ids[1]).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, NewGormChangeRepository(db).MarkNotified(context.Background(), ids))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSyncLogRepository_FindRecent_DatabaseError(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "inventory_sync_logs" ORDER BY started_at DESC LIMIT \$1`).
		WithArgs(50).
		WillReturnError(sql.ErrConnDone)

	_, err := NewGormSyncLogRepository(db).FindRecent(context.Background(), 50)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTransactionScope_LocksSupplierInventoryRow(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	variantID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "supplier_inventory" WHERE .* FOR UPDATE$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err := NewGormTransactionScope(db).Execute(context.Background(), func(repos inventorysync.TransactionalRepositories) error {
		_, err := repos.SupplierInventoryRepo().FindByVariantAndSupplier(context.Background(), variantID, integration.SupplierSanMar, "PC61-BLK-M")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSupplierInventoryRepository_ReadOutsideTransactionDoesNotLock(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "supplier_inventory" WHERE .* LIMIT \$\d+$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewGormSupplierInventoryRepository(db).FindByVariantAndSupplier(context.Background(), uuid.New(), integration.SupplierSanMar, "PC61-BLK-M")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
