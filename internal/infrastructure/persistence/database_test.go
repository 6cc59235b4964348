package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/config"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/persistence/models"
)

// newTestDatabase opens a migrated in-memory SQLite database
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newTestDatabase(t).DB
}

func TestNewDatabase_SQLite(t *testing.T) {
	db := newTestDatabase(t)

	assert.NoError(t, db.Ping())
	for _, m := range models.AllModels() {
		assert.True(t, db.DB.Migrator().HasTable(m), "%T table missing", m)
	}

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestNewDatabaseWithOptions_ZapLogger(t *testing.T) {
	db, err := NewDatabaseWithOptions(
		&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Options{Logger: zap.NewNop()},
	)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.AutoMigrate())
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported database driver "mysql"`)
}

func TestDatabase_Transaction(t *testing.T) {
	db := newTestDatabase(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Exec("DELETE FROM inventory_changes").Error
	})
	assert.NoError(t, err)
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping())
}
