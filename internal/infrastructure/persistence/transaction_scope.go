package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/inventorysync"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// GormTransactionScope implements inventorysync.TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos inventorysync.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) VariantRepo() catalog.VariantRepository {
	return NewGormVariantRepository(r.tx)
}

func (r *gormTransactionalRepositories) SupplierInventoryRepo() inventory.SupplierInventoryRepository {
	return newLockingSupplierInventoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) ChangeRepo() inventory.ChangeRepository {
	return NewGormChangeRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ inventorysync.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ inventorysync.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
