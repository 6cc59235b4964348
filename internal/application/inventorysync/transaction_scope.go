package inventorysync

import (
	"context"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// TransactionScope provides transactional access to the catalog and inventory repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a sync writes through.
// All repositories returned share the same underlying database transaction.
//
// Notes:
//   - ProductRepo and VariantRepo upsert by SKU, so a product and its variants
//     are replaced as one unit per fetched product.
//   - SupplierInventoryRepo holds the last synced state that change detection diffs against.
//   - ChangeRepo is append-only; the changes of a variant commit together with its new state.
//
// Sync logs are not part of the scope; they are written outside any product
// transaction.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// VariantRepo returns the variant repository scoped to the current transaction
	VariantRepo() catalog.VariantRepository
	// SupplierInventoryRepo returns the supplier inventory repository scoped to the current transaction
	SupplierInventoryRepo() inventory.SupplierInventoryRepository
	// ChangeRepo returns the change log repository scoped to the current transaction
	ChangeRepo() inventory.ChangeRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when the store has no transaction support.
type NoOpTransactionScope struct {
	productRepo   catalog.ProductRepository
	variantRepo   catalog.VariantRepository
	inventoryRepo inventory.SupplierInventoryRepository
	changeRepo    inventory.ChangeRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	variantRepo catalog.VariantRepository,
	inventoryRepo inventory.SupplierInventoryRepository,
	changeRepo inventory.ChangeRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:   productRepo,
		variantRepo:   variantRepo,
		inventoryRepo: inventoryRepo,
		changeRepo:    changeRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// VariantRepo returns the variant repository.
func (s *NoOpTransactionScope) VariantRepo() catalog.VariantRepository {
	return s.variantRepo
}

// SupplierInventoryRepo returns the supplier inventory repository.
func (s *NoOpTransactionScope) SupplierInventoryRepo() inventory.SupplierInventoryRepository {
	return s.inventoryRepo
}

// ChangeRepo returns the change log repository.
func (s *NoOpTransactionScope) ChangeRepo() inventory.ChangeRepository {
	return s.changeRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
