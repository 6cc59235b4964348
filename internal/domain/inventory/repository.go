package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// SupplierInventoryRepository defines the interface for supplier inventory persistence.
// Lookups return shared.ErrNotFound when no row matches.
type SupplierInventoryRepository interface {
	// FindByVariantAndSupplier finds the mapping of a variant at one supplier
	FindByVariantAndSupplier(ctx context.Context, variantID uuid.UUID, supplierID integration.SupplierID, supplierSKU string) (*SupplierInventory, error)

	// FindBySupplierSKU finds the mapping by the supplier's own SKU
	FindBySupplierSKU(ctx context.Context, supplierID integration.SupplierID, supplierSKU string) (*SupplierInventory, error)

	// FindByVariantSKU returns all supplier mappings of a variant, primary first
	FindByVariantSKU(ctx context.Context, variantSKU string) ([]SupplierInventory, error)

	// Save creates or updates a mapping
	Save(ctx context.Context, inv *SupplierInventory) error
}

// SyncLogRepository defines the interface for sync run log persistence
type SyncLogRepository interface {
	// Create inserts a new sync log
	Create(ctx context.Context, log *InventorySyncLog) error

	// Update persists the state of a log owned by the current run
	Update(ctx context.Context, log *InventorySyncLog) error

	// FindByID finds a log by ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventorySyncLog, error)

	// FindRecent returns the newest logs first
	FindRecent(ctx context.Context, limit int) ([]InventorySyncLog, error)

	// FindLatestBySupplier returns the newest log of each supplier
	FindLatestBySupplier(ctx context.Context) (map[integration.SupplierID]InventorySyncLog, error)
}

// ChangeRepository defines the interface for the append-only change log
type ChangeRepository interface {
	// Append inserts new change records
	Append(ctx context.Context, changes []InventoryChange) error

	// FindRecent returns the newest changes first
	FindRecent(ctx context.Context, limit int) ([]InventoryChange, error)

	// FindUnnotified returns changes not yet published, oldest first
	FindUnnotified(ctx context.Context, limit int) ([]InventoryChange, error)

	// MarkNotified flips the notified flag; the only permitted update
	MarkNotified(ctx context.Context, ids []uuid.UUID) error
}
