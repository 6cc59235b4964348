package inventorysync

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// ---------------------------------------------------------------------------
// Sync results
// ---------------------------------------------------------------------------

// SyncResult is the outcome of one supplier's run within SyncAllSuppliers.
// Log is nil only when the run never started (unknown supplier, run in progress).
type SyncResult struct {
	SupplierID integration.SupplierID      `json:"supplierId"`
	Log        *inventory.InventorySyncLog `json:"log,omitempty"`
	Err        error                       `json:"-"`
}

// Succeeded reports whether the run completed without errors
func (r SyncResult) Succeeded() bool {
	return r.Err == nil && r.Log != nil && r.Log.Status == inventory.SyncStatusCompleted
}

// PrioritySyncResult summarizes an incremental run over high-priority variants
type PrioritySyncResult struct {
	VariantsChecked int                           `json:"variantsChecked"`
	VariantsSynced  int                           `json:"variantsSynced"`
	ChangesDetected int                           `json:"changesDetected"`
	Logs            []*inventory.InventorySyncLog `json:"logs"`
	Skipped         []integration.SupplierID      `json:"skipped"`
}

// ---------------------------------------------------------------------------
// Webhook updates
// ---------------------------------------------------------------------------

// InventoryUpdate is a supplier-pushed delta for one SKU. SKU may be the
// supplier's own SKU or the internal variant SKU. A nil Price keeps the
// last known price.
type InventoryUpdate struct {
	SupplierID integration.SupplierID
	SKU        string
	Quantity   int
	Price      *decimal.Decimal
}

// ApplyResult is the state after an update was applied
type ApplyResult struct {
	SupplierID  integration.SupplierID      `json:"supplierId"`
	SKU         string                      `json:"sku"`
	VariantSKU  string                      `json:"variantSku"`
	SupplierSKU string                      `json:"supplierSku"`
	Quantity    int                         `json:"quantity"`
	Price       decimal.Decimal             `json:"price"`
	Created     bool                        `json:"created"`
	Changes     []inventory.InventoryChange `json:"changes"`
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// SupplierStatus is the sync state of one configured supplier
type SupplierStatus struct {
	SupplierID  integration.SupplierID      `json:"supplierId"`
	DisplayName string                      `json:"displayName"`
	Syncing     bool                        `json:"syncing"`
	LastSync    *inventory.InventorySyncLog `json:"lastSync,omitempty"`
	LastSyncAt  *time.Time                  `json:"lastSyncAt,omitempty"`
}

// StatusReport is the overall sync state across suppliers
type StatusReport struct {
	Suppliers   []SupplierStatus `json:"suppliers"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// SKUInventory is the current inventory of one variant across its suppliers
type SKUInventory struct {
	Variant       catalog.ProductVariant        `json:"variant"`
	Suppliers     []inventory.SupplierInventory `json:"suppliers"`
	TotalQuantity int                           `json:"totalQuantity"`
	InStock       bool                          `json:"inStock"`
}
