package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
)

// SupplierInventory maps one variant to one supplier's own SKU and holds the
// last synced quantity and price. Unique per (variant, supplier, supplier SKU);
// at most one mapping per variant is primary.
type SupplierInventory struct {
	shared.BaseEntity
	VariantID     uuid.UUID              `json:"variantId"`
	VariantSKU    string                 `json:"variantSku"`
	SupplierID    integration.SupplierID `json:"supplierId"`
	SupplierSKU   string                 `json:"supplierSku"`
	SupplierPrice decimal.Decimal        `json:"supplierPrice"`
	Quantity      int                    `json:"quantity"`
	InStock       bool                   `json:"inStock"`
	LeadTimeDays  int                    `json:"leadTimeDays"`
	MOQ           int                    `json:"moq"`
	IsPrimary     bool                   `json:"isPrimary"`
	LastSynced    time.Time              `json:"lastSynced"`
}

// Snapshot is the freshly fetched state of a variant at one supplier
type Snapshot struct {
	Quantity int
	Price    decimal.Decimal
	InStock  bool
}

// NewSnapshot builds a snapshot, clamping negative quantities to zero
func NewSnapshot(qty int, price decimal.Decimal) Snapshot {
	if qty < 0 {
		qty = 0
	}
	return Snapshot{Quantity: qty, Price: price, InStock: qty > 0}
}

// NewSupplierInventory creates the first mapping row for a variant at a supplier
func NewSupplierInventory(variantID uuid.UUID, variantSKU string, supplierID integration.SupplierID, supplierSKU string, snap Snapshot, now time.Time) *SupplierInventory {
	inv := &SupplierInventory{
		BaseEntity:  shared.NewBaseEntity(),
		VariantID:   variantID,
		VariantSKU:  variantSKU,
		SupplierID:  supplierID,
		SupplierSKU: supplierSKU,
		LastSynced:  now,
	}
	inv.apply(snap)
	return inv
}

// Snapshot returns the currently persisted state
func (s *SupplierInventory) Snapshot() Snapshot {
	return Snapshot{Quantity: s.Quantity, Price: s.SupplierPrice, InStock: s.InStock}
}

// Apply records a new snapshot and returns the field-level changes it caused
func (s *SupplierInventory) Apply(snap Snapshot, now time.Time) []InventoryChange {
	changes := DetectChanges(s, snap, now)
	s.apply(snap)
	s.LastSynced = now
	s.UpdatedAt = now
	return changes
}

func (s *SupplierInventory) apply(snap Snapshot) {
	if snap.Quantity < 0 {
		snap.Quantity = 0
	}
	s.Quantity = snap.Quantity
	s.SupplierPrice = snap.Price
	s.InStock = snap.InStock
}
