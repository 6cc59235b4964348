package inventory

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// ChangeType names the field an InventoryChange records
type ChangeType string

const (
	ChangeTypeQuantity     ChangeType = "quantity"
	ChangeTypePrice        ChangeType = "price"
	ChangeTypeAvailability ChangeType = "availability"
)

// IsValid returns true if the change type is valid
func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeTypeQuantity, ChangeTypePrice, ChangeTypeAvailability:
		return true
	default:
		return false
	}
}

// InventoryChange is an append-only audit record of one field that changed
// between two syncs of a variant at a supplier. Only Notified is ever updated.
type InventoryChange struct {
	ID         uuid.UUID              `json:"id"`
	VariantID  uuid.UUID              `json:"variantId"`
	SKU        string                 `json:"sku"`
	SupplierID integration.SupplierID `json:"supplierId"`
	ChangeType ChangeType             `json:"changeType"`
	OldValue   string                 `json:"oldValue"`
	NewValue   string                 `json:"newValue"`
	DetectedAt time.Time              `json:"detectedAt"`
	Notified   bool                   `json:"notified"`
}

// DetectChanges compares the persisted row against a fresh snapshot and
// returns one change per differing field. A nil prev is a creation and
// yields no changes.
func DetectChanges(prev *SupplierInventory, next Snapshot, now time.Time) []InventoryChange {
	if prev == nil {
		return nil
	}
	if next.Quantity < 0 {
		next.Quantity = 0
	}

	var changes []InventoryChange
	add := func(ct ChangeType, oldValue, newValue string) {
		changes = append(changes, InventoryChange{
			ID:         uuid.New(),
			VariantID:  prev.VariantID,
			SKU:        prev.VariantSKU,
			SupplierID: prev.SupplierID,
			ChangeType: ct,
			OldValue:   oldValue,
			NewValue:   newValue,
			DetectedAt: now,
		})
	}

	if prev.Quantity != next.Quantity {
		add(ChangeTypeQuantity, strconv.Itoa(prev.Quantity), strconv.Itoa(next.Quantity))
	}
	if !prev.SupplierPrice.Equal(next.Price) {
		add(ChangeTypePrice, prev.SupplierPrice.StringFixed(2), next.Price.StringFixed(2))
	}
	if prev.InStock != next.InStock {
		add(ChangeTypeAvailability, strconv.FormatBool(prev.InStock), strconv.FormatBool(next.InStock))
	}
	return changes
}
