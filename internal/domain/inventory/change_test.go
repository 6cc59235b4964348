package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

func newInventory(qty int, price string) *SupplierInventory {
	return NewSupplierInventory(uuid.New(), "SKU-001", integration.SupplierSSActivewear, "B00760004",
		NewSnapshot(qty, decimal.RequireFromString(price)), time.Now())
}

func TestDetectChanges_CreationIsNotAChange(t *testing.T) {
	assert.Empty(t, DetectChanges(nil, NewSnapshot(50, decimal.RequireFromString("3.99")), time.Now()))
}

func TestDetectChanges_QuantityOnly(t *testing.T) {
	inv := newInventory(50, "3.99")

	changes := DetectChanges(inv, NewSnapshot(100, decimal.RequireFromString("3.99")), time.Now())

	require.Len(t, changes, 1)
	assert.Equal(t, ChangeTypeQuantity, changes[0].ChangeType)
	assert.Equal(t, "50", changes[0].OldValue)
	assert.Equal(t, "100", changes[0].NewValue)
	assert.Equal(t, "SKU-001", changes[0].SKU)
	assert.False(t, changes[0].Notified)
}

func TestDetectChanges_OneRowPerField(t *testing.T) {
	inv := newInventory(5, "3.99")

	changes := DetectChanges(inv, NewSnapshot(0, decimal.RequireFromString("4.25")), time.Now())

	require.Len(t, changes, 3)
	types := []ChangeType{changes[0].ChangeType, changes[1].ChangeType, changes[2].ChangeType}
	assert.ElementsMatch(t, []ChangeType{ChangeTypeQuantity, ChangeTypePrice, ChangeTypeAvailability}, types)
	assert.Equal(t, "3.99", changes[1].OldValue)
	assert.Equal(t, "4.25", changes[1].NewValue)
	assert.Equal(t, "true", changes[2].OldValue)
	assert.Equal(t, "false", changes[2].NewValue)
}

func TestDetectChanges_PriceScaleIsNotAChange(t *testing.T) {
	inv := newInventory(10, "15.9")

	assert.Empty(t, DetectChanges(inv, NewSnapshot(10, decimal.RequireFromString("15.90")), time.Now()))
}

func TestSupplierInventory_ApplyIsIdempotent(t *testing.T) {
	inv := newInventory(50, "3.99")
	snap := NewSnapshot(100, decimal.RequireFromString("3.99"))

	first := inv.Apply(snap, time.Now())
	second := inv.Apply(snap, time.Now())

	assert.Len(t, first, 1)
	assert.Empty(t, second)
	assert.Equal(t, 100, inv.Quantity)
}
