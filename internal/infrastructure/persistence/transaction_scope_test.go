package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/inventorysync"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

func TestGormTransactionScope_CommitsAllRepositories(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)

	var variantID uuid.UUID
	err := scope.Execute(ctx, func(repos inventorysync.TransactionalRepositories) error {
		productID, err := repos.ProductRepo().Save(ctx, testProduct(integration.SupplierASColour, "5001", "Staple Tee"))
		if err != nil {
			return err
		}
		variantID, err = repos.VariantRepo().Save(ctx, testVariant(productID, "ASC-5001-BLK-M-a1b2", 20))
		if err != nil {
			return err
		}
		inv := inventory.NewSupplierInventory(variantID, "ASC-5001-BLK-M-a1b2", integration.SupplierASColour, "5001-BLK-M",
			inventory.NewSnapshot(20, decimal.RequireFromString("9.00")), time.Now().UTC())
		if err := repos.SupplierInventoryRepo().Save(ctx, inv); err != nil {
			return err
		}
		return repos.ChangeRepo().Append(ctx, []inventory.InventoryChange{{
			VariantID:  variantID,
			SKU:        "ASC-5001-BLK-M-a1b2",
			SupplierID: integration.SupplierASColour,
			ChangeType: inventory.ChangeTypeQuantity,
			OldValue:   "10",
			NewValue:   "20",
			DetectedAt: time.Now().UTC(),
		}})
	})
	require.NoError(t, err)

	v, err := NewGormVariantRepository(db).FindByID(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, 20, v.InventoryQty)

	changes, err := NewGormChangeRepository(db).FindRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repos inventorysync.TransactionalRepositories) error {
		if _, err := repos.ProductRepo().Save(ctx, testProduct(integration.SupplierASColour, "5001", "Staple Tee")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := NewGormProductRepository(db).FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
