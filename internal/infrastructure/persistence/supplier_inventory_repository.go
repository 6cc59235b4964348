package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/persistence/models"
)

// GormSupplierInventoryRepository implements inventory.SupplierInventoryRepository using GORM
type GormSupplierInventoryRepository struct {
	db       *gorm.DB
	lockRows bool
}

// NewGormSupplierInventoryRepository creates a new GormSupplierInventoryRepository
func NewGormSupplierInventoryRepository(db *gorm.DB) *GormSupplierInventoryRepository {
	return &GormSupplierInventoryRepository{db: db}
}

// newLockingSupplierInventoryRepository reads the row it is about to diff
// with SELECT ... FOR UPDATE, so a webhook and a polled sync for the same
// mapping serialize until the first transaction commits. tx must be an open
// transaction. SQLite has no row locks and ignores the clause.
func newLockingSupplierInventoryRepository(tx *gorm.DB) *GormSupplierInventoryRepository {
	return &GormSupplierInventoryRepository{db: tx, lockRows: true}
}

// FindByVariantAndSupplier finds the mapping of a variant at one supplier
func (r *GormSupplierInventoryRepository) FindByVariantAndSupplier(ctx context.Context, variantID uuid.UUID, supplierID integration.SupplierID, supplierSKU string) (*inventory.SupplierInventory, error) {
	q := r.db.WithContext(ctx)
	if r.lockRows {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.SupplierInventoryModel
	if err := q.
		Where("variant_id = ? AND supplier_id = ? AND supplier_sku = ?", variantID, supplierID.String(), supplierSKU).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySupplierSKU finds the mapping by the supplier's own SKU.
// When several variants share it the primary mapping wins.
func (r *GormSupplierInventoryRepository) FindBySupplierSKU(ctx context.Context, supplierID integration.SupplierID, supplierSKU string) (*inventory.SupplierInventory, error) {
	var model models.SupplierInventoryModel
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND supplier_sku = ?", supplierID.String(), supplierSKU).
		Order("is_primary DESC, last_synced DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByVariantSKU returns all supplier mappings of a variant, primary first
func (r *GormSupplierInventoryRepository) FindByVariantSKU(ctx context.Context, variantSKU string) ([]inventory.SupplierInventory, error) {
	var rows []models.SupplierInventoryModel
	if err := r.db.WithContext(ctx).
		Where("variant_sku = ?", variantSKU).
		Order("is_primary DESC, supplier_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]inventory.SupplierInventory, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Save creates or updates a mapping keyed by (variant, supplier, supplier SKU).
// Saving a primary mapping demotes the variant's other mappings.
func (r *GormSupplierInventoryRepository) Save(ctx context.Context, inv *inventory.SupplierInventory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SupplierInventoryModel
		err := tx.Select("id", "created_at").
			Where("variant_id = ? AND supplier_id = ? AND supplier_sku = ?", inv.VariantID, inv.SupplierID.String(), inv.SupplierSKU).
			Take(&existing).Error
		switch {
		case err == nil:
			inv.ID = existing.ID
			inv.CreatedAt = existing.CreatedAt
		case errors.Is(err, gorm.ErrRecordNotFound):
			if inv.ID == uuid.Nil {
				inv.ID = uuid.New()
			}
		default:
			return err
		}

		if inv.IsPrimary {
			if err := tx.Model(&models.SupplierInventoryModel{}).
				Where("variant_id = ? AND id <> ? AND is_primary = ?", inv.VariantID, inv.ID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(models.SupplierInventoryModelFromDomain(inv)).Error
	})
}

// Ensure GormSupplierInventoryRepository implements inventory.SupplierInventoryRepository
var _ inventory.SupplierInventoryRepository = (*GormSupplierInventoryRepository)(nil)
