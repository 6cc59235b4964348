package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/persistence/models"
)

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindBySKU finds a variant by its internal SKU
func (r *GormVariantRepository) FindBySKU(ctx context.Context, sku string) (*catalog.ProductVariant, error) {
	return r.first(ctx, "sku = ?", sku)
}

// FindByID finds a variant by ID
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormVariantRepository) first(ctx context.Context, query string, arg any) (*catalog.ProductVariant, error) {
	var model models.ProductVariantModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProduct returns all variants of a product ordered by SKU
func (r *GormVariantRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductVariant, error) {
	var rows []models.ProductVariantModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sku ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return variantsToDomain(rows), nil
}

// FindSyncPriority returns variants flagged high priority or low on stock,
// flagged ones first and then the lowest quantities
func (r *GormVariantRepository) FindSyncPriority(ctx context.Context, limit int) ([]catalog.ProductVariant, error) {
	var rows []models.ProductVariantModel
	query := r.db.WithContext(ctx).
		Where("high_priority = ? OR inventory_status = ?", true, string(catalog.InventoryStatusLowStock)).
		Order("high_priority DESC, inventory_qty ASC, sku ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return variantsToDomain(rows), nil
}

// Save inserts the variant or updates the row stored under the same SKU.
// The stored row keeps its ID, which is returned.
func (r *GormVariantRepository) Save(ctx context.Context, variant *catalog.ProductVariant) (uuid.UUID, error) {
	db := r.db.WithContext(ctx)

	var existing models.ProductVariantModel
	err := db.Select("id", "created_at").Where("sku = ?", variant.SKU).Take(&existing).Error
	switch {
	case err == nil:
		variant.ID = existing.ID
		variant.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		if variant.ID == uuid.Nil {
			variant.ID = uuid.New()
		}
	default:
		return uuid.Nil, err
	}

	model := models.ProductVariantModelFromDomain(variant)
	if err := db.Save(model).Error; err != nil {
		return uuid.Nil, err
	}
	variant.UpdatedAt = model.UpdatedAt
	return variant.ID, nil
}

func variantsToDomain(rows []models.ProductVariantModel) []catalog.ProductVariant {
	variants := make([]catalog.ProductVariant, len(rows))
	for i := range rows {
		variants[i] = *rows[i].ToDomain()
	}
	return variants
}

// Ensure GormVariantRepository implements catalog.VariantRepository
var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
