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

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindBySKU finds a product by its style SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("last_updated DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every product ordered by SKU
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Order("sku ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Save inserts the product or updates the row already stored for the same
// supplier and SKU. The stored row keeps its ID, which is returned.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) (uuid.UUID, error) {
	db := r.db.WithContext(ctx)

	var existing models.ProductModel
	err := db.Select("id", "created_at").
		Where("supplier_id = ? AND sku = ?", product.SupplierID.String(), product.SKU).
		Take(&existing).Error
	switch {
	case err == nil:
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		if product.ID == uuid.Nil {
			product.ID = uuid.New()
		}
	default:
		return uuid.Nil, err
	}

	model := models.ProductModelFromDomain(product)
	if err := db.Save(model).Error; err != nil {
		return uuid.Nil, err
	}
	product.UpdatedAt = model.UpdatedAt
	return product.ID, nil
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
