package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindBySKU finds a product by its internal SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll returns every product, used as the fuzzy matching pool
	FindAll(ctx context.Context) ([]Product, error)

	// Save inserts or updates a product keyed by SKU and returns the stored ID
	Save(ctx context.Context, product *Product) (uuid.UUID, error)
}

// VariantRepository defines the interface for product variant persistence
type VariantRepository interface {
	// FindBySKU finds a variant by its internal SKU
	FindBySKU(ctx context.Context, sku string) (*ProductVariant, error)

	// FindByID finds a variant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductVariant, error)

	// FindByProduct returns all variants of a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductVariant, error)

	// FindSyncPriority returns variants flagged high priority or low on stock
	FindSyncPriority(ctx context.Context, limit int) ([]ProductVariant, error)

	// Save inserts or updates a variant keyed by SKU and returns the stored ID
	Save(ctx context.Context, variant *ProductVariant) (uuid.UUID, error)
}
