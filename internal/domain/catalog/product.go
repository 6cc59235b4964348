package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
)

// PriceBreak is a quantity tier price offered by a supplier
type PriceBreak struct {
	MinQuantity int             `json:"minQuantity"`
	Price       decimal.Decimal `json:"price"`
}

// UnifiedProduct is the supplier-agnostic product produced by the normalizer.
// Construct it through a normalizer, never by hand.
type UnifiedProduct struct {
	SKU            string                 `json:"sku" validate:"required"`
	Name           string                 `json:"name" validate:"required"`
	Brand          string                 `json:"brand" validate:"required"`
	Description    string                 `json:"description,omitempty"`
	Category       string                 `json:"category"`
	Sizes          []Size                 `json:"sizes"`
	Colors         []Color                `json:"colors"`
	ImageURLs      []string               `json:"imageUrls"`
	Material       string                 `json:"material,omitempty"`
	Tags           []string               `json:"tags"`
	BasePrice      decimal.Decimal        `json:"basePrice"`
	BulkBreaks     []PriceBreak           `json:"bulkBreaks"`
	TotalInventory int                    `json:"totalInventory" validate:"gte=0"`
	InStock        bool                   `json:"inStock"`
	SupplierID     integration.SupplierID `json:"supplierId" validate:"required"`
	SupplierRef    string                 `json:"supplierRef"`
	LastUpdated    time.Time              `json:"lastUpdated"`
}

// Product is the persisted catalog record for a UnifiedProduct
type Product struct {
	shared.BaseEntity
	UnifiedProduct
}

// NewProduct wraps a normalized product into a persistable entity
func NewProduct(p UnifiedProduct) *Product {
	return &Product{
		BaseEntity:     shared.NewBaseEntity(),
		UnifiedProduct: p,
	}
}

// ---------------------------------------------------------------------------
// ProductVariant
// ---------------------------------------------------------------------------

// ProductVariant is one size/color combination of a product
type ProductVariant struct {
	shared.BaseEntity
	ProductID       uuid.UUID       `json:"productId"`
	ProductSKU      string          `json:"productSku"`
	SKU             string          `json:"sku" validate:"required"`
	Color           Color           `json:"color"`
	Size            Size            `json:"size" validate:"required"`
	Price           decimal.Decimal `json:"price"`
	WholesaleCost   decimal.Decimal `json:"wholesaleCost"`
	InventoryQty    int             `json:"inventoryQty" validate:"gte=0"`
	InventoryStatus InventoryStatus `json:"inventoryStatus"`
	HighPriority    bool            `json:"highPriority"`
	Images          []string        `json:"images"`

	// SupplierSKU is the supplier's own identifier for this variant as it
	// arrived from the feed. Not persisted on the variant itself.
	SupplierSKU string `json:"-"`
}

// SetInventory updates the on-hand quantity and re-derives the stock status
func (v *ProductVariant) SetInventory(qty int, lowStockThreshold int) {
	if qty < 0 {
		qty = 0
	}
	v.InventoryQty = qty
	v.InventoryStatus = DeriveInventoryStatus(qty, lowStockThreshold)
	v.UpdatedAt = time.Now()
}

// IsSyncPriority reports whether the variant belongs to the incremental sync set
func (v *ProductVariant) IsSyncPriority() bool {
	return v.HighPriority || v.InventoryStatus == InventoryStatusLowStock
}

// ---------------------------------------------------------------------------
// InventoryStatus
// ---------------------------------------------------------------------------

// InventoryStatus is derived from quantity thresholds
type InventoryStatus string

const (
	InventoryStatusInStock    InventoryStatus = "in_stock"
	InventoryStatusLowStock   InventoryStatus = "low_stock"
	InventoryStatusOutOfStock InventoryStatus = "out_of_stock"
)

// DefaultLowStockThreshold is the quantity at or below which a variant is low stock
const DefaultLowStockThreshold = 10

// DeriveInventoryStatus maps a quantity onto a stock status
func DeriveInventoryStatus(qty int, lowStockThreshold int) InventoryStatus {
	switch {
	case qty <= 0:
		return InventoryStatusOutOfStock
	case qty <= lowStockThreshold:
		return InventoryStatusLowStock
	default:
		return InventoryStatusInStock
	}
}
