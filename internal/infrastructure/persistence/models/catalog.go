package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// ProductModel is the persistence model for a normalized supplier product.
// A product is unique per supplier and style SKU.
type ProductModel struct {
	BaseModel
	SKU            string                                   `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_supplier_sku,priority:2"`
	SupplierID     string                                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_supplier_sku,priority:1"`
	SupplierRef    string                                   `gorm:"type:varchar(100)"`
	Name           string                                   `gorm:"type:varchar(255);not null"`
	Brand          string                                   `gorm:"type:varchar(100);not null;index"`
	Description    string                                   `gorm:"type:text"`
	Category       string                                   `gorm:"type:varchar(50);not null;default:'other';index"`
	Material       string                                   `gorm:"type:varchar(255)"`
	Sizes          datatypes.JSONSlice[string]              `gorm:"not null"`
	Colors         datatypes.JSONType[[]catalog.Color]      `gorm:"not null"`
	ImageURLs      datatypes.JSONSlice[string]              `gorm:"column:image_urls;not null"`
	Tags           datatypes.JSONSlice[string]              `gorm:"not null"`
	BasePrice      decimal.Decimal                          `gorm:"type:decimal(18,4);not null;default:0"`
	BulkBreaks     datatypes.JSONType[[]catalog.PriceBreak] `gorm:"not null"`
	TotalInventory int                                      `gorm:"not null;default:0"`
	InStock        bool                                     `gorm:"not null;default:false"`
	LastUpdated    time.Time                                `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "supplier_products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	sizes := make([]catalog.Size, 0, len(m.Sizes))
	for _, s := range m.Sizes {
		sizes = append(sizes, catalog.Size(s))
	}
	return &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		UnifiedProduct: catalog.UnifiedProduct{
			SKU:            m.SKU,
			Name:           m.Name,
			Brand:          m.Brand,
			Description:    m.Description,
			Category:       m.Category,
			Sizes:          sizes,
			Colors:         m.Colors.Data(),
			ImageURLs:      []string(m.ImageURLs),
			Material:       m.Material,
			Tags:           []string(m.Tags),
			BasePrice:      m.BasePrice,
			BulkBreaks:     m.BulkBreaks.Data(),
			TotalInventory: m.TotalInventory,
			InStock:        m.InStock,
			SupplierID:     integration.SupplierID(m.SupplierID),
			SupplierRef:    m.SupplierRef,
			LastUpdated:    m.LastUpdated,
		},
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	sizes := make([]string, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		sizes = append(sizes, string(s))
	}
	m.SKU = p.SKU
	m.SupplierID = p.SupplierID.String()
	m.SupplierRef = p.SupplierRef
	m.Name = p.Name
	m.Brand = p.Brand
	m.Description = p.Description
	m.Category = p.Category
	m.Material = p.Material
	m.Sizes = datatypes.JSONSlice[string](sizes)
	m.Colors = datatypes.NewJSONType(nonNil(p.Colors))
	m.ImageURLs = datatypes.JSONSlice[string](nonNil(p.ImageURLs))
	m.Tags = datatypes.JSONSlice[string](nonNil(p.Tags))
	m.BasePrice = p.BasePrice
	m.BulkBreaks = datatypes.NewJSONType(nonNil(p.BulkBreaks))
	m.TotalInventory = p.TotalInventory
	m.InStock = p.InStock
	m.LastUpdated = p.LastUpdated
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductVariantModel is the persistence model for a product variant.
// Internal variant SKUs are globally unique.
type ProductVariantModel struct {
	BaseModel
	ProductID       uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ProductSKU      string                      `gorm:"type:varchar(100);not null"`
	SKU             string                      `gorm:"type:varchar(100);not null;uniqueIndex"`
	ColorName       string                      `gorm:"type:varchar(100)"`
	ColorSlug       string                      `gorm:"type:varchar(100)"`
	ColorHex        *string                     `gorm:"type:varchar(7)"`
	Size            string                      `gorm:"type:varchar(20);not null"`
	Price           decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	WholesaleCost   decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	InventoryQty    int                         `gorm:"not null;default:0"`
	InventoryStatus string                      `gorm:"type:varchar(20);not null;index"`
	HighPriority    bool                        `gorm:"not null;default:false;index"`
	Images          datatypes.JSONSlice[string] `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain ProductVariant entity.
func (m *ProductVariantModel) ToDomain() *catalog.ProductVariant {
	return &catalog.ProductVariant{
		BaseEntity: m.BaseModel.ToDomain(),
		ProductID:  m.ProductID,
		ProductSKU: m.ProductSKU,
		SKU:        m.SKU,
		Color: catalog.Color{
			Name: m.ColorName,
			Slug: m.ColorSlug,
			Hex:  m.ColorHex,
		},
		Size:            catalog.Size(m.Size),
		Price:           m.Price,
		WholesaleCost:   m.WholesaleCost,
		InventoryQty:    m.InventoryQty,
		InventoryStatus: catalog.InventoryStatus(m.InventoryStatus),
		HighPriority:    m.HighPriority,
		Images:          []string(m.Images),
	}
}

// FromDomain populates the persistence model from a domain ProductVariant entity.
func (m *ProductVariantModel) FromDomain(v *catalog.ProductVariant) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.ProductID = v.ProductID
	m.ProductSKU = v.ProductSKU
	m.SKU = v.SKU
	m.ColorName = v.Color.Name
	m.ColorSlug = v.Color.Slug
	m.ColorHex = v.Color.Hex
	m.Size = v.Size.String()
	m.Price = v.Price
	m.WholesaleCost = v.WholesaleCost
	m.InventoryQty = v.InventoryQty
	m.InventoryStatus = string(v.InventoryStatus)
	m.HighPriority = v.HighPriority
	m.Images = datatypes.JSONSlice[string](nonNil(v.Images))
}

// ProductVariantModelFromDomain creates a new persistence model from a domain ProductVariant entity.
func ProductVariantModelFromDomain(v *catalog.ProductVariant) *ProductVariantModel {
	m := &ProductVariantModel{}
	m.FromDomain(v)
	return m
}

// nonNil stores empty lists as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
