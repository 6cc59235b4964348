package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// SupplierInventoryModel is the persistence model for a variant's mapping at one supplier
type SupplierInventoryModel struct {
	BaseModel
	VariantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_inventory_mapping,priority:1"`
	VariantSKU    string          `gorm:"type:varchar(100);not null;index"`
	SupplierID    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_inventory_mapping,priority:2;index:idx_supplier_inventory_supplier_sku,priority:1"`
	SupplierSKU   string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_supplier_inventory_mapping,priority:3;index:idx_supplier_inventory_supplier_sku,priority:2"`
	SupplierPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity      int             `gorm:"not null;default:0"`
	InStock       bool            `gorm:"not null;default:false"`
	LeadTimeDays  int             `gorm:"not null;default:0"`
	MOQ           int             `gorm:"column:moq;not null;default:0"`
	IsPrimary     bool            `gorm:"not null;default:false"`
	LastSynced    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierInventoryModel) TableName() string {
	return "supplier_inventory"
}

// ToDomain converts the persistence model to a domain SupplierInventory entity.
func (m *SupplierInventoryModel) ToDomain() *inventory.SupplierInventory {
	return &inventory.SupplierInventory{
		BaseEntity:    m.BaseModel.ToDomain(),
		VariantID:     m.VariantID,
		VariantSKU:    m.VariantSKU,
		SupplierID:    integration.SupplierID(m.SupplierID),
		SupplierSKU:   m.SupplierSKU,
		SupplierPrice: m.SupplierPrice,
		Quantity:      m.Quantity,
		InStock:       m.InStock,
		LeadTimeDays:  m.LeadTimeDays,
		MOQ:           m.MOQ,
		IsPrimary:     m.IsPrimary,
		LastSynced:    m.LastSynced,
	}
}

// FromDomain populates the persistence model from a domain SupplierInventory entity.
func (m *SupplierInventoryModel) FromDomain(inv *inventory.SupplierInventory) {
	m.FromDomainBaseEntity(inv.BaseEntity)
	m.VariantID = inv.VariantID
	m.VariantSKU = inv.VariantSKU
	m.SupplierID = inv.SupplierID.String()
	m.SupplierSKU = inv.SupplierSKU
	m.SupplierPrice = inv.SupplierPrice
	m.Quantity = inv.Quantity
	m.InStock = inv.InStock
	m.LeadTimeDays = inv.LeadTimeDays
	m.MOQ = inv.MOQ
	m.IsPrimary = inv.IsPrimary
	m.LastSynced = inv.LastSynced
}

// SupplierInventoryModelFromDomain creates a new persistence model from a domain SupplierInventory entity.
func SupplierInventoryModelFromDomain(inv *inventory.SupplierInventory) *SupplierInventoryModel {
	m := &SupplierInventoryModel{}
	m.FromDomain(inv)
	return m
}

// InventorySyncLogModel is the persistence model for one sync run
type InventorySyncLogModel struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	SupplierID      string                      `gorm:"type:varchar(50);not null;index:idx_sync_log_supplier_started,priority:1"`
	Trigger         string                      `gorm:"column:trigger_type;type:varchar(20);not null"`
	Status          string                      `gorm:"type:varchar(20);not null;index"`
	StartedAt       time.Time                   `gorm:"index:idx_sync_log_supplier_started,priority:2,sort:desc"`
	CompletedAt     *time.Time
	VariantsSynced  int                         `gorm:"not null;default:0"`
	ChangesDetected int                         `gorm:"not null;default:0"`
	Errors          datatypes.JSONSlice[string] `gorm:"not null"`
	CreatedAt       time.Time                   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (InventorySyncLogModel) TableName() string {
	return "inventory_sync_logs"
}

// ToDomain converts the persistence model to a domain InventorySyncLog.
func (m *InventorySyncLogModel) ToDomain() *inventory.InventorySyncLog {
	errs := []string(m.Errors)
	if errs == nil {
		errs = []string{}
	}
	return &inventory.InventorySyncLog{
		ID:              m.ID,
		SupplierID:      integration.SupplierID(m.SupplierID),
		Trigger:         inventory.SyncTrigger(m.Trigger),
		Status:          inventory.SyncStatus(m.Status),
		StartedAt:       m.StartedAt,
		CompletedAt:     m.CompletedAt,
		VariantsSynced:  m.VariantsSynced,
		ChangesDetected: m.ChangesDetected,
		Errors:          errs,
	}
}

// FromDomain populates the persistence model from a domain InventorySyncLog.
func (m *InventorySyncLogModel) FromDomain(l *inventory.InventorySyncLog) {
	m.ID = l.ID
	m.SupplierID = l.SupplierID.String()
	m.Trigger = string(l.Trigger)
	m.Status = string(l.Status)
	m.StartedAt = l.StartedAt
	m.CompletedAt = l.CompletedAt
	m.VariantsSynced = l.VariantsSynced
	m.ChangesDetected = l.ChangesDetected
	m.Errors = datatypes.JSONSlice[string](nonNil(l.Errors))
}

// InventorySyncLogModelFromDomain creates a new persistence model from a domain InventorySyncLog.
func InventorySyncLogModelFromDomain(l *inventory.InventorySyncLog) *InventorySyncLogModel {
	m := &InventorySyncLogModel{}
	m.FromDomain(l)
	return m
}

// InventoryChangeModel is the persistence model for the append-only change log
type InventoryChangeModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	VariantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU        string    `gorm:"type:varchar(100);not null;index"`
	SupplierID string    `gorm:"type:varchar(50);not null;index"`
	ChangeType string    `gorm:"type:varchar(20);not null"`
	OldValue   string    `gorm:"type:varchar(64);not null"`
	NewValue   string    `gorm:"type:varchar(64);not null"`
	DetectedAt time.Time `gorm:"not null;index"`
	Notified   bool      `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (InventoryChangeModel) TableName() string {
	return "inventory_changes"
}

// ToDomain converts the persistence model to a domain InventoryChange.
func (m *InventoryChangeModel) ToDomain() *inventory.InventoryChange {
	return &inventory.InventoryChange{
		ID:         m.ID,
		VariantID:  m.VariantID,
		SKU:        m.SKU,
		SupplierID: integration.SupplierID(m.SupplierID),
		ChangeType: inventory.ChangeType(m.ChangeType),
		OldValue:   m.OldValue,
		NewValue:   m.NewValue,
		DetectedAt: m.DetectedAt,
		Notified:   m.Notified,
	}
}

// InventoryChangeModelFromDomain creates a new persistence model from a domain InventoryChange.
func InventoryChangeModelFromDomain(c *inventory.InventoryChange) *InventoryChangeModel {
	return &InventoryChangeModel{
		ID:         c.ID,
		VariantID:  c.VariantID,
		SKU:        c.SKU,
		SupplierID: c.SupplierID.String(),
		ChangeType: string(c.ChangeType),
		OldValue:   c.OldValue,
		NewValue:   c.NewValue,
		DetectedAt: c.DetectedAt,
		Notified:   c.Notified,
	}
}

// AllModels returns every model managed by this service, in dependency order.
func AllModels() []any {
	return []any{
		&ProductModel{},
		&ProductVariantModel{},
		&SupplierInventoryModel{},
		&InventorySyncLogModel{},
		&InventoryChangeModel{},
	}
}
