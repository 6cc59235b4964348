package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/persistence/models"
)

// GormSyncLogRepository implements inventory.SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Create inserts a new sync log
func (r *GormSyncLogRepository) Create(ctx context.Context, log *inventory.InventorySyncLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(models.InventorySyncLogModelFromDomain(log)).Error
}

// Update writes the mutable fields of a run's log
func (r *GormSyncLogRepository) Update(ctx context.Context, log *inventory.InventorySyncLog) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventorySyncLogModel{}).
		Where("id = ?", log.ID).
		Updates(map[string]any{
			"status":           string(log.Status),
			"completed_at":     log.CompletedAt,
			"variants_synced":  log.VariantsSynced,
			"changes_detected": log.ChangesDetected,
			"errors":           datatypes.JSONSlice[string](nonNilStrings(log.Errors)),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a log by ID
func (r *GormSyncLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventorySyncLog, error) {
	var model models.InventorySyncLogModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecent returns the newest logs first
func (r *GormSyncLogRepository) FindRecent(ctx context.Context, limit int) ([]inventory.InventorySyncLog, error) {
	var rows []models.InventorySyncLogModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]inventory.InventorySyncLog, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, nil
}

// FindLatestBySupplier returns the newest log of each supplier
func (r *GormSyncLogRepository) FindLatestBySupplier(ctx context.Context) (map[integration.SupplierID]inventory.InventorySyncLog, error) {
	db := r.db.WithContext(ctx)
	latest := db.Model(&models.InventorySyncLogModel{}).
		Select("supplier_id, MAX(started_at) AS started_at").
		Group("supplier_id")

	var rows []models.InventorySyncLogModel
	if err := db.
		Select("inventory_sync_logs.*").
		Joins("JOIN (?) AS latest ON latest.supplier_id = inventory_sync_logs.supplier_id AND latest.started_at = inventory_sync_logs.started_at", latest).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[integration.SupplierID]inventory.InventorySyncLog, len(rows))
	for i := range rows {
		log := rows[i].ToDomain()
		result[log.SupplierID] = *log
	}
	return result, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Ensure GormSyncLogRepository implements inventory.SyncLogRepository
var _ inventory.SyncLogRepository = (*GormSyncLogRepository)(nil)
