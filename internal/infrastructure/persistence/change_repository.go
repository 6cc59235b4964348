package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/persistence/models"
)

const changeInsertBatchSize = 200

// GormChangeRepository implements inventory.ChangeRepository using GORM.
// Rows are insert-only apart from the notified flag.
type GormChangeRepository struct {
	db *gorm.DB
}

// NewGormChangeRepository creates a new GormChangeRepository
func NewGormChangeRepository(db *gorm.DB) *GormChangeRepository {
	return &GormChangeRepository{db: db}
}

// Append inserts new change records
func (r *GormChangeRepository) Append(ctx context.Context, changes []inventory.InventoryChange) error {
	if len(changes) == 0 {
		return nil
	}
	rows := make([]*models.InventoryChangeModel, len(changes))
	for i := range changes {
		if changes[i].ID == uuid.Nil {
			changes[i].ID = uuid.New()
		}
		rows[i] = models.InventoryChangeModelFromDomain(&changes[i])
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, changeInsertBatchSize).Error
}

// FindRecent returns the newest changes first
func (r *GormChangeRepository) FindRecent(ctx context.Context, limit int) ([]inventory.InventoryChange, error) {
	return r.find(r.db.WithContext(ctx).Order("detected_at DESC").Limit(limit))
}

// FindUnnotified returns changes not yet published, oldest first
func (r *GormChangeRepository) FindUnnotified(ctx context.Context, limit int) ([]inventory.InventoryChange, error) {
	return r.find(r.db.WithContext(ctx).
		Where("notified = ?", false).
		Order("detected_at ASC").
		Limit(limit))
}

func (r *GormChangeRepository) find(query *gorm.DB) ([]inventory.InventoryChange, error) {
	var rows []models.InventoryChangeModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	changes := make([]inventory.InventoryChange, len(rows))
	for i := range rows {
		changes[i] = *rows[i].ToDomain()
	}
	return changes, nil
}

// MarkNotified flips the notified flag of the given changes
func (r *GormChangeRepository) MarkNotified(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.InventoryChangeModel{}).
		Where("id IN ?", ids).
		Update("notified", true).Error
}

// Ensure GormChangeRepository implements inventory.ChangeRepository
var _ inventory.ChangeRepository = (*GormChangeRepository)(nil)
