package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// SyncStatus / SyncTrigger
// ---------------------------------------------------------------------------

// SyncStatus is the state of one sync run: pending -> running -> completed|failed
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// IsTerminal reports whether the run has finished
func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusCompleted || s == SyncStatusFailed
}

// SyncTrigger records what started a run
type SyncTrigger string

const (
	SyncTriggerManual    SyncTrigger = "manual"
	SyncTriggerScheduled SyncTrigger = "scheduled"
	SyncTriggerPriority  SyncTrigger = "priority"
)

// IsValid returns true if the trigger is valid
func (t SyncTrigger) IsValid() bool {
	switch t {
	case SyncTriggerManual, SyncTriggerScheduled, SyncTriggerPriority:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// InventorySyncLog
// ---------------------------------------------------------------------------

// InventorySyncLog is one row per sync run. It is mutated only by the run
// that created it and is terminal once CompletedAt is set. Errors is empty
// if and only if the status is completed.
type InventorySyncLog struct {
	ID              uuid.UUID              `json:"id"`
	SupplierID      integration.SupplierID `json:"supplierId"`
	Trigger         SyncTrigger            `json:"trigger"`
	Status          SyncStatus             `json:"status"`
	StartedAt       time.Time              `json:"startedAt"`
	CompletedAt     *time.Time             `json:"completedAt,omitempty"`
	VariantsSynced  int                    `json:"variantsSynced"`
	ChangesDetected int                    `json:"changesDetected"`
	Errors          []string               `json:"errors"`
}

// NewInventorySyncLog creates a pending log for a supplier run
func NewInventorySyncLog(supplierID integration.SupplierID, trigger SyncTrigger) *InventorySyncLog {
	return &InventorySyncLog{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Trigger:    trigger,
		Status:     SyncStatusPending,
		Errors:     []string{},
	}
}

// Start marks the run as running
func (l *InventorySyncLog) Start(now time.Time) error {
	if l.Status != SyncStatusPending {
		return shared.ErrInvalidState.WithMessage("sync log %s cannot start from %s", l.ID, l.Status)
	}
	l.Status = SyncStatusRunning
	l.StartedAt = now
	return nil
}

// RecordError appends a per-item error while the run is in progress
func (l *InventorySyncLog) RecordError(msg string) {
	if l.Status.IsTerminal() {
		return
	}
	l.Errors = append(l.Errors, msg)
}

// Finish closes the run. A run that recorded item errors ends failed so that
// the errors list stays empty exactly for completed runs.
func (l *InventorySyncLog) Finish(variantsSynced, changesDetected int, now time.Time) error {
	if l.Status != SyncStatusRunning {
		return shared.ErrInvalidState.WithMessage("sync log %s cannot finish from %s", l.ID, l.Status)
	}
	l.VariantsSynced = variantsSynced
	l.ChangesDetected = changesDetected
	l.CompletedAt = &now
	if len(l.Errors) == 0 {
		l.Status = SyncStatusCompleted
	} else {
		l.Status = SyncStatusFailed
	}
	return nil
}

// Fail closes the run with a terminal error
func (l *InventorySyncLog) Fail(msg string, now time.Time) error {
	if l.Status.IsTerminal() {
		return shared.ErrInvalidState.WithMessage("sync log %s already %s", l.ID, l.Status)
	}
	if l.StartedAt.IsZero() {
		l.StartedAt = now
	}
	l.Errors = append(l.Errors, msg)
	l.Status = SyncStatusFailed
	l.CompletedAt = &now
	return nil
}

// Duration returns how long the run took, or has taken so far
func (l *InventorySyncLog) Duration(now time.Time) time.Duration {
	if l.StartedAt.IsZero() {
		return 0
	}
	if l.CompletedAt != nil {
		return l.CompletedAt.Sub(l.StartedAt)
	}
	return now.Sub(l.StartedAt)
}
