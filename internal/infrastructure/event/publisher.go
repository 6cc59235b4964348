// Package event publishes inventory change records to downstream consumers
// and relays unpublished changes until they are acknowledged.
package event

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// EventTypeInventoryChanged is the type carried by every change message
const EventTypeInventoryChanged = "inventory.changed"

// ChangeEvent is the wire representation of one InventoryChange
type ChangeEvent struct {
	EventType  string    `json:"eventType"`
	ChangeID   string    `json:"changeId"`
	VariantID  string    `json:"variantId"`
	SKU        string    `json:"sku"`
	SupplierID string    `json:"supplierId"`
	ChangeType string    `json:"changeType"`
	OldValue   string    `json:"oldValue"`
	NewValue   string    `json:"newValue"`
	DetectedAt time.Time `json:"detectedAt"`
}

// NewChangeEvent converts a change record into its wire form
func NewChangeEvent(c inventory.InventoryChange) ChangeEvent {
	return ChangeEvent{
		EventType:  EventTypeInventoryChanged,
		ChangeID:   c.ID.String(),
		VariantID:  c.VariantID.String(),
		SKU:        c.SKU,
		SupplierID: c.SupplierID.String(),
		ChangeType: string(c.ChangeType),
		OldValue:   c.OldValue,
		NewValue:   c.NewValue,
		DetectedAt: c.DetectedAt,
	}
}

// Publisher delivers change records. Publish returns nil only when every
// change in the batch was accepted downstream.
type Publisher interface {
	Publish(ctx context.Context, changes []inventory.InventoryChange) error
	Close() error
}

// MultiPublisher fans a batch out to several publishers. The batch counts as
// delivered only if every publisher accepted it.
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher creates a MultiPublisher
func NewMultiPublisher(ps ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: ps}
}

// Publish sends the batch to every publisher and joins their errors
func (m *MultiPublisher) Publish(ctx context.Context, changes []inventory.InventoryChange) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, changes); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes each change to the structured log. It is the default
// sink when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the batch
func (p *LogPublisher) Publish(_ context.Context, changes []inventory.InventoryChange) error {
	for _, c := range changes {
		p.logger.Info("inventory changed",
			zap.String("change_id", c.ID.String()),
			zap.String("sku", c.SKU),
			zap.String("supplier_id", c.SupplierID.String()),
			zap.String("change_type", string(c.ChangeType)),
			zap.String("old_value", c.OldValue),
			zap.String("new_value", c.NewValue),
		)
	}
	return nil
}

// Close is a no-op
func (p *LogPublisher) Close() error { return nil }
