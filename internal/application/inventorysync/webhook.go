package inventorysync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/telemetry"
)

// Webhook update outcomes reported to metrics
const (
	webhookApplied  = "applied"
	webhookInvalid  = "invalid"
	webhookNotFound = "not_found"
	webhookFailed   = "error"
)

// ApplyInventoryUpdate applies a supplier-pushed quantity/price update through
// the same write path as polled syncs, so both produce identical change
// records. The SKU is resolved as the supplier's SKU first, then as an
// internal variant SKU. Unknown SKUs return shared.ErrNotFound.
func (s *Service) ApplyInventoryUpdate(ctx context.Context, update InventoryUpdate) (*ApplyResult, error) {
	id := integration.NormalizeSupplierID(update.SupplierID.String())
	sku := strings.TrimSpace(update.SKU)
	if err := validateUpdate(id, sku, update); err != nil {
		s.metrics.WebhookUpdate(id.String(), webhookInvalid)
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "inventorysync.apply_inventory_update",
		telemetry.AttrSupplierID.String(id.String()),
		telemetry.AttrSKU.String(sku),
	)
	defer span.End()

	now := s.now()
	var result *ApplyResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		key, lastPrice, err := resolveMapping(ctx, repos, id, sku)
		if err != nil {
			return err
		}
		price := lastPrice
		if update.Price != nil {
			price = *update.Price
		}

		inv, created, changes, err := recordSnapshot(ctx, repos, key, inventory.NewSnapshot(update.Quantity, price), now)
		if err != nil {
			return err
		}
		if inv.IsPrimary {
			variant, err := repos.VariantRepo().FindByID(ctx, inv.VariantID)
			if err != nil {
				return fmt.Errorf("find variant %s: %w", inv.VariantSKU, err)
			}
			variant.SetInventory(inv.Quantity, s.config.LowStockThreshold)
			if _, err := repos.VariantRepo().Save(ctx, variant); err != nil {
				return fmt.Errorf("save variant %s: %w", inv.VariantSKU, err)
			}
		}

		result = &ApplyResult{
			SupplierID:  id,
			SKU:         sku,
			VariantSKU:  inv.VariantSKU,
			SupplierSKU: inv.SupplierSKU,
			Quantity:    inv.Quantity,
			Price:       inv.SupplierPrice,
			Created:     created,
			Changes:     changes,
		}
		if result.Changes == nil {
			result.Changes = []inventory.InventoryChange{}
		}
		return nil
	})

	log := s.logger.With(zap.String("supplier_id", id.String()), zap.String("sku", sku))
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			s.metrics.WebhookUpdate(id.String(), webhookNotFound)
			log.Info("Webhook update for unknown SKU")
		} else {
			s.metrics.WebhookUpdate(id.String(), webhookFailed)
			log.Error("Failed to apply webhook update", zap.Error(err))
		}
		return nil, err
	}

	s.metrics.WebhookUpdate(id.String(), webhookApplied)
	for _, c := range result.Changes {
		s.metrics.ChangeDetected(c.SupplierID.String(), string(c.ChangeType))
	}
	if s.cache != nil {
		s.cache.InvalidateSupplier(ctx, id.String())
	}
	if len(result.Changes) > 0 {
		s.notify(ctx)
	}
	log.Info("Applied webhook inventory update",
		zap.Int("quantity", result.Quantity),
		zap.String("price", result.Price.StringFixed(2)),
		zap.Int("changes", len(result.Changes)),
	)
	return result, nil
}

func validateUpdate(id integration.SupplierID, sku string, update InventoryUpdate) error {
	var missing []string
	if id.IsEmpty() {
		missing = append(missing, "supplierId")
	}
	if sku == "" {
		missing = append(missing, "sku")
	}
	if len(missing) > 0 {
		return shared.ErrInvalidInput.WithMessage("missing required fields: %s", strings.Join(missing, ", "))
	}
	if update.Quantity < 0 {
		return shared.ErrInvalidInput.WithMessage("quantity must not be negative")
	}
	if update.Price != nil && update.Price.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("price must not be negative")
	}
	return nil
}

// resolveMapping finds the supplier inventory row a webhook SKU refers to and
// the last known price. A known variant without a row for this supplier gets
// a new row keyed by the variant SKU.
func resolveMapping(ctx context.Context, repos TransactionalRepositories, id integration.SupplierID, sku string) (mappingKey, decimal.Decimal, error) {
	invRepo := repos.SupplierInventoryRepo()

	inv, err := invRepo.FindBySupplierSKU(ctx, id, sku)
	if err == nil {
		return keyOf(inv), inv.SupplierPrice, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return mappingKey{}, decimal.Zero, fmt.Errorf("find supplier inventory %s: %w", sku, err)
	}

	variant, err := repos.VariantRepo().FindBySKU(ctx, sku)
	if errors.Is(err, shared.ErrNotFound) {
		return mappingKey{}, decimal.Zero, shared.ErrNotFound.WithMessage("unknown SKU %s for supplier %s", sku, id)
	}
	if err != nil {
		return mappingKey{}, decimal.Zero, fmt.Errorf("find variant %s: %w", sku, err)
	}

	mappings, err := invRepo.FindByVariantSKU(ctx, variant.SKU)
	if err != nil {
		return mappingKey{}, decimal.Zero, fmt.Errorf("find mappings of %s: %w", variant.SKU, err)
	}
	for i := range mappings {
		if mappings[i].SupplierID == id {
			return keyOf(&mappings[i]), mappings[i].SupplierPrice, nil
		}
	}
	key := mappingKey{
		VariantID:   variant.ID,
		VariantSKU:  variant.SKU,
		SupplierID:  id,
		SupplierSKU: variant.SKU,
	}
	return key, variant.WholesaleCost, nil
}

func keyOf(inv *inventory.SupplierInventory) mappingKey {
	return mappingKey{
		VariantID:   inv.VariantID,
		VariantSKU:  inv.VariantSKU,
		SupplierID:  inv.SupplierID,
		SupplierSKU: inv.SupplierSKU,
	}
}
