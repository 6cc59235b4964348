package inventorysync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/logger"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/telemetry"
)

// priorityBatch is the set of products to refetch from one supplier
type priorityBatch struct {
	refs   []string
	wanted map[string]bool
}

// SyncHighPriorityVariants refreshes only the variants flagged high priority
// or low on stock. Each affected product is fetched individually, so the
// supplier's full catalog is never downloaded. Suppliers with a run already
// in progress are skipped.
func (s *Service) SyncHighPriorityVariants(ctx context.Context) (*PrioritySyncResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "inventorysync.sync_high_priority",
		telemetry.AttrSyncTrigger.String(string(inventory.SyncTriggerPriority)),
	)
	defer span.End()

	variants, err := s.repos.Variants.FindSyncPriority(ctx, s.config.HighPriorityLimit)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("find priority variants: %w", err)
	}
	result := &PrioritySyncResult{
		VariantsChecked: len(variants),
		Logs:            []*inventory.InventorySyncLog{},
		Skipped:         []integration.SupplierID{},
	}
	if len(variants) == 0 {
		s.logger.Debug("No high priority variants to sync")
		return result, nil
	}

	batches, err := s.planPriority(ctx, variants)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	ids := make([]integration.SupplierID, 0, len(batches))
	for id := range batches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		batch := batches[id]
		runLog, err := s.run(ctx, id, inventory.SyncTriggerPriority, func(ctx context.Context, conn integration.SupplierConnector, runLog *inventory.InventorySyncLog) (runStats, error) {
			return s.prioritySync(ctx, conn, runLog, batch)
		})
		if runLog != nil {
			result.Logs = append(result.Logs, runLog)
			result.VariantsSynced += runLog.VariantsSynced
			result.ChangesDetected += runLog.ChangesDetected
		}
		if err != nil && runLog == nil {
			result.Skipped = append(result.Skipped, id)
			s.logger.Warn("Skipped priority sync for supplier",
				zap.String("supplier_id", id.String()),
				zap.Error(err),
			)
		}
	}

	span.SetAttributes(
		telemetry.AttrVariantsSynced.Int(result.VariantsSynced),
		telemetry.AttrChangesDetected.Int(result.ChangesDetected),
	)
	s.logger.Info("High priority sync finished",
		zap.Int("variants_checked", result.VariantsChecked),
		zap.Int("variants_synced", result.VariantsSynced),
		zap.Int("changes_detected", result.ChangesDetected),
		zap.Int("skipped_suppliers", len(result.Skipped)),
	)
	return result, nil
}

// planPriority groups variants by the supplier and supplier style of their product
func (s *Service) planPriority(ctx context.Context, variants []catalog.ProductVariant) (map[integration.SupplierID]*priorityBatch, error) {
	products := make(map[string]*catalog.Product)
	batches := make(map[integration.SupplierID]*priorityBatch)

	for _, v := range variants {
		product, ok := products[v.ProductSKU]
		if !ok {
			p, err := s.repos.Products.FindBySKU(ctx, v.ProductSKU)
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("Priority variant has no product", zap.String("sku", v.SKU))
				products[v.ProductSKU] = nil
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("find product %s: %w", v.ProductSKU, err)
			}
			products[v.ProductSKU] = p
			product = p
		}
		if product == nil || product.SupplierRef == "" {
			continue
		}

		batch, ok := batches[product.SupplierID]
		if !ok {
			batch = &priorityBatch{wanted: make(map[string]bool)}
			batches[product.SupplierID] = batch
		}
		if !slices.Contains(batch.refs, product.SupplierRef) {
			batch.refs = append(batch.refs, product.SupplierRef)
		}
		batch.wanted[v.SKU] = true
	}
	return batches, nil
}

func (s *Service) prioritySync(ctx context.Context, conn integration.SupplierConnector, runLog *inventory.InventorySyncLog, batch *priorityBatch) (runStats, error) {
	var stats runStats
	for _, ref := range batch.refs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		raw, err := conn.FetchProduct(ctx, ref)
		if err != nil {
			runLog.RecordError(fmt.Sprintf("fetch product %s: %v", ref, err))
			logger.L(ctx).Warn("Failed to fetch priority product", zap.String("ref", ref), zap.Error(err))
			continue
		}
		if raw.SupplierID.IsEmpty() {
			raw.SupplierID = conn.SupplierID()
		}
		_, n, _ := s.syncProduct(ctx, runLog, *raw, batch.wanted)
		stats.add(n)
	}
	return stats, nil
}
