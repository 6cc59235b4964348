// Package inventorysync drives supplier inventory syncs. A run fetches a
// supplier's catalog through its connector, normalizes it, diffs every variant
// against the last persisted supplier inventory and appends one change record
// per differing field. Webhook updates go through the same write path.
package inventorysync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/normalizer"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/logger"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/telemetry"
)

const (
	// DefaultHistoryLimit is the number of sync logs History returns by default
	DefaultHistoryLimit = 50
	// DefaultChangesLimit is the number of changes RecentChanges returns by default
	DefaultChangesLimit = 100
	// MaxQueryLimit caps History and RecentChanges
	MaxQueryLimit = 1000
	// DefaultHighPriorityLimit caps the variants one priority run visits
	DefaultHighPriorityLimit = 200
	// maxMatchSuggestions is how many fuzzy match candidates are logged per product
	maxMatchSuggestions = 3
)

// ErrSyncInProgress is returned when a run is triggered for a supplier whose
// previous run has not finished.
var ErrSyncInProgress = shared.ErrConflict.WithMessage("sync already in progress")

// ConnectorSource resolves the configured supplier connectors
type ConnectorSource interface {
	Get(id integration.SupplierID) (integration.SupplierConnector, error)
	IDs() []integration.SupplierID
	HealthCheck(ctx context.Context) map[integration.SupplierID]bool
}

// Normalizer maps raw supplier products onto the unified schema
type Normalizer interface {
	Normalize(raw integration.RawProduct) (*catalog.UnifiedProduct, []*catalog.ProductVariant, error)
}

// CacheInvalidator drops cached connector responses after authoritative writes
type CacheInvalidator interface {
	InvalidateSupplier(ctx context.Context, supplier string) int
}

// ChangeNotifier publishes changes that have not been notified yet
type ChangeNotifier interface {
	Flush(ctx context.Context) (int, error)
}

// Metrics records sync outcomes
type Metrics interface {
	SyncStarted(supplier string)
	SyncFinished(supplier, status string, variants int, elapsed time.Duration)
	ChangeDetected(supplier, changeType string)
	WebhookUpdate(supplier, result string)
}

type noopMetrics struct{}

func (noopMetrics) SyncStarted(string)                              {}
func (noopMetrics) SyncFinished(string, string, int, time.Duration) {}
func (noopMetrics) ChangeDetected(string, string)                   {}
func (noopMetrics) WebhookUpdate(string, string)                    {}

// Repositories are the non-transactional repositories used for run logs and queries
type Repositories struct {
	Products    catalog.ProductRepository
	Variants    catalog.VariantRepository
	Inventories inventory.SupplierInventoryRepository
	SyncLogs    inventory.SyncLogRepository
	Changes     inventory.ChangeRepository
}

// Config tunes the orchestrator
type Config struct {
	// HighPriorityLimit caps the variants one priority run visits
	HighPriorityLimit int
	// Concurrency caps how many suppliers SyncAllSuppliers runs at once; 0 runs all
	Concurrency int
	// LowStockThreshold re-derives a variant's stock status on webhook updates
	LowStockThreshold int
}

// Service is the sync orchestrator
type Service struct {
	connectors ConnectorSource
	normalizer Normalizer
	repos      Repositories
	txScope    TransactionScope
	matcher    *catalog.Matcher
	cache      CacheInvalidator
	notifier   ChangeNotifier
	metrics    Metrics
	logger     *zap.Logger
	config     Config
	guard      *inFlight
	now        func() time.Time
}

// NewService creates a new sync orchestrator. A nil txScope runs the
// transactional steps directly on repos.
func NewService(
	connectors ConnectorSource,
	norm Normalizer,
	repos Repositories,
	txScope TransactionScope,
	log *zap.Logger,
	cfg Config,
) *Service {
	if cfg.HighPriorityLimit <= 0 {
		cfg.HighPriorityLimit = DefaultHighPriorityLimit
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = catalog.DefaultLowStockThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	if txScope == nil {
		txScope = NewNoOpTransactionScope(repos.Products, repos.Variants, repos.Inventories, repos.Changes)
	}
	return &Service{
		connectors: connectors,
		normalizer: norm,
		repos:      repos,
		txScope:    txScope,
		metrics:    noopMetrics{},
		logger:     log.Named("orchestrator"),
		config:     cfg,
		guard:      newInFlight(),
		now:        time.Now,
	}
}

// SetMatcher enables cross-supplier match suggestions during full syncs
func (s *Service) SetMatcher(m *catalog.Matcher) {
	s.matcher = m
}

// SetCache sets the cache invalidated after successful writes
func (s *Service) SetCache(c CacheInvalidator) {
	s.cache = c
}

// SetNotifier sets the change notifier flushed after runs that detected changes
func (s *Service) SetNotifier(n ChangeNotifier) {
	s.notifier = n
}

// SetMetrics sets the metrics sink
func (s *Service) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	s.metrics = m
}

// SetClock overrides the time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// IsSyncing reports whether a run for the supplier is in progress
func (s *Service) IsSyncing(supplierID integration.SupplierID) bool {
	return s.guard.has(integration.NormalizeSupplierID(supplierID.String()))
}

// SyncingSuppliers returns the suppliers with a run in progress
func (s *Service) SyncingSuppliers() []integration.SupplierID {
	return s.guard.list()
}

// ---------------------------------------------------------------------------
// Full sync
// ---------------------------------------------------------------------------

// SyncAllSuppliers runs a full sync of every configured supplier. Suppliers
// run independently: a failure of one never aborts the others, and each run
// produces its own sync log.
func (s *Service) SyncAllSuppliers(ctx context.Context, trigger inventory.SyncTrigger) []SyncResult {
	ids := s.connectors.IDs()
	results := make([]SyncResult, len(ids))

	var g errgroup.Group
	if s.config.Concurrency > 0 {
		g.SetLimit(s.config.Concurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			runLog, err := s.SyncSupplier(ctx, id, trigger)
			results[i] = SyncResult{SupplierID: id, Log: runLog, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Succeeded() {
			failed++
		}
	}
	s.logger.Info("Sync of all suppliers finished",
		zap.String("trigger", string(trigger)),
		zap.Int("suppliers", len(results)),
		zap.Int("failed", failed),
	)
	return results
}

// SyncSupplier runs a full sync of one supplier. The returned log is the
// run's terminal state; it is non-nil whenever the run started, including
// runs that failed with an error.
func (s *Service) SyncSupplier(ctx context.Context, supplierID integration.SupplierID, trigger inventory.SyncTrigger) (*inventory.InventorySyncLog, error) {
	return s.run(ctx, supplierID, trigger, s.fullSync)
}

func (s *Service) fullSync(ctx context.Context, conn integration.SupplierConnector, runLog *inventory.InventorySyncLog) (runStats, error) {
	var stats runStats
	raws, err := conn.FetchProducts(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch products: %w", err)
	}
	logger.L(ctx).Info("Fetched supplier catalog", zap.Int("products", len(raws)))

	pool := s.matchPool(ctx, conn.SupplierID())
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if raw.SupplierID.IsEmpty() {
			raw.SupplierID = conn.SupplierID()
		}
		product, n, err := s.syncProduct(ctx, runLog, raw, nil)
		stats.add(n)
		if err == nil && product != nil {
			s.suggestMatches(ctx, *product, pool)
		}
	}
	return stats, nil
}

// ---------------------------------------------------------------------------
// Run lifecycle
// ---------------------------------------------------------------------------

type runStats struct {
	variants int
	changes  int
}

func (r *runStats) add(o runStats) {
	r.variants += o.variants
	r.changes += o.changes
}

type runFunc func(ctx context.Context, conn integration.SupplierConnector, runLog *inventory.InventorySyncLog) (runStats, error)

// run wraps one supplier run: in-flight guard, span, sync log lifecycle,
// metrics, cache invalidation and change notification.
func (s *Service) run(ctx context.Context, supplierID integration.SupplierID, trigger inventory.SyncTrigger, fn runFunc) (*inventory.InventorySyncLog, error) {
	id := integration.NormalizeSupplierID(supplierID.String())
	if id.IsEmpty() {
		return nil, shared.ErrInvalidInput.WithMessage("supplier id is required")
	}
	if !trigger.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("invalid sync trigger %q", trigger)
	}
	conn, err := s.connectors.Get(id)
	if err != nil {
		return nil, shared.ErrNotFound.WithMessage("supplier %s is not configured", id).Wrap(err)
	}
	if !s.guard.acquire(id) {
		return nil, ErrSyncInProgress.WithMessage("sync already in progress for %s", id)
	}
	defer s.guard.release(id)

	runLog := inventory.NewInventorySyncLog(id, trigger)
	ctx, span := telemetry.StartSpan(ctx, "inventorysync.sync_supplier",
		telemetry.AttrSupplierID.String(id.String()),
		telemetry.AttrSyncTrigger.String(string(trigger)),
		telemetry.AttrSyncLogID.String(runLog.ID.String()),
	)
	defer span.End()
	ctx, log := logger.WithSupplierID(ctx, s.logger, id.String())
	ctx, _ = logger.WithSyncLogID(ctx, log, runLog.ID.String())

	if err := runLog.Start(s.now()); err != nil {
		return nil, err
	}
	if err := s.repos.SyncLogs.Create(ctx, runLog); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create sync log: %w", err)
	}
	s.metrics.SyncStarted(id.String())
	logger.L(ctx).Info("Supplier sync started", zap.String("trigger", string(trigger)))

	stats, runErr := fn(ctx, conn, runLog)
	if runErr != nil {
		runLog.VariantsSynced = stats.variants
		runLog.ChangesDetected = stats.changes
		_ = runLog.Fail(runErr.Error(), s.now())
	} else {
		_ = runLog.Finish(stats.variants, stats.changes, s.now())
	}
	span.SetAttributes(
		telemetry.AttrVariantsSynced.Int(runLog.VariantsSynced),
		telemetry.AttrChangesDetected.Int(runLog.ChangesDetected),
	)

	s.finishRun(ctx, runLog)

	if runErr != nil {
		telemetry.RecordError(span, runErr)
		return runLog, fmt.Errorf("sync %s: %w", id, runErr)
	}
	return runLog, nil
}

// finishRun persists the terminal log and runs the post-sync side effects.
// It runs detached from cancellation so a cancelled run still records its end.
func (s *Service) finishRun(ctx context.Context, runLog *inventory.InventorySyncLog) {
	ctx = context.WithoutCancel(ctx)
	log := logger.L(ctx)
	supplier := runLog.SupplierID.String()

	if err := s.repos.SyncLogs.Update(ctx, runLog); err != nil {
		log.Error("Failed to update sync log", zap.Error(err))
	}
	s.metrics.SyncFinished(supplier, string(runLog.Status), runLog.VariantsSynced, runLog.Duration(s.now()))

	if runLog.VariantsSynced > 0 && s.cache != nil {
		removed := s.cache.InvalidateSupplier(ctx, supplier)
		log.Debug("Invalidated supplier cache", zap.Int("keys", removed))
	}
	if runLog.ChangesDetected > 0 {
		s.notify(ctx)
	}

	fields := []zap.Field{
		zap.String("status", string(runLog.Status)),
		zap.Int("variants_synced", runLog.VariantsSynced),
		zap.Int("changes_detected", runLog.ChangesDetected),
		zap.Int("errors", len(runLog.Errors)),
		zap.Duration("duration", runLog.Duration(s.now())),
	}
	if runLog.Status == inventory.SyncStatusCompleted {
		log.Info("Supplier sync finished", fields...)
	} else {
		log.Warn("Supplier sync finished with errors", fields...)
	}
}

func (s *Service) notify(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Flush(ctx); err != nil {
		logger.L(ctx).Warn("Failed to publish inventory changes", zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// Per-product write path
// ---------------------------------------------------------------------------

// syncProduct normalizes one raw product and persists it. Normalization
// failures are recorded on the run log and never abort the run. When only is
// non-nil, variants whose SKU is not in it are skipped.
func (s *Service) syncProduct(ctx context.Context, runLog *inventory.InventorySyncLog, raw integration.RawProduct, only map[string]bool) (*catalog.UnifiedProduct, runStats, error) {
	product, variants, err := s.normalizer.Normalize(raw)
	if err != nil {
		s.recordNormalizeError(ctx, runLog, raw, err)
		if product == nil {
			return nil, runStats{}, err
		}
	}

	synced, changes, err := s.persistProduct(ctx, product, variants, only)
	if err != nil {
		runLog.RecordError(fmt.Sprintf("product %s: %v", product.SKU, err))
		logger.L(ctx).Error("Failed to persist product", zap.String("sku", product.SKU), zap.Error(err))
		return product, runStats{}, err
	}
	for _, c := range changes {
		s.metrics.ChangeDetected(c.SupplierID.String(), string(c.ChangeType))
	}
	return product, runStats{variants: synced, changes: len(changes)}, nil
}

func (s *Service) recordNormalizeError(ctx context.Context, runLog *inventory.InventorySyncLog, raw integration.RawProduct, err error) {
	var rejected *normalizer.RejectedVariantsError
	if errors.As(err, &rejected) {
		for _, r := range rejected.Unwrap() {
			runLog.RecordError(fmt.Sprintf("variant rejected: %v", r))
		}
	} else {
		runLog.RecordError(fmt.Sprintf("product %s rejected: %v", raw.ExternalID, err))
	}
	logger.L(ctx).Warn("Normalization rejected supplier record",
		zap.String("external_id", raw.ExternalID),
		zap.Error(err),
	)
}

// persistProduct upserts a product and its variants and records each
// variant's supplier snapshot, all in one transaction.
func (s *Service) persistProduct(ctx context.Context, product *catalog.UnifiedProduct, variants []*catalog.ProductVariant, only map[string]bool) (int, []inventory.InventoryChange, error) {
	now := s.now()
	var synced int
	var changes []inventory.InventoryChange

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		synced, changes = 0, nil

		productID, err := repos.ProductRepo().Save(ctx, catalog.NewProduct(*product))
		if err != nil {
			return fmt.Errorf("save product: %w", err)
		}
		for _, v := range variants {
			if only != nil && !only[v.SKU] {
				continue
			}
			v.ProductID = productID
			existing, err := repos.VariantRepo().FindBySKU(ctx, v.SKU)
			switch {
			case err == nil:
				v.HighPriority = existing.HighPriority
			case !errors.Is(err, shared.ErrNotFound):
				return fmt.Errorf("find variant %s: %w", v.SKU, err)
			}
			variantID, err := repos.VariantRepo().Save(ctx, v)
			if err != nil {
				return fmt.Errorf("save variant %s: %w", v.SKU, err)
			}

			key := mappingKey{
				VariantID:   variantID,
				VariantSKU:  v.SKU,
				SupplierID:  product.SupplierID,
				SupplierSKU: v.SupplierSKU,
			}
			if key.SupplierSKU == "" {
				key.SupplierSKU = v.SKU
			}
			_, _, detected, err := recordSnapshot(ctx, repos, key, inventory.NewSnapshot(v.InventoryQty, v.WholesaleCost), now)
			if err != nil {
				return err
			}
			synced++
			changes = append(changes, detected...)
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return synced, changes, nil
}

// mappingKey identifies one supplier inventory row
type mappingKey struct {
	VariantID   uuid.UUID
	VariantSKU  string
	SupplierID  integration.SupplierID
	SupplierSKU string
}

// recordSnapshot is the single write path for supplier inventory, shared by
// polled syncs and webhook updates. It diffs snap against the stored row,
// saves the new state and appends one change per differing field. A missing
// row is created without change records; the first row of a variant becomes
// its primary mapping.
func recordSnapshot(ctx context.Context, repos TransactionalRepositories, key mappingKey, snap inventory.Snapshot, now time.Time) (*inventory.SupplierInventory, bool, []inventory.InventoryChange, error) {
	invRepo := repos.SupplierInventoryRepo()

	current, err := invRepo.FindByVariantAndSupplier(ctx, key.VariantID, key.SupplierID, key.SupplierSKU)
	var changes []inventory.InventoryChange
	created := false
	switch {
	case err == nil:
		changes = current.Apply(snap, now)
	case errors.Is(err, shared.ErrNotFound):
		current = inventory.NewSupplierInventory(key.VariantID, key.VariantSKU, key.SupplierID, key.SupplierSKU, snap, now)
		others, err := invRepo.FindByVariantSKU(ctx, key.VariantSKU)
		if err != nil {
			return nil, false, nil, fmt.Errorf("find mappings of %s: %w", key.VariantSKU, err)
		}
		current.IsPrimary = len(others) == 0
		created = true
	default:
		return nil, false, nil, fmt.Errorf("find supplier inventory %s: %w", key.SupplierSKU, err)
	}

	if err := invRepo.Save(ctx, current); err != nil {
		return nil, false, nil, fmt.Errorf("save supplier inventory %s: %w", key.SupplierSKU, err)
	}
	if len(changes) > 0 {
		if err := repos.ChangeRepo().Append(ctx, changes); err != nil {
			return nil, false, nil, fmt.Errorf("append changes for %s: %w", key.VariantSKU, err)
		}
	}
	return current, created, changes, nil
}

// ---------------------------------------------------------------------------
// Fuzzy match suggestions
// ---------------------------------------------------------------------------

func (s *Service) matchPool(ctx context.Context, supplierID integration.SupplierID) []catalog.UnifiedProduct {
	if s.matcher == nil {
		return nil
	}
	products, err := s.repos.Products.FindAll(ctx)
	if err != nil {
		logger.L(ctx).Warn("Failed to load match pool", zap.Error(err))
		return nil
	}
	pool := make([]catalog.UnifiedProduct, 0, len(products))
	for _, p := range products {
		if p.SupplierID != supplierID {
			pool = append(pool, p.UnifiedProduct)
		}
	}
	return pool
}

// suggestMatches logs likely cross-supplier duplicates. Nothing is merged.
func (s *Service) suggestMatches(ctx context.Context, product catalog.UnifiedProduct, pool []catalog.UnifiedProduct) {
	if s.matcher == nil || len(pool) == 0 {
		return
	}
	candidates := s.matcher.FindCandidates(product, pool)
	for i, c := range candidates {
		if i == maxMatchSuggestions {
			break
		}
		logger.L(ctx).Info("Possible cross-supplier product match",
			zap.String("sku", product.SKU),
			zap.String("candidate_sku", c.Product.SKU),
			zap.String("candidate_supplier", c.Product.SupplierID.String()),
			zap.Float64("score", c.Score),
		)
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Status returns the last run of every configured supplier and whether a run
// is in progress.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	latest, err := s.repos.SyncLogs.FindLatestBySupplier(ctx)
	if err != nil {
		return nil, fmt.Errorf("find latest sync logs: %w", err)
	}

	ids := s.connectors.IDs()
	report := &StatusReport{
		Suppliers:   make([]SupplierStatus, 0, len(ids)),
		GeneratedAt: s.now(),
	}
	for _, id := range ids {
		st := SupplierStatus{
			SupplierID:  id,
			DisplayName: id.DisplayName(),
			Syncing:     s.guard.has(id),
		}
		if l, ok := latest[id]; ok {
			st.LastSync = &l
			if l.CompletedAt != nil {
				st.LastSyncAt = l.CompletedAt
			} else {
				st.LastSyncAt = &l.StartedAt
			}
		}
		report.Suppliers = append(report.Suppliers, st)
	}
	return report, nil
}

// HealthCheck tests every configured connector
func (s *Service) HealthCheck(ctx context.Context) map[integration.SupplierID]bool {
	return s.connectors.HealthCheck(ctx)
}

// History returns the most recent sync logs, newest first
func (s *Service) History(ctx context.Context, limit int) ([]inventory.InventorySyncLog, error) {
	return s.repos.SyncLogs.FindRecent(ctx, clampLimit(limit, DefaultHistoryLimit))
}

// RecentChanges returns the most recent inventory changes, newest first
func (s *Service) RecentChanges(ctx context.Context, limit int) ([]inventory.InventoryChange, error) {
	return s.repos.Changes.FindRecent(ctx, clampLimit(limit, DefaultChangesLimit))
}

// InventoryBySKU returns the current inventory of a variant. sku may be the
// internal variant SKU or a supplier SKU.
func (s *Service) InventoryBySKU(ctx context.Context, sku string) (*SKUInventory, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.ErrInvalidInput.WithMessage("sku is required")
	}

	variant, err := s.repos.Variants.FindBySKU(ctx, sku)
	if errors.Is(err, shared.ErrNotFound) {
		variant, err = s.variantBySupplierSKU(ctx, sku)
	}
	if err != nil {
		return nil, err
	}

	mappings, err := s.repos.Inventories.FindByVariantSKU(ctx, variant.SKU)
	if err != nil {
		return nil, fmt.Errorf("find supplier inventory of %s: %w", variant.SKU, err)
	}
	result := &SKUInventory{Variant: *variant, Suppliers: mappings}
	if len(mappings) == 0 {
		result.TotalQuantity = variant.InventoryQty
	}
	for _, m := range mappings {
		result.TotalQuantity += m.Quantity
	}
	result.InStock = result.TotalQuantity > 0
	return result, nil
}

func (s *Service) variantBySupplierSKU(ctx context.Context, sku string) (*catalog.ProductVariant, error) {
	for _, id := range s.connectors.IDs() {
		inv, err := s.repos.Inventories.FindBySupplierSKU(ctx, id, sku)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.repos.Variants.FindByID(ctx, inv.VariantID)
	}
	return nil, shared.ErrNotFound.WithMessage("no inventory found for SKU %s", sku)
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
