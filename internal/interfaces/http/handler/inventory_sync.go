package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/inventorysync"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/cache"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/scheduler"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/dto"
)

// DefaultManualTimeout is how long a manual trigger waits for its run
const DefaultManualTimeout = 30 * time.Second

// InventorySyncService is the orchestrator surface served over HTTP
type InventorySyncService interface {
	SyncAllSuppliers(ctx context.Context, trigger inventory.SyncTrigger) []inventorysync.SyncResult
	SyncSupplier(ctx context.Context, supplierID integration.SupplierID, trigger inventory.SyncTrigger) (*inventory.InventorySyncLog, error)
	ApplyInventoryUpdate(ctx context.Context, update inventorysync.InventoryUpdate) (*inventorysync.ApplyResult, error)
	Status(ctx context.Context) (*inventorysync.StatusReport, error)
	HealthCheck(ctx context.Context) map[integration.SupplierID]bool
	History(ctx context.Context, limit int) ([]inventory.InventorySyncLog, error)
	RecentChanges(ctx context.Context, limit int) ([]inventory.InventoryChange, error)
	InventoryBySKU(ctx context.Context, sku string) (*inventorysync.SKUInventory, error)
}

// SchedulerStatus reports the background cadences
type SchedulerStatus interface {
	IsRunning() bool
	NextRuns() scheduler.NextRuns
}

// CacheStats exposes connector cache counters
type CacheStats interface {
	Stats() cache.Stats
}

// InventorySyncHandler serves sync triggers, status, history, changes,
// supplier webhooks and SKU lookups
type InventorySyncHandler struct {
	BaseHandler
	service       InventorySyncService
	scheduler     SchedulerStatus
	cache         CacheStats
	manualTimeout time.Duration
	logger        *zap.Logger
	background    sync.WaitGroup
}

// InventorySyncHandlerOption configures an InventorySyncHandler
type InventorySyncHandlerOption func(*InventorySyncHandler)

// WithScheduler adds next-run times to GET /status
func WithScheduler(s SchedulerStatus) InventorySyncHandlerOption {
	return func(h *InventorySyncHandler) {
		h.scheduler = s
	}
}

// WithCacheStats adds cache counters to GET /status
func WithCacheStats(c CacheStats) InventorySyncHandlerOption {
	return func(h *InventorySyncHandler) {
		h.cache = c
	}
}

// WithManualTimeout sets how long manual triggers wait before answering 202
func WithManualTimeout(d time.Duration) InventorySyncHandlerOption {
	return func(h *InventorySyncHandler) {
		if d > 0 {
			h.manualTimeout = d
		}
	}
}

// NewInventorySyncHandler creates a new InventorySyncHandler
func NewInventorySyncHandler(service InventorySyncService, logger *zap.Logger, opts ...InventorySyncHandlerOption) *InventorySyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &InventorySyncHandler{
		service:       service,
		manualTimeout: DefaultManualTimeout,
		logger:        logger.Named("inventory_sync_handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ===================== Response Types =====================

// NextRunsResponse reports the scheduler's next fire times
type NextRunsResponse struct {
	Running      bool       `json:"running"`
	FullSync     *time.Time `json:"fullSync,omitempty"`
	PrioritySync *time.Time `json:"prioritySync,omitempty"`
}

// SupplierStatusResponse is one supplier's last and next sync
type SupplierStatusResponse struct {
	inventorysync.SupplierStatus
	NextSyncAt *time.Time `json:"nextSyncAt,omitempty"`
	Healthy    *bool      `json:"healthy,omitempty"`
}

// StatusResponse is the body of GET /status
type StatusResponse struct {
	Suppliers   []SupplierStatusResponse `json:"suppliers"`
	Scheduler   NextRunsResponse         `json:"scheduler"`
	Cache       *cache.Stats             `json:"cache,omitempty"`
	GeneratedAt time.Time                `json:"generatedAt"`
}

// ===================== Handlers =====================

// GetStatus returns the last and next sync time per supplier.
// ?health=true also tests every supplier connection.
func (h *InventorySyncHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	report, err := h.service.Status(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var health map[integration.SupplierID]bool
	if c.Query("health") == "true" {
		health = h.service.HealthCheck(ctx)
	}

	resp := StatusResponse{
		Suppliers:   make([]SupplierStatusResponse, 0, len(report.Suppliers)),
		GeneratedAt: report.GeneratedAt,
	}
	if h.scheduler != nil {
		next := h.scheduler.NextRuns()
		resp.Scheduler = NextRunsResponse{
			Running:      h.scheduler.IsRunning(),
			FullSync:     timePtr(next.FullSync),
			PrioritySync: timePtr(next.PrioritySync),
		}
	}
	if h.cache != nil {
		stats := h.cache.Stats()
		resp.Cache = &stats
	}
	for _, st := range report.Suppliers {
		item := SupplierStatusResponse{SupplierStatus: st, NextSyncAt: resp.Scheduler.FullSync}
		if health != nil {
			ok := health[st.SupplierID]
			item.Healthy = &ok
		}
		resp.Suppliers = append(resp.Suppliers, item)
	}

	h.Success(c, resp)
}

// SyncAll triggers a sync of every configured supplier
func (h *InventorySyncHandler) SyncAll(c *gin.Context) {
	var req dto.TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.ValidationError(c, err)
		return
	}
	trigger := inventory.SyncTriggerManual
	if req.Trigger != "" {
		trigger = inventory.SyncTrigger(req.Trigger)
	}

	out, finished := h.runDetached(c, "all", func(ctx context.Context) (any, error) {
		return h.service.SyncAllSuppliers(ctx, trigger), nil
	})
	if !finished {
		h.Accepted(c, dto.SyncAcceptedResponse{
			Status:    string(inventory.SyncStatusRunning),
			Suppliers: []string{"all"},
			Message:   "Sync continues in the background; poll /history for the result",
		})
		return
	}
	h.Success(c, out.data)
}

// SyncOne triggers a sync of one supplier. A run that finished, even as
// failed, answers 200 with its sync log.
func (h *InventorySyncHandler) SyncOne(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("supplierId"))
	if raw == "" {
		h.BadRequest(c, "supplierId is required")
		return
	}
	supplierID := integration.NormalizeSupplierID(raw)

	out, finished := h.runDetached(c, supplierID.String(), func(ctx context.Context) (any, error) {
		return h.service.SyncSupplier(ctx, supplierID, inventory.SyncTriggerManual)
	})
	if !finished {
		h.Accepted(c, dto.SyncAcceptedResponse{
			Status:    string(inventory.SyncStatusRunning),
			Suppliers: []string{supplierID.String()},
			Message:   "Sync continues in the background; poll /history for the result",
		})
		return
	}

	if runLog, ok := out.data.(*inventory.InventorySyncLog); ok && runLog != nil {
		h.Success(c, runLog)
		return
	}
	h.HandleError(c, out.err)
}

// GetHistory returns recent sync runs, newest first
func (h *InventorySyncHandler) GetHistory(c *gin.Context) {
	var req dto.LimitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	logs, err := h.service.History(c.Request.Context(), req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}

// GetChanges returns recent inventory changes, newest first
func (h *InventorySyncHandler) GetChanges(c *gin.Context) {
	var req dto.LimitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	changes, err := h.service.RecentChanges(c.Request.Context(), req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, changes)
}

// Webhook applies a supplier-pushed inventory update
func (h *InventorySyncHandler) Webhook(c *gin.Context) {
	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.service.ApplyInventoryUpdate(c.Request.Context(), inventorysync.InventoryUpdate{
		SupplierID: integration.SupplierID(req.SupplierID),
		SKU:        req.SKU,
		Quantity:   *req.Quantity,
		Price:      req.Price,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{
		Success:  true,
		Quantity: result.Quantity,
		Price:    result.Price.InexactFloat64(),
		Changes:  len(result.Changes),
	})
}

// GetBySKU returns the current inventory of a variant across its suppliers.
// The SKU may be internal or a supplier SKU.
func (h *InventorySyncHandler) GetBySKU(c *gin.Context) {
	sku := strings.TrimSpace(c.Param("sku"))
	if sku == "" {
		h.BadRequest(c, "sku is required")
		return
	}

	inv, err := h.service.InventoryBySKU(c.Request.Context(), sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, fmt.Sprintf("No inventory found for SKU %s (SKU format suggests %s)",
				sku, integration.DetectSupplier(sku).DisplayName()))
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Wait blocks until manual syncs that outlived their request finish, or ctx ends
func (h *InventorySyncHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type runOutcome struct {
	data any
	err  error
}

// runDetached runs fn on a context that survives the request and waits up
// to manualTimeout for it. finished is false when the run is still going.
func (h *InventorySyncHandler) runDetached(c *gin.Context, target string, fn func(ctx context.Context) (any, error)) (runOutcome, bool) {
	ctx := context.WithoutCancel(c.Request.Context())
	done := make(chan runOutcome, 1)

	h.background.Add(1)
	go func() {
		defer h.background.Done()
		start := time.Now()
		data, err := fn(ctx)
		done <- runOutcome{data: data, err: err}
		if err != nil {
			h.logger.Warn("Manual sync finished with error",
				zap.String("target", target),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		h.logger.Info("Manual sync finished",
			zap.String("target", target),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	timer := time.NewTimer(h.manualTimeout)
	defer timer.Stop()
	select {
	case out := <-done:
		return out, true
	case <-timer.C:
		h.logger.Info("Manual sync outlived request timeout",
			zap.String("target", target),
			zap.Duration("timeout", h.manualTimeout),
		)
		return runOutcome{}, false
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
