package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/handler"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/middleware"
)

// InventoryRoutesConfig configures the /inventory routes
type InventoryRoutesConfig struct {
	// TriggerBurst manual sync triggers are allowed per TriggerWindow,
	// per client for POST /sync and per supplier for POST /sync/:supplierId
	TriggerBurst  int
	TriggerWindow time.Duration
	Webhook       middleware.WebhookSignatureConfig
}

// DefaultInventoryRoutesConfig allows five manual triggers a minute
func DefaultInventoryRoutesConfig() InventoryRoutesConfig {
	return InventoryRoutesConfig{
		TriggerBurst:  5,
		TriggerWindow: time.Minute,
	}
}

// NewInventoryRoutes builds the inventory sync route group
func NewInventoryRoutes(h *handler.InventorySyncHandler, cfg InventoryRoutesConfig) *DomainGroup {
	if cfg.TriggerBurst <= 0 || cfg.TriggerWindow <= 0 {
		def := DefaultInventoryRoutesConfig()
		cfg.TriggerBurst, cfg.TriggerWindow = def.TriggerBurst, def.TriggerWindow
	}
	allLimiter := middleware.NewRateLimiter(cfg.TriggerBurst, cfg.TriggerWindow)
	supplierLimiter := middleware.NewRateLimiter(cfg.TriggerBurst, cfg.TriggerWindow)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.GET("/status", h.GetStatus)
	inventory.GET("/history", h.GetHistory)
	inventory.GET("/changes", h.GetChanges)
	inventory.POST("/sync", middleware.RateLimit(allLimiter), h.SyncAll)
	inventory.POST("/sync/:supplierId",
		middleware.RateLimitByKey(supplierLimiter, supplierKey),
		h.SyncOne,
	)
	inventory.POST("/webhook", middleware.WebhookSignature(cfg.Webhook), h.Webhook)
	inventory.GET("/:sku", h.GetBySKU)
	return inventory
}

func supplierKey(c *gin.Context) string {
	return integration.NormalizeSupplierID(c.Param("supplierId")).String()
}

// RegisterSystemRoutes mounts health probes and build info outside the
// versioned API
func RegisterSystemRoutes(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health/live", h.Liveness)
	engine.GET("/health/ready", h.Readiness)
	engine.GET("/system/info", h.GetSystemInfo)
}
