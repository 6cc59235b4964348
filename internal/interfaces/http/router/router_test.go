package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/inventorysync"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/shared"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/handler"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService answers every call with empty data
type stubService struct{}

func (stubService) SyncAllSuppliers(context.Context, inventory.SyncTrigger) []inventorysync.SyncResult {
	return nil
}

func (stubService) SyncSupplier(_ context.Context, id integration.SupplierID, trigger inventory.SyncTrigger) (*inventory.InventorySyncLog, error) {
	now := time.Now()
	return &inventory.InventorySyncLog{SupplierID: id, Trigger: trigger, Status: inventory.SyncStatusCompleted, StartedAt: now, CompletedAt: &now}, nil
}

func (stubService) ApplyInventoryUpdate(_ context.Context, u inventorysync.InventoryUpdate) (*inventorysync.ApplyResult, error) {
	return &inventorysync.ApplyResult{SupplierID: u.SupplierID, SKU: u.SKU, Quantity: u.Quantity}, nil
}

func (stubService) Status(context.Context) (*inventorysync.StatusReport, error) {
	return &inventorysync.StatusReport{GeneratedAt: time.Now()}, nil
}

func (stubService) HealthCheck(context.Context) map[integration.SupplierID]bool { return nil }

func (stubService) History(context.Context, int) ([]inventory.InventorySyncLog, error) {
	return []inventory.InventorySyncLog{}, nil
}

func (stubService) RecentChanges(context.Context, int) ([]inventory.InventoryChange, error) {
	return []inventory.InventoryChange{}, nil
}

func (stubService) InventoryBySKU(_ context.Context, sku string) (*inventorysync.SKUInventory, error) {
	return nil, shared.ErrNotFound.WithMessage("no variant with SKU %s", sku)
}

func newTestServer(t *testing.T, cfg InventoryRoutesConfig) *gin.Engine {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewHTTPMetrics(reg)
	require.NoError(t, err)

	engine, err := NewEngine(EngineConfig{
		CORS:           middleware.DefaultCORSConfig(),
		MaxBodySize:    1 << 10,
		HTTPMetrics:    metrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	require.NoError(t, err)

	r := NewRouter(engine)
	r.Register(NewInventoryRoutes(handler.NewInventorySyncHandler(stubService{}, nil), cfg))
	r.Setup()
	RegisterSystemRoutes(engine, handler.NewSystemHandler("supplier-sync", "test", nil))
	return engine
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := serve(engine, "GET", "/api/v2/test/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("inventory", "/inventory")
		assert.Equal(t, "inventory", g.Name())
		assert.Equal(t, "/inventory", g.Prefix())
	})

	t.Run("applies middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("inventory", "/inventory")
		g.Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})
		g.Group("admin", "/admin").POST("/rebuild", func(c *gin.Context) {
			c.String(http.StatusCreated, "rebuilt")
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, "POST", "/api/v1/inventory/admin/rebuild", "")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})
}

func TestInventoryRoutes(t *testing.T) {
	engine := newTestServer(t, DefaultInventoryRoutesConfig())

	tests := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{"GET", "/api/v1/inventory/status", "", http.StatusOK},
		{"GET", "/api/v1/inventory/history", "", http.StatusOK},
		{"GET", "/api/v1/inventory/changes?limit=10", "", http.StatusOK},
		{"POST", "/api/v1/inventory/sync", "", http.StatusOK},
		{"POST", "/api/v1/inventory/sync/sanmar", "", http.StatusOK},
		{"POST", "/api/v1/inventory/webhook", `{"supplierId":"sanmar","sku":"PC54","quantity":3}`, http.StatusOK},
		{"GET", "/api/v1/inventory/PC54", "", http.StatusNotFound},
		{"GET", "/health/live", "", http.StatusOK},
		{"GET", "/health/ready", "", http.StatusOK},
		{"GET", "/system/info", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestInventoryRoutes_TriggerRateLimit(t *testing.T) {
	engine := newTestServer(t, InventoryRoutesConfig{TriggerBurst: 2, TriggerWindow: time.Hour})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(engine, "POST", "/api/v1/inventory/sync/sanmar", "").Code)
	}
	w := serve(engine, "POST", "/api/v1/inventory/sync/San%20Mar", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "aliases share a bucket")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(engine, "POST", "/api/v1/inventory/sync/as-colour", "").Code)
}

func TestInventoryRoutes_WebhookSignature(t *testing.T) {
	cfg := DefaultInventoryRoutesConfig()
	cfg.Webhook = middleware.WebhookSignatureConfig{
		Required: true,
		Secrets:  map[integration.SupplierID]string{integration.SupplierSanMar: "s3cret"},
	}
	engine := newTestServer(t, cfg)
	body := `{"supplierId":"sanmar","sku":"PC54","quantity":3}`

	w := serve(engine, "POST", "/api/v1/inventory/webhook", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("POST", "/api/v1/inventory/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SignatureHeader, middleware.Sign([]byte(body), "s3cret"))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_BodyLimitAndMetrics(t *testing.T) {
	engine := newTestServer(t, DefaultInventoryRoutesConfig())

	big := `{"supplierId":"sanmar","sku":"` + strings.Repeat("X", 2048) + `","quantity":1}`
	w := serve(engine, "POST", "/api/v1/inventory/webhook", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	serve(engine, "GET", "/api/v1/inventory/status", "")
	w = serve(engine, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/v1/inventory/status"`)
}
