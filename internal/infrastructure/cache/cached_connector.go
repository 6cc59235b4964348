package cache

import (
	"context"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// CachedConnector decorates a SupplierConnector with the read-through cache.
// Product lists use the products TTL, single products the product TTL.
// Connection tests are never cached.
type CachedConnector struct {
	inner  integration.SupplierConnector
	cached *Cached
}

// NewCachedConnector wraps conn
func NewCachedConnector(conn integration.SupplierConnector, cached *Cached) *CachedConnector {
	return &CachedConnector{inner: conn, cached: cached}
}

// Unwrap returns the decorated connector
func (c *CachedConnector) Unwrap() integration.SupplierConnector {
	return c.inner
}

// SupplierID implements SupplierConnector
func (c *CachedConnector) SupplierID() integration.SupplierID {
	return c.inner.SupplierID()
}

// FetchProducts implements SupplierConnector
func (c *CachedConnector) FetchProducts(ctx context.Context) ([]integration.RawProduct, error) {
	req := Request{
		Supplier: c.inner.SupplierID().String(),
		Method:   "fetchProducts",
		Category: CategoryProducts,
	}
	return Call(ctx, c.cached, req, c.inner.FetchProducts)
}

// FetchProduct implements SupplierConnector
func (c *CachedConnector) FetchProduct(ctx context.Context, id string) (*integration.RawProduct, error) {
	req := Request{
		Supplier: c.inner.SupplierID().String(),
		Method:   "fetchProduct",
		Category: CategoryProduct,
		Args:     []any{id},
	}
	return Call(ctx, c.cached, req, func(ctx context.Context) (*integration.RawProduct, error) {
		return c.inner.FetchProduct(ctx, id)
	})
}

// TestConnection implements SupplierConnector
func (c *CachedConnector) TestConnection(ctx context.Context) bool {
	return c.inner.TestConnection(ctx)
}

// Ensure CachedConnector implements SupplierConnector
var _ integration.SupplierConnector = (*CachedConnector)(nil)
