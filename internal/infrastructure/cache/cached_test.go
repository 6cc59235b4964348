package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// fakeClock is a settable time source for the memory client
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemoryClient(t *testing.T) (*MemoryClient, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	client := NewMemoryClient(time.Hour)
	client.now = clock.Now
	t.Cleanup(func() { _ = client.Close() })
	return client, clock
}

// failingClient fails every operation
type failingClient struct{}

var errBackendDown = errors.New("connection refused")

func (failingClient) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackendDown
}
func (failingClient) Set(context.Context, string, []byte, time.Duration) error { return errBackendDown }
func (failingClient) Delete(context.Context, ...string) (int, error) { return 0, errBackendDown }
func (failingClient) DeletePattern(context.Context, string) (int, error) { return 0, errBackendDown }
func (failingClient) Close() error { return nil }

type countingFn struct {
	calls int
}

func (f *countingFn) products(_ context.Context) ([]string, error) {
	f.calls++
	return []string{"5001", "5026"}, nil
}

func TestCached_Key(t *testing.T) {
	c := NewCached(nil, Options{Prefix: "test"})
	assert.Equal(t, "test:sanmar:fetchProducts:_", c.Key("sanmar", "fetchProducts"))
	assert.Equal(t, "test:sanmar:fetchProduct:PC54", c.Key("sanmar", "fetchProduct", "PC54"))
	assert.Equal(t, "test:sanmar:search:tee,2,{\"brand\":\"Port\"}",
		c.Key("sanmar", "search", "tee", 2, map[string]string{"brand": "Port"}))
	assert.Equal(t, "test:sanmar:*", c.SupplierPattern("sanmar"))
}

func TestCached_SecondIdenticalCallIsServedFromCache(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	c := NewCached(client, Options{Enabled: true, Prefix: "test", CostPerCall: 0.01})
	ctx := context.Background()
	fn := &countingFn{}
	req := Request{Supplier: "as-colour", Method: "fetchProducts", Category: CategoryProducts}

	first, err := Call(ctx, c, req, fn.products)
	require.NoError(t, err)
	second, err := Call(ctx, c, req, fn.products)
	require.NoError(t, err)

	assert.Equal(t, 1, fn.calls)
	assert.Equal(t, first, second)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Calls)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.InDelta(t, 0.01, stats.CostSavings, 1e-9)
}

func TestCached_DistinctArgumentsAreCachedSeparately(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	c := NewCached(client, Options{Enabled: true})
	ctx := context.Background()

	calls := map[string]int{}
	lookup := func(id string) (string, error) {
		return Call(ctx, c, Request{Supplier: "sanmar", Method: "fetchProduct", Category: CategoryProduct, Args: []any{id}},
			func(context.Context) (string, error) {
				calls[id]++
				return "product " + id, nil
			})
	}

	for i := 0; i < 3; i++ {
		for _, id := range []string{"PC54", "PC61"} {
			got, err := lookup(id)
			require.NoError(t, err)
			assert.Equal(t, "product "+id, got)
		}
	}
	assert.Equal(t, map[string]int{"PC54": 1, "PC61": 1}, calls)
}

func TestCached_ExpiredEntryCausesFreshCall(t *testing.T) {
	client, clock := newTestMemoryClient(t)
	c := NewCached(client, Options{Enabled: true, TTLs: map[Category]time.Duration{CategoryInventory: time.Second}})
	ctx := context.Background()
	fn := &countingFn{}
	req := Request{Supplier: "sanmar", Method: "inventory", Category: CategoryInventory}

	_, err := Call(ctx, c, req, fn.products)
	require.NoError(t, err)
	clock.Advance(500 * time.Millisecond)
	_, err = Call(ctx, c, req, fn.products)
	require.NoError(t, err)
	assert.Equal(t, 1, fn.calls)

	clock.Advance(600 * time.Millisecond)
	_, err = Call(ctx, c, req, fn.products)
	require.NoError(t, err)
	assert.Equal(t, 2, fn.calls)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	c := NewCached(client, Options{Enabled: true})
	ctx := context.Background()
	calls := 0
	req := Request{Supplier: "sanmar", Method: "fetchProduct", Category: CategoryProduct, Args: []any{"X"}}
	fail := func(context.Context) (string, error) {
		calls++
		return "", integration.NotFoundError(integration.SupplierSanMar, "X")
	}

	for i := 0; i < 2; i++ {
		_, err := Call(ctx, c, req, fail)
		assert.True(t, integration.IsKind(err, integration.ErrorKindNotFound))
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, client.Size())
}

func TestCached_BackendFailureFallsBackToDirectCall(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := NewCached(failingClient{}, Options{Enabled: true, Logger: zap.New(core)})
	fn := &countingFn{}
	req := Request{Supplier: "sanmar", Method: "fetchProducts", Category: CategoryProducts}

	for i := 0; i < 2; i++ {
		got, err := Call(context.Background(), c, req, fn.products)
		require.NoError(t, err)
		assert.Equal(t, []string{"5001", "5026"}, got)
	}
	assert.Equal(t, 2, fn.calls)

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(4), stats.Errors) // get + set per call
	assert.Equal(t, 4, logs.FilterMessage("Cache operation failed, falling back to direct call").Len())

	assert.Equal(t, 0, c.InvalidatePattern(context.Background(), "*"))
}

func TestCached_UndecodableEntryIsAMiss(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	c := NewCached(client, Options{Enabled: true, Prefix: "test"})
	ctx := context.Background()
	key := c.Key("sanmar", "fetchProducts")
	require.NoError(t, client.Set(ctx, key, []byte("{corrupt"), time.Minute))

	fn := &countingFn{}
	_, err := Call(ctx, c, Request{Supplier: "sanmar", Method: "fetchProducts"}, fn.products)
	require.NoError(t, err)
	assert.Equal(t, 1, fn.calls)
	assert.Equal(t, int64(1), c.Stats().Errors)

	// The fresh result replaced the corrupt entry
	_, err = Call(ctx, c, Request{Supplier: "sanmar", Method: "fetchProducts"}, fn.products)
	require.NoError(t, err)
	assert.Equal(t, 1, fn.calls)
}

func TestCached_DisabledPassesThrough(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	c := NewCached(client, Options{Enabled: false})
	fn := &countingFn{}
	req := Request{Supplier: "sanmar", Method: "fetchProducts"}

	for i := 0; i < 3; i++ {
		_, err := Call(context.Background(), c, req, fn.products)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fn.calls)
	assert.Equal(t, Stats{}, c.Stats())
	assert.Equal(t, 0, client.Size())
	assert.False(t, c.Enabled())

	// A nil wrapper behaves the same way
	_, err := Call(context.Background(), nil, req, fn.products)
	require.NoError(t, err)
	assert.Equal(t, 4, fn.calls)
}

func TestCached_Invalidation(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	c := NewCached(client, Options{Enabled: true, Prefix: "test"})
	ctx := context.Background()

	for _, key := range []string{
		"test:products:all",
		"test:products:PC54",
		"test:inventory:PC54",
		"other:products:x",
	} {
		require.NoError(t, client.Set(ctx, key, []byte(`1`), time.Minute))
	}

	assert.Equal(t, 2, c.InvalidatePattern(ctx, "test:products:*"))
	_, found, _ := client.Get(ctx, "test:inventory:PC54")
	assert.True(t, found)
	_, found, _ = client.Get(ctx, "other:products:x")
	assert.True(t, found)
	_, found, _ = client.Get(ctx, "test:products:PC54")
	assert.False(t, found)

	assert.Equal(t, 1, c.Invalidate(ctx, "test:inventory:PC54"))
	assert.Equal(t, 0, c.Invalidate(ctx, "test:inventory:PC54"))
}

func TestCached_InvalidateSupplier(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	c := NewCached(client, Options{Enabled: true, Prefix: "supplier"})
	ctx := context.Background()
	fn := &countingFn{}

	for _, s := range []string{"sanmar", "as-colour"} {
		_, err := Call(ctx, c, Request{Supplier: s, Method: "fetchProducts"}, fn.products)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.InvalidateSupplier(ctx, "sanmar"))
	assert.Equal(t, 1, client.Size())
}

func TestCached_InvalidateSupplierCoversSlashedArgs(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	c := NewCached(client, Options{Enabled: true, Prefix: "supplier"})
	ctx := context.Background()
	fn := &countingFn{}
	req := Request{Supplier: "sanmar", Method: "fetchProduct", Category: CategoryProduct, Args: []any{"PC61/LPC61"}}

	_, err := Call(ctx, c, req, fn.products)
	require.NoError(t, err)
	assert.Equal(t, 1, c.InvalidateSupplier(ctx, "sanmar"))

	_, err = Call(ctx, c, req, fn.products)
	require.NoError(t, err)
	assert.Equal(t, 2, fn.calls, "invalidated entry must not be served")
}

type recorderStub struct {
	hits, misses int
}

func (r *recorderStub) CacheLookup(_ string, hit bool) {
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func TestCached_RecorderAndReset(t *testing.T) {
	client, _ := newTestMemoryClient(t)
	rec := &recorderStub{}
	c := NewCached(client, Options{Enabled: true, Recorder: rec})
	fn := &countingFn{}
	req := Request{Supplier: "sanmar", Method: "fetchProducts"}

	for i := 0; i < 3; i++ {
		_, err := Call(context.Background(), c, req, fn.products)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, rec.hits)
	assert.Equal(t, 1, rec.misses)

	c.ResetStats()
	assert.Equal(t, Stats{}, c.Stats())
}

func TestCached_TTLDefaults(t *testing.T) {
	c := NewCached(nil, Options{TTLs: map[Category]time.Duration{CategoryPricing: time.Minute, CategoryProduct: 0}})
	assert.Equal(t, time.Minute, c.TTL(CategoryPricing))
	assert.Equal(t, DefaultTTLs[CategoryProduct], c.TTL(CategoryProduct))
	assert.Equal(t, DefaultTTLs[CategoryProducts], c.TTL(CategoryProducts))
	assert.Equal(t, defaultTTL, c.TTL("unknown"))
}
