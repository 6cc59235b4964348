package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Category selects the TTL of a cached call
type Category string

const (
	CategoryProducts  Category = "products"
	CategoryProduct   Category = "product"
	CategoryInventory Category = "inventory"
	CategoryPricing   Category = "pricing"
)

// DefaultTTLs are used for categories without a configured TTL.
// Product lists change slowly; stock and prices change quickly.
var DefaultTTLs = map[Category]time.Duration{
	CategoryProducts:  24 * time.Hour,
	CategoryProduct:   6 * time.Hour,
	CategoryInventory: 15 * time.Minute,
	CategoryPricing:   time.Hour,
}

// defaultTTL applies to unknown categories
const defaultTTL = 15 * time.Minute

// LookupRecorder receives one notification per cache lookup (for metrics)
type LookupRecorder interface {
	CacheLookup(supplier string, hit bool)
}

// Options configures a Cached wrapper
type Options struct {
	// Enabled turns caching on; when false every call goes straight to the wrapped function
	Enabled bool
	// Prefix is the first segment of every key
	Prefix string
	// TTLs overrides DefaultTTLs per category
	TTLs map[Category]time.Duration
	// CostPerCall is the estimated price of one upstream API call, used for savings stats
	CostPerCall float64
	Logger      *zap.Logger
	Recorder    LookupRecorder
}

// Stats is a snapshot of the cache counters
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Calls       int64   `json:"calls"`
	Errors      int64   `json:"errors"`
	HitRate     float64 `json:"hitRate"`
	CostSavings float64 `json:"costSavings"`
}

// Cached wraps expensive supplier calls with a read-through cache.
// Backend failures are logged, counted and treated as misses; they never
// reach the caller.
type Cached struct {
	client   Client
	enabled  bool
	prefix   string
	ttls     map[Category]time.Duration
	cost     float64
	logger   *zap.Logger
	recorder LookupRecorder

	hits   atomic.Int64
	misses atomic.Int64
	calls  atomic.Int64
	errors atomic.Int64
}

// NewCached creates the wrapper. A nil client disables caching.
func NewCached(client Client, opts Options) *Cached {
	ttls := make(map[Category]time.Duration, len(DefaultTTLs))
	for k, v := range DefaultTTLs {
		ttls[k] = v
	}
	for k, v := range opts.TTLs {
		if v > 0 {
			ttls[k] = v
		}
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "supplier"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		client:   client,
		enabled:  opts.Enabled && client != nil,
		prefix:   prefix,
		ttls:     ttls,
		cost:     opts.CostPerCall,
		logger:   logger,
		recorder: opts.Recorder,
	}
}

// Enabled reports whether calls are cached
func (c *Cached) Enabled() bool {
	return c.enabled
}

// TTL returns the TTL used for a category
func (c *Cached) TTL(category Category) time.Duration {
	if ttl, ok := c.ttls[category]; ok {
		return ttl
	}
	return defaultTTL
}

// Key builds "{prefix}:{supplier}:{method}:{args}". Arguments are rendered
// in order; non-string arguments are JSON encoded so equal values always
// produce equal keys.
func (c *Cached) Key(supplier, method string, args ...any) string {
	return strings.Join([]string{c.prefix, supplier, method, serializeArgs(args)}, ":")
}

// SupplierPattern matches every key of a supplier
func (c *Cached) SupplierPattern(supplier string) string {
	return c.prefix + ":" + supplier + ":*"
}

func serializeArgs(args []any) string {
	if len(args) == 0 {
		return "_"
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case string:
			parts = append(parts, v)
		case fmt.Stringer:
			parts = append(parts, v.String())
		default:
			b, err := json.Marshal(v)
			if err != nil {
				parts = append(parts, fmt.Sprint(v))
				continue
			}
			parts = append(parts, string(b))
		}
	}
	return strings.Join(parts, ",")
}

// Request identifies one cacheable call
type Request struct {
	Supplier string
	Method   string
	Category Category
	Args     []any
}

// Call returns the cached result of req, or invokes fn and caches its result.
// Errors returned by fn are passed through and never cached.
func Call[T any](ctx context.Context, c *Cached, req Request, fn func(ctx context.Context) (T, error)) (T, error) {
	if c == nil || !c.enabled {
		return fn(ctx)
	}

	key := c.Key(req.Supplier, req.Method, req.Args...)

	raw, found, err := c.client.Get(ctx, key)
	if err != nil {
		c.fail("get", key, err)
		found = false
	}
	if found {
		var cached T
		err := json.Unmarshal(raw, &cached)
		if err == nil {
			c.hits.Add(1)
			c.record(req.Supplier, true)
			return cached, nil
		}
		c.fail("decode", key, err)
	}

	c.misses.Add(1)
	c.record(req.Supplier, false)
	c.calls.Add(1)
	result, err := fn(ctx)
	if err != nil {
		return result, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.fail("encode", key, err)
		return result, nil
	}
	if err := c.client.Set(ctx, key, data, c.TTL(req.Category)); err != nil {
		c.fail("set", key, err)
	}
	return result, nil
}

// Invalidate removes one key
func (c *Cached) Invalidate(ctx context.Context, key string) int {
	if !c.enabled {
		return 0
	}
	n, err := c.client.Delete(ctx, key)
	if err != nil {
		c.fail("delete", key, err)
		return 0
	}
	return n
}

// InvalidatePattern removes every key matching a glob pattern
func (c *Cached) InvalidatePattern(ctx context.Context, pattern string) int {
	if !c.enabled {
		return 0
	}
	n, err := c.client.DeletePattern(ctx, pattern)
	if err != nil {
		c.fail("delete_pattern", pattern, err)
		return n
	}
	if n > 0 {
		c.logger.Debug("Cache invalidated", zap.String("pattern", pattern), zap.Int("keys", n))
	}
	return n
}

// InvalidateSupplier removes every cached response of a supplier
func (c *Cached) InvalidateSupplier(ctx context.Context, supplier string) int {
	return c.InvalidatePattern(ctx, c.SupplierPattern(supplier))
}

// Stats returns a snapshot of the counters
func (c *Cached) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	s := Stats{
		Hits:        hits,
		Misses:      misses,
		Calls:       c.calls.Load(),
		Errors:      c.errors.Load(),
		CostSavings: float64(hits) * c.cost,
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

// ResetStats zeroes the counters
func (c *Cached) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.calls.Store(0)
	c.errors.Store(0)
}

func (c *Cached) fail(op, key string, err error) {
	c.errors.Add(1)
	c.logger.Warn("Cache operation failed, falling back to direct call",
		zap.Error(&Error{Op: op, Key: key, Err: err}),
	)
}

func (c *Cached) record(supplier string, hit bool) {
	if c.recorder != nil {
		c.recorder.CacheLookup(supplier, hit)
	}
}
