// Package normalizer maps raw supplier payloads onto the unified catalog schema.
//
// Each supplier contributes a Mapper that only understands its own wire shape
// and produces a Draft. The Normalizer then applies the shared canonicalizers
// (size, color, category, SKU, price), derives inventory status and rejects
// records that fail schema validation.
package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// Draft is a supplier product decoded from the wire but not yet canonicalized
type Draft struct {
	BaseSKU     string
	Name        string
	Brand       string
	Description string
	Category    string
	Material    string
	Tags        []string
	Images      []string
	BulkBreaks  []catalog.PriceBreak
	Variants    []DraftVariant
}

// DraftVariant is one supplier size/color row
type DraftVariant struct {
	SupplierSKU string
	Color       string
	Size        string
	Cost        decimal.Decimal
	Quantity    int
	Images      []string
}

// Mapper decodes one supplier's payload into a Draft
type Mapper interface {
	Map(payload json.RawMessage) (*Draft, error)
}

// MapperFunc adapts a function to the Mapper interface
type MapperFunc func(payload json.RawMessage) (*Draft, error)

// Map implements Mapper
func (f MapperFunc) Map(payload json.RawMessage) (*Draft, error) {
	return f(payload)
}

// RejectedVariantsError is returned together with a valid product when some of
// its variants failed validation. The valid variants are still returned.
type RejectedVariantsError struct {
	ProductSKU string
	Rejected   []error
}

// Error implements the error interface
func (e *RejectedVariantsError) Error() string {
	return fmt.Sprintf("product %s: %d variant(s) rejected", e.ProductSKU, len(e.Rejected))
}

// Unwrap exposes the individual rejections to errors.Is/As
func (e *RejectedVariantsError) Unwrap() []error {
	return e.Rejected
}

// Options configures a Normalizer
type Options struct {
	// Pricing is the retail pricing rule applied to every wholesale cost
	Pricing catalog.PricingRule
	// SupplierPricing overrides Pricing per supplier
	SupplierPricing map[integration.SupplierID]catalog.PricingRule
	// LowStockThreshold is the quantity at or below which a variant is low stock
	LowStockThreshold int
	// Now is used when a raw product carries no fetch time
	Now func() time.Time
}

// Normalizer converts RawProducts into UnifiedProducts and variants
type Normalizer struct {
	mu      sync.RWMutex
	mappers map[integration.SupplierID]Mapper
	opts    Options
}

// New creates a Normalizer with the mappers of all built-in suppliers
func New(opts Options) *Normalizer {
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = catalog.DefaultLowStockThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	n := &Normalizer{
		mappers: make(map[integration.SupplierID]Mapper),
		opts:    opts,
	}
	n.Register(integration.SupplierASColour, MapperFunc(mapASColour))
	n.Register(integration.SupplierSSActivewear, MapperFunc(mapSSActivewear))
	n.Register(integration.SupplierSanMar, MapperFunc(mapSanMar))
	return n
}

// Register installs or replaces the mapper for a supplier
func (n *Normalizer) Register(id integration.SupplierID, m Mapper) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mappers[id] = m
}

// LowStockThreshold returns the effective low stock threshold
func (n *Normalizer) LowStockThreshold() int {
	return n.opts.LowStockThreshold
}

func (n *Normalizer) pricingFor(id integration.SupplierID) catalog.PricingRule {
	if rule, ok := n.opts.SupplierPricing[id]; ok {
		return rule
	}
	return n.opts.Pricing
}

// Normalize maps a raw product into the unified schema.
//
// A product that fails validation is rejected as a whole with a
// *catalog.ValidationError. Variants that fail validation are dropped; they
// are reported through a *RejectedVariantsError returned alongside the product
// and the remaining variants.
func (n *Normalizer) Normalize(raw integration.RawProduct) (*catalog.UnifiedProduct, []*catalog.ProductVariant, error) {
	n.mu.RLock()
	mapper, ok := n.mappers[raw.SupplierID]
	n.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", integration.ErrUnknownSupplier, raw.SupplierID)
	}

	draft, err := mapper.Map(raw.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", &catalog.ValidationError{SKU: raw.ExternalID, Fields: []string{"payload"}}, err)
	}

	fetched := raw.FetchedAt
	if fetched.IsZero() {
		fetched = n.opts.Now()
	}
	rule := n.pricingFor(raw.SupplierID)

	product := &catalog.UnifiedProduct{
		SKU:         strings.TrimSpace(draft.BaseSKU),
		Name:        strings.TrimSpace(draft.Name),
		Brand:       strings.TrimSpace(draft.Brand),
		Description: strings.TrimSpace(draft.Description),
		Category:    catalog.NormalizeCategory(draft.Category),
		Material:    strings.TrimSpace(draft.Material),
		Tags:        compact(draft.Tags),
		ImageURLs:   compact(draft.Images),
		SupplierID:  raw.SupplierID,
		SupplierRef: raw.ExternalID,
		LastUpdated: fetched,
	}
	for _, pb := range draft.BulkBreaks {
		if pb.MinQuantity <= 0 || !pb.Price.IsPositive() {
			continue
		}
		product.BulkBreaks = append(product.BulkBreaks, catalog.PriceBreak{
			MinQuantity: pb.MinQuantity,
			Price:       catalog.RetailPrice(pb.Price, rule),
		})
	}
	if err := catalog.Validate(product); err != nil {
		return nil, nil, err
	}

	variants, rejected := n.buildVariants(product, draft.Variants, rule)
	summarize(product, variants)

	if len(rejected) > 0 {
		return product, variants, &RejectedVariantsError{ProductSKU: product.SKU, Rejected: rejected}
	}
	return product, variants, nil
}

func (n *Normalizer) buildVariants(product *catalog.UnifiedProduct, drafts []DraftVariant, rule catalog.PricingRule) ([]*catalog.ProductVariant, []error) {
	variants := make([]*catalog.ProductVariant, 0, len(drafts))
	seen := make(map[string]bool, len(drafts))
	var rejected []error

	for _, d := range drafts {
		color := catalog.NormalizeColor(d.Color)
		size, _ := catalog.NormalizeSize(d.Size)

		v := &catalog.ProductVariant{
			ProductSKU:    product.SKU,
			Color:         color,
			Size:          size,
			WholesaleCost: d.Cost,
			Price:         catalog.RetailPrice(d.Cost, rule),
			Images:        compact(d.Images),
			SupplierSKU:   strings.TrimSpace(d.SupplierSKU),
		}
		if size != "" {
			v.SKU = catalog.GenerateVariantSKU(product.Brand, product.SKU, color, size)
		}
		v.SetInventory(d.Quantity, n.opts.LowStockThreshold)

		if err := catalog.ValidateVariant(v); err != nil {
			rejected = append(rejected, err)
			continue
		}
		if seen[v.SKU] {
			rejected = append(rejected, &catalog.ValidationError{SKU: v.SKU, Fields: []string{"duplicate"}})
			continue
		}
		seen[v.SKU] = true
		variants = append(variants, v)
	}
	return variants, rejected
}

// summarize derives the product level aggregates from its variants
func summarize(product *catalog.UnifiedProduct, variants []*catalog.ProductVariant) {
	sizes := []catalog.Size{}
	colors := []catalog.Color{}
	seenSize := map[catalog.Size]bool{}
	seenColor := map[string]bool{}
	total := 0
	var base decimal.Decimal

	for i, v := range variants {
		if !seenSize[v.Size] {
			seenSize[v.Size] = true
			sizes = append(sizes, v.Size)
		}
		if v.Color.Slug != "" && !seenColor[v.Color.Slug] {
			seenColor[v.Color.Slug] = true
			colors = append(colors, v.Color)
		}
		total += v.InventoryQty
		if i == 0 || v.Price.LessThan(base) {
			base = v.Price
		}
	}

	product.Sizes = catalog.SortSizes(sizes)
	product.Colors = colors
	product.TotalInventory = total
	product.InStock = total > 0
	product.BasePrice = base
	if product.Tags == nil {
		product.Tags = []string{}
	}
	if product.ImageURLs == nil {
		product.ImageURLs = []string{}
	}
}

// compact trims values and drops empties and duplicates, keeping order
func compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// IsRejection reports whether err is a record-level validation failure that
// should be counted and skipped rather than abort a sync
func IsRejection(err error) bool {
	var verr *catalog.ValidationError
	var rerr *RejectedVariantsError
	return errors.As(err, &verr) || errors.As(err, &rerr)
}
