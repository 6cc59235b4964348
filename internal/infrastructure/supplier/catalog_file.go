package supplier

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// maxCatalogLine bounds a single JSONL record
const maxCatalogLine = 4 * 1024 * 1024

// ErrCatalogPathRequired is returned when no catalog file is configured
var ErrCatalogPathRequired = errors.New("catalog: file path is required")

// CatalogFileConnector serves products from a JSON Lines export, one product per line.
// It is used for suppliers delivered as bulk catalog files instead of a live API.
// The file is re-read when its modification time changes.
type CatalogFileConnector struct {
	supplier integration.SupplierID
	path     string
	idField  string

	mu      sync.RWMutex
	modTime time.Time
	order   []string
	index   map[string]json.RawMessage
}

// NewCatalogFileConnector creates a file connector. idField names the JSON
// property holding the product id (for SanMar exports, "style").
func NewCatalogFileConnector(supplier integration.SupplierID, path, idField string) (*CatalogFileConnector, error) {
	if path == "" {
		return nil, ErrCatalogPathRequired
	}
	if idField == "" {
		idField = "style"
	}
	return &CatalogFileConnector{supplier: supplier, path: path, idField: idField}, nil
}

// SupplierID implements SupplierConnector
func (c *CatalogFileConnector) SupplierID() integration.SupplierID {
	return c.supplier
}

// FetchProducts implements SupplierConnector
func (c *CatalogFileConnector) FetchProducts(_ context.Context) ([]integration.RawProduct, error) {
	if err := c.load(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	out := make([]integration.RawProduct, 0, len(c.order))
	for _, key := range c.order {
		raw := c.index[key]
		out = append(out, integration.RawProduct{
			SupplierID: c.supplier,
			ExternalID: c.externalID(raw, key),
			Payload:    raw,
			FetchedAt:  now,
		})
	}
	return out, nil
}

// FetchProduct implements SupplierConnector; lookup is case-insensitive
func (c *CatalogFileConnector) FetchProduct(_ context.Context, id string) (*integration.RawProduct, error) {
	if err := c.load(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	raw, ok := c.index[strings.ToUpper(id)]
	if !ok {
		return nil, integration.NotFoundError(c.supplier, id)
	}
	return &integration.RawProduct{
		SupplierID: c.supplier,
		ExternalID: c.externalID(raw, id),
		Payload:    raw,
		FetchedAt:  time.Now(),
	}, nil
}

// TestConnection implements SupplierConnector
func (c *CatalogFileConnector) TestConnection(_ context.Context) bool {
	_, err := os.Stat(c.path)
	return err == nil
}

func (c *CatalogFileConnector) externalID(raw json.RawMessage, fallback string) string {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		if v, ok := fields[c.idField]; ok {
			return fmt.Sprint(v)
		}
	}
	return fallback
}

// load (re)builds the in-memory index when the file changed
func (c *CatalogFileConnector) load() error {
	info, err := os.Stat(c.path)
	if err != nil {
		return integration.NetworkError(c.supplier, err)
	}

	c.mu.RLock()
	fresh := c.index != nil && info.ModTime().Equal(c.modTime)
	c.mu.RUnlock()
	if fresh {
		return nil
	}

	f, err := os.Open(c.path)
	if err != nil {
		return integration.NetworkError(c.supplier, err)
	}
	defer f.Close()

	order := []string{}
	index := map[string]json.RawMessage{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCatalogLine)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(text, &fields); err != nil {
			return integration.InvalidResponseError(c.supplier, fmt.Errorf("line %d: %w", line, err))
		}
		v, ok := fields[c.idField]
		if !ok {
			continue
		}
		key := strings.ToUpper(fmt.Sprint(v))
		if _, seen := index[key]; !seen {
			order = append(order, key)
		}
		index[key] = append(json.RawMessage(nil), text...)
	}
	if err := scanner.Err(); err != nil {
		return integration.InvalidResponseError(c.supplier, err)
	}

	c.mu.Lock()
	c.order = order
	c.index = index
	c.modTime = info.ModTime()
	c.mu.Unlock()
	return nil
}

// Ensure CatalogFileConnector implements SupplierConnector
var _ integration.SupplierConnector = (*CatalogFileConnector)(nil)
