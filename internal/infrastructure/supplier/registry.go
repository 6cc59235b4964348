package supplier

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// Registry holds the configured connectors keyed by supplier id
type Registry struct {
	mu         sync.RWMutex
	connectors map[integration.SupplierID]integration.SupplierConnector
}

// NewRegistry creates a registry with the given connectors
func NewRegistry(connectors ...integration.SupplierConnector) *Registry {
	r := &Registry{connectors: make(map[integration.SupplierID]integration.SupplierConnector)}
	for _, c := range connectors {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a connector
func (r *Registry) Register(c integration.SupplierConnector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.SupplierID()] = c
}

// Get returns the connector for a supplier. Aliases are accepted.
func (r *Registry) Get(id integration.SupplierID) (integration.SupplierConnector, error) {
	canonical := integration.NormalizeSupplierID(id.String())
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[canonical]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrSupplierNotConfigured, id)
	}
	return c, nil
}

// IDs returns the registered supplier ids in stable order
func (r *Registry) IDs() []integration.SupplierID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]integration.SupplierID, 0, len(r.connectors))
	for id := range r.connectors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Connectors returns the registered connectors in supplier id order
func (r *Registry) Connectors() []integration.SupplierConnector {
	ids := r.IDs()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]integration.SupplierConnector, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.connectors[id])
	}
	return out
}

// HealthCheck tests every connector concurrently
func (r *Registry) HealthCheck(ctx context.Context) map[integration.SupplierID]bool {
	connectors := r.Connectors()
	results := make(map[integration.SupplierID]bool, len(connectors))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, c := range connectors {
		wg.Add(1)
		go func(c integration.SupplierConnector) {
			defer wg.Done()
			ok := c.TestConnection(ctx)
			mu.Lock()
			results[c.SupplierID()] = ok
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return results
}
