package inventorysync

import (
	"sort"
	"sync"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// inFlight is the set of suppliers with a run in progress. Runs of different
// suppliers proceed in parallel; a second run of the same supplier is rejected.
type inFlight struct {
	mu      sync.Mutex
	running map[integration.SupplierID]struct{}
}

func newInFlight() *inFlight {
	return &inFlight{running: make(map[integration.SupplierID]struct{})}
}

// acquire marks the supplier as syncing; false if it already was
func (g *inFlight) acquire(id integration.SupplierID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.running[id]; busy {
		return false
	}
	g.running[id] = struct{}{}
	return true
}

func (g *inFlight) release(id integration.SupplierID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, id)
}

func (g *inFlight) has(id integration.SupplierID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.running[id]
	return busy
}

func (g *inFlight) list() []integration.SupplierID {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]integration.SupplierID, 0, len(g.running))
	for id := range g.running {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
