package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/application/inventorysync"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// ErrInvalidConfig is returned by Start when an interval is not positive
var ErrInvalidConfig = errors.New("invalid scheduler configuration")

// SyncRunner is the orchestrator surface the scheduler drives
type SyncRunner interface {
	SyncAllSuppliers(ctx context.Context, trigger inventory.SyncTrigger) []inventorysync.SyncResult
	SyncHighPriorityVariants(ctx context.Context) (*inventorysync.PrioritySyncResult, error)
}

// InventorySyncSchedulerConfig holds configuration for the inventory sync scheduler
type InventorySyncSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// FullSyncInterval is the cadence of full syncs across all suppliers
	FullSyncInterval time.Duration

	// PrioritySyncInterval is the cadence of the high-priority incremental sync
	PrioritySyncInterval time.Duration

	// RunOnStart triggers both syncs immediately instead of waiting one interval
	RunOnStart bool

	// RunTimeout bounds a single tick; zero uses the tick's interval
	RunTimeout time.Duration
}

// DefaultInventorySyncSchedulerConfig returns default configuration
func DefaultInventorySyncSchedulerConfig() InventorySyncSchedulerConfig {
	return InventorySyncSchedulerConfig{
		Enabled:              true,
		FullSyncInterval:     6 * time.Hour,
		PrioritySyncInterval: time.Hour,
	}
}

// NextRuns reports when each cadence fires next. Zero times mean the
// cadence is not scheduled.
type NextRuns struct {
	FullSync     time.Time `json:"fullSync"`
	PrioritySync time.Time `json:"prioritySync"`
}

// cadence is one ticker-driven loop
type cadence struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
	active   bool
	next     time.Time
}

// activeRun is the state of one Start. Each Start gets fresh cadences so
// loops left over from a previous run never touch the current one.
type activeRun struct {
	full     *cadence
	priority *cadence
	cancel   context.CancelFunc
	done     chan struct{}
}

// InventorySyncScheduler runs the full and the priority sync on two
// independent tickers. A failing or panicking tick is logged and the
// cadence keeps going.
type InventorySyncScheduler struct {
	runner  SyncRunner
	logger  *zap.Logger
	config  InventorySyncSchedulerConfig
	mu      sync.Mutex
	current *activeRun
}

// NewInventorySyncScheduler creates a new inventory sync scheduler
func NewInventorySyncScheduler(
	runner SyncRunner,
	logger *zap.Logger,
	config InventorySyncSchedulerConfig,
) *InventorySyncScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventorySyncScheduler{
		runner: runner,
		logger: logger.Named("scheduler"),
		config: config,
	}
}

// Start starts both cadences. Starting a running scheduler is a no-op.
// When ctx is cancelled the cadences exit and the scheduler can be
// started again.
func (s *InventorySyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.current != nil {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Inventory sync scheduler is disabled")
		return nil
	}
	if s.config.FullSyncInterval <= 0 || s.config.PrioritySyncInterval <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: sync intervals must be positive", ErrInvalidConfig)
	}

	ctx, cancel := context.WithCancel(ctx)
	run := &activeRun{
		full:     &cadence{name: "full", interval: s.config.FullSyncInterval, run: s.runFullSync},
		priority: &cadence{name: "priority", interval: s.config.PrioritySyncInterval, run: s.runPrioritySync},
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.current = run

	var wg sync.WaitGroup
	for _, c := range []*cadence{run.full, run.priority} {
		c.active = true
		c.next = time.Now().Add(c.interval)
		wg.Add(1)
		go func(c *cadence) {
			defer wg.Done()
			s.loop(ctx, c)
		}(c)
	}
	go func() {
		wg.Wait()
		cancel()
		s.mu.Lock()
		if s.current == run {
			s.current = nil
		}
		s.mu.Unlock()
		close(run.done)
	}()
	s.mu.Unlock()

	s.logger.Info("Inventory sync scheduler started",
		zap.Duration("full_sync_interval", s.config.FullSyncInterval),
		zap.Duration("priority_sync_interval", s.config.PrioritySyncInterval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop stops both cadences and waits for in-flight ticks, bounded by ctx.
// Stopping a stopped scheduler is a no-op.
func (s *InventorySyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	run := s.current
	s.current = nil
	s.mu.Unlock()
	if run == nil {
		return nil
	}

	run.cancel()

	select {
	case <-run.done:
		s.logger.Info("Inventory sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Inventory sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports true only while both cadences are active
func (s *InventorySyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.full.active && s.current.priority.active
}

// NextRuns returns the next fire time of each active cadence
func (s *InventorySyncScheduler) NextRuns() NextRuns {
	s.mu.Lock()
	defer s.mu.Unlock()
	var next NextRuns
	if s.current == nil {
		return next
	}
	if s.current.full.active {
		next.FullSync = s.current.full.next
	}
	if s.current.priority.active {
		next.PrioritySync = s.current.priority.next
	}
	return next
}

func (s *InventorySyncScheduler) loop(ctx context.Context, c *cadence) {
	defer func() {
		s.mu.Lock()
		c.active = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	if s.config.RunOnStart {
		s.tick(ctx, c)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sync cadence stopping", zap.String("cadence", c.name))
			return
		case <-ticker.C:
			s.tick(ctx, c)
		}
	}
}

// tick runs one sync. Panics are recovered so the cadence survives.
func (s *InventorySyncScheduler) tick(ctx context.Context, c *cadence) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduled sync panicked",
				zap.String("cadence", c.name),
				zap.Any("panic", r),
			)
		}
		s.mu.Lock()
		c.next = time.Now().Add(c.interval)
		s.mu.Unlock()
	}()

	timeout := s.config.RunTimeout
	if timeout <= 0 {
		timeout = c.interval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.run(ctx)
}

func (s *InventorySyncScheduler) runFullSync(ctx context.Context) {
	start := time.Now()
	results := s.runner.SyncAllSuppliers(ctx, inventory.SyncTriggerScheduled)

	failed := 0
	for _, r := range results {
		if r.Succeeded() {
			continue
		}
		failed++
		fields := []zap.Field{zap.String("supplier_id", r.SupplierID.String())}
		if r.Err != nil {
			fields = append(fields, zap.Error(r.Err))
		}
		if r.Log != nil {
			fields = append(fields, zap.Strings("sync_errors", r.Log.Errors))
		}
		s.logger.Warn("Scheduled supplier sync failed", fields...)
	}

	s.logger.Info("Scheduled full sync finished",
		zap.Int("suppliers", len(results)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *InventorySyncScheduler) runPrioritySync(ctx context.Context) {
	start := time.Now()
	result, err := s.runner.SyncHighPriorityVariants(ctx)
	if err != nil {
		s.logger.Error("Scheduled priority sync failed", zap.Error(err))
		return
	}
	s.logger.Info("Scheduled priority sync finished",
		zap.Int("variants_checked", result.VariantsChecked),
		zap.Int("changes_detected", result.ChangesDetected),
		zap.Duration("duration", time.Since(start)),
	)
}
