package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// RelayConfig holds configuration for the change relay
type RelayConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// DefaultRelayConfig returns default configuration
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		BatchSize:    200,
		PollInterval: 30 * time.Second,
	}
}

// ChangeRelay publishes change records that are not yet notified and flips
// their notified flag once the publisher accepted them. A failed batch stays
// unnotified and is retried on the next flush.
type ChangeRelay struct {
	repo      inventory.ChangeRepository
	publisher Publisher
	config    RelayConfig
	logger    *zap.Logger

	mu     sync.Mutex // serialises flushes
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChangeRelay creates a new change relay
func NewChangeRelay(repo inventory.ChangeRepository, publisher Publisher, config RelayConfig, logger *zap.Logger) *ChangeRelay {
	defaults := DefaultRelayConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	return &ChangeRelay{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// Flush publishes pending changes batch by batch until none remain or a
// batch fails. It returns how many changes were marked notified.
func (r *ChangeRelay) Flush(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	published := 0
	for {
		pending, err := r.repo.FindUnnotified(ctx, r.config.BatchSize)
		if err != nil {
			return published, fmt.Errorf("find unnotified changes: %w", err)
		}
		if len(pending) == 0 {
			return published, nil
		}

		if err := r.publisher.Publish(ctx, pending); err != nil {
			return published, fmt.Errorf("publish changes: %w", err)
		}

		ids := make([]uuid.UUID, len(pending))
		for i := range pending {
			ids[i] = pending[i].ID
		}
		if err := r.repo.MarkNotified(ctx, ids); err != nil {
			return published, fmt.Errorf("mark changes notified: %w", err)
		}
		published += len(pending)

		if len(pending) < r.config.BatchSize {
			return published, nil
		}
	}
}

// Start starts the background flush loop
func (r *ChangeRelay) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(ctx)

	r.logger.Info("change relay started",
		zap.Int("batch_size", r.config.BatchSize),
		zap.Duration("poll_interval", r.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the relay
func (r *ChangeRelay) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("change relay stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *ChangeRelay) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Flush(ctx)
			if err != nil {
				r.logger.Warn("change relay flush failed", zap.Int("published", n), zap.Error(err))
				continue
			}
			if n > 0 {
				r.logger.Debug("change relay flushed", zap.Int("published", n))
			}
		}
	}
}
