package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// memoryChangeRepository is an in-memory inventory.ChangeRepository
type memoryChangeRepository struct {
	mu       sync.Mutex
	changes  []inventory.InventoryChange
	findErr  error
	markErr  error
	markedAt [][]uuid.UUID
}

func (r *memoryChangeRepository) Append(_ context.Context, changes []inventory.InventoryChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, changes...)
	return nil
}

func (r *memoryChangeRepository) FindRecent(_ context.Context, limit int) ([]inventory.InventoryChange, error) {
	return nil, nil
}

func (r *memoryChangeRepository) FindUnnotified(_ context.Context, limit int) ([]inventory.InventoryChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []inventory.InventoryChange
	for _, c := range r.changes {
		if !c.Notified {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.Before(out[j].DetectedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryChangeRepository) MarkNotified(_ context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	r.markedAt = append(r.markedAt, ids)
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for i := range r.changes {
		if set[r.changes[i].ID] {
			r.changes[i].Notified = true
		}
	}
	return nil
}

func (r *memoryChangeRepository) unnotified() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.changes {
		if !c.Notified {
			n++
		}
	}
	return n
}

func seedChanges(repo *memoryChangeRepository, n int) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_ = repo.Append(context.Background(), []inventory.InventoryChange{sampleChange("SKU-001", base.Add(time.Duration(i)*time.Second))})
	}
}

func TestChangeRelay_FlushPublishesInBatches(t *testing.T) {
	repo := &memoryChangeRepository{}
	seedChanges(repo, 5)
	pub := &recordingPublisher{}
	relay := NewChangeRelay(repo, pub, RelayConfig{BatchSize: 2, PollInterval: time.Hour}, zap.NewNop())

	n, err := relay.Flush(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Len(t, pub.batches, 3)
	assert.Equal(t, 0, repo.unnotified())
}

func TestChangeRelay_FailedPublishLeavesChangesPending(t *testing.T) {
	repo := &memoryChangeRepository{}
	seedChanges(repo, 3)
	pub := &recordingPublisher{err: errors.New("broker down")}
	relay := NewChangeRelay(repo, pub, RelayConfig{}, zap.NewNop())

	n, err := relay.Flush(context.Background())

	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 3, repo.unnotified())
	assert.Empty(t, repo.markedAt)

	pub.err = nil
	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestChangeRelay_RepositoryErrors(t *testing.T) {
	t.Run("find", func(t *testing.T) {
		repo := &memoryChangeRepository{findErr: errors.New("db down")}
		_, err := NewChangeRelay(repo, &recordingPublisher{}, RelayConfig{}, zap.NewNop()).Flush(context.Background())
		assert.ErrorContains(t, err, "find unnotified changes")
	})

	t.Run("mark", func(t *testing.T) {
		repo := &memoryChangeRepository{markErr: errors.New("db down")}
		seedChanges(repo, 1)
		_, err := NewChangeRelay(repo, &recordingPublisher{}, RelayConfig{}, zap.NewNop()).Flush(context.Background())
		assert.ErrorContains(t, err, "mark changes notified")
	})
}

func TestChangeRelay_StartStop(t *testing.T) {
	repo := &memoryChangeRepository{}
	seedChanges(repo, 2)
	pub := &recordingPublisher{}
	relay := NewChangeRelay(repo, pub, RelayConfig{BatchSize: 10, PollInterval: 10 * time.Millisecond}, zap.NewNop())

	require.NoError(t, relay.Start(context.Background()))
	assert.Eventually(t, func() bool { return repo.unnotified() == 0 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, relay.Stop(ctx))
	assert.Equal(t, 2, pub.count())
}

func TestNewChangeRelay_Defaults(t *testing.T) {
	relay := NewChangeRelay(&memoryChangeRepository{}, &recordingPublisher{}, RelayConfig{}, zap.NewNop())

	assert.Equal(t, DefaultRelayConfig(), relay.config)
}
