package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

func sampleChange(sku string, detected time.Time) inventory.InventoryChange {
	return inventory.InventoryChange{
		ID:         uuid.New(),
		VariantID:  uuid.New(),
		SKU:        sku,
		SupplierID: integration.SupplierSSActivewear,
		ChangeType: inventory.ChangeTypeQuantity,
		OldValue:   "50",
		NewValue:   "100",
		DetectedAt: detected,
	}
}

// recordingPublisher captures published batches
type recordingPublisher struct {
	mu      sync.Mutex
	batches [][]inventory.InventoryChange
	err     error
	closed  bool
}

func (p *recordingPublisher) Publish(_ context.Context, changes []inventory.InventoryChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, append([]inventory.InventoryChange(nil), changes...))
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.batches {
		n += len(b)
	}
	return n
}

func TestNewChangeEvent(t *testing.T) {
	c := sampleChange("SKU-001", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	ev := NewChangeEvent(c)

	assert.Equal(t, EventTypeInventoryChanged, ev.EventType)
	assert.Equal(t, c.ID.String(), ev.ChangeID)
	assert.Equal(t, "ss-activewear", ev.SupplierID)
	assert.Equal(t, "quantity", ev.ChangeType)
	assert.Equal(t, "50", ev.OldValue)
	assert.Equal(t, "100", ev.NewValue)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.Publish(context.Background(), []inventory.InventoryChange{sampleChange("SKU-001", time.Now())}))

	entries := logs.FilterMessage("inventory changed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SKU-001", entries[0].ContextMap()["sku"])
	assert.Equal(t, "quantity", entries[0].ContextMap()["change_type"])
	assert.NoError(t, p.Close())
}

func TestMultiPublisher(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("broker down")}
	m := NewMultiPublisher(ok, failing)

	err := m.Publish(context.Background(), []inventory.InventoryChange{sampleChange("SKU-001", time.Now())})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, 1, ok.count())

	require.NoError(t, m.Close())
	assert.True(t, ok.closed)
	assert.True(t, failing.closed)
}

// fakeKafkaWriter implements kafkaMessageWriter for tests
type fakeKafkaWriter struct {
	msgs   []kafka.Message
	fail   bool
	closed bool
}

func (f *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.fail {
		return errors.New("leader not available")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeKafkaWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	fk := &fakeKafkaWriter{}
	p := newKafkaPublisherWith(fk, "inventory.changes")
	changes := []inventory.InventoryChange{
		sampleChange("SKU-001", time.Now()),
		sampleChange("SKU-002", time.Now()),
	}

	require.NoError(t, p.Publish(context.Background(), changes))

	require.Len(t, fk.msgs, 2)
	assert.Equal(t, "SKU-001", string(fk.msgs[0].Key))
	assert.Equal(t, "event_type", fk.msgs[0].Headers[0].Key)

	var ev ChangeEvent
	require.NoError(t, json.Unmarshal(fk.msgs[1].Value, &ev))
	assert.Equal(t, changes[1].ID.String(), ev.ChangeID)
	assert.Equal(t, "SKU-002", ev.SKU)

	require.NoError(t, p.Close())
	assert.True(t, fk.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	p := newKafkaPublisherWith(&fakeKafkaWriter{fail: true}, "inventory.changes")

	err := p.Publish(context.Background(), []inventory.InventoryChange{sampleChange("SKU-001", time.Now())})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka publish to inventory.changes")
}

func TestKafkaPublisher_EmptyBatch(t *testing.T) {
	fk := &fakeKafkaWriter{fail: true}
	p := newKafkaPublisherWith(fk, "inventory.changes")

	assert.NoError(t, p.Publish(context.Background(), nil))
}

func TestNewKafkaPublisher_TrimsBrokers(t *testing.T) {
	p := NewKafkaPublisher(KafkaConfig{Brokers: []string{" kafka-1:9092", "", "kafka-2:9092 "}, Topic: "inventory.changes"})

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "kafka-1:9092,kafka-2:9092", w.Addr.String())
	assert.Equal(t, "inventory.changes", w.Topic)
}
