package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/inventory"
)

// KafkaConfig configures the Kafka change publisher
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// kafkaMessageWriter abstracts kafka.Writer for testability
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes change events to a Kafka topic, keyed by variant
// SKU so every change of one variant lands on the same partition in order.
type KafkaPublisher struct {
	writer kafkaMessageWriter
	topic  string
}

// NewKafkaPublisher creates a synchronous Kafka publisher that waits for all
// in-sync replicas to acknowledge each batch
func NewKafkaPublisher(cfg KafkaConfig) *KafkaPublisher {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return &KafkaPublisher{
		topic: cfg.Topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			Transport:    &kafka.Transport{ClientID: cfg.ClientID},
		},
	}
}

// newKafkaPublisherWith is only for tests to inject a fake writer
func newKafkaPublisherWith(w kafkaMessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic}
}

// Publish writes one message per change in a single batch
func (p *KafkaPublisher) Publish(ctx context.Context, changes []inventory.InventoryChange) error {
	if len(changes) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(changes))
	for _, c := range changes {
		body, err := json.Marshal(NewChangeEvent(c))
		if err != nil {
			return fmt.Errorf("marshal change %s: %w", c.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(c.SKU),
			Value: body,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(EventTypeInventoryChanged)},
				{Key: "supplier_id", Value: []byte(c.SupplierID.String())},
			},
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
