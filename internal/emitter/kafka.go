// Kafka transport for OpenLineage events.
//
// Events are keyed by their idempotency key so duplicate deliveries of the
// same event land on the same partition and consumers can deduplicate.

package emitter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/correlator-io/dbt-lineage/internal/lineage"
)

// KafkaTransport publishes events to a Kafka topic.
type KafkaTransport struct {
	writer    *kafka.Writer
	validator *lineage.Validator
}

// NewKafkaTransport creates a KafkaTransport from config.
func NewKafkaTransport(cfg *Config) *KafkaTransport {
	return &KafkaTransport{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.KafkaTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		validator: lineage.NewValidator(),
	}
}

// Emit validates the batch and publishes it in one write. Message keys are
// the events' idempotency keys.
func (t *KafkaTransport) Emit(ctx context.Context, events []lineage.RunEvent) error {
	messages := make([]kafka.Message, 0, len(events))

	for i := range events {
		if err := t.validator.ValidateRunEvent(&events[i]); err != nil {
			return fmt.Errorf("invalid event %d: %w", i, err)
		}

		value, err := json.Marshal(&events[i])
		if err != nil {
			return fmt.Errorf("marshal event %d: %w", i, err)
		}

		messages = append(messages, kafka.Message{
			Key:   []byte(events[i].IdempotencyKey()),
			Value: value,
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := t.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (t *KafkaTransport) Close() error {
	if err := t.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}

	return nil
}
