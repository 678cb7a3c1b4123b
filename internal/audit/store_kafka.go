package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"agegate/internal/platform/kafka/producer"
)

// KafkaStore publishes audit events to a Kafka topic. It is a write-only
// sink: downstream consumers own retention and querying, so ListBySubject
// always reports an empty trail.
type KafkaStore struct {
	producer *producer.Producer
	topic    string
}

// NewKafkaStore constructs a Kafka-backed audit sink.
func NewKafkaStore(prod *producer.Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: prod, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	msg := &producer.Message{
		Topic: s.topic,
		// Partition by subject to keep per-subject event ordering
		Key:   []byte(event.Subject),
		Value: payload,
		Headers: map[string]string{
			"action": event.Action,
		},
	}

	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

func (s *KafkaStore) ListBySubject(context.Context, string) ([]Event, error) {
	return nil, nil
}

var _ Store = (*KafkaStore)(nil)
