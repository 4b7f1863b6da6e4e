package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Publisher sends one keyed JSON value to a named topic.
type Publisher struct {
	producer Producer
}

// NewPublisher creates a Publisher over producer. The producer's writer must not pin a topic.
func NewPublisher(producer Producer) *Publisher {
	return &Publisher{producer: producer}
}

// Publish writes a single message. The key selects the partition; only the write's own
// error is surfaced.
func (p *Publisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := p.producer.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}
