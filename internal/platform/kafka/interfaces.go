package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Producer writes single messages. Implemented by the otel-instrumented kafka writer.
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// Consumer fetches messages and commits their offsets once handled.
// Implemented by *kafka.Reader.
type Consumer interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
