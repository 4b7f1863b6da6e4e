package kafka

import (
	"inventoryreservation/internal/config"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// NewGroupReader subscribes groupID to topics, starting from the latest offset when the
// group has no committed position yet.
func NewGroupReader(broker, groupID string, topics ...string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{broker},
		GroupID:     groupID,
		GroupTopics: topics,
		StartOffset: kafka.LastOffset,
	})
}

// NewTracedWriter creates a writer that routes each message by its own Topic and hashes
// keys to partitions. Producer spans and trace headers come from otel-kafka-konsumer.
func NewTracedWriter(broker, clientID string, tp trace.TracerProvider) (Producer, error) {
	baseWriter := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           config.BatchTimeout,
		BatchSize:              config.BatchSize,
	}

	writer, err := otelkafka.NewWriter(baseWriter,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				attribute.String("messaging.kafka.client_id", clientID),
			},
		),
	)
	if err != nil {
		return nil, err
	}
	return writer, nil
}
