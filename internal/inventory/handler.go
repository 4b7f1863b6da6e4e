package inventory

import (
	"context"
	"errors"

	"inventoryreservation/internal/platform/observability"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// MessageHandler defines the interface for processing incoming messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg kafkago.Message) error
}

// KafkaMessageHandler feeds bus messages to the engine and applies the skip policy
// for messages it cannot use.
type KafkaMessageHandler struct {
	engine          *Engine
	deadLetter      OutcomePublisher
	deadLetterTopic string
	metrics         *Metrics
	logger          observability.Logger
}

type HandlerOption func(*KafkaMessageHandler)

// WithDeadLetter forwards malformed messages, unchanged, to topic.
func WithDeadLetter(publisher OutcomePublisher, topic string) HandlerOption {
	return func(h *KafkaMessageHandler) {
		h.deadLetter = publisher
		h.deadLetterTopic = topic
	}
}

func NewMessageHandler(engine *Engine, metrics *Metrics, logger observability.Logger, opts ...HandlerOption) *KafkaMessageHandler {
	h := &KafkaMessageHandler{
		engine:  engine,
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleMessage processes one message. A returned error has already been logged; the
// message is finished with either way.
func (h *KafkaMessageHandler) HandleMessage(ctx context.Context, msg kafkago.Message) error {
	msgCtx := h.extractTraceContext(ctx, msg.Headers)

	h.logger.Info("📨 Kafka message received",
		zap.String("topic", msg.Topic),
		zap.ByteString("key", msg.Key),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	err := h.engine.Handle(msgCtx, msg.Topic, msg.Value)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMalformedEvent):
		h.logger.Error("❌ Skipping malformed event",
			zap.Error(err),
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.ByteString("raw_value", msg.Value),
		)
		h.metrics.recordSkip(msgCtx, SkipReasonMalformed)
		h.forwardDeadLetter(msgCtx, msg)
	case errors.Is(err, ErrPublishFailed):
		h.logger.Error("❌ Failed to publish inventory outcome",
			zap.Error(err),
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
		)
	default:
		h.logger.Error("❌ Failed to handle event", zap.Error(err), zap.String("topic", msg.Topic))
	}
	return err
}

// extractTraceContext extracts OpenTelemetry trace context from Kafka message headers
func (h *KafkaMessageHandler) extractTraceContext(ctx context.Context, headers []kafkago.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, header := range headers {
		carrier[header.Key] = string(header.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

func (h *KafkaMessageHandler) forwardDeadLetter(ctx context.Context, msg kafkago.Message) {
	if h.deadLetter == nil || h.deadLetterTopic == "" {
		return
	}
	if err := h.deadLetter.Publish(ctx, h.deadLetterTopic, string(msg.Key), msg.Value); err != nil {
		h.logger.Error("❌ Failed to forward message to dead-letter topic",
			zap.Error(err),
			zap.String("dead_letter_topic", h.deadLetterTopic),
		)
		return
	}
	h.logger.Info("📤 Forwarded malformed message to dead-letter topic",
		zap.String("dead_letter_topic", h.deadLetterTopic),
		zap.String("source_topic", msg.Topic),
	)
}
