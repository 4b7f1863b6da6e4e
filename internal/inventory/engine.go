package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventoryreservation/internal/config"
	"inventoryreservation/internal/platform/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ErrPublishFailed wraps an outcome event write failure. The ledger change stands.
var ErrPublishFailed = errors.New("outcome publish failed")

// OutcomePublisher writes one keyed value to a topic.
type OutcomePublisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// StockMirror receives records after the ledger changed them.
type StockMirror interface {
	MirrorStock(ctx context.Context, records ...StockRecord) error
}

// Engine applies decoded events to the ledger and publishes reservation outcomes.
// Handle must not be called concurrently.
type Engine struct {
	ledger    *Ledger
	publisher OutcomePublisher
	mirror    StockMirror
	logger    observability.Logger
	tracer    observability.Tracer
	metrics   *Metrics
	now       func() time.Time
}

type EngineOption func(*Engine)

// WithStockMirror copies every ledger change to mirror. Mirror failures are only logged.
func WithStockMirror(mirror StockMirror) EngineOption {
	return func(e *Engine) { e.mirror = mirror }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(ledger *Ledger, publisher OutcomePublisher, logger observability.Logger, tracer observability.Tracer, metrics *Metrics, opts ...EngineOption) *Engine {
	e := &Engine{
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
		metrics:   metrics,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Ledger() *Ledger { return e.ledger }

// Handle decodes value and applies it. Errors wrap ErrMalformedEvent or ErrPublishFailed.
func (e *Engine) Handle(ctx context.Context, topic string, value []byte) error {
	event, err := DecodeEvent(topic, value)
	if err != nil {
		return err
	}

	switch ev := event.(type) {
	case OrderCreated:
		_, err := e.ReserveOrder(ctx, ev)
		return err
	case ProductCreated:
		e.ApplyProductCreated(ctx, ev)
		return nil
	case Unknown:
		e.logger.Debug("Ignoring unrecognized event",
			zap.String("topic", ev.Topic),
			zap.String("event_type", ev.EventType),
		)
		e.metrics.recordSkip(ctx, SkipReasonUnrecognized)
		return nil
	default:
		return fmt.Errorf("unhandled event %T", ev)
	}
}

// ReserveOrder decides the order all-or-nothing and publishes exactly one outcome keyed by
// the order ID. The returned outcome is set even when publishing fails.
func (e *Engine) ReserveOrder(ctx context.Context, order OrderCreated) (*OutcomeEvent, error) {
	ctx, span := e.tracer.Start(ctx, "inventory_check")
	defer span.End()

	span.SetAttributes(
		attribute.String("order.id", order.OrderID),
		attribute.Int("order.items", len(order.Items)),
		attribute.String("inventory.operation", "stock_check"),
	)

	e.logger.Info("🔍 Checking inventory for order",
		zap.String("order_id", order.OrderID),
		zap.Int("items", len(order.Items)),
	)

	available, touched := e.ledger.Reserve(order.Items)
	outcome := NewOutcomeEvent(order.OrderID, available, e.now())

	span.SetAttributes(
		attribute.Bool("inventory.available", available),
		attribute.String("inventory.status", outcome.EventType),
	)
	e.metrics.recordReservation(ctx, outcome.EventType)

	if available {
		e.logger.Info("✅ Inventory reserved for order", zap.String("order_id", order.OrderID))
		e.mirrorStock(ctx, touched...)
	} else {
		e.logger.Info("⚠️ Inventory insufficient for order", zap.String("order_id", order.OrderID))
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "outcome encoding failed")
		return &outcome, fmt.Errorf("%w: encode order %s: %w", ErrPublishFailed, order.OrderID, err)
	}

	if err := e.publisher.Publish(ctx, config.InventoryEventsTopic, order.OrderID, payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "outcome publish failed")
		e.metrics.recordPublishFailure(ctx)
		return &outcome, fmt.Errorf("%w: order %s: %w", ErrPublishFailed, order.OrderID, err)
	}

	e.logger.Info("📤 Sent inventory outcome",
		zap.String("order_id", order.OrderID),
		zap.String("event_type", outcome.EventType),
	)
	span.SetStatus(codes.Ok, "Inventory decision published")
	return &outcome, nil
}

// ApplyProductCreated overwrites the product's record with the event's name and quantity.
func (e *Engine) ApplyProductCreated(ctx context.Context, product ProductCreated) StockRecord {
	ctx, span := e.tracer.Start(ctx, "inventory_upsert")
	defer span.End()

	rec := e.ledger.Upsert(product.ProductID, product.Name, product.Quantity)

	span.SetAttributes(
		attribute.String("product.id", rec.ItemID),
		attribute.Int("inventory.stock", rec.Stock),
	)
	e.metrics.recordUpsert(ctx)

	e.logger.Info("📦 Product stock set",
		zap.String("product_id", rec.ItemID),
		zap.String("name", rec.Name),
		zap.Int("stock", rec.Stock),
	)

	e.mirrorStock(ctx, rec)
	span.SetStatus(codes.Ok, "Product stock set")
	return rec
}

func (e *Engine) mirrorStock(ctx context.Context, records ...StockRecord) {
	if e.mirror == nil || len(records) == 0 {
		return
	}
	if err := e.mirror.MirrorStock(ctx, records...); err != nil {
		e.logger.Warn("⚠️ Failed to mirror stock", zap.Error(err), zap.Int("records", len(records)))
	}
}
