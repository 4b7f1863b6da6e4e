package inventory

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	SkipReasonMalformed    = "malformed"
	SkipReasonUnrecognized = "unrecognized"
)

// Metrics holds the counters recorded while handling bus messages.
type Metrics struct {
	reservations     metric.Int64Counter
	productsUpserted metric.Int64Counter
	skipped          metric.Int64Counter
	publishFailures  metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	reservations, err := meter.Int64Counter("inventory.reservations",
		metric.WithDescription("Reservation decisions by outcome"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	productsUpserted, err := meter.Int64Counter("inventory.products.upserted",
		metric.WithDescription("Catalog records created or replaced"),
		metric.WithUnit("{product}"),
	)
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter("inventory.messages.skipped",
		metric.WithDescription("Messages committed without a ledger change"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	publishFailures, err := meter.Int64Counter("inventory.publish.failures",
		metric.WithDescription("Outcome events that could not be written"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		reservations:     reservations,
		productsUpserted: productsUpserted,
		skipped:          skipped,
		publishFailures:  publishFailures,
	}, nil
}

func (m *Metrics) recordReservation(ctx context.Context, eventType string) {
	m.reservations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", eventType)))
}

func (m *Metrics) recordUpsert(ctx context.Context) {
	m.productsUpserted.Add(ctx, 1)
}

func (m *Metrics) recordSkip(ctx context.Context, reason string) {
	m.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) recordPublishFailure(ctx context.Context) {
	m.publishFailures.Add(ctx, 1)
}
