package inventory

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type published struct {
	topic string
	key   string
	value []byte
}

type fakePublisher struct {
	calls []published
	err   error
}

func (f *fakePublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, published{topic: topic, key: key, value: value})
	return nil
}

type fakeMirror struct {
	records []StockRecord
	err     error
}

func (f *fakeMirror) MirrorStock(ctx context.Context, records ...StockRecord) error {
	f.records = append(f.records, records...)
	return f.err
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 123_000_000, time.UTC)

type testHarness struct {
	engine    *Engine
	ledger    *Ledger
	publisher *fakePublisher
	metrics   *Metrics
	spans     *tracetest.SpanRecorder
	reader    *sdkmetric.ManualReader
	logs      *observer.ObservedLogs
	logger    *zap.Logger
}

func newHarness(t *testing.T, seed []StockRecord, opts ...EngineOption) *testHarness {
	t.Helper()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := NewMetrics(mp.Meter("inventory-test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	ledger := NewLedger(seed)
	publisher := &fakePublisher{}
	opts = append([]EngineOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	engine := NewEngine(ledger, publisher, logger, tp.Tracer("inventory-test"), metrics, opts...)

	return &testHarness{
		engine:    engine,
		ledger:    ledger,
		publisher: publisher,
		metrics:   metrics,
		spans:     spans,
		reader:    reader,
		logs:      logs,
		logger:    logger,
	}
}

// counterValue sums the data points of counter name whose attributes include attrs.
func (h *testHarness) counterValue(t *testing.T, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := h.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if hasAttributes(dp.Attributes, attrs) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func hasAttributes(set attribute.Set, want []attribute.KeyValue) bool {
	for _, kv := range want {
		v, ok := set.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}

func seedItem(id, name string, stock int) []StockRecord {
	return []StockRecord{{ItemID: id, Name: name, Stock: stock}}
}
