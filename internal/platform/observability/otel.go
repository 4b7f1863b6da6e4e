package observability

import (
	"context"
	"errors"
	"fmt"

	"inventoryreservation/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownFunc flushes and stops a telemetry provider.
type ShutdownFunc func(context.Context) error

func newResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
}

func authHeaders(cfg *config.Config) map[string]string {
	if cfg.OtelAuthHeader == "" {
		return nil
	}
	return map[string]string{"Authorization": cfg.OtelAuthHeader}
}

func joinShutdown(fns []ShutdownFunc) ShutdownFunc {
	return func(ctx context.Context) error {
		var err error
		// LIFO order for shutdown
		for i := len(fns) - 1; i >= 0; i-- {
			err = errors.Join(err, fns[i](ctx))
		}
		return err
	}
}

// SetupPropagation installs the W3C trace context and baggage propagators.
// Kafka headers and HTTP requests rely on it whether or not exporters are configured.
func SetupPropagation() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// SetupLoggingSDK initializes OpenTelemetry logging with the provided configuration
func SetupLoggingSDK(ctx context.Context, cfg *config.Config) (ShutdownFunc, error) {
	var shutdownFuncs []ShutdownFunc

	res, err := newResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	logExporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpoint(cfg.OtelEndpoint),
		otlploghttp.WithURLPath(config.LogsPath),
		otlploghttp.WithHeaders(authHeaders(cfg)),
	)
	if err != nil {
		return joinShutdown(shutdownFuncs), fmt.Errorf("OTLP Log Exporter: %w", err)
	}

	logProcessor := sdklog.NewBatchProcessor(logExporter,
		sdklog.WithExportTimeout(config.ExportTimeout),
		sdklog.WithMaxQueueSize(config.MaxQueueSize),
	)
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(logProcessor),
		sdklog.WithResource(res),
	)

	// Set for the otelzap bridge
	global.SetLoggerProvider(loggerProvider)
	shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)

	return joinShutdown(shutdownFuncs), nil
}

// SetupTracingSDK initializes OpenTelemetry tracing with the provided configuration
func SetupTracingSDK(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, ShutdownFunc, error) {
	var shutdownFuncs []ShutdownFunc

	res, err := newResource()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OtelEndpoint),
		otlptracehttp.WithURLPath(config.TracesPath),
		otlptracehttp.WithHeaders(authHeaders(cfg)),
	)
	if err != nil {
		return nil, joinShutdown(shutdownFuncs), fmt.Errorf("OTLP Trace Exporter: %w", err)
	}

	traceProcessor := sdktrace.NewBatchSpanProcessor(traceExporter,
		sdktrace.WithExportTimeout(config.ExportTimeout),
		sdktrace.WithMaxQueueSize(config.MaxQueueSize),
	)
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(traceProcessor),
	)

	otel.SetTracerProvider(tracerProvider)
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)

	return tracerProvider, joinShutdown(shutdownFuncs), nil
}

// SetupMetricsSDK initializes OpenTelemetry metrics with the provided configuration
func SetupMetricsSDK(ctx context.Context, cfg *config.Config) (ShutdownFunc, error) {
	var shutdownFuncs []ShutdownFunc

	res, err := newResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.OtelEndpoint),
		otlpmetrichttp.WithURLPath(config.MetricsPath),
		otlpmetrichttp.WithHeaders(authHeaders(cfg)),
	)
	if err != nil {
		return joinShutdown(shutdownFuncs), fmt.Errorf("OTLP Metric Exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(config.MetricInterval),
		)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(meterProvider)
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)

	return joinShutdown(shutdownFuncs), nil
}
