package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"inventoryreservation/internal/config"
	"inventoryreservation/internal/httpapi"
	"inventoryreservation/internal/inventory"
	"inventoryreservation/internal/platform/cache"
	"inventoryreservation/internal/platform/discovery"
	"inventoryreservation/internal/platform/kafka"
	"inventoryreservation/internal/platform/observability"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// Container holds expensive-to-create singleton resources and dependencies
type Container struct {
	config          *config.Config
	logger          *zap.Logger
	tracer          observability.Tracer
	messageConsumer kafka.Consumer
	messageProducer kafka.Producer
	consumerService inventory.ConsumerService
	httpServer      *http.Server
	stockMirror     *cache.RedisStockMirror
	consul          *discovery.ConsulClient
	serviceID       string
	otelShutdown    []observability.ShutdownFunc
}

// NewContainer creates and initializes all infrastructure components. It blocks until the
// Kafka broker is reachable or ctx is cancelled.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	c := &Container{config: cfg}

	c.setupObservability(ctx)

	if err := kafka.NewConnector(cfg.KafkaBroker, config.ConnectRetryDelay, c.logger).WaitForBroker(ctx); err != nil {
		c.Shutdown(context.Background())
		return nil, err
	}

	if err := c.setupKafka(); err != nil {
		c.Shutdown(context.Background())
		return nil, err
	}

	c.setupStockMirror(ctx)

	if err := c.setupInventory(); err != nil {
		c.Shutdown(context.Background())
		return nil, err
	}

	c.setupDiscovery()

	return c, nil
}

// setupObservability installs propagators, the OTLP exporters when an endpoint is
// configured, and the zap logger bridged into OpenTelemetry.
func (c *Container) setupObservability(ctx context.Context) {
	bootstrap, err := zap.NewProduction()
	if err != nil {
		bootstrap = zap.NewNop()
	}

	observability.SetupPropagation()

	if c.config.TelemetryEnabled() {
		logShutdown, err := observability.SetupLoggingSDK(ctx, c.config)
		if err != nil {
			bootstrap.Error("Failed to setup OpenTelemetry logging", zap.Error(err))
		}
		c.addShutdown(logShutdown)

		_, traceShutdown, err := observability.SetupTracingSDK(ctx, c.config)
		if err != nil {
			bootstrap.Error("Failed to setup OpenTelemetry tracing", zap.Error(err))
		}
		c.addShutdown(traceShutdown)

		metricShutdown, err := observability.SetupMetricsSDK(ctx, c.config)
		if err != nil {
			bootstrap.Error("Failed to setup OpenTelemetry metrics", zap.Error(err))
		}
		c.addShutdown(metricShutdown)
	}

	c.logger = observability.NewLogger(os.Stdout)
	c.tracer = otel.Tracer(config.ServiceName)

	c.logger.Info("Logger initialized",
		zap.Bool("otel_export", c.config.TelemetryEnabled()),
		zap.String("version", config.ServiceVersion),
	)
}

func (c *Container) addShutdown(fn observability.ShutdownFunc) {
	if fn != nil {
		c.otelShutdown = append(c.otelShutdown, fn)
	}
}

// setupKafka creates the group reader for both input topics and the traced writer
func (c *Container) setupKafka() error {
	c.messageConsumer = kafka.NewGroupReader(c.config.KafkaBroker, config.GroupID,
		config.OrderEventsTopic, config.ProductEventsTopic)

	writer, err := kafka.NewTracedWriter(c.config.KafkaBroker, config.ServiceName, otel.GetTracerProvider())
	if err != nil {
		return fmt.Errorf("failed to create Kafka writer: %w", err)
	}
	c.messageProducer = writer
	return nil
}

// setupStockMirror connects to Redis when configured. The service runs without it on failure.
func (c *Container) setupStockMirror(ctx context.Context) {
	if c.config.RedisAddr == "" {
		return
	}
	mirror, err := cache.NewRedisStockMirror(ctx, c.config.RedisAddr, c.logger)
	if err != nil {
		c.logger.Warn("⚠️ Redis stock mirror disabled", zap.Error(err))
		return
	}
	c.stockMirror = mirror
}

func (c *Container) setupInventory() error {
	metrics, err := inventory.NewMetrics(otel.Meter(config.ServiceName))
	if err != nil {
		return fmt.Errorf("failed to create inventory metrics: %w", err)
	}

	publisher := kafka.NewPublisher(c.messageProducer)

	var engineOpts []inventory.EngineOption
	if c.stockMirror != nil {
		engineOpts = append(engineOpts, inventory.WithStockMirror(c.stockMirror))
	}

	engine := inventory.NewEngine(inventory.NewLedger(inventory.DefaultCatalog()), publisher, c.logger, c.tracer, metrics, engineOpts...)

	var handlerOpts []inventory.HandlerOption
	if c.config.DeadLetterTopic != "" {
		handlerOpts = append(handlerOpts, inventory.WithDeadLetter(publisher, c.config.DeadLetterTopic))
	}
	handler := inventory.NewMessageHandler(engine, metrics, c.logger, handlerOpts...)

	c.consumerService = inventory.NewConsumerService(c.messageConsumer, handler, c.logger)

	router := httpapi.NewRouter(httpapi.NewInventoryHandler(engine.Ledger()), c.logger)
	c.httpServer = httpapi.NewServer(c.config.HTTPAddr, httpapi.NewHTTPHandler(router))

	c.logger.Info("📦 Inventory ledger seeded", zap.Int("items", engine.Ledger().Len()))
	return nil
}

// setupDiscovery registers the HTTP surface with Consul when configured. Failures are
// logged and the service keeps running unregistered.
func (c *Container) setupDiscovery() {
	if c.config.ConsulAddr == "" {
		return
	}

	port, err := discovery.ListenPort(c.config.HTTPAddr)
	if err != nil {
		c.logger.Warn("⚠️ Consul registration skipped", zap.Error(err))
		return
	}

	consul, err := discovery.NewConsulClient(c.config.ConsulAddr, c.logger)
	if err != nil {
		c.logger.Warn("⚠️ Consul registration skipped", zap.Error(err))
		return
	}

	serviceID := discovery.ServiceID(config.ServiceName, c.config.ServiceHost, port)
	err = consul.Register(discovery.ServiceConfig{
		Name:    config.ServiceName,
		ID:      serviceID,
		Address: c.config.ServiceHost,
		Port:    port,
		Tags:    []string{"inventory", "kafka-consumer"},
	})
	if err != nil {
		c.logger.Warn("⚠️ Consul registration failed", zap.Error(err))
		return
	}

	c.consul = consul
	c.serviceID = serviceID
}

// Shutdown gracefully shuts down all infrastructure components
func (c *Container) Shutdown(ctx context.Context) {
	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Shutting down infrastructure...")

	if c.consul != nil {
		if err := c.consul.Deregister(c.serviceID); err != nil {
			logger.Error("Failed to deregister from Consul", zap.Error(err))
		}
	}

	if c.messageConsumer != nil {
		if err := c.messageConsumer.Close(); err != nil {
			logger.Error("Failed to close message consumer", zap.Error(err))
		}
	}

	if c.messageProducer != nil {
		if err := c.messageProducer.Close(); err != nil {
			logger.Error("Failed to close message producer", zap.Error(err))
		}
	}

	if c.stockMirror != nil {
		if err := c.stockMirror.Close(); err != nil {
			logger.Error("Failed to close Redis stock mirror", zap.Error(err))
		}
	}

	logger.Info("Infrastructure shutdown complete")

	// Telemetry providers flush last.
	for i := len(c.otelShutdown) - 1; i >= 0; i-- {
		if err := c.otelShutdown[i](ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shutdown OpenTelemetry: %v\n", err)
		}
	}

	_ = logger.Sync()
}

// Getters for accessing infrastructure components
func (c *Container) Logger() *zap.Logger                        { return c.logger }
func (c *Container) ConsumerService() inventory.ConsumerService { return c.consumerService }
func (c *Container) HTTPServer() *http.Server                   { return c.httpServer }
