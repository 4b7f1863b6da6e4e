package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventoryreservation/internal/config"
	"inventoryreservation/internal/platform/kafka"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const publishTimeout = 30 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(os.Args[1:], logger.Named("event-producer")); err != nil {
		logger.Fatal("Event producer failed", zap.Error(err))
	}
}

func run(args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("event-producer", flag.ContinueOnError)
	broker := fs.String("broker", envOr("KAFKA_BROKER", "localhost:9092"), "Kafka bootstrap address")
	kind := fs.String("type", "product", "event to publish: product or order")
	id := fs.String("id", "", "product or order ID (generated when empty)")
	name := fs.String("name", "", "product name")
	quantity := fs.Int("quantity", 0, "product stock level")
	items := fs.String("items", "", "order lines as ITEM-ID:QUANTITY, comma separated")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		topic string
		key   string
		value []byte
		err   error
	)
	now := time.Now()
	switch *kind {
	case "product":
		topic = config.ProductEventsTopic
		key, value, err = productEvent(*id, *name, *quantity, now)
	case "order":
		lines, parseErr := parseItems(*items)
		if parseErr != nil {
			return parseErr
		}
		topic = config.OrderEventsTopic
		key, value, err = orderEvent(*id, lines, now)
	default:
		return fmt.Errorf("unknown -type %q, want product or order", *kind)
	}
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := kafka.NewConnector(*broker, config.ConnectRetryDelay, logger).WaitForBroker(ctx); err != nil {
		return err
	}

	writer, err := kafka.NewTracedWriter(*broker, "event-producer", otel.GetTracerProvider())
	if err != nil {
		return fmt.Errorf("create Kafka writer: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil {
			logger.Error("Failed to close Kafka writer", zap.Error(closeErr))
		}
	}()

	if err := kafka.NewPublisher(writer).Publish(ctx, topic, key, value); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("gave up after %s: %w", publishTimeout, err)
		}
		return err
	}

	logger.Info("📤 Event published", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
