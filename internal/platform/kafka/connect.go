package kafka

import (
	"context"
	"fmt"
	"time"

	"inventoryreservation/internal/platform/observability"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DialFunc opens and closes one connection to the broker.
type DialFunc func(ctx context.Context) error

// Connector blocks until the broker accepts a connection.
// Retries are unbounded with a fixed delay: no jitter, no growth.
type Connector struct {
	dial   DialFunc
	delay  time.Duration
	logger observability.Logger
}

// NewConnector creates a Connector that dials broker over TCP.
func NewConnector(broker string, delay time.Duration, logger observability.Logger) *Connector {
	return NewConnectorWithDialer(tcpDialer(broker), delay, logger)
}

// NewConnectorWithDialer creates a Connector with a custom dial function.
func NewConnectorWithDialer(dial DialFunc, delay time.Duration, logger observability.Logger) *Connector {
	return &Connector{dial: dial, delay: delay, logger: logger}
}

func tcpDialer(broker string) DialFunc {
	return func(ctx context.Context) error {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			return err
		}
		// Brokers() forces a metadata round trip, not just a TCP handshake
		if _, err := conn.Brokers(); err != nil {
			_ = conn.Close()
			return err
		}
		return conn.Close()
	}
}

// WaitForBroker returns nil once a dial succeeds, or the context error if ctx ends first.
func (c *Connector) WaitForBroker(ctx context.Context) error {
	attempt := 0
	operation := func() error {
		attempt++
		return c.dial(ctx)
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Error("❌ Kafka connection failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
		)
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(c.delay), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return fmt.Errorf("kafka connect aborted after %d attempts: %w", attempt, err)
	}

	c.logger.Info("✅ Kafka connected", zap.Int("attempts", attempt))
	return nil
}
