package inventory

import (
	"context"
	"errors"
	"io"
	"time"

	"inventoryreservation/internal/platform/kafka"

	"go.uber.org/zap"
)

// fetchRetryDelay paces the read loop after a failed fetch.
const fetchRetryDelay = 100 * time.Millisecond

type ConsumerService interface {
	Start(ctx context.Context) error
}

// KafkaConsumerService fetches, handles and commits one message at a time. An offset is
// committed only after its message was handled.
type KafkaConsumerService struct {
	consumer       kafka.Consumer
	messageHandler MessageHandler
	logger         *zap.Logger
}

func NewConsumerService(consumer kafka.Consumer, messageHandler MessageHandler, logger *zap.Logger) ConsumerService {
	return &KafkaConsumerService{
		consumer:       consumer,
		messageHandler: messageHandler,
		logger:         logger,
	}
}

func (c *KafkaConsumerService) Start(ctx context.Context) error {
	c.logger.Info("Kafka consumer started. Waiting for messages...")

	for {
		msg, err := c.consumer.FetchMessage(ctx)
		if err != nil {
			if isContextDone(ctx, err) {
				c.logger.Info("Context done, exiting Kafka read loop.", zap.Error(err))
				break
			}
			if errors.Is(err, io.EOF) {
				c.logger.Info("Kafka reader closed, exiting read loop.")
				break
			}
			c.logger.Error("❌ Error reading from Kafka", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		_ = c.messageHandler.HandleMessage(ctx, msg)
		if ctx.Err() != nil {
			c.logger.Info("Context done before commit, message will be redelivered",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
			)
			break
		}

		if err := c.consumer.CommitMessages(ctx, msg); err != nil {
			if isContextDone(ctx, err) {
				break
			}
			c.logger.Error("❌ Failed to commit offset",
				zap.Error(err),
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
			)
		}
	}

	c.logger.Info("Consumer service finished. Shutting down...")
	return nil
}

func isContextDone(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
