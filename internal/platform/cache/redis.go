package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"inventoryreservation/internal/inventory"
	"inventoryreservation/internal/platform/observability"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StockHashKey is the Redis hash holding one JSON-encoded StockRecord per item ID.
const StockHashKey = "inventory:stock"

// RedisStockMirror copies ledger records into Redis for external readers. It is never
// read back by the service.
type RedisStockMirror struct {
	client *redis.Client
	key    string
}

func NewRedisStockMirror(ctx context.Context, addr string, logger observability.Logger) (*RedisStockMirror, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ Connected to Redis", zap.String("addr", addr))
	return newRedisStockMirror(client), nil
}

func newRedisStockMirror(client *redis.Client) *RedisStockMirror {
	return &RedisStockMirror{client: client, key: StockHashKey}
}

// MirrorStock writes all records in a single HSET.
func (m *RedisStockMirror) MirrorStock(ctx context.Context, records ...inventory.StockRecord) error {
	if len(records) == 0 {
		return nil
	}

	fields, err := stockFields(records)
	if err != nil {
		return err
	}

	if err := m.client.HSet(ctx, m.key, fields...).Err(); err != nil {
		return fmt.Errorf("mirror %d records to %s: %w", len(records), m.key, err)
	}
	return nil
}

// Close closes the Redis connection
func (m *RedisStockMirror) Close() error {
	return m.client.Close()
}

func stockFields(records []inventory.StockRecord) ([]any, error) {
	fields := make([]any, 0, len(records)*2)
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record %s: %w", rec.ItemID, err)
		}
		fields = append(fields, rec.ItemID, string(data))
	}
	return fields, nil
}
