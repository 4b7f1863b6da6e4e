package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"inventoryreservation/internal/config"
)

const (
	EventTypeOrderCreated          = "ORDER_CREATED"
	EventTypeProductCreated        = "PRODUCT_CREATED"
	EventTypeInventoryReserved     = "INVENTORY_RESERVED"
	EventTypeInventoryInsufficient = "INVENTORY_INSUFFICIENT"
)

// ISO 8601 with milliseconds in UTC, e.g. 2024-05-01T10:00:00.000Z
const timestampLayout = "2006-01-02T15:04:05.000Z"

const maxStock = math.MaxInt32

// ErrMalformedEvent marks payloads that cannot be decoded into a known event.
var ErrMalformedEvent = errors.New("malformed event")

// Event is one decoded bus message: OrderCreated, ProductCreated or Unknown.
// The set is closed; only this package can add variants.
type Event interface {
	isEvent()
}

// OrderLine requests quantity units of one item. Quantity must be a JSON integer literal.
type OrderLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type OrderCreated struct {
	OrderID string
	Items   []OrderLine
}

type ProductCreated struct {
	ProductID string
	Name      string
	Quantity  int
}

// Unknown is any topic and event type combination the engine does not react to.
type Unknown struct {
	Topic     string
	EventType string
}

func (OrderCreated) isEvent()   {}
func (ProductCreated) isEvent() {}
func (Unknown) isEvent()        {}

type envelope struct {
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data"`
	Quantity  json.RawMessage `json:"quantity"`
}

// DecodeEvent parses a bus message. The topic is matched first, then the envelope's
// eventType. Unrecognized combinations decode to Unknown without error.
func DecodeEvent(topic string, value []byte) (Event, error) {
	if topic != config.OrderEventsTopic && topic != config.ProductEventsTopic {
		return Unknown{Topic: topic}, nil
	}

	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, fmt.Errorf("%w: invalid envelope: %v", ErrMalformedEvent, err)
	}

	switch {
	case topic == config.OrderEventsTopic && env.EventType == EventTypeOrderCreated:
		return decodeOrderCreated(env.Data)
	case topic == config.ProductEventsTopic && env.EventType == EventTypeProductCreated:
		return decodeProductCreated(env)
	}
	return Unknown{Topic: topic, EventType: env.EventType}, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func decodeOrderCreated(data json.RawMessage) (Event, error) {
	if isAbsent(data) {
		return nil, fmt.Errorf("%w: %s without data", ErrMalformedEvent, EventTypeOrderCreated)
	}

	var payload struct {
		OrderID string       `json:"orderId"`
		Items   *[]OrderLine `json:"items"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s data: %v", ErrMalformedEvent, EventTypeOrderCreated, err)
	}
	if payload.OrderID == "" {
		return nil, fmt.Errorf("%w: %s missing orderId", ErrMalformedEvent, EventTypeOrderCreated)
	}
	if payload.Items == nil {
		return nil, fmt.Errorf("%w: order %s missing items", ErrMalformedEvent, payload.OrderID)
	}

	items := *payload.Items
	for i, line := range items {
		if line.ItemID == "" {
			return nil, fmt.Errorf("%w: order %s item %d missing itemId", ErrMalformedEvent, payload.OrderID, i)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: order %s item %s has quantity %d", ErrMalformedEvent, payload.OrderID, line.ItemID, line.Quantity)
		}
	}

	return OrderCreated{OrderID: payload.OrderID, Items: items}, nil
}

func decodeProductCreated(env envelope) (Event, error) {
	if isAbsent(env.Data) {
		return nil, fmt.Errorf("%w: %s without data", ErrMalformedEvent, EventTypeProductCreated)
	}

	var payload struct {
		ProductID string          `json:"productId"`
		Name      string          `json:"name"`
		Quantity  json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s data: %v", ErrMalformedEvent, EventTypeProductCreated, err)
	}
	if payload.ProductID == "" {
		return nil, fmt.Errorf("%w: %s missing productId", ErrMalformedEvent, EventTypeProductCreated)
	}

	return ProductCreated{
		ProductID: payload.ProductID,
		Name:      payload.Name,
		Quantity:  resolveQuantity(payload.Quantity, env.Quantity),
	}, nil
}

// resolveQuantity takes the first truthy candidate (null, false, 0 and "" are skipped)
// and coerces it to a stock level. Nothing truthy means 0.
func resolveQuantity(candidates ...json.RawMessage) int {
	for _, raw := range candidates {
		if isAbsent(raw) {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		if truthy(v) {
			return toStock(v)
		}
	}
	return 0
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// toStock converts a JSON value to a non-negative whole stock count.
// Non-numeric values become 0, fractions are truncated.
func toStock(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	default:
		return 0
	}

	switch {
	case math.IsNaN(f), math.IsInf(f, 0), f <= 0:
		return 0
	case f >= maxStock:
		return maxStock
	}
	return int(math.Trunc(f))
}

// OutcomeEvent is published to inventory-events once per ORDER_CREATED.
type OutcomeEvent struct {
	EventType string      `json:"eventType"`
	Data      OutcomeData `json:"data"`
}

type OutcomeData struct {
	OrderID   string `json:"orderId"`
	Available bool   `json:"available"`
	Timestamp string `json:"timestamp"`
}

func NewOutcomeEvent(orderID string, available bool, at time.Time) OutcomeEvent {
	eventType := EventTypeInventoryInsufficient
	if available {
		eventType = EventTypeInventoryReserved
	}
	return OutcomeEvent{
		EventType: eventType,
		Data: OutcomeData{
			OrderID:   orderID,
			Available: available,
			Timestamp: at.UTC().Format(timestampLayout),
		},
	}
}
