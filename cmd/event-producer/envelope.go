package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"inventoryreservation/internal/inventory"

	"github.com/google/uuid"
)

type envelope struct {
	EventType string `json:"eventType"`
	Data      any    `json:"data"`
}

type productData struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Timestamp string `json:"timestamp"`
}

type orderData struct {
	OrderID   string                `json:"orderId"`
	Items     []inventory.OrderLine `json:"items"`
	Timestamp string                `json:"timestamp"`
}

// productEvent returns the message key and PRODUCT_CREATED payload. An empty id becomes PRO-<uuid>.
func productEvent(id, name string, quantity int, now time.Time) (string, []byte, error) {
	if id == "" {
		id = "PRO-" + uuid.NewString()
	}
	value, err := json.Marshal(envelope{
		EventType: inventory.EventTypeProductCreated,
		Data: productData{
			ProductID: id,
			Name:      name,
			Quantity:  quantity,
			Timestamp: now.UTC().Format(time.RFC3339Nano),
		},
	})
	return id, value, err
}

// orderEvent returns the message key and ORDER_CREATED payload. An empty id becomes ORD-<uuid>.
func orderEvent(id string, items []inventory.OrderLine, now time.Time) (string, []byte, error) {
	if id == "" {
		id = "ORD-" + uuid.NewString()
	}
	if items == nil {
		items = []inventory.OrderLine{}
	}
	value, err := json.Marshal(envelope{
		EventType: inventory.EventTypeOrderCreated,
		Data: orderData{
			OrderID:   id,
			Items:     items,
			Timestamp: now.UTC().Format(time.RFC3339Nano),
		},
	})
	return id, value, err
}

// parseItems reads "ITEM-001:2,ITEM-002:1". An empty string is an empty order.
func parseItems(spec string) ([]inventory.OrderLine, error) {
	lines := []inventory.OrderLine{}
	if strings.TrimSpace(spec) == "" {
		return lines, nil
	}
	for _, part := range strings.Split(spec, ",") {
		itemID, qty, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || itemID == "" {
			return nil, fmt.Errorf("item %q must look like ITEM-ID:QUANTITY", part)
		}
		quantity, err := strconv.Atoi(qty)
		if err != nil || quantity <= 0 {
			return nil, fmt.Errorf("item %q needs a positive quantity", part)
		}
		lines = append(lines, inventory.OrderLine{ItemID: itemID, Quantity: quantity})
	}
	return lines, nil
}
