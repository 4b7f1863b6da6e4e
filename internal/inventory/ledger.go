package inventory

import "sync"

// StockRecord is the ledger's view of one item.
type StockRecord struct {
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
	Stock  int    `json:"stock"`
}

// DefaultCatalog is the stock a fresh process starts with.
func DefaultCatalog() []StockRecord {
	return []StockRecord{
		{ItemID: "ITEM-001", Name: "Laptop", Stock: 50},
		{ItemID: "ITEM-002", Name: "Mouse", Stock: 200},
		{ItemID: "ITEM-003", Name: "Keyboard", Stock: 100},
	}
}

// Ledger maps item IDs to stock records. Entries are added or replaced, never deleted.
//
// The reservation engine is the only writer; HTTP readers take snapshots concurrently.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]StockRecord
}

// NewLedger creates a ledger seeded with initial. Later duplicates of an ItemID win.
func NewLedger(initial []StockRecord) *Ledger {
	records := make(map[string]StockRecord, len(initial))
	for _, rec := range initial {
		records[rec.ItemID] = rec
	}
	return &Ledger{records: records}
}

func (l *Ledger) Get(itemID string) (StockRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[itemID]
	return rec, ok
}

// HasSufficientStock is false when the item is unknown or holds fewer than quantity units.
func (l *Ledger) HasSufficientStock(itemID string, quantity int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hasSufficientStockLocked(itemID, quantity)
}

// Decrement subtracts quantity without re-checking bounds. Callers must have seen
// HasSufficientStock succeed for the same decision. Unknown items are ignored.
func (l *Ledger) Decrement(itemID string, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decrementLocked(itemID, quantity)
}

// Upsert replaces the record for itemID. Stock is set, not added.
func (l *Ledger) Upsert(itemID, name string, quantity int) StockRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := StockRecord{ItemID: itemID, Name: name, Stock: quantity}
	l.records[itemID] = rec
	return rec
}

// Reserve checks every line and, only if all are covered, decrements them in listed order.
// Check and decrement happen under one write lock. Lines naming the same item are summed
// for the check so repeated lines cannot overdraw an item.
// It returns the resulting records of the touched items when the reservation succeeds.
func (l *Ledger) Reserve(lines []OrderLine) (bool, []StockRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	requested := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		// requested never exceeds stock, so the remaining headroom cannot overflow.
		rec, ok := l.records[line.ItemID]
		if !ok || line.Quantity > rec.Stock-requested[line.ItemID] {
			return false, nil
		}
		if _, seen := requested[line.ItemID]; !seen {
			order = append(order, line.ItemID)
		}
		requested[line.ItemID] += line.Quantity
	}

	for _, line := range lines {
		l.decrementLocked(line.ItemID, line.Quantity)
	}

	touched := make([]StockRecord, 0, len(order))
	for _, itemID := range order {
		touched = append(touched, l.records[itemID])
	}
	return true, touched
}

// Snapshot returns a copy of every record keyed by item ID.
func (l *Ledger) Snapshot() map[string]StockRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]StockRecord, len(l.records))
	for id, rec := range l.records {
		out[id] = rec
	}
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Ledger) hasSufficientStockLocked(itemID string, quantity int) bool {
	rec, ok := l.records[itemID]
	return ok && rec.Stock >= quantity
}

func (l *Ledger) decrementLocked(itemID string, quantity int) {
	rec, ok := l.records[itemID]
	if !ok {
		return
	}
	rec.Stock -= quantity
	l.records[itemID] = rec
}
