package inventory

import (
	"math"
	"math/rand"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	ledger := NewLedger(DefaultCatalog())

	want := map[string]StockRecord{
		"ITEM-001": {ItemID: "ITEM-001", Name: "Laptop", Stock: 50},
		"ITEM-002": {ItemID: "ITEM-002", Name: "Mouse", Stock: 200},
		"ITEM-003": {ItemID: "ITEM-003", Name: "Keyboard", Stock: 100},
	}
	if ledger.Len() != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), ledger.Len())
	}
	for id, rec := range want {
		got, ok := ledger.Get(id)
		if !ok || got != rec {
			t.Fatalf("record %s = %+v (present=%v), want %+v", id, got, ok, rec)
		}
	}
}

func TestHasSufficientStock(t *testing.T) {
	ledger := NewLedger(seedItem("ITEM-001", "Laptop", 50))

	tests := []struct {
		name     string
		itemID   string
		quantity int
		want     bool
	}{
		{"below stock", "ITEM-001", 10, true},
		{"exact stock", "ITEM-001", 50, true},
		{"above stock", "ITEM-001", 51, false},
		{"unknown item", "ITEM-404", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ledger.HasSufficientStock(tt.itemID, tt.quantity); got != tt.want {
				t.Fatalf("HasSufficientStock(%s, %d) = %v, want %v", tt.itemID, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestDecrement(t *testing.T) {
	ledger := NewLedger(seedItem("ITEM-001", "Laptop", 50))

	ledger.Decrement("ITEM-001", 20)
	ledger.Decrement("ITEM-404", 5)

	rec, _ := ledger.Get("ITEM-001")
	if rec.Stock != 30 {
		t.Fatalf("expected stock 30, got %d", rec.Stock)
	}
	if _, ok := ledger.Get("ITEM-404"); ok {
		t.Fatal("decrementing an unknown item must not create it")
	}
}

func TestUpsertOverwritesStock(t *testing.T) {
	ledger := NewLedger(nil)

	ledger.Upsert("PRO-1", "Webcam", 10)
	rec := ledger.Upsert("PRO-1", "Webcam HD", 5)

	if rec.Stock != 5 || rec.Name != "Webcam HD" {
		t.Fatalf("expected replaced record, got %+v", rec)
	}
	got, _ := ledger.Get("PRO-1")
	if got != rec {
		t.Fatalf("stored record %+v differs from returned %+v", got, rec)
	}
}

func TestReserveIsAllOrNothing(t *testing.T) {
	ledger := NewLedger(DefaultCatalog())

	ok, touched := ledger.Reserve([]OrderLine{
		{ItemID: "ITEM-001", Quantity: 5},
		{ItemID: "ITEM-002", Quantity: 500},
	})
	if ok || touched != nil {
		t.Fatalf("expected rejection, got ok=%v touched=%v", ok, touched)
	}
	if rec, _ := ledger.Get("ITEM-001"); rec.Stock != 50 {
		t.Fatalf("rejected order changed ITEM-001 to %d", rec.Stock)
	}

	ok, touched = ledger.Reserve([]OrderLine{
		{ItemID: "ITEM-001", Quantity: 5},
		{ItemID: "ITEM-002", Quantity: 20},
	})
	if !ok {
		t.Fatal("expected reservation to succeed")
	}
	if len(touched) != 2 || touched[0].Stock != 45 || touched[1].Stock != 180 {
		t.Fatalf("unexpected touched records: %+v", touched)
	}
}

func TestReserveSumsRepeatedItems(t *testing.T) {
	ledger := NewLedger(seedItem("ITEM-001", "Laptop", 5))

	ok, _ := ledger.Reserve([]OrderLine{
		{ItemID: "ITEM-001", Quantity: 3},
		{ItemID: "ITEM-001", Quantity: 3},
	})
	if ok {
		t.Fatal("two lines of 3 must not fit into a stock of 5")
	}
	if rec, _ := ledger.Get("ITEM-001"); rec.Stock != 5 {
		t.Fatalf("expected stock unchanged at 5, got %d", rec.Stock)
	}
}

func TestReserveRejectsOverflowingQuantities(t *testing.T) {
	tests := []struct {
		name  string
		lines []OrderLine
	}{
		{"sum wraps past max int", []OrderLine{
			{ItemID: "ITEM-001", Quantity: math.MaxInt},
			{ItemID: "ITEM-001", Quantity: 2},
		}},
		{"small line then max int", []OrderLine{
			{ItemID: "ITEM-001", Quantity: 2},
			{ItemID: "ITEM-001", Quantity: math.MaxInt},
		}},
		{"two max int lines", []OrderLine{
			{ItemID: "ITEM-001", Quantity: math.MaxInt},
			{ItemID: "ITEM-001", Quantity: math.MaxInt},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger(seedItem("ITEM-001", "Laptop", 50))

			ok, touched := ledger.Reserve(tt.lines)
			if ok || touched != nil {
				t.Fatalf("expected rejection, got ok=%v touched=%v", ok, touched)
			}
			if rec, _ := ledger.Get("ITEM-001"); rec.Stock != 50 {
				t.Fatalf("expected stock unchanged at 50, got %d", rec.Stock)
			}
		})
	}
}

func TestReserveEmptyOrder(t *testing.T) {
	ledger := NewLedger(DefaultCatalog())
	before := ledger.Snapshot()

	ok, touched := ledger.Reserve([]OrderLine{})
	if !ok || len(touched) != 0 {
		t.Fatalf("empty order: ok=%v touched=%v", ok, touched)
	}
	for id, rec := range ledger.Snapshot() {
		if before[id] != rec {
			t.Fatalf("empty order changed %s: %+v -> %+v", id, before[id], rec)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ledger := NewLedger(seedItem("ITEM-001", "Laptop", 50))

	snap := ledger.Snapshot()
	snap["ITEM-001"] = StockRecord{ItemID: "ITEM-001", Stock: 0}

	if rec, _ := ledger.Get("ITEM-001"); rec.Stock != 50 {
		t.Fatalf("snapshot mutation leaked into ledger: %+v", rec)
	}
}

func TestStockNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ledger := NewLedger(DefaultCatalog())
	items := []string{"ITEM-001", "ITEM-002", "ITEM-003", "ITEM-404"}

	for i := 0; i < 2000; i++ {
		lines := make([]OrderLine, rng.Intn(4))
		for j := range lines {
			lines[j] = OrderLine{ItemID: items[rng.Intn(len(items))], Quantity: 1 + rng.Intn(40)}
		}

		before := ledger.Snapshot()
		ok, _ := ledger.Reserve(lines)

		covered := true
		requested := map[string]int{}
		for _, line := range lines {
			requested[line.ItemID] += line.Quantity
		}
		for id, qty := range requested {
			if rec, exists := before[id]; !exists || rec.Stock < qty {
				covered = false
			}
		}
		if ok != covered {
			t.Fatalf("order %d %+v: reserved=%v but stock covered=%v", i, lines, ok, covered)
		}

		for id, rec := range ledger.Snapshot() {
			if rec.Stock < 0 {
				t.Fatalf("order %d drove %s negative: %d", i, id, rec.Stock)
			}
		}
	}
}
