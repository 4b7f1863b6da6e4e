package httpapi

import (
	"net/http"

	"inventoryreservation/internal/config"
	"inventoryreservation/internal/inventory"

	"github.com/gin-gonic/gin"
)

// StockReader exposes a point-in-time copy of the ledger.
type StockReader interface {
	Snapshot() map[string]inventory.StockRecord
}

type stockView struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type InventoryHandler struct {
	stock StockReader
}

func NewInventoryHandler(stock StockReader) *InventoryHandler {
	return &InventoryHandler{stock: stock}
}

// HealthCheck returns server status
func (h *InventoryHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": config.ServiceName})
}

// ListInventory returns every ledger record keyed by item ID
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	snapshot := h.stock.Snapshot()
	view := make(map[string]stockView, len(snapshot))
	for id, rec := range snapshot {
		view[id] = stockView{Name: rec.Name, Stock: rec.Stock}
	}
	c.JSON(http.StatusOK, gin.H{"inventory": view})
}
