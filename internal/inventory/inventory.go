// Package inventory summarises the health of rentable stock.
package inventory

import (
	"strings"

	"decorops/internal/models"
)

// LowStockRatio is the available/total ratio below which an item is low.
const LowStockRatio = 0.3

// Summary is the inventory header block.
type Summary struct {
	Items          int     `json:"items"`
	TotalValue     float64 `json:"totalValue"`
	LowStock       int     `json:"lowStock"`
	NeedsAttention int     `json:"needsAttention"`
}

// Summarize computes counts and value across items.
func Summarize(items []models.InventoryItem) Summary {
	sum := Summary{Items: len(items)}
	for _, item := range items {
		sum.TotalValue += item.Value
		if IsLowStock(item) {
			sum.LowStock++
		}
		if NeedsAttention(item) {
			sum.NeedsAttention++
		}
	}
	return sum
}

// StockPercent is the share of an item currently available.
func StockPercent(item models.InventoryItem) float64 {
	if item.TotalQuantity <= 0 {
		return 0
	}
	return float64(item.Available) / float64(item.TotalQuantity) * 100
}

// Row is an item as listed on the inventory page.
type Row struct {
	models.InventoryItem
	StockPercent float64 `json:"stockPercent"`
	LowStock     bool    `json:"lowStock"`
}

// Rows annotates items with their stock level.
func Rows(items []models.InventoryItem) []Row {
	out := make([]Row, 0, len(items))
	for _, item := range items {
		out = append(out, Row{InventoryItem: item, StockPercent: StockPercent(item), LowStock: IsLowStock(item)})
	}
	return out
}

// IsLowStock reports whether less than 30% of the item is available.
func IsLowStock(item models.InventoryItem) bool {
	if item.TotalQuantity <= 0 {
		return false
	}
	return float64(item.Available)/float64(item.TotalQuantity) < LowStockRatio
}

// NeedsAttention flags items in fair condition or awaiting repair.
func NeedsAttention(item models.InventoryItem) bool {
	return item.Condition == models.ConditionFair || item.Condition == models.ConditionNeedsRepair
}

// Filter keeps items whose name or location contains query and whose
// category matches. Empty query or category match everything.
func Filter(items []models.InventoryItem, query, category string) []models.InventoryItem {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.InventoryItem, 0, len(items))
	for _, item := range items {
		if category != "" && category != "all" && !strings.EqualFold(item.Category, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Name), query) &&
			!strings.Contains(strings.ToLower(item.Location), query) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Shortages returns forecast months where demand exceeds supply.
func Shortages(forecast []models.ForecastMonth) []models.ForecastMonth {
	var out []models.ForecastMonth
	for _, m := range forecast {
		if m.Required > m.Available {
			out = append(out, m)
		}
	}
	return out
}
