// Package materials holds the arithmetic behind the estimation tracker.
package materials

import (
	"math"
	"strings"

	"decorops/internal/costing"
	"decorops/internal/models"
)

// TrackerTotals sums row line totals and applies the margin.
func TrackerTotals(rows []models.EstimationRow, margin float64) costing.Summary {
	var subtotal float64
	for _, row := range rows {
		subtotal += row.LineTotal
	}
	amount := subtotal * (margin / 100)
	return costing.Summary{Subtotal: subtotal, Margin: margin, MarginAmount: amount, Total: subtotal + amount}
}

// Recompute refreshes a tracker's totals from its rows.
func Recompute(t models.EstimationTracker) models.EstimationTracker {
	sum := TrackerTotals(t.Rows, t.Margin)
	t.RowCount = len(t.Rows)
	t.Subtotal = sum.Subtotal
	t.MarginAmount = sum.MarginAmount
	t.Total = sum.Total
	return t
}

// VariancePercent is how far actual spend drifted from the estimate.
func VariancePercent(estimated, actual float64) float64 {
	if estimated == 0 {
		return 0
	}
	return (actual - estimated) / estimated * 100
}

// PropsToRent is the shortfall that must be rented in.
func PropsToRent(quantity, available int) int {
	if quantity <= available {
		return 0
	}
	return quantity - available
}

// CostItems turns tracker rows into cost sheet lines so a draft sheet can be
// generated from an estimate.
func CostItems(rows []models.EstimationRow) []models.CostItem {
	items := make([]models.CostItem, 0, len(rows))
	for _, row := range rows {
		if row.ComputedQuantity <= 0 || row.LineTotal <= 0 {
			continue
		}
		category := models.CostCategory(row.Category)
		if !category.Valid() {
			category = models.CategoryMiscellaneous
		}
		unit := row.ComputedUnit
		if unit == "" {
			unit = "unit"
		}
		items = append(items, models.CostItem{
			ID:         row.ID,
			Category:   category,
			Name:       row.Material,
			Unit:       unit,
			Quantity:   row.ComputedQuantity,
			UnitPrice:  row.LineTotal / row.ComputedQuantity,
			TotalPrice: row.LineTotal,
			Notes:      row.Comments,
		})
	}
	return items
}

// Variance compares an event's material estimate with its current cost sheet.
type Variance struct {
	SheetID      string  `json:"sheetId"`
	SheetTotal   float64 `json:"sheetTotal"`
	TrackerTotal float64 `json:"trackerTotal"`
	Percent      float64 `json:"percent"`
}

// CompareToSheet measures the tracker total against the quoted sheet total.
func CompareToSheet(t models.EstimationTracker, sheet models.CostSheet) Variance {
	return Variance{
		SheetID:      sheet.ID,
		SheetTotal:   sheet.Total,
		TrackerTotal: t.Total,
		Percent:      VariancePercent(sheet.Total, t.Total),
	}
}

// Rental is a tracker line needing more pieces than the warehouse holds.
type Rental struct {
	RowID     string `json:"rowId"`
	Material  string `json:"material"`
	Needed    int    `json:"needed"`
	Available int    `json:"available"`
	ToRent    int    `json:"toRent"`
}

// Rentals matches rows to stock by name, case-insensitively, and lists the
// shortfalls. Rows without a matching item are not listed.
func Rentals(rows []models.EstimationRow, items []models.InventoryItem) []Rental {
	stock := make(map[string]models.InventoryItem, len(items))
	for _, item := range items {
		stock[strings.ToLower(strings.TrimSpace(item.Name))] = item
	}

	out := []Rental{}
	for _, row := range rows {
		item, ok := stock[strings.ToLower(strings.TrimSpace(row.Material))]
		if !ok {
			continue
		}
		needed := int(math.Ceil(row.Qty))
		if rent := PropsToRent(needed, item.Available); rent > 0 {
			out = append(out, Rental{
				RowID:     row.ID,
				Material:  row.Material,
				Needed:    needed,
				Available: item.Available,
				ToRent:    rent,
			})
		}
	}
	return out
}
