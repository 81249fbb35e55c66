package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decorops/internal/models"
)

func TestTrackerTotals(t *testing.T) {
	rows := []models.EstimationRow{{LineTotal: 12000}, {LineTotal: 8000}}
	sum := TrackerTotals(rows, 20)
	assert.Equal(t, 20000.0, sum.Subtotal)
	assert.Equal(t, 4000.0, sum.MarginAmount)
	assert.Equal(t, 24000.0, sum.Total)
}

func TestRecompute(t *testing.T) {
	tracker := Recompute(models.EstimationTracker{
		EventID: "ev-1",
		Margin:  10,
		Rows:    []models.EstimationRow{{ID: "r1", LineTotal: 1000}, {ID: "r2", LineTotal: 500}},
		Total:   1,
	})
	assert.Equal(t, 2, tracker.RowCount)
	assert.Equal(t, 1500.0, tracker.Subtotal)
	assert.Equal(t, 150.0, tracker.MarginAmount)
	assert.Equal(t, 1650.0, tracker.Total)
}

func TestVariancePercent(t *testing.T) {
	assert.InDelta(t, 10.0, VariancePercent(100000, 110000), 1e-9)
	assert.Equal(t, -25.0, VariancePercent(40000, 30000))
	assert.Equal(t, 0.0, VariancePercent(0, 5000))
}

func TestPropsToRent(t *testing.T) {
	assert.Equal(t, 0, PropsToRent(4, 10))
	assert.Equal(t, 0, PropsToRent(10, 10))
	assert.Equal(t, 6, PropsToRent(16, 10))
}

func TestCostItemsFromRows(t *testing.T) {
	rows := []models.EstimationRow{
		{ID: "r1", Material: "Marigold strings", Category: "flowers", ComputedQuantity: 50, ComputedUnit: "ft", LineTotal: 2500},
		{ID: "r2", Material: "Gota patti", Category: "trim", ComputedQuantity: 4, LineTotal: 800, Comments: "gold"},
		{ID: "r3", Material: "Unpriced", Category: "props"},
	}

	items := CostItems(rows)
	require.Len(t, items, 2)
	assert.Equal(t, models.CategoryFlowers, items[0].Category)
	assert.Equal(t, 50.0, items[0].UnitPrice)
	assert.Equal(t, models.CategoryMiscellaneous, items[1].Category)
	assert.Equal(t, "unit", items[1].Unit)
	assert.Equal(t, "gold", items[1].Notes)
}

func TestCompareToSheet(t *testing.T) {
	v := CompareToSheet(
		models.EstimationTracker{Total: 110000},
		models.CostSheet{ID: "cs-2", Total: 100000},
	)
	assert.Equal(t, "cs-2", v.SheetID)
	assert.InDelta(t, 10.0, v.Percent, 1e-9)
}

func TestRentals(t *testing.T) {
	rows := []models.EstimationRow{
		{ID: "r1", Material: "Brass Urli", Qty: 6},
		{ID: "r2", Material: "velvet drape ", Qty: 4},
		{ID: "r3", Material: "Fresh roses", Qty: 200},
	}
	items := []models.InventoryItem{
		{ID: "1", Name: "Brass Urli", Available: 2},
		{ID: "2", Name: "Velvet Drape", Available: 15},
	}

	assert.Equal(t, []Rental{{RowID: "r1", Material: "Brass Urli", Needed: 6, Available: 2, ToRent: 4}}, Rentals(rows, items))
	assert.Empty(t, Rentals(nil, items))
}
