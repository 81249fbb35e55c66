package server

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"decorops/internal/dataservice"
	"decorops/internal/materials"
	"decorops/internal/models"
)

type mockCatalogue struct {
	mock.Mock
}

func (m *mockCatalogue) InventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.InventoryItem), args.Error(1)
}

func (m *mockCatalogue) InventoryForecast(ctx context.Context) ([]models.ForecastMonth, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ForecastMonth), args.Error(1)
}

func (m *mockCatalogue) CreateInventoryItem(ctx context.Context, payload models.NewInventoryItem) (models.InventoryItem, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(models.InventoryItem), args.Error(1)
}

func (m *mockCatalogue) Designs(ctx context.Context) ([]models.Design, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Design), args.Error(1)
}

func (m *mockCatalogue) DuplicateDesign(ctx context.Context, designID string) (models.Design, error) {
	args := m.Called(ctx, designID)
	return args.Get(0).(models.Design), args.Error(1)
}

func testSheets() []models.CostSheet {
	return []models.CostSheet{
		{ID: "cs-1", EventID: "ev-3", Version: 1, Status: models.SheetRejected, Total: 300000},
		{ID: "cs-2", EventID: "ev-3", Version: 2, Status: models.SheetPendingApproval, Total: 350000, CreatedBy: "Priya",
			Items: []models.CostItem{
				{ID: "i1", Category: models.CategoryFlowers, Name: "Marigold strings", Unit: "bundle", Quantity: 40, UnitPrice: 250, TotalPrice: 10000},
			}},
		{ID: "cs-3", EventID: "ev-1", Version: 1, Status: models.SheetDraft, Total: 120000},
	}
}

func TestListCostSheetsForEvent(t *testing.T) {
	f := newFixture(t, nil)
	f.data.On("CostSheets", mock.Anything).Return(testSheets(), nil)

	var got struct {
		Sheets  []models.CostSheet `json:"sheets"`
		Current *models.CostSheet  `json:"current"`
	}
	rec := f.do(t, http.MethodGet, "/api/cost-sheets?event=ev-3", models.RoleSales, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &got)
	require.Len(t, got.Sheets, 2)
	assert.Equal(t, 2, got.Sheets[0].Version)
	require.NotNil(t, got.Current)
	assert.Equal(t, "cs-2", got.Current.ID)
}

func TestCreateCostSheet(t *testing.T) {
	f := newFixture(t, nil)
	f.data.On("CostSheets", mock.Anything).Return(testSheets(), nil)
	f.data.On("CreateCostSheet", mock.Anything, mock.MatchedBy(func(p dataservice.NewCostSheet) bool {
		return p.EventID == "ev-1" && p.Status == models.SheetPendingApproval && p.Margin == 20 &&
			len(p.Items) == 1 && p.CreatedBy == "Priya"
	})).Return(models.CostSheet{ID: "cs-4", EventID: "ev-1", Version: 2, Status: models.SheetPendingApproval}, nil).Once()

	rec := f.do(t, http.MethodPost, "/api/cost-sheets", models.RoleDesigner, map[string]any{
		"eventId": "ev-1",
		"margin":  20,
		"submit":  true,
		"items": []map[string]any{
			{"category": "lighting", "name": "Fairy lights", "unit": "string", "quantity": 30, "unitPrice": 400},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"cs-4"`)
	f.data.AssertExpectations(t)
}

func TestCreateCostSheetRejectsInvalid(t *testing.T) {
	f := newFixture(t, nil)
	f.data.On("CostSheets", mock.Anything).Return(testSheets(), nil)

	rec := f.do(t, http.MethodPost, "/api/cost-sheets", models.RoleDesigner, map[string]any{"eventId": "ev-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/cost-sheets", models.RoleFinance, map[string]any{"eventId": "ev-1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.data.AssertNotCalled(t, "CreateCostSheet", mock.Anything, mock.Anything)
}

func TestApproveCostSheet(t *testing.T) {
	f := newFixture(t, nil)
	f.data.On("CostSheets", mock.Anything).Return(testSheets(), nil)
	f.data.On("ApproveCostSheet", mock.Anything, "cs-2", "Priya", true).
		Return(models.CostSheet{ID: "cs-2", Status: models.SheetApproved, ApprovedBy: "Priya"}, nil).Once()

	rec := f.do(t, http.MethodPost, "/api/cost-sheets/cs-2/approve", models.RoleFinance, map[string]any{"approved": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"approved"`)

	rec = f.do(t, http.MethodPost, "/api/cost-sheets/cs-3/approve", models.RoleFinance, map[string]any{"approved": true})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/cost-sheets/missing/approve", models.RoleFinance, map[string]any{"approved": false})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/cost-sheets/cs-2/approve", models.RoleDesigner, map[string]any{"approved": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.data.AssertExpectations(t)
}

func TestExportCostSheet(t *testing.T) {
	f := newFixture(t, nil)
	f.data.On("CostSheets", mock.Anything).Return(testSheets(), nil)

	rec := f.do(t, http.MethodGet, "/api/cost-sheets/cs-2/export", models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cost-sheet-ev-3-v2.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "flowers,Marigold strings,bundle,40,250,10000", lines[1])
}

func TestMaterials(t *testing.T) {
	f := newFixture(t, nil)
	tracker := models.EstimationTracker{
		EventID: "ev-1",
		Margin:  10,
		Rows: []models.EstimationRow{
			{ID: "r1", Material: "Velvet", Category: "fabric", ComputedQuantity: 10, ComputedUnit: "m", LineTotal: 5000},
			{ID: "r2", Material: "Brass lamps", Category: "antique", Qty: 6, ComputedQuantity: 4, LineTotal: 3000},
		},
	}
	f.data.On("EstimationTracker", mock.Anything, "ev-1").Return(tracker, nil)
	f.data.On("CostSheets", mock.Anything).Return([]models.CostSheet{
		{ID: "cs-3", EventID: "ev-1", Version: 1, Status: models.SheetDraft, Total: 8000},
	}, nil)
	f.catalog.On("InventoryItems", mock.Anything).Return([]models.InventoryItem{
		{ID: "7", Name: "brass lamps", Available: 2},
	}, nil)

	var got struct {
		Tracker  models.EstimationTracker `json:"tracker"`
		Rentals  []materials.Rental       `json:"rentals"`
		Variance *materials.Variance      `json:"variance"`
	}
	rec := f.do(t, http.MethodGet, "/api/materials/ev-1", models.RoleProcurement, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &got)
	assert.Equal(t, 2, got.Tracker.RowCount)
	assert.InDelta(t, 8000, got.Tracker.Subtotal, 1e-9)
	assert.InDelta(t, 8800, got.Tracker.Total, 1e-9)
	require.Len(t, got.Rentals, 1)
	assert.Equal(t, 4, got.Rentals[0].ToRent)
	require.NotNil(t, got.Variance)
	assert.Equal(t, "cs-3", got.Variance.SheetID)
	assert.InDelta(t, 10.0, got.Variance.Percent, 1e-9)

	f.data.On("CreateCostSheet", mock.Anything, mock.MatchedBy(func(p dataservice.NewCostSheet) bool {
		return p.EventID == "ev-1" && p.Status == models.SheetDraft && len(p.Items) == 2 &&
			p.Items[1].Category == models.CategoryMiscellaneous
	})).Return(models.CostSheet{ID: "cs-9", EventID: "ev-1", Version: 2}, nil).Once()

	rec = f.do(t, http.MethodPost, "/api/materials/ev-1/cost-sheet", models.RoleDesigner, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f.data.AssertExpectations(t)
}

func TestSaveMaterials(t *testing.T) {
	f := newFixture(t, nil)
	rows := []models.EstimationRow{
		{ID: "r1", Material: "Velvet", Category: "fabric", LineTotal: 6000},
		{ID: "r2", Material: "Marigold", Category: "flowers", LineTotal: 4000},
	}
	f.data.On("SaveEstimationTracker", mock.Anything, "ev-1", rows, 15.0).
		Return(models.EstimationTracker{EventID: "ev-1", Margin: 15, Rows: rows, Source: "saved"}, nil).Once()

	var got struct {
		Tracker models.EstimationTracker `json:"tracker"`
	}
	rec := f.do(t, http.MethodPut, "/api/materials/ev-1", models.RoleProductionManager, map[string]any{"rows": rows, "margin": 15})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &got)
	assert.Equal(t, 2, got.Tracker.RowCount)
	assert.InDelta(t, 10000, got.Tracker.Subtotal, 1e-9)
	assert.InDelta(t, 11500, got.Tracker.Total, 1e-9)

	assert.Equal(t, http.StatusBadRequest,
		f.do(t, http.MethodPut, "/api/materials/ev-1", models.RoleProductionManager, map[string]any{"rows": rows, "margin": -5}).Code)
	assert.Equal(t, http.StatusForbidden,
		f.do(t, http.MethodPut, "/api/materials/ev-1", models.RoleDesigner, map[string]any{"rows": rows}).Code)
	f.data.AssertExpectations(t)
}

func TestInventory(t *testing.T) {
	f := newFixture(t, nil)
	f.catalog.On("InventoryItems", mock.Anything).Return([]models.InventoryItem{
		{ID: "1", Name: "Brass Urli", Category: "props", TotalQuantity: 10, Available: 2, Value: 30000, Location: "Warehouse A"},
		{ID: "2", Name: "Velvet Drape", Category: "fabric", TotalQuantity: 20, Available: 15, Value: 45000, Location: "Warehouse B"},
	}, nil)

	var got struct {
		Summary struct {
			Items    int `json:"items"`
			LowStock int `json:"lowStock"`
		} `json:"summary"`
		Items []struct {
			ID           string  `json:"id"`
			StockPercent float64 `json:"stockPercent"`
			LowStock     bool    `json:"lowStock"`
		} `json:"items"`
	}
	rec := f.do(t, http.MethodGet, "/api/inventory?category=props", models.RoleFinance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "1", got.Items[0].ID)
	assert.InDelta(t, 20.0, got.Items[0].StockPercent, 1e-9)
	assert.True(t, got.Items[0].LowStock)
	assert.Equal(t, 2, got.Summary.Items)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/inventory", models.RoleSales, nil).Code)
}

func TestCreateInventoryItem(t *testing.T) {
	f := newFixture(t, nil)
	f.catalog.On("CreateInventoryItem", mock.Anything, mock.MatchedBy(func(p models.NewInventoryItem) bool {
		return p.Name == "Mirror arch"
	})).Return(models.InventoryItem{ID: "9", Name: "Mirror arch"}, nil).Once()

	rec := f.do(t, http.MethodPost, "/api/inventory", models.RoleProcurement, map[string]any{"name": "Mirror arch", "totalQuantity": 2})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/inventory", models.RoleProcurement, map[string]any{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.catalog.AssertExpectations(t)
}

func TestShortages(t *testing.T) {
	f := newFixture(t, nil)
	f.catalog.On("InventoryForecast", mock.Anything).Return([]models.ForecastMonth{
		{Month: "Nov", Required: 14, Available: 10},
		{Month: "Dec", Required: 8, Available: 9},
	}, nil)

	var got struct {
		Shortages []models.ForecastMonth `json:"shortages"`
	}
	decode(t, f.do(t, http.MethodGet, "/api/inventory/shortages", models.RoleAdmin, nil), &got)
	require.Len(t, got.Shortages, 1)
	assert.Equal(t, "Nov", got.Shortages[0].Month)
}

func TestDesigns(t *testing.T) {
	f := newFixture(t, nil)
	f.catalog.On("Designs", mock.Anything).Return([]models.Design{{ID: "d1", Name: "Royal Peacock"}}, nil)
	f.catalog.On("DuplicateDesign", mock.Anything, "d1").Return(models.Design{ID: "d2", Name: "Royal Peacock (Copy)"}, nil)
	f.catalog.On("DuplicateDesign", mock.Anything, "gone").Return(models.Design{}, &dataservice.StatusError{Code: 404})

	rec := f.do(t, http.MethodGet, "/api/designs", models.RoleSales, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Royal Peacock")

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/api/designs/d1/duplicate", models.RoleSales, nil).Code)
	assert.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/designs/d1/duplicate", models.RoleDesigner, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/designs/gone/duplicate", models.RoleDesigner, nil).Code)
}

func TestReportSummary(t *testing.T) {
	f := newFixture(t, nil)
	f.data.On("CostSheets", mock.Anything).Return(testSheets(), nil)

	var got struct {
		TotalEvents      int `json:"totalEvents"`
		PendingApprovals []struct {
			ID    string `json:"id"`
			Event string `json:"event"`
		} `json:"pendingApprovals"`
		AtRisk []struct {
			EventID string `json:"eventId"`
		} `json:"atRisk"`
	}
	rec := f.do(t, http.MethodGet, "/api/reports/summary", models.RoleFinance, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &got)
	assert.Equal(t, 3, got.TotalEvents)
	require.Len(t, got.PendingApprovals, 1)
	assert.Equal(t, "Iyer Reception", got.PendingApprovals[0].Event)
	require.Len(t, got.AtRisk, 2)
	assert.Equal(t, "ev-2", got.AtRisk[0].EventID)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/reports/summary", models.RoleDesigner, nil).Code)
}
