package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"decorops/internal/costing"
	"decorops/internal/dataservice"
	"decorops/internal/materials"
	"decorops/internal/models"
)

type costSheetRequest struct {
	EventID string            `json:"eventId"`
	Margin  *float64          `json:"margin"`
	Items   []models.CostItem `json:"items"`
	Submit  bool              `json:"submit"`
}

type trackerRequest struct {
	Rows   []models.EstimationRow `json:"rows"`
	Margin *float64               `json:"margin"`
}

type reviewRequest struct {
	Approved *bool `json:"approved"`
}

// handleListCostSheets lists every sheet, or the version history of one event.
func (s *Server) handleListCostSheets(c *gin.Context) {
	sheets, err := s.data.CostSheets(c.Request.Context())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	eventID := c.Query("event")
	if eventID == "" {
		respondSuccess(c, http.StatusOK, gin.H{"sheets": sheets})
		return
	}

	history := costing.History(sheets, eventID)
	payload := gin.H{"sheets": history}
	if current, ok := costing.Current(sheets, eventID); ok {
		payload["current"] = current
	}
	respondSuccess(c, http.StatusOK, payload)
}

// handleCreateCostSheet prices the lines and stores them as the next version.
func (s *Server) handleCreateCostSheet(c *gin.Context) {
	var req costSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.EventID) == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("eventId is required"))
		return
	}

	margin := costing.DefaultMargin
	if req.Margin != nil {
		margin = *req.Margin
	}
	sheet, err := s.saveDraft(c.Request.Context(), req.EventID, req.Items, margin, actorFrom(c).Name, req.Submit)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"sheet": sheet})
}

// saveDraft validates and totals a new version locally before the data
// service stores it.
func (s *Server) saveDraft(ctx context.Context, eventID string, items []models.CostItem, margin float64, createdBy string, submit bool) (models.CostSheet, error) {
	existing, err := s.data.CostSheets(ctx)
	if err != nil {
		return models.CostSheet{}, err
	}
	draft, err := costing.Draft(existing, eventID, items, margin, createdBy, submit, s.now())
	if err != nil {
		return models.CostSheet{}, err
	}

	payload := dataservice.NewCostSheet{
		EventID:   draft.EventID,
		Margin:    draft.Margin,
		Items:     make([]dataservice.NewCostItem, 0, len(draft.Items)),
		CreatedBy: draft.CreatedBy,
		Status:    draft.Status,
	}
	for _, item := range draft.Items {
		payload.Items = append(payload.Items, dataservice.NewCostItem{
			Category:  item.Category,
			Name:      item.Name,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Notes:     item.Notes,
		})
	}
	return s.data.CreateCostSheet(ctx, payload)
}

// handleApproveCostSheet approves or rejects a pending sheet.
func (s *Server) handleApproveCostSheet(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Approved == nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("approved is required"))
		return
	}

	sheet, ok := s.findSheet(c)
	if !ok {
		return
	}
	approver := actorFrom(c).Name
	if _, err := costing.Review(sheet, approver, *req.Approved, s.now()); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	updated, err := s.data.ApproveCostSheet(c.Request.Context(), sheet.ID, approver, *req.Approved)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sheet": updated})
}

// handleExportCostSheet streams the sheet lines as CSV.
func (s *Server) handleExportCostSheet(c *gin.Context) {
	sheet, ok := s.findSheet(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="cost-sheet-%s-v%d.csv"`, sheet.EventID, sheet.Version))
	c.Status(http.StatusOK)
	if err := costing.ExportCSV(c.Writer, sheet.Items); err != nil {
		s.logger.Sugar().Errorw("csv export failed", "sheet_id", sheet.ID, "error", err)
	}
}

// findSheet resolves the :id path parameter against the data service.
func (s *Server) findSheet(c *gin.Context) (models.CostSheet, bool) {
	id := c.Param("id")
	sheets, err := s.data.CostSheets(c.Request.Context())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return models.CostSheet{}, false
	}
	for _, sheet := range sheets {
		if sheet.ID == id {
			return sheet, true
		}
	}
	s.respondError(c, http.StatusNotFound, fmt.Errorf("cost sheet %s not found", id))
	return models.CostSheet{}, false
}

// handleMaterials returns an event's estimation tracker with fresh totals,
// the rentals it implies and its drift from the current cost sheet.
func (s *Server) handleMaterials(c *gin.Context) {
	eventID := c.Param("eventId")
	var (
		tracker models.EstimationTracker
		sheets  []models.CostSheet
		stock   []models.InventoryItem
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		tracker, err = s.data.EstimationTracker(ctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		sheets, err = s.data.CostSheets(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stock, err = s.catalogue.InventoryItems(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	tracker = materials.Recompute(tracker)
	payload := gin.H{
		"tracker": tracker,
		"rentals": materials.Rentals(tracker.Rows, stock),
	}
	if current, ok := costing.Current(sheets, eventID); ok {
		payload["variance"] = materials.CompareToSheet(tracker, current)
	}
	respondSuccess(c, http.StatusOK, payload)
}

// handleSaveMaterials recomputes the worksheet totals and stores it.
func (s *Server) handleSaveMaterials(c *gin.Context) {
	var req trackerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	margin := costing.DefaultMargin
	if req.Margin != nil {
		margin = *req.Margin
	}
	if margin < 0 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("margin must not be negative"))
		return
	}

	eventID := c.Param("eventId")
	tracker := materials.Recompute(models.EstimationTracker{EventID: eventID, Margin: margin, Rows: req.Rows})
	saved, err := s.data.SaveEstimationTracker(c.Request.Context(), eventID, tracker.Rows, tracker.Margin)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tracker": materials.Recompute(saved)})
}

// handleDraftFromEstimate turns the estimation tracker into a draft cost sheet.
func (s *Server) handleDraftFromEstimate(c *gin.Context) {
	eventID := c.Param("eventId")
	tracker, err := s.data.EstimationTracker(c.Request.Context(), eventID)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	sheet, err := s.saveDraft(c.Request.Context(), eventID, materials.CostItems(tracker.Rows), tracker.Margin, actorFrom(c).Name, false)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"sheet": sheet})
}
