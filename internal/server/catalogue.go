package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"decorops/internal/inventory"
	"decorops/internal/models"
	"decorops/internal/reports"
)

// handleInventory returns the stock summary and the filtered item list.
func (s *Server) handleInventory(c *gin.Context) {
	items, err := s.catalogue.InventoryItems(c.Request.Context())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"summary": inventory.Summarize(items),
		"items":   inventory.Rows(inventory.Filter(items, c.Query("q"), c.Query("category"))),
	})
}

// handleCreateInventoryItem registers new stock.
func (s *Server) handleCreateInventoryItem(c *gin.Context) {
	var req models.NewInventoryItem
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("name is required"))
		return
	}
	if req.TotalQuantity < 0 || req.Value < 0 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("quantity and value must not be negative"))
		return
	}

	item, err := s.catalogue.CreateInventoryItem(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"item": item})
}

// handleShortages lists forecast months that need more stock than is held.
func (s *Server) handleShortages(c *gin.Context) {
	forecast, err := s.catalogue.InventoryForecast(c.Request.Context())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"forecast":  forecast,
		"shortages": inventory.Shortages(forecast),
	})
}

// handleDesigns lists the design repository.
func (s *Server) handleDesigns(c *gin.Context) {
	designs, err := s.catalogue.Designs(c.Request.Context())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"designs": designs})
}

// handleDuplicateDesign copies a design.
func (s *Server) handleDuplicateDesign(c *gin.Context) {
	design, err := s.catalogue.DuplicateDesign(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"design": design})
}

// handleReportSummary aggregates KPIs over fresh events and cost sheets.
func (s *Server) handleReportSummary(c *gin.Context) {
	var (
		events []models.Event
		sheets []models.CostSheet
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		events, err = s.data.Events(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		sheets, err = s.data.CostSheets(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	respondSuccess(c, http.StatusOK, reports.Summarize(events, sheets, s.now()))
}
