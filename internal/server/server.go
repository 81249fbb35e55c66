package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"decorops/internal/access"
	"decorops/internal/costing"
	"decorops/internal/dataservice"
	"decorops/internal/models"
	"decorops/internal/workflow"
)

// DataService is the part of the remote data service the API calls directly.
type DataService interface {
	workflow.EventSource
	CostSheets(ctx context.Context) ([]models.CostSheet, error)
	CreateCostSheet(ctx context.Context, payload dataservice.NewCostSheet) (models.CostSheet, error)
	ApproveCostSheet(ctx context.Context, sheetID, approvedBy string, approved bool) (models.CostSheet, error)
	EstimationTracker(ctx context.Context, eventID string) (models.EstimationTracker, error)
	SaveEstimationTracker(ctx context.Context, eventID string, rows []models.EstimationRow, margin float64) (models.EstimationTracker, error)
}

// Catalogue serves inventory and design reads, usually through the cache.
type Catalogue interface {
	InventoryItems(ctx context.Context) ([]models.InventoryItem, error)
	InventoryForecast(ctx context.Context) ([]models.ForecastMonth, error)
	CreateInventoryItem(ctx context.Context, payload models.NewInventoryItem) (models.InventoryItem, error)
	Designs(ctx context.Context) ([]models.Design, error)
	DuplicateDesign(ctx context.Context, designID string) (models.Design, error)
}

// ActivityLog reads the local move journal.
type ActivityLog interface {
	ListMoves(ctx context.Context, limit int) ([]models.MoveRecord, error)
	EventMoves(ctx context.Context, eventID string) ([]models.MoveRecord, error)
}

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Board     *workflow.Board
	Data      DataService
	Catalogue Catalogue
	Activity  ActivityLog
	Policy    *access.Policy
	Auth      *Authenticator
	StaticDir string
}

// Server provides HTTP handlers for the decor operations dashboard.
type Server struct {
	engine    *gin.Engine
	board     *workflow.Board
	data      DataService
	catalogue Catalogue
	activity  ActivityLog
	policy    *access.Policy
	auth      *Authenticator
	logger    *zap.Logger
	staticDir string
	now       func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Policy == nil {
		deps.Policy = access.DefaultPolicy()
	}
	if deps.Auth == nil {
		deps.Auth = NewAuthenticator("", "")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:    router,
		board:     deps.Board,
		data:      deps.Data,
		catalogue: deps.Catalogue,
		activity:  deps.Activity,
		policy:    deps.Policy,
		auth:      deps.Auth,
		logger:    logger,
		staticDir: deps.StaticDir,
		now:       time.Now,
	}

	router.Use(srv.requestLogger(), requestMetrics())
	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.GET("/healthz", s.handleHealth)

	authed := api.Group("", s.authenticate())
	{
		board := authed.Group("/board", s.require(models.ModuleWorkflow, models.ActionView))
		{
			board.GET("", s.handleBoard)
			board.POST("/moves", s.handleMove)
			board.POST("/reload", s.handleReload)
		}
		authed.GET("/activity", s.require(models.ModuleWorkflow, models.ActionView), s.handleActivity)

		sheets := authed.Group("/cost-sheets")
		{
			sheets.GET("", s.require(models.ModuleCosting, models.ActionView), s.handleListCostSheets)
			sheets.POST("", s.require(models.ModuleCosting, models.ActionEdit), s.handleCreateCostSheet)
			sheets.POST("/:id/approve", s.require(models.ModuleCosting, models.ActionApprove), s.handleApproveCostSheet)
			sheets.GET("/:id/export", s.require(models.ModuleCosting, models.ActionView), s.handleExportCostSheet)
		}

		mats := authed.Group("/materials/:eventId")
		{
			mats.GET("", s.require(models.ModuleMaterials, models.ActionView), s.handleMaterials)
			mats.PUT("", s.require(models.ModuleMaterials, models.ActionEdit), s.handleSaveMaterials)
			mats.POST("/cost-sheet", s.require(models.ModuleCosting, models.ActionEdit), s.handleDraftFromEstimate)
		}

		inv := authed.Group("/inventory")
		{
			inv.GET("", s.require(models.ModuleInventory, models.ActionView), s.handleInventory)
			inv.POST("", s.require(models.ModuleInventory, models.ActionEdit), s.handleCreateInventoryItem)
			inv.GET("/shortages", s.require(models.ModuleInventory, models.ActionView), s.handleShortages)
		}

		designs := authed.Group("/designs")
		{
			designs.GET("", s.require(models.ModuleDesigns, models.ActionView), s.handleDesigns)
			designs.POST("/:id/duplicate", s.require(models.ModuleDesigns, models.ActionEdit), s.handleDuplicateDesign)
		}

		authed.GET("/reports/summary", s.require(models.ModuleReports, models.ActionView), s.handleReportSummary)
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseLimit reads an optional positive integer query parameter.
func parseLimit(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

// statusFor maps domain and remote errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrUnknownStage),
		errors.Is(err, workflow.ErrIndexOutOfRange),
		errors.Is(err, workflow.ErrEventMismatch),
		errors.Is(err, costing.ErrInvalidItem),
		errors.Is(err, costing.ErrEmptySheet):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrTransitionNotAllowed),
		errors.Is(err, costing.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	var remote *dataservice.StatusError
	if errors.As(err, &remote) {
		if remote.Code == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	fields := []zap.Field{zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err)}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Warn("request rejected", fields...)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
