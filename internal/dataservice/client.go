// Package dataservice is the HTTP client for the remote décor data service
// that owns events, cost sheets, inventory and designs.
package dataservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"decorops/internal/metrics"
	"decorops/internal/models"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Path string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API %d: %s %s", e.Code, e.Path, e.Body)
}

// Client talks JSON to the data service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a client for baseURL (e.g. http://127.0.0.1:8000/api/v1).
func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// WithToken returns a copy of the client that sends token as the bearer.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) do(ctx context.Context, method, path, route string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordDataServiceCall(method, route, "error", time.Since(start))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.RecordDataServiceCall(method, route, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Debug("data service rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &StatusError{Code: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(text))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Stages fetches the workflow stage catalogue.
func (c *Client) Stages(ctx context.Context) ([]models.StageInfo, error) {
	var stages []models.StageInfo
	if err := c.do(ctx, http.MethodGet, "/workflow/stages", "/workflow/stages", nil, &stages); err != nil {
		return nil, err
	}
	return stages, nil
}

// Events fetches every event with its current stage.
func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, "/events", "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEventStatus persists an event's new stage.
func (c *Client) UpdateEventStatus(ctx context.Context, eventID string, stage models.StageID) (models.Event, error) {
	var event models.Event
	path := "/events/" + url.PathEscape(eventID) + "/status"
	body := map[string]string{"status": string(stage)}
	if err := c.do(ctx, http.MethodPatch, path, "/events/:id/status", body, &event); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// CostSheets lists every cost sheet version.
func (c *Client) CostSheets(ctx context.Context) ([]models.CostSheet, error) {
	var sheets []models.CostSheet
	if err := c.do(ctx, http.MethodGet, "/cost-sheets", "/cost-sheets", nil, &sheets); err != nil {
		return nil, err
	}
	return sheets, nil
}

// NewCostSheet is the payload for saving a cost sheet version.
type NewCostSheet struct {
	EventID   string                 `json:"eventId"`
	Margin    float64                `json:"margin"`
	Items     []NewCostItem          `json:"items"`
	CreatedBy string                 `json:"createdBy"`
	Status    models.CostSheetStatus `json:"status,omitempty"`
}

// NewCostItem is one line of a NewCostSheet.
type NewCostItem struct {
	Category  models.CostCategory `json:"category"`
	Name      string              `json:"name"`
	Unit      string              `json:"unit"`
	Quantity  float64             `json:"quantity"`
	UnitPrice float64             `json:"unitPrice"`
	Notes     string              `json:"notes,omitempty"`
}

// CreateCostSheet stores a new cost sheet version.
func (c *Client) CreateCostSheet(ctx context.Context, payload NewCostSheet) (models.CostSheet, error) {
	var sheet models.CostSheet
	if err := c.do(ctx, http.MethodPost, "/cost-sheets", "/cost-sheets", payload, &sheet); err != nil {
		return models.CostSheet{}, err
	}
	return sheet, nil
}

// ApproveCostSheet approves or rejects a pending cost sheet.
func (c *Client) ApproveCostSheet(ctx context.Context, sheetID, approvedBy string, approved bool) (models.CostSheet, error) {
	var sheet models.CostSheet
	path := "/cost-sheets/" + url.PathEscape(sheetID) + "/approve"
	body := map[string]any{"approvedBy": approvedBy, "approved": approved}
	if err := c.do(ctx, http.MethodPost, path, "/cost-sheets/:id/approve", body, &sheet); err != nil {
		return models.CostSheet{}, err
	}
	return sheet, nil
}

// InventoryItems lists rentable stock.
func (c *Client) InventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := c.do(ctx, http.MethodGet, "/inventory/items", "/inventory/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateInventoryItem registers new stock.
func (c *Client) CreateInventoryItem(ctx context.Context, payload models.NewInventoryItem) (models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.do(ctx, http.MethodPost, "/inventory/items", "/inventory/items", payload, &item); err != nil {
		return models.InventoryItem{}, err
	}
	return item, nil
}

// InventoryForecast returns required versus available stock per month.
func (c *Client) InventoryForecast(ctx context.Context) ([]models.ForecastMonth, error) {
	var months []models.ForecastMonth
	if err := c.do(ctx, http.MethodGet, "/inventory/forecast", "/inventory/forecast", nil, &months); err != nil {
		return nil, err
	}
	return months, nil
}

// Designs lists the design repository.
func (c *Client) Designs(ctx context.Context) ([]models.Design, error) {
	var designs []models.Design
	if err := c.do(ctx, http.MethodGet, "/designs", "/designs", nil, &designs); err != nil {
		return nil, err
	}
	return designs, nil
}

// DuplicateDesign copies a design into a new repository entry.
func (c *Client) DuplicateDesign(ctx context.Context, designID string) (models.Design, error) {
	var design models.Design
	path := "/designs/" + url.PathEscape(designID) + "/duplicate"
	if err := c.do(ctx, http.MethodPost, path, "/designs/:id/duplicate", nil, &design); err != nil {
		return models.Design{}, err
	}
	return design, nil
}

// EstimationTracker fetches the material estimation worksheet of an event.
func (c *Client) EstimationTracker(ctx context.Context, eventID string) (models.EstimationTracker, error) {
	var tracker models.EstimationTracker
	path := "/estimation-tracker/" + url.PathEscape(eventID)
	if err := c.do(ctx, http.MethodGet, path, "/estimation-tracker/:id", nil, &tracker); err != nil {
		return models.EstimationTracker{}, err
	}
	return tracker, nil
}

// SaveEstimationTracker stores worksheet rows and margin.
func (c *Client) SaveEstimationTracker(ctx context.Context, eventID string, rows []models.EstimationRow, margin float64) (models.EstimationTracker, error) {
	var tracker models.EstimationTracker
	path := "/estimation-tracker/" + url.PathEscape(eventID)
	body := map[string]any{"rows": rows, "margin": margin}
	if err := c.do(ctx, http.MethodPut, path, "/estimation-tracker/:id", body, &tracker); err != nil {
		return models.EstimationTracker{}, err
	}
	return tracker, nil
}
