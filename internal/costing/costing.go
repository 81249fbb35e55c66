// Package costing computes cost sheet totals, versions and approvals.
package costing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"decorops/internal/models"
)

// DefaultMargin is the margin percentage applied to a new sheet.
const DefaultMargin = 25.0

var (
	ErrInvalidItem = errors.New("invalid cost item")
	ErrNotPending  = errors.New("cost sheet is not pending approval")
	ErrEmptySheet  = errors.New("cost sheet has no items")
)

// Summary is the money block of a cost sheet.
type Summary struct {
	Subtotal     float64 `json:"subtotal"`
	Margin       float64 `json:"margin"`
	MarginAmount float64 `json:"marginAmount"`
	Total        float64 `json:"total"`
}

// LineTotal prices one line.
func LineTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// Totals sums line totals and applies the margin percentage.
func Totals(items []models.CostItem, margin float64) Summary {
	var subtotal float64
	for _, item := range items {
		subtotal += item.TotalPrice
	}
	return withMargin(subtotal, margin)
}

func withMargin(subtotal, margin float64) Summary {
	amount := subtotal * margin / 100
	return Summary{Subtotal: subtotal, Margin: margin, MarginAmount: amount, Total: subtotal + amount}
}

// ValidateItem rejects lines the studio would not accept on a sheet.
func ValidateItem(item models.CostItem) error {
	switch {
	case !item.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidItem, item.Category)
	case strings.TrimSpace(item.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	case strings.TrimSpace(item.Unit) == "":
		return fmt.Errorf("%w: unit is required", ErrInvalidItem)
	case item.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidItem)
	case item.UnitPrice <= 0:
		return fmt.Errorf("%w: unit price must be positive", ErrInvalidItem)
	}
	return nil
}

// SetQuantity changes a line's quantity and reprices it.
func SetQuantity(item models.CostItem, quantity float64) models.CostItem {
	item.Quantity = quantity
	item.TotalPrice = LineTotal(quantity, item.UnitPrice)
	return item
}

// History returns an event's sheets, newest version first.
func History(sheets []models.CostSheet, eventID string) []models.CostSheet {
	var out []models.CostSheet
	for _, s := range sheets {
		if s.EventID == eventID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out
}

// Current is the highest version for an event.
func Current(sheets []models.CostSheet, eventID string) (models.CostSheet, bool) {
	history := History(sheets, eventID)
	if len(history) == 0 {
		return models.CostSheet{}, false
	}
	return history[0], true
}

// NextVersion is one past the highest existing version, starting at 1.
func NextVersion(sheets []models.CostSheet, eventID string) int {
	if current, ok := Current(sheets, eventID); ok {
		return current.Version + 1
	}
	return 1
}

// Draft builds a new sheet version with computed totals. submit moves it
// straight to pending approval.
func Draft(existing []models.CostSheet, eventID string, items []models.CostItem, margin float64, createdBy string, submit bool, now time.Time) (models.CostSheet, error) {
	if len(items) == 0 {
		return models.CostSheet{}, ErrEmptySheet
	}
	priced := make([]models.CostItem, len(items))
	for i, item := range items {
		if err := ValidateItem(item); err != nil {
			return models.CostSheet{}, fmt.Errorf("item %d: %w", i, err)
		}
		priced[i] = SetQuantity(item, item.Quantity)
	}
	if margin < 0 {
		margin = DefaultMargin
	}

	status := models.SheetDraft
	if submit {
		status = models.SheetPendingApproval
	}
	sum := Totals(priced, margin)
	return models.CostSheet{
		EventID:      eventID,
		Version:      NextVersion(existing, eventID),
		Status:       status,
		Items:        priced,
		Subtotal:     sum.Subtotal,
		Margin:       sum.Margin,
		MarginAmount: sum.MarginAmount,
		Total:        sum.Total,
		CreatedBy:    createdBy,
		CreatedAt:    now.UTC(),
	}, nil
}

// Review approves or rejects a pending sheet.
func Review(sheet models.CostSheet, approver string, approved bool, now time.Time) (models.CostSheet, error) {
	if sheet.Status != models.SheetPendingApproval {
		return sheet, fmt.Errorf("%w: %s is %s", ErrNotPending, sheet.ID, sheet.Status)
	}
	sheet.Status = models.SheetRejected
	if approved {
		sheet.Status = models.SheetApproved
	}
	at := now.UTC()
	sheet.ApprovedBy = approver
	sheet.ApprovedAt = &at
	return sheet, nil
}

// ExportCSV writes the sheet lines as CSV.
func ExportCSV(w io.Writer, items []models.CostItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Item", "Unit", "Quantity", "Unit Price", "Total"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, item := range items {
		row := []string{
			string(item.Category),
			item.Name,
			item.Unit,
			formatNumber(item.Quantity),
			formatNumber(item.UnitPrice),
			formatNumber(item.TotalPrice),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", item.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
