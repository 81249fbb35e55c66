package models

import "time"

// CostCategory groups cost sheet lines.
type CostCategory string

const (
	CategoryFlowers       CostCategory = "flowers"
	CategoryFabric        CostCategory = "fabric"
	CategoryProps         CostCategory = "props"
	CategoryFurniture     CostCategory = "furniture"
	CategoryLighting      CostCategory = "lighting"
	CategoryLabour        CostCategory = "labour"
	CategoryTransport     CostCategory = "transport"
	CategoryMiscellaneous CostCategory = "miscellaneous"
)

// Valid reports whether the category is known.
func (c CostCategory) Valid() bool {
	switch c {
	case CategoryFlowers, CategoryFabric, CategoryProps, CategoryFurniture,
		CategoryLighting, CategoryLabour, CategoryTransport, CategoryMiscellaneous:
		return true
	}
	return false
}

// CostSheetStatus is the approval state of a cost sheet version.
type CostSheetStatus string

const (
	SheetDraft           CostSheetStatus = "draft"
	SheetPendingApproval CostSheetStatus = "pending_approval"
	SheetApproved        CostSheetStatus = "approved"
	SheetRejected        CostSheetStatus = "rejected"
)

// Valid reports whether the status is known.
func (s CostSheetStatus) Valid() bool {
	switch s {
	case SheetDraft, SheetPendingApproval, SheetApproved, SheetRejected:
		return true
	}
	return false
}

// CostItem is one priced line of a cost sheet.
type CostItem struct {
	ID         string       `json:"id"`
	Category   CostCategory `json:"category"`
	Name       string       `json:"name"`
	Unit       string       `json:"unit"`
	Quantity   float64      `json:"quantity"`
	UnitPrice  float64      `json:"unitPrice"`
	TotalPrice float64      `json:"totalPrice"`
	Notes      string       `json:"notes,omitempty"`
}

// CostSheet is one version of an event's itemised costing.
type CostSheet struct {
	ID           string          `json:"id"`
	EventID      string          `json:"eventId"`
	Version      int             `json:"version"`
	Status       CostSheetStatus `json:"status"`
	Items        []CostItem      `json:"items"`
	Subtotal     float64         `json:"subtotal"`
	Margin       float64         `json:"margin"`
	MarginAmount float64         `json:"marginAmount"`
	Total        float64         `json:"total"`
	CreatedBy    string          `json:"createdBy"`
	CreatedAt    time.Time       `json:"createdAt"`
	ApprovedBy   string          `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time      `json:"approvedAt,omitempty"`
}

// EstimationRow is one line of the material estimation tracker.
type EstimationRow struct {
	ID               string  `json:"id"`
	Element          string  `json:"element,omitempty"`
	ReferencePicture string  `json:"referencePicture,omitempty"`
	Material         string  `json:"material"`
	SizeFt           string  `json:"sizeFt,omitempty"`
	Qty              float64 `json:"qty,omitempty"`
	SourceType       string  `json:"sourceType,omitempty"`
	UnitPricing      string  `json:"unitPricing,omitempty"`
	Area             string  `json:"area,omitempty"`
	Rate             float64 `json:"rate,omitempty"`
	Comments         string  `json:"comments,omitempty"`
	Category         string  `json:"category"`
	ComputedQuantity float64 `json:"computedQuantity"`
	ComputedUnit     string  `json:"computedUnit"`
	LineTotal        float64 `json:"lineTotal"`
}

// EstimationTracker is the per-event material estimation worksheet.
type EstimationTracker struct {
	EventID      string          `json:"eventId"`
	Margin       float64         `json:"margin"`
	RowCount     int             `json:"rowCount"`
	Subtotal     float64         `json:"subtotal"`
	MarginAmount float64         `json:"marginAmount"`
	Total        float64         `json:"total"`
	Rows         []EstimationRow `json:"rows"`
	Source       string          `json:"source"`
}
