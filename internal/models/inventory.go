package models

// Condition describes the physical state of a rentable item.
type Condition string

const (
	ConditionExcellent   Condition = "excellent"
	ConditionGood        Condition = "good"
	ConditionFair        Condition = "fair"
	ConditionNeedsRepair Condition = "needs_repair"
)

// InventoryItem is a rentable prop, fabric or fixture held in stock.
type InventoryItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	TotalQuantity int       `json:"totalQuantity"`
	Available     int       `json:"available"`
	Reserved      int       `json:"reserved"`
	InUse         int       `json:"inUse"`
	Condition     Condition `json:"condition"`
	LastUsed      string    `json:"lastUsed"`
	NextBooking   string    `json:"nextBooking,omitempty"`
	Value         float64   `json:"value"`
	Location      string    `json:"location"`
}

// NewInventoryItem is the payload for registering stock.
type NewInventoryItem struct {
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	TotalQuantity int       `json:"totalQuantity"`
	Value         float64   `json:"value"`
	Location      string    `json:"location"`
	Condition     Condition `json:"condition,omitempty"`
	NextBooking   string    `json:"nextBooking,omitempty"`
}

// ForecastMonth compares required and available stock for a month.
type ForecastMonth struct {
	Month     string `json:"month"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}
