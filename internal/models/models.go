package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StageID identifies one station of the production pipeline.
type StageID string

const (
	StageDesign      StageID = "design"
	StageCosting     StageID = "costing"
	StageProcurement StageID = "procurement"
	StageProduction  StageID = "production"
	StageSetup       StageID = "setup"
	StageCompleted   StageID = "completed"
)

// Stages returns the pipeline stages in canonical order.
func Stages() []StageID {
	return []StageID{
		StageDesign,
		StageCosting,
		StageProcurement,
		StageProduction,
		StageSetup,
		StageCompleted,
	}
}

// ParseStage converts a wire value into a StageID.
func ParseStage(raw string) (StageID, error) {
	id := StageID(strings.TrimSpace(raw))
	if !id.Valid() {
		return "", fmt.Errorf("unknown stage %q", raw)
	}
	return id, nil
}

// Valid reports whether the stage belongs to the pipeline.
func (s StageID) Valid() bool {
	switch s {
	case StageDesign, StageCosting, StageProcurement, StageProduction, StageSetup, StageCompleted:
		return true
	}
	return false
}

// DisplayName is the column title shown on the board.
func (s StageID) DisplayName() string {
	switch s {
	case StageDesign:
		return "Design"
	case StageCosting:
		return "Costing"
	case StageProcurement:
		return "Procurement"
	case StageProduction:
		return "Production"
	case StageSetup:
		return "Setup"
	case StageCompleted:
		return "Completed"
	}
	return string(s)
}

// Position is the stage's index in the canonical order, or -1.
func (s StageID) Position() int {
	for i, id := range Stages() {
		if id == s {
			return i
		}
	}
	return -1
}

const dateLayout = "2006-01-02"

// Date is a calendar date that accepts both YYYY-MM-DD and RFC 3339 on the wire.
type Date struct {
	time.Time
}

// NewDate builds a UTC midnight date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD (UTC midnight) or RFC 3339.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return Date{t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 && d.Nanosecond() == 0 {
		return json.Marshal(d.Format(dateLayout))
	}
	return json.Marshal(d.Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Event is one décor project moving through the pipeline.
type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Client     string    `json:"client"`
	Venue      string    `json:"venue"`
	Date       Date      `json:"date"`
	Budget     float64   `json:"budget"`
	Stage      StageID   `json:"status"`
	Theme      string    `json:"theme"`
	AssignedTo string    `json:"assignedTo"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Stage is a board column holding events in display order.
type Stage struct {
	ID     StageID `json:"id"`
	Name   string  `json:"name"`
	Events []Event `json:"events"`
}

// StageInfo is a catalogue entry returned by the data service.
type StageInfo struct {
	ID   StageID `json:"id"`
	Name string  `json:"name"`
}

// Design is a reusable décor concept from the design repository.
type Design struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	ImageURL          string   `json:"imageUrl"`
	Tags              []string `json:"tags"`
	Theme             string   `json:"theme"`
	Colors            []string `json:"colors"`
	VenueType         string   `json:"venueType"`
	Budget            float64  `json:"budget"`
	UsageCount        int      `json:"usageCount"`
	LastUsed          string   `json:"lastUsed,omitempty"`
	CreatedAt         string   `json:"createdAt"`
	LinkedCostSheetID string   `json:"linkedCostSheetId,omitempty"`
}
