package workflow

import (
	"math"
	"time"

	"decorops/internal/models"
)

// RiskLevel is the urgency of an event given its date and stage.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Label is the badge text shown on a card.
func (r RiskLevel) Label() string {
	switch r {
	case RiskHigh:
		return "Urgent"
	case RiskMedium:
		return "At Risk"
	case RiskLow:
		return "On Track"
	}
	return ""
}

const day = 24 * time.Hour

// DaysUntil is the ceiling of (date - now) in whole days. It is zero or
// negative once the date is reached.
func DaysUntil(date, now time.Time) int {
	return int(math.Ceil(float64(date.Sub(now)) / float64(day)))
}

// Risk classifies an event. Setup and completed events are never urgent;
// production events skip the medium band.
func Risk(e models.Event, now time.Time) RiskLevel {
	days := DaysUntil(e.Date.Time, now)
	switch {
	case days < 7 && e.Stage != models.StageCompleted && e.Stage != models.StageSetup:
		return RiskHigh
	case days < 14 && e.Stage != models.StageCompleted && e.Stage != models.StageSetup && e.Stage != models.StageProduction:
		return RiskMedium
	default:
		return RiskLow
	}
}
