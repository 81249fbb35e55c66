// Package reports aggregates business KPIs over events and cost sheets.
package reports

import (
	"sort"
	"time"

	"decorops/internal/models"
	"decorops/internal/workflow"
)

// DeadlineWindow is how far ahead upcoming deadlines are listed.
const DeadlineWindow = 30

// StageCount is the number of events sitting in one stage.
type StageCount struct {
	Stage models.StageID `json:"stage"`
	Name  string         `json:"name"`
	Count int            `json:"count"`
}

// Deadline is an active event with its derived urgency.
type Deadline struct {
	EventID    string             `json:"eventId"`
	EventName  string             `json:"eventName"`
	Stage      models.StageID     `json:"stage"`
	Date       models.Date        `json:"date"`
	DaysLeft   int                `json:"daysLeft"`
	Risk       workflow.RiskLevel `json:"risk"`
	AssignedTo string             `json:"assignedTo"`
}

// PendingApproval is a cost sheet waiting for finance.
type PendingApproval struct {
	SheetID   string  `json:"id"`
	EventID   string  `json:"eventId"`
	EventName string  `json:"event"`
	Amount    float64 `json:"amount"`
	Submitted string  `json:"submittedBy"`
}

// Summary is the report page payload.
type Summary struct {
	TotalEvents      int               `json:"totalEvents"`
	ActiveEvents     int               `json:"activeEvents"`
	PipelineValue    float64           `json:"pipelineValue"`
	ApprovedRevenue  float64           `json:"approvedRevenue"`
	Stages           []StageCount      `json:"stages"`
	AtRisk           []Deadline        `json:"atRisk"`
	Upcoming         []Deadline        `json:"upcoming"`
	PendingApprovals []PendingApproval `json:"pendingApprovals"`
}

// Summarize computes the report for the given instant.
func Summarize(events []models.Event, sheets []models.CostSheet, now time.Time) Summary {
	sum := Summary{
		TotalEvents:      len(events),
		Stages:           make([]StageCount, 0, len(models.Stages())),
		AtRisk:           []Deadline{},
		Upcoming:         []Deadline{},
		PendingApprovals: []PendingApproval{},
	}

	counts := make(map[models.StageID]int)
	names := make(map[string]string, len(events))
	for _, e := range events {
		counts[e.Stage]++
		names[e.ID] = e.Name
		if e.Stage == models.StageCompleted {
			continue
		}
		sum.ActiveEvents++
		sum.PipelineValue += e.Budget

		d := Deadline{
			EventID:    e.ID,
			EventName:  e.Name,
			Stage:      e.Stage,
			Date:       e.Date,
			DaysLeft:   workflow.DaysUntil(e.Date.Time, now),
			Risk:       workflow.Risk(e, now),
			AssignedTo: e.AssignedTo,
		}
		if d.Risk != workflow.RiskLow {
			sum.AtRisk = append(sum.AtRisk, d)
		}
		if d.DaysLeft >= 0 && d.DaysLeft <= DeadlineWindow {
			sum.Upcoming = append(sum.Upcoming, d)
		}
	}
	for _, id := range models.Stages() {
		sum.Stages = append(sum.Stages, StageCount{Stage: id, Name: id.DisplayName(), Count: counts[id]})
	}
	byDate := func(list []Deadline) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date.Time) })
	}
	byDate(sum.AtRisk)
	byDate(sum.Upcoming)

	latest := latestSheets(sheets)
	for _, s := range latest {
		switch s.Status {
		case models.SheetApproved:
			sum.ApprovedRevenue += s.Total
		case models.SheetPendingApproval:
			sum.PendingApprovals = append(sum.PendingApprovals, PendingApproval{
				SheetID:   s.ID,
				EventID:   s.EventID,
				EventName: names[s.EventID],
				Amount:    s.Total,
				Submitted: s.CreatedBy,
			})
		}
	}
	return sum
}

// latestSheets keeps the highest version per event, ordered by event id.
func latestSheets(sheets []models.CostSheet) []models.CostSheet {
	latest := make(map[string]models.CostSheet)
	for _, s := range sheets {
		if cur, ok := latest[s.EventID]; !ok || s.Version > cur.Version {
			latest[s.EventID] = s
		}
	}
	out := make([]models.CostSheet, 0, len(latest))
	for _, s := range latest {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out
}
