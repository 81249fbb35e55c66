package models

import "time"

// MoveRecord is one journaled board move attempt.
type MoveRecord struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	EventName string    `json:"eventName"`
	FromStage StageID   `json:"fromStage"`
	FromIndex int       `json:"fromIndex"`
	ToStage   StageID   `json:"toStage"`
	ToIndex   int       `json:"toIndex"`
	Outcome   string    `json:"outcome"`
	Actor     string    `json:"actor"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
