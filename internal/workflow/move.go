package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"decorops/internal/metrics"
	"decorops/internal/models"
)

// RollbackAdvisory is shown after the data service refuses a move.
const RollbackAdvisory = "Could not save status update. Your change was rolled back."

var (
	ErrUnknownStage          = errors.New("unknown stage")
	ErrIndexOutOfRange       = errors.New("index out of range")
	ErrEventMismatch         = errors.New("event is not at the source position")
	ErrTransitionNotAllowed  = errors.New("transition not allowed")
	errStatusSyncUnavailable = errors.New("status sync not configured")
)

// TransitionPolicy decides whether an event may go from one stage to another.
type TransitionPolicy func(from, to models.StageID) bool

// AnyTransition allows every pair of stages, including leaving completed.
func AnyTransition(_, _ models.StageID) bool { return true }

// AdjacentOnly allows staying put or stepping one stage forward or back.
func AdjacentOnly(from, to models.StageID) bool {
	d := to.Position() - from.Position()
	return d >= -1 && d <= 1
}

// ParseTransitionPolicy maps a config value to a policy.
func ParseTransitionPolicy(name string) (TransitionPolicy, error) {
	switch name {
	case "", "any":
		return AnyTransition, nil
	case "adjacent":
		return AdjacentOnly, nil
	}
	return nil, fmt.Errorf("unknown transition policy %q", name)
}

// Outcome is how a move attempt ended.
type Outcome int

const (
	OutcomeRefused Outcome = iota
	OutcomeNoop
	OutcomeConfirmed
	OutcomeRolledBack
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRefused:
		return "refused"
	case OutcomeNoop:
		return "noop"
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeRolledBack:
		return "rolled_back"
	}
	return "unknown"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// MoveRequest describes one drag: where the card was and where it was dropped.
type MoveRequest struct {
	EventID   string         `json:"eventId"`
	From      models.StageID `json:"fromStage"`
	FromIndex int            `json:"fromIndex"`
	To        models.StageID `json:"toStage"`
	ToIndex   int            `json:"toIndex"`
	Actor     string         `json:"-"`
}

// MoveResult reports the outcome and the event as it now stands on the board.
type MoveResult struct {
	Outcome  Outcome      `json:"outcome"`
	Event    models.Event `json:"event"`
	Advisory string       `json:"advisory,omitempty"`
}

// MoveCommand is a single optimistic move: the arrangement before it, the
// arrangement it commits, and the event it relocates.
type MoveCommand struct {
	Request  MoveRequest
	Snapshot []models.Stage
	Next     []models.Stage
	Moved    models.Event
	Updated  models.Event
}

// NewMoveCommand validates req against stages and builds the mutated copy.
// stages is not modified.
func NewMoveCommand(stages []models.Stage, req MoveRequest) (*MoveCommand, error) {
	src := indexOfStage(stages, req.From)
	dst := indexOfStage(stages, req.To)
	if src < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, req.From)
	}
	if dst < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, req.To)
	}

	srcEvents := stages[src].Events
	if req.FromIndex < 0 || req.FromIndex >= len(srcEvents) {
		return nil, fmt.Errorf("%w: source index %d in %s", ErrIndexOutOfRange, req.FromIndex, req.From)
	}
	moved := srcEvents[req.FromIndex]
	if req.EventID != "" && moved.ID != req.EventID {
		return nil, fmt.Errorf("%w: %s at %s[%d] is %s", ErrEventMismatch, req.EventID, req.From, req.FromIndex, moved.ID)
	}

	limit := len(stages[dst].Events)
	if src == dst {
		limit--
	}
	if req.ToIndex < 0 || req.ToIndex > limit {
		return nil, fmt.Errorf("%w: destination index %d in %s", ErrIndexOutOfRange, req.ToIndex, req.To)
	}

	next := cloneStages(stages)
	next[src].Events = removeAt(next[src].Events, req.FromIndex)

	updated := moved
	updated.Stage = req.To
	next[dst].Events = insertAt(next[dst].Events, req.ToIndex, updated)

	return &MoveCommand{
		Request:  req,
		Snapshot: cloneStages(stages),
		Next:     next,
		Moved:    moved,
		Updated:  updated,
	}, nil
}

// Confirm asks the data service to persist the new stage.
func (c *MoveCommand) Confirm(ctx context.Context, status StatusSync) error {
	if status == nil {
		return errStatusSyncUnavailable
	}
	_, err := status.UpdateEventStatus(ctx, c.Updated.ID, c.Updated.Stage)
	return err
}

// Move relocates one event. Refused and no-op requests touch nothing; a
// malformed request returns an error and touches nothing. Once validated, the
// new arrangement is committed before the data service is asked, and restored
// from the snapshot in full if the data service fails. That failure is
// reported through the result, never as an error.
func (b *Board) Move(ctx context.Context, gate PermissionGate, req MoveRequest) (MoveResult, error) {
	if gate == nil || !gate.CanMoveEvents() {
		metrics.RecordBoardMove(OutcomeRefused.String())
		return MoveResult{Outcome: OutcomeRefused}, nil
	}
	for _, id := range []models.StageID{req.From, req.To} {
		if !id.Valid() {
			return MoveResult{}, fmt.Errorf("%w: %q", ErrUnknownStage, id)
		}
	}
	if req.From == req.To && req.FromIndex == req.ToIndex {
		metrics.RecordBoardMove(OutcomeNoop.String())
		return MoveResult{Outcome: OutcomeNoop}, nil
	}

	cmd, err := b.apply(req)
	if err != nil {
		return MoveResult{}, err
	}

	// The status call outlives the caller: once issued it runs to completion
	// and only the client's own timeout bounds it.
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	if err := cmd.Confirm(ctx, b.status); err != nil {
		b.rollback(cmd)
		b.logger.Warn("status update failed; move rolled back",
			zap.String("event_id", cmd.Moved.ID),
			zap.String("from", string(req.From)),
			zap.String("to", string(req.To)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		b.record(ctx, cmd, OutcomeRolledBack, err.Error())
		return MoveResult{Outcome: OutcomeRolledBack, Event: cmd.Moved, Advisory: RollbackAdvisory}, nil
	}

	b.logger.Info("event moved",
		zap.String("event_id", cmd.Updated.ID),
		zap.String("from", string(req.From)),
		zap.String("to", string(req.To)),
		zap.Duration("elapsed", time.Since(start)),
	)
	b.record(ctx, cmd, OutcomeConfirmed, "")
	return MoveResult{Outcome: OutcomeConfirmed, Event: cmd.Updated}, nil
}

// apply validates and commits the optimistic arrangement.
func (b *Board) apply(req MoveRequest) (*MoveCommand, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.transitions(req.From, req.To) {
		return nil, fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, req.From, req.To)
	}
	cmd, err := NewMoveCommand(b.stages, req)
	if err != nil {
		return nil, err
	}
	b.stages = cmd.Next
	b.advisory = ""
	return cmd, nil
}

// rollback restores every stage from the command's snapshot.
func (b *Board) rollback(cmd *MoveCommand) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stages = cloneStages(cmd.Snapshot)
	b.advisory = RollbackAdvisory
}

func (b *Board) record(ctx context.Context, cmd *MoveCommand, outcome Outcome, message string) {
	metrics.RecordBoardMove(outcome.String())
	if b.journal == nil {
		return
	}
	rec := models.MoveRecord{
		ID:        uuid.NewString(),
		EventID:   cmd.Moved.ID,
		EventName: cmd.Moved.Name,
		FromStage: cmd.Request.From,
		FromIndex: cmd.Request.FromIndex,
		ToStage:   cmd.Request.To,
		ToIndex:   cmd.Request.ToIndex,
		Outcome:   outcome.String(),
		Actor:     cmd.Request.Actor,
		Message:   message,
		CreatedAt: b.now().UTC(),
	}
	if err := b.journal.RecordMove(ctx, rec); err != nil {
		b.logger.Warn("journal move failed", zap.String("event_id", rec.EventID), zap.Error(err))
	}
}

func indexOfStage(stages []models.Stage, id models.StageID) int {
	for i, s := range stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(events []models.Event, i int) []models.Event {
	out := make([]models.Event, 0, len(events)-1)
	out = append(out, events[:i]...)
	return append(out, events[i+1:]...)
}

func insertAt(events []models.Event, i int, e models.Event) []models.Event {
	out := make([]models.Event, 0, len(events)+1)
	out = append(out, events[:i]...)
	out = append(out, e)
	return append(out, events[i:]...)
}
