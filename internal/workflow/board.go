// Package workflow holds the stage board: events arranged by pipeline stage,
// moved with an optimistic update that is rolled back when the data service
// refuses the change.
package workflow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"decorops/internal/metrics"
	"decorops/internal/models"
)

// EventSource supplies the initial board contents.
type EventSource interface {
	Stages(ctx context.Context) ([]models.StageInfo, error)
	Events(ctx context.Context) ([]models.Event, error)
}

// StatusSync persists an event's new stage on the data service.
type StatusSync interface {
	UpdateEventStatus(ctx context.Context, eventID string, stage models.StageID) (models.Event, error)
}

// PermissionGate answers whether the current actor may move events.
type PermissionGate interface {
	CanMoveEvents() bool
}

// Journal records move attempts for the activity feed.
type Journal interface {
	RecordMove(ctx context.Context, rec models.MoveRecord) error
}

// Board owns the arrangement of events by stage for one session.
type Board struct {
	mu       sync.RWMutex
	stages   []models.Stage
	advisory string

	status      StatusSync
	journal     Journal
	transitions TransitionPolicy
	now         func() time.Time
	logger      *zap.Logger
}

// Option customises a Board.
type Option func(*Board)

// WithJournal reports every move attempt to j.
func WithJournal(j Journal) Option {
	return func(b *Board) { b.journal = j }
}

// WithTransitionPolicy restricts which stage pairs a move may connect.
func WithTransitionPolicy(p TransitionPolicy) Option {
	return func(b *Board) {
		if p != nil {
			b.transitions = p
		}
	}
}

// WithClock overrides the time source used for risk and days-left.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBoard creates a board with all six stages present and empty.
func NewBoard(status StatusSync, logger *zap.Logger, opts ...Option) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Board{
		stages:      emptyStages(nil),
		status:      status,
		transitions: AnyTransition,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces the board contents with a fresh fetch from src. A failed
// fetch leaves every stage empty; it is never reported as an error.
func (b *Board) Load(ctx context.Context, src EventSource) {
	var (
		catalogue []models.StageInfo
		events    []models.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalogue, err = src.Stages(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = src.Events(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		b.logger.Warn("board load failed; starting empty", zap.Error(err))
		metrics.RecordBoardLoad("degraded")
		b.replace(emptyStages(nil))
		return
	}

	stages := partition(catalogue, events, b.logger)
	metrics.RecordBoardLoad("ok")
	b.logger.Info("board loaded", zap.Int("events", len(events)))
	b.replace(stages)
}

func (b *Board) replace(stages []models.Stage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stages = stages
	b.advisory = ""
}

// emptyStages builds the canonical columns, taking display names from the
// catalogue where it has them.
func emptyStages(catalogue []models.StageInfo) []models.Stage {
	names := make(map[models.StageID]string, len(catalogue))
	for _, info := range catalogue {
		if info.ID.Valid() && info.Name != "" {
			names[info.ID] = info.Name
		}
	}

	stages := make([]models.Stage, 0, len(models.Stages()))
	for _, id := range models.Stages() {
		name, ok := names[id]
		if !ok {
			name = id.DisplayName()
		}
		stages = append(stages, models.Stage{ID: id, Name: name, Events: []models.Event{}})
	}
	return stages
}

// partition groups events by their stage field, keeping source order.
func partition(catalogue []models.StageInfo, events []models.Event, logger *zap.Logger) []models.Stage {
	stages := emptyStages(catalogue)
	for _, e := range events {
		pos := e.Stage.Position()
		if pos < 0 {
			logger.Warn("dropping event with unknown stage",
				zap.String("event_id", e.ID),
				zap.String("stage", string(e.Stage)),
			)
			continue
		}
		stages[pos].Events = append(stages[pos].Events, e)
	}
	return stages
}

// cloneStages deep-copies an arrangement. Events hold no reference fields,
// so copying the slices is enough.
func cloneStages(stages []models.Stage) []models.Stage {
	out := make([]models.Stage, len(stages))
	for i, s := range stages {
		events := make([]models.Event, len(s.Events))
		copy(events, s.Events)
		out[i] = models.Stage{ID: s.ID, Name: s.Name, Events: events}
	}
	return out
}

// Stages returns a copy of the latest committed arrangement.
func (b *Board) Stages() []models.Stage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneStages(b.stages)
}

// Event finds an event by id.
func (b *Board) Event(id string) (models.Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.stages {
		for _, e := range s.Events {
			if e.ID == id {
				return e, true
			}
		}
	}
	return models.Event{}, false
}

// Advisory is the message left by the last rolled back move, if any.
func (b *Board) Advisory() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.advisory
}

// Card is an event annotated with its derived urgency.
type Card struct {
	models.Event
	DaysLeft int       `json:"daysLeft"`
	Risk     RiskLevel `json:"risk"`
}

// Column is one stage as rendered on the board.
type Column struct {
	ID    models.StageID `json:"id"`
	Name  string         `json:"name"`
	Count int            `json:"count"`
	Cards []Card         `json:"events"`
}

// View is the board as the frontend draws it.
type View struct {
	Columns  []Column `json:"stages"`
	Advisory string   `json:"advisory,omitempty"`
}

// View derives days-left and risk for every event at the current time.
func (b *Board) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	now := b.now()
	view := View{Columns: make([]Column, 0, len(b.stages)), Advisory: b.advisory}
	for _, s := range b.stages {
		col := Column{ID: s.ID, Name: s.Name, Count: len(s.Events), Cards: make([]Card, 0, len(s.Events))}
		for _, e := range s.Events {
			col.Cards = append(col.Cards, Card{
				Event:    e,
				DaysLeft: DaysUntil(e.Date.Time, now),
				Risk:     Risk(e, now),
			})
		}
		view.Columns = append(view.Columns, col)
	}
	return view
}
