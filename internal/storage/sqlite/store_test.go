package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decorops/internal/models"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("", nil)
	require.Error(t, err)
}

func TestRecordAndListMoves(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	first := models.MoveRecord{
		ID: "m1", EventID: "ev-1", EventName: "Kapoor Wedding",
		FromStage: models.StageDesign, FromIndex: 0, ToStage: models.StageCosting, ToIndex: 1,
		Outcome: "confirmed", Actor: "Asha", CreatedAt: base,
	}
	second := models.MoveRecord{
		ID: "m2", EventID: "ev-2", FromStage: models.StageSetup, ToStage: models.StageCompleted,
		Outcome: "rolled_back", Message: "API 500", CreatedAt: base.Add(time.Minute),
	}
	require.NoError(t, store.RecordMove(ctx, first))
	require.NoError(t, store.RecordMove(ctx, second))

	moves, err := store.ListMoves(ctx, 10)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "m2", moves[0].ID)
	assert.Equal(t, "API 500", moves[0].Message)

	got := moves[1]
	assert.Equal(t, first.EventName, got.EventName)
	assert.Equal(t, models.StageDesign, got.FromStage)
	assert.Equal(t, models.StageCosting, got.ToStage)
	assert.Equal(t, 1, got.ToIndex)
	assert.True(t, got.CreatedAt.Equal(base), "created_at %s", got.CreatedAt)

	limited, err := store.ListMoves(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordMoveDefaults(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.Error(t, store.RecordMove(ctx, models.MoveRecord{Outcome: "confirmed"}))
	require.NoError(t, store.RecordMove(ctx, models.MoveRecord{EventID: "ev-3", FromStage: models.StageDesign, ToStage: models.StageSetup, Outcome: "confirmed"}))

	moves, err := store.EventMoves(ctx, "ev-3")
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.NotEmpty(t, moves[0].ID)
	assert.False(t, moves[0].CreatedAt.IsZero())
}

func TestEventMovesOldestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	for i, to := range []models.StageID{models.StageCosting, models.StageProcurement, models.StageProduction} {
		require.NoError(t, store.RecordMove(ctx, models.MoveRecord{
			EventID: "ev-1", FromStage: models.StageDesign, ToStage: to, Outcome: "confirmed",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.RecordMove(ctx, models.MoveRecord{EventID: "ev-2", FromStage: models.StageDesign, ToStage: models.StageSetup, Outcome: "confirmed"}))

	moves, err := store.EventMoves(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, moves, 3)
	assert.Equal(t, models.StageProduction, moves[2].ToStage)

	none, err := store.EventMoves(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
