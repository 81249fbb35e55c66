package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"decorops/internal/models"
)

// Store keeps the local move journal that backs the activity feed.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *zap.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS board_moves (
            id TEXT PRIMARY KEY,
            event_id TEXT NOT NULL,
            event_name TEXT NOT NULL DEFAULT '',
            from_stage TEXT NOT NULL,
            from_index INTEGER NOT NULL,
            to_stage TEXT NOT NULL,
            to_index INTEGER NOT NULL,
            outcome TEXT NOT NULL,
            actor TEXT NOT NULL DEFAULT '',
            message TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_board_moves_created ON board_moves(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_board_moves_event ON board_moves(event_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// RecordMove appends one move attempt to the journal.
func (s *Store) RecordMove(ctx context.Context, rec models.MoveRecord) error {
	if strings.TrimSpace(rec.EventID) == "" {
		return fmt.Errorf("move record needs an event id")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO board_moves(id, event_id, event_name, from_stage, from_index, to_stage, to_index, outcome, actor, message, created_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EventID, rec.EventName, string(rec.FromStage), rec.FromIndex, string(rec.ToStage), rec.ToIndex,
		rec.Outcome, rec.Actor, rec.Message, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert move: %w", err)
	}
	s.logger.Debug("move journaled", zap.String("id", rec.ID), zap.String("outcome", rec.Outcome))
	return nil
}

// ListMoves returns the newest journal entries first.
func (s *Store) ListMoves(ctx context.Context, limit int) ([]models.MoveRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, event_id, event_name, from_stage, from_index, to_stage, to_index, outcome, actor, message, created_at
        FROM board_moves ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	return scanMoves(rows)
}

// EventMoves returns the journal of one event, oldest first.
func (s *Store) EventMoves(ctx context.Context, eventID string) ([]models.MoveRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, event_id, event_name, from_stage, from_index, to_stage, to_index, outcome, actor, message, created_at
        FROM board_moves WHERE event_id = ? ORDER BY created_at ASC, rowid ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event moves: %w", err)
	}
	defer rows.Close()

	return scanMoves(rows)
}

func scanMoves(rows *sql.Rows) ([]models.MoveRecord, error) {
	moves := []models.MoveRecord{}
	for rows.Next() {
		var (
			m        models.MoveRecord
			from, to string
		)
		if err := rows.Scan(&m.ID, &m.EventID, &m.EventName, &from, &m.FromIndex, &to, &m.ToIndex, &m.Outcome, &m.Actor, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		m.FromStage = models.StageID(from)
		m.ToStage = models.StageID(to)
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
