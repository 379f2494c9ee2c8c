package repository

import (
	"CoverBot/bot/journey"
	"CoverBot/internal/lib/sl"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite stores journey states as JSON documents in a single table.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer at a time avoids SQLITE_BUSY on concurrent upserts
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLite{db: db, log: logger.With(sl.Module("sqlite"))}
	if err = s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS journeys (
		product TEXT NOT NULL,
		id TEXT NOT NULL,
		current_step TEXT NOT NULL,
		status TEXT NOT NULL,
		state_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (product, id)
	);
	CREATE INDEX IF NOT EXISTS idx_journeys_updated ON journeys(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save upserts a journey state by {product, id}.
func (s *SQLite) Save(ctx context.Context, state *journey.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	query := `
	INSERT INTO journeys (product, id, current_step, status, state_json, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(product, id) DO UPDATE SET
		current_step = excluded.current_step,
		status = excluded.status,
		state_json = excluded.state_json,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		state.Product, state.ID, string(state.CurrentStep), string(state.Status),
		string(raw), state.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert journey: %w", err)
	}
	return nil
}

// Load returns nil without an error when the journey does not exist.
func (s *SQLite) Load(ctx context.Context, product, id string) (*journey.State, error) {
	row := s.db.QueryRowContext(ctx, `SELECT state_json FROM journeys WHERE product = ? AND id = ?`, product, id)

	var raw string
	err := row.Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan journey row: %w", err)
	}

	var state journey.State
	if err = json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if state.Data == nil {
		state.Data = make(map[string]any)
	}
	return &state, nil
}

func (s *SQLite) Delete(ctx context.Context, product, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM journeys WHERE product = ? AND id = ?`, product, id)
	if err != nil {
		return fmt.Errorf("delete journey: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		s.log.Debug("delete affected 0 rows", slog.String("product", product), slog.String("id", id))
	}
	return nil
}
