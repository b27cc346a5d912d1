// Package store persists scripted run logs to SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/cxd309/linkage-engine/internal/engine"
	"github.com/cxd309/linkage-engine/internal/kinematics"
)

// ErrNotFound is returned when no run has the requested session ID.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	session_id  TEXT PRIMARY KEY,
	run_time    DOUBLE NOT NULL,
	framerate   INTEGER NOT NULL DEFAULT 0,
	oa          DOUBLE NOT NULL,
	ab          DOUBLE NOT NULL,
	am_per_ab   DOUBLE NOT NULL,
	path        BLOB
);
CREATE TABLE IF NOT EXISTS frames (
	session_id  TEXT NOT NULL REFERENCES runs(session_id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	timestamp   DOUBLE NOT NULL,
	event       TEXT NOT NULL,
	row         BLOB NOT NULL,
	PRIMARY KEY (session_id, seq)
);`

// Store wraps a SQLite database holding runs and their frames.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun writes log in a single transaction, replacing any run with the same
// session ID.
func (s *Store) SaveRun(ctx context.Context, log engine.RunLog) (retErr error) {
	path, err := json.Marshal(log.Path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	id := log.Meta.SessionID
	if _, err := tx.ExecContext(ctx, `DELETE FROM frames WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear frames: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs (session_id, run_time, framerate, oa, ab, am_per_ab, path)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, log.Meta.RunTime, log.Meta.Framerate, log.Linkage.OA, log.Linkage.AB, log.Linkage.AMPerAB, path); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO frames (session_id, seq, timestamp, event, row) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare frames: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for i, row := range log.Output {
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode frame %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, row.Timestamp, string(row.Event), payload); err != nil {
			return fmt.Errorf("insert frame %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRun reads back the run stored under sessionID.
func (s *Store) LoadRun(ctx context.Context, sessionID string) (engine.RunLog, error) {
	var (
		log  engine.RunLog
		path []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, run_time, framerate, oa, ab, am_per_ab, path FROM runs WHERE session_id = ?`, sessionID).
		Scan(&log.Meta.SessionID, &log.Meta.RunTime, &log.Meta.Framerate, &log.Linkage.OA, &log.Linkage.AB, &log.Linkage.AMPerAB, &path)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.RunLog{}, fmt.Errorf("%w: %q", ErrNotFound, sessionID)
	}
	if err != nil {
		return engine.RunLog{}, fmt.Errorf("select run: %w", err)
	}
	if len(path) > 0 {
		var p []*kinematics.Point
		if err := json.Unmarshal(path, &p); err != nil {
			return engine.RunLog{}, fmt.Errorf("decode path: %w", err)
		}
		log.Path = p
	}

	rows, err := s.db.QueryContext(ctx, `SELECT row FROM frames WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return engine.RunLog{}, fmt.Errorf("select frames: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return engine.RunLog{}, fmt.Errorf("scan: %w", err)
		}
		var row engine.FrameLogRow
		if err := json.Unmarshal(payload, &row); err != nil {
			return engine.RunLog{}, fmt.Errorf("decode frame: %w", err)
		}
		log.Output = append(log.Output, row)
	}
	if err := rows.Err(); err != nil {
		return engine.RunLog{}, fmt.Errorf("iterate frames: %w", err)
	}
	return log, nil
}

// RunIDs lists stored session IDs in the order they were last saved. Saving a
// run again moves it to the end, since the replace reinserts its row.
func (s *Store) RunIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM runs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
