package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the state directory.
const FileName = "history.db"

// Outcome values stored per run.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Entry is one recorded pipeline run.
type Entry struct {
	ID           int64         `json:"id"`
	RequestID    string        `json:"request_id"`
	Name         string        `json:"name"`
	InputPath    string        `json:"input_path"`
	Format       string        `json:"format"`
	Recognizer   string        `json:"recognizer"`
	CueCount     int           `json:"cue_count"`
	Duration     float64       `json:"duration_seconds"`
	Outcome      string        `json:"outcome"`
	FailedStage  string        `json:"failed_stage,omitempty"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Delivered    bool          `json:"delivered"`
	StartedAt    time.Time     `json:"started_at"`
	Elapsed      time.Duration `json:"elapsed_ns"`
}

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// timestampLayout is fixed width so started_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open opens (creating when needed) the history database in stateDir.
func Open(stateDir string) (*Store, error) {
	stateDir = strings.TrimSpace(stateDir)
	if stateDir == "" {
		return nil, errors.New("history: state directory required")
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	dbPath := filepath.Join(stateDir, FileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts e and returns its row id. A zero StartedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeSucceeded
	}
	var id int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (
                request_id, name, input_path, format, recognizer, cue_count,
                duration_seconds, outcome, failed_stage, error_kind, error_message,
                delivered, started_at, elapsed_ms
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.RequestID, e.Name, e.InputPath, e.Format, e.Recognizer, e.CueCount,
			e.Duration, e.Outcome, e.FailedStage, e.ErrorKind, e.ErrorMessage,
			boolToInt(e.Delivered), e.StartedAt.UTC().Format(timestampLayout), e.Elapsed.Milliseconds(),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first. limit <= 0 means 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, name, input_path, format, recognizer, cue_count,
                duration_seconds, outcome, failed_stage, error_kind, error_message,
                delivered, started_at, elapsed_ms
           FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			delivered int
			started   string
			elapsedMS int64
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Name, &e.InputPath, &e.Format, &e.Recognizer, &e.CueCount,
			&e.Duration, &e.Outcome, &e.FailedStage, &e.ErrorKind, &e.ErrorMessage,
			&delivered, &started, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.Delivered = delivered != 0
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			e.StartedAt = ts
		}
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
