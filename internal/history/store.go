// Package history keeps a SQLite log of the queries the table model runs.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/lazytable/internal/db"
	"github.com/rebeliceyang/lazytable/internal/search"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one logged query
type Entry struct {
	ID             int64
	SessionID      string
	ConnectionName string
	Query          string
	Args           string
	ExecutedAt     time.Time
	Duration       time.Duration
	Rows           int
	Success        bool
	ErrorMessage   string
}

// Store manages query history persistence
type Store struct {
	db             *sql.DB
	sessionID      string
	connectionName string
	logger         *slog.Logger
	now            func() time.Time
}

// NewStore opens the history database at path, creating the schema when
// needed. connectionName and a fresh session ID tag every recorded entry.
func NewStore(path, connectionName string, logger *slog.Logger) (*Store, error) {
	handle, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// a single connection keeps in-memory databases alive
	handle.SetMaxOpenConns(1)

	if _, err := handle.Exec(schemaSQL); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Store{db: handle, sessionID: uuid.NewString(), connectionName: connectionName, logger: logger, now: time.Now}, nil
}

// SessionID identifies the entries recorded by this store
func (s *Store) SessionID() string { return s.sessionID }

// Add adds a new query to history
func (s *Store) Add(ctx context.Context, entry Entry) error {
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_history
		(session_id, connection_name, query, args, executed_at, duration_us, rows_returned, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.ConnectionName,
		entry.Query,
		entry.Args,
		entry.ExecutedAt.UnixMilli(),
		entry.Duration.Microseconds(),
		entry.Rows,
		entry.Success,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}
	return nil
}

// Record implements db.Recorder. Failures are logged, never returned, so
// a broken history database cannot break browsing.
func (s *Store) Record(rec db.QueryRecord) {
	entry := Entry{
		SessionID:      s.sessionID,
		ConnectionName: s.connectionName,
		Query:          rec.Query,
		Duration:       rec.Duration,
		Rows:           rec.Rows,
		Success:        rec.Err == nil,
	}
	if len(rec.Args) > 0 {
		entry.Args = fmt.Sprint(rec.Args)
	}
	if rec.Err != nil {
		entry.ErrorMessage = rec.Err.Error()
	}

	if err := s.Add(context.Background(), entry); err != nil {
		s.logger.Warn("failed to record query", "error", err)
	}
}

const selectEntries = `
	SELECT id, session_id, connection_name, query, args, executed_at,
	       duration_us, rows_returned, success, error_message
	FROM query_history`

// Recent retrieves the most recent entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, selectEntries+" ORDER BY executed_at DESC, id DESC LIMIT ?", limit)
}

// Search retrieves the entries whose query contains text, newest first.
// LIKE wildcards in text match literally.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]Entry, error) {
	where, args := search.NewWhere(search.NewLike("query", text)).Render()
	args = append(args, limit)
	return s.query(ctx, selectEntries+" "+where+" ORDER BY executed_at DESC, id DESC LIMIT ?", args...)
}

// Prune deletes all but the newest keep entries and returns how many were
// deleted
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM query_history
		WHERE id NOT IN (
			SELECT id FROM query_history ORDER BY executed_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var executedAt, durationUs int64

		err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.ConnectionName,
			&e.Query,
			&e.Args,
			&executedAt,
			&durationUs,
			&e.Rows,
			&e.Success,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		e.Duration = time.Duration(durationUs) * time.Microsecond
		e.ExecutedAt = time.UnixMilli(executedAt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
