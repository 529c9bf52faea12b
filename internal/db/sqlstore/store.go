// Package sqlstore runs table queries against a database/sql handle,
// by default a SQLite database opened through mattn/go-sqlite3.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/lazytable/internal/db"
)

// Store executes queries on a *sql.DB
type Store struct {
	DB     *sql.DB
	Logger *slog.Logger
	owned  bool
}

// Open opens the SQLite database at path. The returned store owns the
// handle and closes it on Close.
func Open(path string) (*Store, error) {
	handle, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := handle.Ping(); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return &Store{DB: handle, owned: true}, nil
}

// New wraps an existing handle. Close does not close it.
func New(handle *sql.DB) *Store {
	return &Store{DB: handle}
}

// Close closes the database handle if the store opened it
func (s *Store) Close() error {
	if s.DB != nil && s.owned {
		if s.Logger != nil {
			s.Logger.Debug("closing database connection")
		}
		return s.DB.Close()
	}
	return nil
}

// Exec executes a statement that doesn't return rows
func (s *Store) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute SQL: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// QueryScalar returns the first column of the first row
func (s *Store) QueryScalar(ctx context.Context, query string, args ...any) (any, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating rows: %w", err)
		}
		return nil, db.ErrNoRows
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	if len(values) == 0 {
		return nil, db.ErrNoRows
	}
	return values[0], nil
}

// QueryRows returns every row of the query keyed by column name
func (s *Store) QueryRows(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}
