// Package db defines the command execution contract the table model runs
// its queries through, and helpers shared by the concrete drivers.
package db

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrNoRows is returned by QueryScalar when the query produced no row
var ErrNoRows = errors.New("no rows returned")

// Executor runs parameterized queries written with ? placeholders
type Executor interface {
	// QueryScalar returns the first column of the first row
	QueryScalar(ctx context.Context, query string, args ...any) (any, error)
	// QueryRows returns every row keyed by column name
	QueryRows(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}

// Dialect names the SQL flavour behind an executor
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// QueryRecord describes one executed query
type QueryRecord struct {
	Query    string
	Args     []any
	Rows     int
	Duration time.Duration
	Err      error
}

// Recorder receives a QueryRecord for every query run through a traced executor
type Recorder interface {
	Record(rec QueryRecord)
}

// RecorderFunc adapts a function to Recorder
type RecorderFunc func(rec QueryRecord)

func (f RecorderFunc) Record(rec QueryRecord) { f(rec) }

type traced struct {
	next     Executor
	recorder Recorder
	logger   *slog.Logger
}

// Traced wraps next so that every query is timed, logged and handed to
// recorder. Either recorder or logger may be nil.
func Traced(next Executor, recorder Recorder, logger *slog.Logger) Executor {
	return &traced{next: next, recorder: recorder, logger: logger}
}

func (t *traced) QueryScalar(ctx context.Context, query string, args ...any) (any, error) {
	start := time.Now()
	v, err := t.next.QueryScalar(ctx, query, args...)
	rows := 0
	if err == nil {
		rows = 1
	}
	t.record(QueryRecord{Query: query, Args: args, Rows: rows, Duration: time.Since(start), Err: err})
	return v, err
}

func (t *traced) QueryRows(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	start := time.Now()
	rows, err := t.next.QueryRows(ctx, query, args...)
	t.record(QueryRecord{Query: query, Args: args, Rows: len(rows), Duration: time.Since(start), Err: err})
	return rows, err
}

func (t *traced) record(rec QueryRecord) {
	if t.logger != nil {
		if rec.Err != nil {
			t.logger.Warn("query failed", "query", rec.Query, "error", rec.Err)
		} else {
			t.logger.Debug("query", "query", rec.Query, "rows", rec.Rows, "duration", rec.Duration)
		}
	}
	if t.recorder != nil {
		t.recorder.Record(rec)
	}
}
