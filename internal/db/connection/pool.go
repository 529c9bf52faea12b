package connection

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rebeliceyang/lazytable/internal/db"
	"github.com/rebeliceyang/lazytable/internal/models"
)

// Pool wraps pgxpool with our configuration
type Pool struct {
	pool   *pgxpool.Pool
	config models.ConnectionConfig
}

// NewPool creates a new connection pool
func NewPool(ctx context.Context, config models.ConnectionConfig) (*Pool, error) {
	connString := buildConnectionString(config)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{
		pool:   pool,
		config: config,
	}, nil
}

// Close closes the connection pool
func (p *Pool) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Ping tests the connection
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// GetPool returns the underlying pgxpool.Pool
func (p *Pool) GetPool() *pgxpool.Pool {
	return p.pool
}

// QueryRows executes a query written with ? placeholders
func (p *Pool) QueryRows(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	rows, err := p.pool.Query(ctx, Rebind(sql), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]any
	fieldDescriptions := rows.FieldDescriptions()

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]any, len(values))
		for i, fd := range fieldDescriptions {
			row[fd.Name] = values[i]
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// QueryScalar executes a query that returns a single value
func (p *Pool) QueryScalar(ctx context.Context, sql string, args ...any) (any, error) {
	rows, err := p.pool.Query(ctx, Rebind(sql), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, db.ErrNoRows
	}

	values, err := rows.Values()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, db.ErrNoRows
	}
	return values[0], nil
}

// Execute executes a statement without returning rows (INSERT, UPDATE, DELETE, CREATE, etc.)
func (p *Pool) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	result, err := p.pool.Exec(ctx, Rebind(sql), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// Rebind rewrites ? placeholders into PostgreSQL's $n form. Placeholders
// inside string literals and quoted identifiers are left alone. Postgres
// cannot bind the right side of IS, so "IS ?" becomes
// "IS NOT DISTINCT FROM $n", which has the same NULL-safe meaning.
func Rebind(query string) string {
	out := make([]byte, 0, len(query)+8)
	n := 0
	var quote byte

	for i := 0; i < len(query); i++ {
		c := query[i]

		if quote != 0 {
			out = append(out, c)
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
			out = append(out, c)
		case '?':
			n++
			if endsWithIS(out) {
				out = append(bytes.TrimRight(out, " "), " NOT DISTINCT FROM "...)
			}
			out = append(out, '$')
			out = strconv.AppendInt(out, int64(n), 10)
		default:
			out = append(out, c)
		}
	}

	return string(out)
}

func endsWithIS(b []byte) bool {
	b = bytes.TrimRight(b, " ")
	if len(b) < 2 || !bytes.EqualFold(b[len(b)-2:], []byte("is")) {
		return false
	}
	if len(b) == 2 {
		return true
	}
	prev := b[len(b)-3]
	return prev == ' ' || prev == '(' || prev == ')'
}

// buildConnectionString creates a PostgreSQL connection string
func buildConnectionString(config models.ConnectionConfig) string {
	if config.DSN != "" {
		return config.DSN
	}

	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s database=%s sslmode=%s",
		config.Host,
		config.Port,
		config.User,
		config.Database,
		sslMode,
	)

	if config.Password != "" {
		connStr += fmt.Sprintf(" password=%s", config.Password)
	}

	return connStr
}
