// Package metadata reads table and column catalogs from PostgreSQL and
// SQLite.
package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/rebeliceyang/lazytable/internal/db"
)

// Table represents a browsable table
type Table struct {
	Schema string
	Name   string
	Size   string
}

// QualifiedName returns schema.name, or name when there is no schema
func (t Table) QualifiedName() string {
	if t.Schema == "" || t.Schema == "public" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Tables lists the user tables reachable through exec
func Tables(ctx context.Context, exec db.Executor, dialect db.Dialect) ([]Table, error) {
	var query string
	switch dialect {
	case db.SQLite:
		query = `
			SELECT '' AS schema, name, '' AS size
			FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name
		`
	case db.Postgres:
		query = `
			SELECT
				schemaname AS schema,
				tablename AS name,
				pg_catalog.pg_size_pretty(pg_catalog.pg_total_relation_size(quote_ident(schemaname)||'.'||quote_ident(tablename))) AS size
			FROM pg_catalog.pg_tables
			WHERE schemaname NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
			ORDER BY schemaname, tablename
		`
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	rows, err := exec.QueryRows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, Table{
			Schema: cast.ToString(row["schema"]),
			Name:   cast.ToString(row["name"]),
			Size:   cast.ToString(row["size"]),
		})
	}

	return tables, nil
}

// splitName splits "schema.table" for Postgres lookups
func splitName(name string) (schemaName, table string) {
	if i := strings.IndexByte(name, '.'); i != -1 {
		return name[:i], name[i+1:]
	}
	return "public", name
}
