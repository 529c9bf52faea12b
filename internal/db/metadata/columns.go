package metadata

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"github.com/rebeliceyang/lazytable/internal/db"
	"github.com/rebeliceyang/lazytable/internal/schema"
)

// Column describes one column of a table
type Column struct {
	Name       string
	DataType   string
	Nullable   bool
	PrimaryKey bool
}

// Columns retrieves column metadata for a table in declaration order
func Columns(ctx context.Context, exec db.Executor, dialect db.Dialect, table string) ([]Column, error) {
	var (
		query string
		args  []any
	)
	switch dialect {
	case db.SQLite:
		query = `
			SELECT name, type AS data_type, "notnull" = 0 AS nullable, pk > 0 AS primary_key
			FROM pragma_table_info(?)
			ORDER BY cid
		`
		args = []any{table}
	case db.Postgres:
		schemaName, name := splitName(table)
		query = `
			SELECT
				c.column_name AS name,
				c.data_type,
				c.is_nullable = 'YES' AS nullable,
				EXISTS (
					SELECT 1
					FROM information_schema.table_constraints tc
					JOIN information_schema.key_column_usage k
						ON k.constraint_name = tc.constraint_name
						AND k.table_schema = tc.table_schema
						AND k.table_name = tc.table_name
					WHERE tc.constraint_type = 'PRIMARY KEY'
						AND tc.table_schema = c.table_schema
						AND tc.table_name = c.table_name
						AND k.column_name = c.column_name
				) AS primary_key
			FROM information_schema.columns c
			WHERE c.table_schema = ? AND c.table_name = ?
			ORDER BY c.ordinal_position
		`
		args = []any{schemaName, name}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	rows, err := exec.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table %q not found or has no columns", table)
	}

	columns := make([]Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, Column{
			Name:       cast.ToString(row["name"]),
			DataType:   cast.ToString(row["data_type"]),
			Nullable:   cast.ToBool(row["nullable"]),
			PrimaryKey: cast.ToBool(row["primary_key"]),
		})
	}

	return columns, nil
}

// Schema builds the search schema of table from its columns. Primary-key
// columns are left out of searches.
func Schema(ctx context.Context, exec db.Executor, dialect db.Dialect, table string) (*schema.Schema, []Column, error) {
	columns, err := Columns(ctx, exec, dialect, table)
	if err != nil {
		return nil, nil, err
	}

	fields := make([]schema.Field, 0, len(columns))
	for _, col := range columns {
		fields = append(fields, schema.Field{
			Name:       col.Name,
			Kind:       schema.KindFromSQLType(col.DataType),
			PrimaryKey: col.PrimaryKey,
		})
	}

	return schema.New(table, fields), columns, nil
}
