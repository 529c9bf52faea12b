package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/db"
	"github.com/rebeliceyang/lazytable/internal/db/connection"
	"github.com/rebeliceyang/lazytable/internal/db/metadata"
	"github.com/rebeliceyang/lazytable/internal/history"
	"github.com/rebeliceyang/lazytable/internal/listview"
	"github.com/rebeliceyang/lazytable/internal/schema"
	"github.com/rebeliceyang/lazytable/internal/table"
)

// session is an open connection plus everything needed to page one table
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	manager *connection.Manager
	conn    *connection.Connection
	history *history.Store

	// exec is the traced executor models run through
	exec db.Executor
}

// openSession connects to the configured database. Query history is
// recorded when enabled; a history failure is logged, not fatal.
func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*session, error) {
	connCfg, err := cfg.Connection()
	if err != nil {
		return nil, err
	}
	if (connCfg.Driver == "sqlite3" || connCfg.Driver == "sqlite") && connCfg.Path == "" {
		return nil, fmt.Errorf("no database given; use --db or database.path")
	}

	manager := connection.NewManager()
	conn, err := manager.Connect(ctx, connCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	s := &session{cfg: cfg, logger: logger, manager: manager, conn: conn}

	var recorder db.Recorder
	if cfg.History.Enabled {
		if store, err := openHistory(cfg, conn.ID, logger); err != nil {
			logger.Warn("query history disabled", "error", err)
		} else {
			s.history = store
			recorder = store
		}
	}
	s.exec = db.Traced(conn.Executor, recorder, logger)

	return s, nil
}

func openHistory(cfg *config.Config, connectionName string, logger *slog.Logger) (*history.Store, error) {
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.NewStore(path, connectionName, logger)
}

func (s *session) close() {
	if s.history != nil {
		if s.cfg.History.MaxEntries > 0 {
			if _, err := s.history.Prune(context.Background(), s.cfg.History.MaxEntries); err != nil {
				s.logger.Warn("failed to prune history", "error", err)
			}
		}
		_ = s.history.Close()
	}
	_ = s.manager.CloseAll()
}

// tableInfo is the resolved description of the configured table
type tableInfo struct {
	name    string
	schema  *schema.Schema
	columns []metadata.Column
	orderBy []table.OrderBy
}

func (s *session) resolveTable(ctx context.Context) (*tableInfo, error) {
	name := s.cfg.Table.Name
	if name == "" {
		return nil, fmt.Errorf("no table given; use --table or run 'lazytable tables'")
	}

	sch, columns, err := metadata.Schema(ctx, s.exec, s.conn.Dialect, name)
	if err != nil {
		return nil, err
	}
	if len(s.cfg.Table.Aliases) > 0 {
		sch = sch.WithAliases(s.cfg.Table.Aliases)
	}

	var orderBy []table.OrderBy
	for _, entry := range s.cfg.Table.OrderBy {
		o, err := table.ParseOrderBy(entry)
		if err != nil {
			return nil, err
		}
		orderBy = append(orderBy, o)
	}
	if len(orderBy) == 0 {
		// page by primary key so OFFSET paging is stable
		for _, col := range columns {
			if col.PrimaryKey {
				orderBy = append(orderBy, table.Asc(col.Name))
			}
		}
	}

	return &tableInfo{name: name, schema: sch, columns: columns, orderBy: orderBy}, nil
}

func (t *tableInfo) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// newModel creates a row model over the table
func (s *session) newModel(info *tableInfo) (*table.Model[table.Row], error) {
	return table.NewModel[table.Row](s.exec, info.schema, s.cfg.Table.PageSize,
		table.WithOrderBy(info.orderBy...),
		table.WithSectionExpression(s.cfg.Table.Section),
		table.WithLogger(s.logger),
	)
}

// cellFunc renders a row with the first text column as title and the
// remaining columns as detail
func cellFunc(info *tableInfo) table.CellFunc[table.Row] {
	columns := info.columnNames()
	title := ""
	if strs := info.schema.FieldsOfKind(schema.KindString); len(strs) > 0 {
		title = strs[0]
	} else if len(columns) > 0 {
		title = columns[0]
	}

	return func(row table.Row) listview.Cell {
		details := make([]string, 0, len(columns))
		for _, col := range columns {
			if col == title {
				continue
			}
			details = append(details, row.String(col))
		}
		return listview.Cell{Title: row.String(title), Detail: strings.Join(details, " · ")}
	}
}
