package table

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazytable/internal/db"
	"github.com/rebeliceyang/lazytable/internal/db/sqlstore"
	"github.com/rebeliceyang/lazytable/internal/schema"
)

type testItem struct {
	ItemID  int64  `db:"ItemId,pk"`
	Title   string `search:"title"`
	Details string `search:"details"`
}

func (testItem) TableName() string { return "Items" }

// recordingExec counts the queries run through it and can be told to fail
type recordingExec struct {
	next db.Executor

	mu      sync.Mutex
	pages   int
	scalars int
	last    string
	fail    error
}

func (r *recordingExec) QueryScalar(ctx context.Context, query string, args ...any) (any, error) {
	r.mu.Lock()
	r.scalars++
	r.last = query
	fail := r.fail
	r.mu.Unlock()

	if fail != nil {
		return nil, fail
	}
	return r.next.QueryScalar(ctx, query, args...)
}

func (r *recordingExec) QueryRows(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	r.mu.Lock()
	if strings.HasPrefix(query, "SELECT *") {
		r.pages++
	}
	r.last = query
	fail := r.fail
	r.mu.Unlock()

	if fail != nil {
		return nil, fail
	}
	return r.next.QueryRows(ctx, query, args...)
}

func (r *recordingExec) Pages() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pages
}

func (r *recordingExec) Scalars() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scalars
}

func (r *recordingExec) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *recordingExec) SetFail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

// openTestDB creates a SQLite database holding n rows in Items, titled
// "Row i" for i in [0, n), and a small Tasks table grouped by Category.
func openTestDB(t *testing.T, n int) *recordingExec {
	t.Helper()

	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "items.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	stmts := []string{
		`CREATE TABLE Items (ItemId INTEGER PRIMARY KEY, Title TEXT NOT NULL, Details TEXT NOT NULL)`,
		`CREATE TABLE Tasks (Id INTEGER PRIMARY KEY, Category TEXT, Title TEXT NOT NULL)`,
		`INSERT INTO Tasks (Category, Title) VALUES
			('home', 'Vacuum'),
			('work', 'Write report'),
			('home', 'Wash dishes'),
			('errands', 'Buy milk'),
			('work', 'Review code'),
			('home', 'Water plants'),
			(NULL, 'Someday')`,
	}
	for _, stmt := range stmts {
		_, err := store.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	if n > 0 {
		_, err = store.Exec(ctx, `WITH RECURSIVE seq(i) AS (
				SELECT 0 UNION ALL SELECT i + 1 FROM seq WHERE i + 1 < ?
			)
			INSERT INTO Items (Title, Details)
			SELECT 'Row ' || i, 'This is item #' || i FROM seq`, n)
		require.NoError(t, err)
	}

	return &recordingExec{next: store}
}

func itemSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.FromStruct[testItem]()
	require.NoError(t, err)
	return s
}

func taskSchema() *schema.Schema {
	return schema.New("Tasks", []schema.Field{
		{Name: "Id", Kind: schema.KindInt, PrimaryKey: true},
		{Name: "Category", Kind: schema.KindString, Aliases: []string{"category", "c"}},
		{Name: "Title", Kind: schema.KindString, Aliases: []string{"title"}},
	})
}
