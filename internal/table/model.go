// Package table presents a SQL table as a sectioned list that is paged in
// on demand. Only a window of about two pages of records is held in memory.
package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cast"

	"github.com/rebeliceyang/lazytable/internal/db"
	"github.com/rebeliceyang/lazytable/internal/schema"
	"github.com/rebeliceyang/lazytable/internal/search"
)

var (
	// ErrInvalidPageSize is returned when a model is created with a page size below 1
	ErrInvalidPageSize = errors.New("page size must be positive")
	// ErrActivated is returned when a controller setting is changed after activation
	ErrActivated = errors.New("controller already activated")
)

type options struct {
	orderBy     []OrderBy
	sectionExpr string
	tableName   string
	logger      *slog.Logger
}

// Option configures a Model
type Option func(*options)

// WithOrderBy sets the initial ordering
func WithOrderBy(entries ...OrderBy) Option {
	return func(o *options) { o.orderBy = append(o.orderBy, entries...) }
}

// WithSectionExpression groups rows into sections by the distinct values of expr
func WithSectionExpression(expr string) Option {
	return func(o *options) { o.sectionExpr = expr }
}

// WithTableName overrides the table named by the schema
func WithTableName(name string) Option {
	return func(o *options) { o.tableName = name }
}

// WithLogger sets the logger used for fetch diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Model maps linear indexes and section/row pairs of a table onto lazily
// fetched pages. It is not safe for concurrent use.
//
// The model borrows its executor and never closes it.
type Model[T any] struct {
	exec     db.Executor
	schema   *schema.Schema
	table    string
	pageSize int
	logger   *slog.Logger
	decode   Decoder[T]

	ordering    *Ordering
	sectionExpr string
	search      *search.Where
	searchText  string

	// record window
	cache  []T
	offset int

	sections    int
	rows        []int
	titles      []string
	titleValues []search.Value
	count       int

	query      string
	queryArgs  []any
	queryBuilt bool
}

// NewModel creates a model over the table described by s
func NewModel[T any](exec db.Executor, s *schema.Schema, pageSize int, opts ...Option) (*Model[T], error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	if exec == nil {
		return nil, fmt.Errorf("table model requires an executor")
	}
	if s == nil {
		return nil, fmt.Errorf("table model requires a schema")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	name := s.Table()
	if o.tableName != "" {
		name = o.tableName
	}
	if name == "" {
		return nil, fmt.Errorf("table model requires a table name")
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Model[T]{
		exec:        exec,
		schema:      s,
		table:       name,
		pageSize:    pageSize,
		logger:      logger,
		decode:      DefaultDecoder[T](),
		sectionExpr: o.sectionExpr,
		ordering:    NewOrdering(o.orderBy...),
	}
	m.ordering.onChange = m.Reload
	m.Reload()

	return m, nil
}

// TableName returns the name of the backing table
func (m *Model[T]) TableName() string { return m.table }

// Schema returns the field map used for search parsing
func (m *Model[T]) Schema() *schema.Schema { return m.schema }

// PageSize returns the number of records fetched per page
func (m *Model[T]) PageSize() int { return m.pageSize }

// Ordering returns the ordering of the model. Mutating it reloads the model.
func (m *Model[T]) Ordering() *Ordering { return m.ordering }

// SectionExpression returns the grouping expression, or "" for a flat list
func (m *Model[T]) SectionExpression() string { return m.sectionExpr }

// SetSectionExpression changes the grouping expression and reloads
func (m *Model[T]) SetSectionExpression(expr string) {
	if expr == m.sectionExpr {
		return
	}
	m.sectionExpr = expr
	m.Reload()
}

// Search returns the current search predicate
func (m *Model[T]) Search() *search.Where { return m.search }

// SetSearch replaces the search predicate and reloads. It forgets the
// search text, which no longer describes the predicate.
func (m *Model[T]) SetSearch(where *search.Where) {
	m.searchText = ""
	if where == m.search {
		return
	}
	m.search = where
	m.Reload()
}

// SearchText returns the text the current search predicate was parsed from
func (m *Model[T]) SearchText() string { return m.searchText }

// SetSearchText parses text into the search predicate
func (m *Model[T]) SetSearchText(text string) {
	if text == m.searchText {
		return
	}
	m.SetSearch(search.Parse(text, m.schema))
	m.searchText = text
}

// SetDecoder replaces the function turning a fetched row into a record
func (m *Model[T]) SetDecoder(decode Decoder[T]) {
	m.decode = decode
	m.ClearCache()
}

// Reload drops every cached query, count and record. Call it after the
// backing table changed.
func (m *Model[T]) Reload() {
	m.query = ""
	m.queryArgs = nil
	m.queryBuilt = false
	m.cache = nil
	m.offset = 0
	m.sections = -1
	m.rows = nil
	m.titles = nil
	m.titleValues = nil
	m.count = -1

	m.logger.Debug("model reloaded", "table", m.table)
}

// ClearCache drops the record window but keeps counts and titles
func (m *Model[T]) ClearCache() {
	m.cache = nil
	m.offset = 0
}

// Close releases everything the model holds
func (m *Model[T]) Close() error {
	m.Reload()
	return nil
}

// Window returns the offset and length of the cached record window
func (m *Model[T]) Window() (offset, length int) {
	return m.offset, len(m.cache)
}

// SectionCount returns the number of sections, 1 without a section expression
func (m *Model[T]) SectionCount(ctx context.Context) (int, error) {
	if m.sections != -1 {
		return m.sections, nil
	}

	if m.sectionExpr == "" {
		m.sections = 1
		return m.sections, nil
	}

	query, args := m.sectionCountQuery()
	v, err := m.exec.QueryScalar(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count sections: %w", err)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("invalid section count %v: %w", v, err)
	}

	m.sections = n
	return n, nil
}

// SectionTitles returns the distinct values of the section expression in
// display order, or nil when the model has no sections.
func (m *Model[T]) SectionTitles(ctx context.Context) ([]string, error) {
	if m.sectionExpr == "" {
		return nil, nil
	}
	if m.titles != nil {
		return m.titles, nil
	}

	query, args := m.sectionTitlesQuery()
	rows, err := m.exec.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load section titles: %w", err)
	}

	titles := make([]string, 0, len(rows))
	values := make([]search.Value, 0, len(rows))
	for _, row := range rows {
		v := row[titleColumn]
		values = append(values, search.ValueOf(v))
		if v == nil {
			titles = append(titles, "")
		} else {
			titles = append(titles, cast.ToString(v))
		}
	}

	m.titles = titles
	m.titleValues = values
	return titles, nil
}

// RowCount returns the number of rows in section. Counts are computed the
// first time each section is asked for.
func (m *Model[T]) RowCount(ctx context.Context, section int) (int, error) {
	if m.rows == nil {
		n, err := m.SectionCount(ctx)
		if err != nil {
			return 0, err
		}
		m.rows = make([]int, n)
		for i := range m.rows {
			m.rows[i] = -1
		}
	}

	if section < 0 || section >= len(m.rows) {
		return 0, nil
	}
	if m.rows[section] != -1 {
		return m.rows[section], nil
	}

	var where *search.Where
	if m.sectionExpr != "" {
		if _, err := m.SectionTitles(ctx); err != nil {
			return 0, err
		}
		if section >= len(m.titleValues) {
			m.rows[section] = 0
			return 0, nil
		}
		and := search.NewAnd(search.NewIsExact(m.sectionExpr, m.titleValues[section]))
		if !m.search.IsEmpty() {
			and.Add(m.search.Root)
		}
		where = search.NewWhere(and)
	} else {
		where = m.search
	}

	query, args := m.rowCountQuery(where)
	v, err := m.exec.QueryScalar(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in section %d: %w", section, err)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("invalid row count %v: %w", v, err)
	}

	m.rows[section] = n
	return n, nil
}

// Count returns the total number of rows matching the current search
func (m *Model[T]) Count(ctx context.Context) (int, error) {
	if m.count != -1 {
		return m.count, nil
	}

	sections, err := m.SectionCount(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for i := 0; i < sections; i++ {
		n, err := m.RowCount(ctx, i)
		if err != nil {
			return 0, err
		}
		total += n
	}

	m.count = total
	return total, nil
}

// IndexToSectionRow maps a linear index onto its section and row. ok is
// false when index lies outside the table.
func (m *Model[T]) IndexToSectionRow(ctx context.Context, index int) (section, row int, ok bool, err error) {
	if index < 0 {
		return 0, 0, false, nil
	}

	sections, err := m.SectionCount(ctx)
	if err != nil {
		return 0, 0, false, err
	}

	start := 0
	for s := 0; s < sections; s++ {
		n, err := m.RowCount(ctx, s)
		if err != nil {
			return 0, 0, false, err
		}
		if index < start+n {
			return s, index - start, true, nil
		}
		start += n
	}

	return 0, 0, false, nil
}

// SectionRowToIndex maps a section and row onto a linear index
func (m *Model[T]) SectionRowToIndex(ctx context.Context, section, row int) (int, error) {
	index := 0
	for s := 0; s < section; s++ {
		n, err := m.RowCount(ctx, s)
		if err != nil {
			return 0, err
		}
		index += n
	}
	return index + row, nil
}

// Item returns the record at index. ok is false when there is no such
// record.
//
// Stepping one past either end of the window fetches one page in that
// direction and drops a page from the other end. Any other index outside
// the window replaces it with the two pages around index.
func (m *Model[T]) Item(ctx context.Context, index int) (item T, ok bool, err error) {
	var zero T
	if index < 0 {
		return zero, false, nil
	}

	ps := m.pageSize

	switch {
	case index == m.offset-1:
		// scrolling up
		first := max(m.offset-ps, 0)
		items, err := m.fetch(ctx, m.offset-first, first, "up")
		if err != nil {
			return zero, false, err
		}

		keep := m.cache
		if excess := len(items) + len(keep) - 2*ps; excess > 0 {
			keep = keep[:len(keep)-excess]
		}
		m.cache = append(items, keep...)
		m.offset = first

	case index == m.offset+len(m.cache):
		// scrolling down; prefill two pages at the top of the table
		limit := ps
		if index == 0 {
			limit = 2 * ps
		}
		items, err := m.fetch(ctx, limit, index, "down")
		if err != nil {
			return zero, false, err
		}

		keep := m.cache
		if len(keep) > ps {
			keep = keep[len(keep)-ps:]
		}
		next := make([]T, 0, len(keep)+len(items))
		next = append(next, keep...)
		m.cache = append(next, items...)
		m.offset = index - len(keep)

	case index < m.offset || index > m.offset+len(m.cache):
		first := (index / ps) * ps
		items, err := m.fetch(ctx, 2*ps, first, "jump")
		if err != nil {
			return zero, false, err
		}
		m.cache = items
		m.offset = first
	}

	i := index - m.offset
	if i >= 0 && i < len(m.cache) {
		return m.cache[i], true, nil
	}
	return zero, false, nil
}

// ItemAt returns the record at row of section
func (m *Model[T]) ItemAt(ctx context.Context, section, row int) (T, bool, error) {
	index, err := m.SectionRowToIndex(ctx, section, row)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return m.Item(ctx, index)
}

// IndexOf finds item by binary search. cmp must agree with the ordering
// of the model; -1 is returned when item is not found.
func (m *Model[T]) IndexOf(ctx context.Context, item T, cmp func(a, b T) int) (int, error) {
	hi, err := m.Count(ctx)
	if err != nil {
		return -1, err
	}
	lo := 0

	for lo < hi {
		index := lo + (hi-lo)/2

		var other T
		if index >= m.offset && index-m.offset < len(m.cache) {
			other = m.cache[index-m.offset]
		} else {
			items, err := m.fetch(ctx, 1, index, "lookup")
			if err != nil {
				return -1, err
			}
			if len(items) == 0 {
				break
			}
			other = items[0]
		}

		v := cmp(item, other)
		if v == 0 {
			return index, nil
		}
		if v > 0 {
			lo = index + 1
		} else {
			hi = index
		}
	}

	return -1, nil
}

// fetch loads limit records starting at offset without touching the window
func (m *Model[T]) fetch(ctx context.Context, limit, offset int, branch string) ([]T, error) {
	query, args := m.pageQuery(limit, offset)

	rows, err := m.exec.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rows %d-%d of %s: %w", offset, offset+limit, m.table, err)
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := m.decode(row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode row of %s: %w", m.table, err)
		}
		items = append(items, item)
	}

	m.logger.Debug("fetched page",
		"table", m.table,
		"branch", branch,
		"offset", offset,
		"limit", limit,
		"rows", len(items),
	)

	return items, nil
}
