package table

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazytable/internal/search"
)

// titleColumn is the result column of the section titles query
const titleColumn = "section_title"

// sectionDirection returns the direction of the ordering entry naming the
// section expression, ascending when there is none
func (m *Model[T]) sectionDirection() Direction {
	for _, e := range m.ordering.entries {
		if e.Field == m.sectionExpr {
			return e.Direction
		}
	}
	return Ascending
}

// orderClause renders the fetch ordering. Rows must be grouped by section
// for linear indexes to line up with section/row pairs, so the section
// expression always sorts first.
func (m *Model[T]) orderClause() string {
	if m.sectionExpr == "" {
		return m.ordering.String()
	}

	parts := make([]string, 0, m.ordering.Len()+1)
	first := search.QuoteIdent(m.sectionExpr)
	if m.sectionDirection() == Descending {
		first += " DESC"
	}
	parts = append(parts, first)

	for _, e := range m.ordering.entries {
		if e.Field == m.sectionExpr {
			continue
		}
		parts = append(parts, e.String())
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// from renders FROM "table" followed by where when it is not empty
func (m *Model[T]) from(text []byte, args []any, where *search.Where) ([]byte, []any) {
	text = append(text, " FROM "...)
	text = append(text, search.QuoteIdent(m.table)...)
	if !where.IsEmpty() {
		text = append(text, ' ')
		text, args = where.AppendExpr(text, args)
	}
	return text, args
}

// baseQuery builds the SELECT shared by every page fetch. It is cached
// until the next reload.
func (m *Model[T]) baseQuery() (string, []any) {
	if m.queryBuilt {
		return m.query, m.queryArgs
	}

	text, args := m.from([]byte("SELECT *"), nil, m.search)
	if order := m.orderClause(); order != "" {
		text = append(text, ' ')
		text = append(text, order...)
	}

	m.query = string(text)
	m.queryArgs = args
	m.queryBuilt = true
	return m.query, m.queryArgs
}

func (m *Model[T]) pageQuery(limit, offset int) (string, []any) {
	base, args := m.baseQuery()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", base, limit, offset), args
}

// sectionCountQuery counts the distinct section values. NULL forms a
// section of its own, as it does in the titles query, which COUNT(DISTINCT)
// would skip.
func (m *Model[T]) sectionCountQuery() (string, []any) {
	text := []byte("SELECT COUNT(*) FROM (SELECT DISTINCT " + search.QuoteIdent(m.sectionExpr))
	text, args := m.from(text, nil, m.search)
	text = append(text, ") AS sections"...)
	return string(text), args
}

func (m *Model[T]) sectionTitlesQuery() (string, []any) {
	text := []byte("SELECT DISTINCT " + search.QuoteIdent(m.sectionExpr) + " AS " + titleColumn)
	text, args := m.from(text, nil, m.search)
	text = append(text, " ORDER BY "+titleColumn...)
	if m.sectionDirection() == Descending {
		text = append(text, " DESC"...)
	}
	return string(text), args
}

func (m *Model[T]) rowCountQuery(where *search.Where) (string, []any) {
	text, args := m.from([]byte("SELECT COUNT(*)"), nil, where)
	return string(text), args
}
