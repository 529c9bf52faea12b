// Package listview defines the callbacks a sectioned list display asks its
// data source for.
package listview

import "fmt"

// IndexPath addresses a row within a section
type IndexPath struct {
	Section int
	Row     int
}

func (p IndexPath) String() string {
	return fmt.Sprintf("%d:%d", p.Section, p.Row)
}

// Cell is the rendered content of one row
type Cell struct {
	Title  string
	Detail string
}

// DataSource supplies a list display with sections and rows
type DataSource interface {
	NumberOfSections() int
	TitleForSection(section int) string
	RowsInSection(section int) int
	CellForRow(path IndexPath) Cell
}

// SearchHandler is asked whether the results need reloading when the
// search text changes
type SearchHandler interface {
	ShouldReloadForSearch(text string) bool
}

// Delegate receives optional list events
type Delegate interface {
	RowSelected(path IndexPath)
	WillBeginSearch()
	DidEndSearch()
}

// BaseDelegate implements Delegate with no-ops. Embed it and override
// what is needed.
type BaseDelegate struct{}

func (BaseDelegate) RowSelected(IndexPath) {}
func (BaseDelegate) WillBeginSearch() {}
func (BaseDelegate) DidEndSearch() {}
