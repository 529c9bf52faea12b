package table

import (
	"context"
	"log/slog"

	"github.com/rebeliceyang/lazytable/internal/listview"
)

// ModelFactory creates the models a controller browses and searches
type ModelFactory[T any] func() (*Model[T], error)

// CellFunc renders a record as a list cell
type CellFunc[T any] func(item T) listview.Cell

// Controller serves a list display from a browse model, switching to a
// second model while a search is active.
//
// List callbacks cannot return errors. A failing callback logs the error,
// keeps it for Err and answers as if there were no items.
type Controller[T any] struct {
	listview.BaseDelegate

	factory ModelFactory[T]
	cell    CellFunc[T]
	logger  *slog.Logger

	// ctx is the context of the display loop, captured on Activate
	ctx context.Context

	model       *Model[T]
	searchModel *Model[T]
	searching   bool
	activated   bool
	err         error
}

// NewController creates a controller. factory is used on Activate for
// every model that was not assigned explicitly.
func NewController[T any](factory ModelFactory[T], cell CellFunc[T], logger *slog.Logger) *Controller[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller[T]{
		factory: factory,
		cell:    cell,
		logger:  logger,
		ctx:     context.Background(),
	}
}

// SetModel assigns the browse model. It fails once the controller is active.
func (c *Controller[T]) SetModel(m *Model[T]) error {
	if c.activated {
		return ErrActivated
	}
	c.model = m
	return nil
}

// SetSearchModel assigns the search model. It fails once the controller is
// active.
func (c *Controller[T]) SetSearchModel(m *Model[T]) error {
	if c.activated {
		return ErrActivated
	}
	c.searchModel = m
	return nil
}

// Model returns the browse model
func (c *Controller[T]) Model() *Model[T] { return c.model }

// SearchModel returns the search model
func (c *Controller[T]) SearchModel() *Model[T] { return c.searchModel }

// Activate creates the missing models. Calling it again is a no-op.
func (c *Controller[T]) Activate(ctx context.Context) error {
	if c.activated {
		return nil
	}
	if ctx != nil {
		c.ctx = ctx
	}

	if c.model == nil {
		m, err := c.factory()
		if err != nil {
			return err
		}
		c.model = m
	}
	if c.searchModel == nil {
		m, err := c.factory()
		if err != nil {
			return err
		}
		c.searchModel = m
	}

	c.activated = true
	return nil
}

// Searching reports whether the search model is being displayed
func (c *Controller[T]) Searching() bool { return c.searching }

// WillBeginSearch switches the display to the search model
func (c *Controller[T]) WillBeginSearch() {
	c.searching = true
}

// DidEndSearch switches the display back to the browse model
func (c *Controller[T]) DidEndSearch() {
	c.searching = false
}

// Current returns the model being displayed
func (c *Controller[T]) Current() *Model[T] {
	if c.searching {
		return c.searchModel
	}
	return c.model
}

// Err returns the last error a callback ran into
func (c *Controller[T]) Err() error { return c.err }

func (c *Controller[T]) fail(op string, err error) {
	c.err = err
	c.logger.Error("list callback failed", "op", op, "error", err)
}

// NumberOfSections implements listview.DataSource
func (c *Controller[T]) NumberOfSections() int {
	m := c.Current()
	if m == nil {
		return 0
	}
	n, err := m.SectionCount(c.ctx)
	if err != nil {
		c.fail("sections", err)
		return 0
	}
	return n
}

// TitleForSection implements listview.DataSource
func (c *Controller[T]) TitleForSection(section int) string {
	m := c.Current()
	if m == nil {
		return ""
	}
	titles, err := m.SectionTitles(c.ctx)
	if err != nil {
		c.fail("section titles", err)
		return ""
	}
	if section < 0 || section >= len(titles) {
		return ""
	}
	return titles[section]
}

// RowsInSection implements listview.DataSource
func (c *Controller[T]) RowsInSection(section int) int {
	m := c.Current()
	if m == nil {
		return 0
	}
	n, err := m.RowCount(c.ctx, section)
	if err != nil {
		c.fail("row count", err)
		return 0
	}
	return n
}

// CellForRow implements listview.DataSource
func (c *Controller[T]) CellForRow(path listview.IndexPath) listview.Cell {
	item, ok := c.Item(path)
	if !ok {
		return listview.Cell{}
	}
	return c.cell(item)
}

// Item returns the record displayed at path
func (c *Controller[T]) Item(path listview.IndexPath) (T, bool) {
	var zero T
	m := c.Current()
	if m == nil {
		return zero, false
	}
	item, ok, err := m.ItemAt(c.ctx, path.Section, path.Row)
	if err != nil {
		c.fail("item", err)
		return zero, false
	}
	return item, ok
}

// ShouldReloadForSearch hands text to the search model. The results always
// need reloading.
func (c *Controller[T]) ShouldReloadForSearch(text string) bool {
	if c.searchModel != nil {
		c.searchModel.SetSearchText(text)
	}
	return true
}

// ReloadData reloads both models
func (c *Controller[T]) ReloadData() {
	if c.model != nil {
		c.model.Reload()
	}
	if c.searchModel != nil {
		c.searchModel.Reload()
	}
	c.err = nil
}

// HandleMemoryWarning drops the record windows of both models
func (c *Controller[T]) HandleMemoryWarning() {
	if c.model != nil {
		c.model.ClearCache()
	}
	if c.searchModel != nil {
		c.searchModel.ClearCache()
	}
}

// PathForItem returns the first of the visible paths showing item
func (c *Controller[T]) PathForItem(visible []listview.IndexPath, item T, eq func(a, b T) bool) (listview.IndexPath, bool) {
	for _, path := range visible {
		other, ok := c.Item(path)
		if ok && eq(item, other) {
			return path, true
		}
	}
	return listview.IndexPath{}, false
}

// Close tears both models down
func (c *Controller[T]) Close() error {
	var firstErr error
	for _, m := range []*Model[T]{c.model, c.searchModel} {
		if m == nil {
			continue
		}
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.model = nil
	c.searchModel = nil
	return firstErr
}
