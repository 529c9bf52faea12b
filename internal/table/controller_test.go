package table

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazytable/internal/listview"
	"github.com/rebeliceyang/lazytable/internal/testutil"
)

func newTaskController(t *testing.T) (*Controller[Row], *recordingExec) {
	t.Helper()
	exec := openTestDB(t, 0)
	factory := func() (*Model[Row], error) {
		return NewModel[Row](exec, taskSchema(), testPageSize,
			WithOrderBy(Asc("Category"), Asc("Title")),
			WithSectionExpression("Category"),
		)
	}
	cell := func(r Row) listview.Cell {
		return listview.Cell{Title: r.String("Title"), Detail: r.String("Category")}
	}
	c := NewController(factory, cell, testutil.NewLogger(t))
	t.Cleanup(func() { _ = c.Close() })
	return c, exec
}

func TestControllerActivate(t *testing.T) {
	c, _ := newTaskController(t)
	assert.Nil(t, c.Model())

	require.NoError(t, c.Activate(context.Background()))
	require.NotNil(t, c.Model())
	require.NotNil(t, c.SearchModel())
	assert.NotSame(t, c.Model(), c.SearchModel())

	assert.ErrorIs(t, c.SetModel(nil), ErrActivated)
	assert.ErrorIs(t, c.SetSearchModel(nil), ErrActivated)

	// second activation keeps the models
	m := c.Model()
	require.NoError(t, c.Activate(context.Background()))
	assert.Same(t, m, c.Model())
}

func TestControllerKeepsAssignedModels(t *testing.T) {
	exec := openTestDB(t, 0)
	assigned, err := NewModel[Row](exec, taskSchema(), 4)
	require.NoError(t, err)

	calls := 0
	factory := func() (*Model[Row], error) {
		calls++
		return NewModel[Row](exec, taskSchema(), 4)
	}
	c := NewController(factory, func(Row) listview.Cell { return listview.Cell{} }, nil)
	require.NoError(t, c.SetModel(assigned))
	require.NoError(t, c.Activate(context.Background()))

	assert.Same(t, assigned, c.Model())
	assert.Equal(t, 1, calls)
}

func TestControllerFactoryError(t *testing.T) {
	boom := errors.New("no table")
	c := NewController(func() (*Model[Row], error) { return nil, boom },
		func(Row) listview.Cell { return listview.Cell{} }, nil)

	assert.ErrorIs(t, c.Activate(context.Background()), boom)
	assert.Equal(t, 0, c.NumberOfSections())
}

func TestControllerDataSource(t *testing.T) {
	c, _ := newTaskController(t)
	require.NoError(t, c.Activate(context.Background()))

	assert.Equal(t, 4, c.NumberOfSections())
	assert.Equal(t, "errands", c.TitleForSection(1))
	assert.Equal(t, "", c.TitleForSection(9))
	assert.Equal(t, 3, c.RowsInSection(2))
	assert.Equal(t, 0, c.RowsInSection(9))

	cell := c.CellForRow(listview.IndexPath{Section: 3, Row: 1})
	assert.Equal(t, listview.Cell{Title: "Write report", Detail: "work"}, cell)

	assert.Equal(t, listview.Cell{}, c.CellForRow(listview.IndexPath{Section: 3, Row: 5}))
	assert.NoError(t, c.Err())
}

func TestControllerSearch(t *testing.T) {
	c, _ := newTaskController(t)
	require.NoError(t, c.Activate(context.Background()))

	c.WillBeginSearch()
	assert.True(t, c.Searching())
	assert.Same(t, c.SearchModel(), c.Current())

	assert.True(t, c.ShouldReloadForSearch("w"))
	assert.Equal(t, "w", c.SearchModel().SearchText())
	assert.Equal(t, "", c.Model().SearchText())

	assert.Equal(t, 2, c.NumberOfSections())
	assert.Equal(t, "home", c.TitleForSection(0))
	assert.Equal(t, "Review code", c.CellForRow(listview.IndexPath{Section: 1, Row: 0}).Title)

	c.DidEndSearch()
	assert.False(t, c.Searching())
	assert.Same(t, c.Model(), c.Current())
	assert.Equal(t, 4, c.NumberOfSections())
}

func TestControllerRecordsErrors(t *testing.T) {
	c, exec := newTaskController(t)
	require.NoError(t, c.Activate(context.Background()))

	boom := errors.New("connection lost")
	exec.SetFail(boom)

	assert.Equal(t, 0, c.NumberOfSections())
	assert.ErrorIs(t, c.Err(), boom)

	exec.SetFail(nil)
	c.ReloadData()
	assert.NoError(t, c.Err())
	assert.Equal(t, 4, c.NumberOfSections())
}

func TestControllerMemoryWarning(t *testing.T) {
	c, _ := newTaskController(t)
	require.NoError(t, c.Activate(context.Background()))

	c.CellForRow(listview.IndexPath{Section: 2, Row: 0})
	_, length := c.Model().Window()
	require.Positive(t, length)

	c.HandleMemoryWarning()
	offset, length := c.Model().Window()
	assert.Equal(t, 0, offset)
	assert.Equal(t, 0, length)

	// counts survive
	assert.Equal(t, 3, c.RowsInSection(2))
}

func TestControllerPathForItem(t *testing.T) {
	c, _ := newTaskController(t)
	require.NoError(t, c.Activate(context.Background()))

	visible := []listview.IndexPath{
		{Section: 2, Row: 0},
		{Section: 2, Row: 1},
		{Section: 2, Row: 2},
		{Section: 3, Row: 0},
	}
	sameTitle := func(a, b Row) bool { return a.String("Title") == b.String("Title") }

	path, ok := c.PathForItem(visible, Row{"Title": "Water plants"}, sameTitle)
	assert.True(t, ok)
	assert.Equal(t, listview.IndexPath{Section: 2, Row: 2}, path)

	_, ok = c.PathForItem(visible, Row{"Title": "Buy milk"}, sameTitle)
	assert.False(t, ok)
}

func TestControllerDelegateDefaults(t *testing.T) {
	c, _ := newTaskController(t)

	var d listview.Delegate = c
	var ds listview.DataSource = c
	var sh listview.SearchHandler = c
	_ = ds
	_ = sh

	d.WillBeginSearch()
	assert.True(t, c.Searching())
	d.RowSelected(listview.IndexPath{Section: 1})
	d.DidEndSearch()
	assert.False(t, c.Searching())
}
