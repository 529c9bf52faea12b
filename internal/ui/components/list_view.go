package components

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazytable/internal/listview"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// RowSelectedMsg is sent when enter is pressed on a row
type RowSelectedMsg struct {
	Path listview.IndexPath
}

// ListView displays a sectioned list with virtual scrolling. Only the
// visible rows are asked for, so the source may page them in lazily.
type ListView struct {
	Source listview.DataSource
	Theme  theme.Theme
	Width  int
	Height int

	// Virtual scrolling state, as linear row indexes
	Top      int
	Selected int

	// first linear index of every section
	starts    []int
	titles    []string
	sectioned bool
	total     int
}

// NewListView creates a list view over src
func NewListView(src listview.DataSource, th theme.Theme) *ListView {
	lv := &ListView{Source: src, Theme: th}
	lv.Refresh()
	return lv
}

// Refresh reloads the section layout from the source and clamps the
// selection into it
func (lv *ListView) Refresh() {
	lv.starts = lv.starts[:0]
	lv.titles = lv.titles[:0]
	lv.sectioned = false
	lv.total = 0

	if lv.Source != nil {
		n := lv.Source.NumberOfSections()
		for s := 0; s < n; s++ {
			title := lv.Source.TitleForSection(s)
			if title != "" || n > 1 {
				lv.sectioned = true
			}
			lv.starts = append(lv.starts, lv.total)
			lv.titles = append(lv.titles, title)
			lv.total += lv.Source.RowsInSection(s)
		}
	}

	lv.Selected = clamp(lv.Selected, 0, lv.total-1)
	lv.Top = clamp(lv.Top, 0, lv.Selected)
	lv.ensureVisible()
}

// Total returns the number of rows over all sections
func (lv *ListView) Total() int { return lv.total }

// PathFor maps a linear index onto its section and row
func (lv *ListView) PathFor(index int) listview.IndexPath {
	// last section starting at or before index; empty sections share a
	// start with their successor and are skipped
	s := sort.Search(len(lv.starts), func(i int) bool { return lv.starts[i] > index }) - 1
	if s < 0 {
		return listview.IndexPath{}
	}
	return listview.IndexPath{Section: s, Row: index - lv.starts[s]}
}

// SelectedPath returns the path of the selected row
func (lv *ListView) SelectedPath() (listview.IndexPath, bool) {
	if lv.total == 0 {
		return listview.IndexPath{}, false
	}
	return lv.PathFor(lv.Selected), true
}

// VisiblePaths returns the paths of the rows on screen
func (lv *ListView) VisiblePaths() []listview.IndexPath {
	if lv.total == 0 {
		return nil
	}
	last := lv.lastVisible(lv.Top)
	paths := make([]listview.IndexPath, 0, last-lv.Top+1)
	for i := lv.Top; i <= last; i++ {
		paths = append(paths, lv.PathFor(i))
	}
	return paths
}

// bodyHeight is the number of lines available for headers and rows
func (lv *ListView) bodyHeight() int {
	return max(lv.Height-1, 1) // status line
}

func (lv *ListView) startsSection(index int) bool {
	if !lv.sectioned {
		return false
	}
	i := sort.SearchInts(lv.starts, index)
	return i < len(lv.starts) && lv.starts[i] == index
}

// lastVisible returns the last row index that fits on screen when the
// list starts at top
func (lv *ListView) lastVisible(top int) int {
	body := lv.bodyHeight()
	lines := 0
	if lv.sectioned {
		lines++ // sticky header
	}

	index := top
	for index < lv.total && lines < body {
		if index != top && lv.startsSection(index) {
			lines++
			if lines >= body {
				break
			}
		}
		lines++
		index++
	}
	return max(index-1, top)
}

func (lv *ListView) ensureVisible() {
	if lv.Selected < lv.Top {
		lv.Top = lv.Selected
	}
	for lv.Top < lv.Selected && lv.Selected > lv.lastVisible(lv.Top) {
		lv.Top++
	}
}

// MoveSelection moves the selection up or down
func (lv *ListView) MoveSelection(delta int) {
	lv.Selected = clamp(lv.Selected+delta, 0, lv.total-1)
	lv.ensureVisible()
}

// PageUp moves the selection one screen up
func (lv *ListView) PageUp() {
	lv.MoveSelection(-lv.bodyHeight())
}

// PageDown moves the selection one screen down
func (lv *ListView) PageDown() {
	lv.MoveSelection(lv.bodyHeight())
}

// Home selects the first row
func (lv *ListView) Home() {
	lv.Selected = 0
	lv.Top = 0
}

// End selects the last row
func (lv *ListView) End() {
	lv.Selected = max(lv.total-1, 0)
	lv.Top = max(lv.total-lv.bodyHeight(), 0)
	lv.ensureVisible()
}

// Update handles navigation keys and the mouse wheel
func (lv *ListView) Update(msg tea.Msg) (*ListView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			lv.MoveSelection(-1)
		case "down", "j":
			lv.MoveSelection(1)
		case "pgup", "ctrl+u":
			lv.PageUp()
		case "pgdown", "ctrl+d":
			lv.PageDown()
		case "home", "g":
			lv.Home()
		case "end", "G":
			lv.End()
		case "enter":
			if path, ok := lv.SelectedPath(); ok {
				return lv, func() tea.Msg { return RowSelectedMsg{Path: path} }
			}
		}
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			lv.MoveSelection(-3)
		case tea.MouseButtonWheelDown:
			lv.MoveSelection(3)
		}
	}
	return lv, nil
}

// View renders the list
func (lv *ListView) View() string {
	style := lipgloss.NewStyle().Width(lv.Width).Height(lv.Height)
	if lv.total == 0 {
		return style.Render(lipgloss.NewStyle().Foreground(lv.Theme.Muted).Italic(true).Render("No items"))
	}

	var lines []string
	last := lv.lastVisible(lv.Top)
	for i := lv.Top; i <= last; i++ {
		path := lv.PathFor(i)
		if lv.sectioned && (i == lv.Top || path.Row == 0) {
			lines = append(lines, lv.renderHeader(lv.titles[path.Section]))
		}
		lines = append(lines, lv.renderRow(lv.Source.CellForRow(path), i == lv.Selected))
	}
	lines = append(lines, lv.renderStatus(last))

	return style.Render(strings.Join(lines, "\n"))
}

func (lv *ListView) renderHeader(title string) string {
	if title == "" {
		title = "(none)"
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lv.Theme.SectionHeaderText).
		Background(lv.Theme.SectionHeader).
		Render(fit(" "+title, lv.Width))
}

func (lv *ListView) renderRow(cell listview.Cell, selected bool) string {
	width := max(lv.Width, 10)
	titleWidth := width
	if cell.Detail != "" {
		titleWidth = width * 2 / 5
	}

	line := fit(" "+cell.Title, titleWidth)

	if selected {
		if cell.Detail != "" {
			line += fit(" "+cell.Detail, width-titleWidth)
		}
		return lipgloss.NewStyle().
			Background(lv.Theme.RowSelected).
			Foreground(lv.Theme.RowSelectedText).
			Bold(true).
			Render(line)
	}

	if cell.Detail != "" {
		line += lipgloss.NewStyle().Foreground(lv.Theme.Detail).Render(fit(" "+cell.Detail, width-titleWidth))
	}
	return line
}

func (lv *ListView) renderStatus(last int) string {
	showing := fmt.Sprintf(" %d-%d of %d rows", lv.Top+1, last+1, lv.total)
	return lipgloss.NewStyle().
		Foreground(lv.Theme.Muted).
		Italic(true).
		Render(showing)
}

// fit truncates or pads s to exactly width terminal cells
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
