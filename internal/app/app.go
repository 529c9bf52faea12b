package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/listview"
	"github.com/rebeliceyang/lazytable/internal/table"
	"github.com/rebeliceyang/lazytable/internal/ui/components"
	"github.com/rebeliceyang/lazytable/internal/ui/help"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// App is the main application model. It browses one table through a
// controller that switches between a browse and a search model.
type App struct {
	width  int
	height int

	config     *config.Config
	theme      theme.Theme
	logger     *slog.Logger
	controller *table.Controller[table.Row]
	columns    []string
	tableName  string

	panel  components.Panel
	list   *components.ListView
	search *components.SearchInput

	showHelp     bool
	showError    bool
	errorOverlay *components.ErrorOverlay

	status string

	// copy is replaced in tests
	copy func(text string) error
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// New creates a new App over an activated controller
func New(cfg *config.Config, ctrl *table.Controller[table.Row], tableName string, columns []string, logger *slog.Logger) *App {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	if logger == nil {
		logger = slog.Default()
	}
	th := theme.GetTheme(cfg.UI.Theme)

	a := &App{
		config:       cfg,
		theme:        th,
		logger:       logger,
		controller:   ctrl,
		columns:      columns,
		tableName:    tableName,
		search:       components.NewSearchInput(th),
		errorOverlay: components.NewErrorOverlay(th),
		copy:         clipboard.WriteAll,
		panel: components.Panel{
			Title:       tableName,
			BorderColor: th.BorderFocused,
			TitleColor:  th.SectionHeaderText,
		},
	}
	a.list = components.NewListView(ctrl, th)
	a.checkErr("Failed to load table")
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case components.SearchChangedMsg:
		if a.controller.ShouldReloadForSearch(msg.Text) {
			a.list.Home()
			a.refresh("Search failed")
		}
		return a, nil

	case components.SearchSubmittedMsg:
		a.search.Blur()
		return a, nil

	case components.CloseSearchMsg:
		a.endSearch()
		return a, nil

	case components.RowSelectedMsg:
		a.controller.RowSelected(msg.Path)
		a.status = fmt.Sprintf("row %d of section %d", msg.Path.Row+1, msg.Path.Section+1)
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.showError {
			return a, nil
		}
		var cmd tea.Cmd
		a.list, cmd = a.list.Update(msg)
		a.checkErr("Failed to load rows")
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Handle error overlay dismissal first if visible
	if a.showError {
		switch key {
		case "esc", "enter":
			a.DismissError()
		case "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	if a.showHelp {
		switch key {
		case "?", "esc", "q":
			a.showHelp = false
		case "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	if a.search.Focused() {
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}

	switch key {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "?":
		a.showHelp = true
	case "/":
		return a, a.beginSearch()
	case "esc":
		if a.controller.Searching() {
			a.endSearch()
		}
	case "r", "f5":
		a.controller.ReloadData()
		a.refresh("Reload failed")
		a.status = "reloaded"
	case "ctrl+l":
		a.controller.HandleMemoryWarning()
		a.status = "cache cleared"
	case "y":
		a.copySelected()
	default:
		var cmd tea.Cmd
		a.list, cmd = a.list.Update(msg)
		a.checkErr("Failed to load rows")
		return a, cmd
	}

	return a, nil
}

func (a *App) beginSearch() tea.Cmd {
	if !a.controller.Searching() {
		a.controller.WillBeginSearch()
		a.controller.ShouldReloadForSearch(a.search.Value())
		a.list.Home()
		a.refresh("Search failed")
	}
	cmd := a.search.Open()
	a.layout()
	return cmd
}

func (a *App) endSearch() {
	a.search.Reset()
	a.controller.DidEndSearch()
	a.list.Home()
	a.refresh("Reload failed")
	a.layout()
}

func (a *App) refresh(title string) {
	a.list.Refresh()
	a.checkErr(title)
}

// checkErr shows the error a list callback ran into, once
func (a *App) checkErr(title string) {
	if err := a.controller.Err(); err != nil {
		a.ShowError(title, err.Error())
		a.controller.ReloadData()
	}
}

func (a *App) copySelected() {
	path, ok := a.list.SelectedPath()
	if !ok {
		return
	}
	row, ok := a.controller.Item(path)
	if !ok {
		a.checkErr("Failed to load row")
		return
	}

	values := make([]string, len(a.columns))
	for i, col := range a.columns {
		values[i] = row.String(col)
	}
	if err := a.copy(strings.Join(values, "\t")); err != nil {
		a.logger.Warn("clipboard copy failed", "error", err)
		a.status = "copy failed"
		return
	}
	a.status = "row copied"
}

// ShowError displays the error overlay
func (a *App) ShowError(title, message string) {
	a.errorOverlay.Show(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}

// layout recomputes component sizes from the window size
func (a *App) layout() {
	if a.width <= 0 || a.height <= 0 {
		return
	}

	// top bar and bottom bar
	contentHeight := a.height - 2
	if a.search.Visible {
		contentHeight -= 3
	}
	contentHeight = max(contentHeight, 5)

	a.search.Width = a.width
	a.errorOverlay.Width = min(max(a.width-10, 30), 80)

	// border takes two cells each way
	a.panel.Width = max(a.width-2, 10)
	a.panel.Height = max(contentHeight-2, 3)

	w, h := a.panel.InnerSize()
	a.list.Width = w
	a.list.Height = h
	a.list.Refresh()
}

// View implements tea.Model
func (a *App) View() string {
	if a.showError {
		return lipgloss.Place(
			a.width, a.height,
			lipgloss.Center, lipgloss.Center,
			a.errorOverlay.View(),
		)
	}

	if a.showHelp {
		return help.Render(a.width, a.height, a.theme)
	}

	return a.renderNormalView()
}

func (a *App) renderNormalView() string {
	mode := "browse"
	if a.controller.Searching() {
		mode = "search"
	}
	topBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(a.formatStatusBar("lazytable · "+a.tableName, mode))

	bottomBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar("[/] Search | [r] Reload | [y] Copy | [?] Help | [q] Quit", a.status))

	a.panel.Content = a.list.View()

	parts := []string{topBar}
	if a.search.Visible {
		parts = append(parts, a.search.View())
	}
	parts = append(parts, a.panel.View(), bottomBar)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	available := max(a.width-4, 0)

	leftLen := runewidth.StringWidth(left)
	rightLen := runewidth.StringWidth(right)

	if leftLen+rightLen > available {
		if available > rightLen {
			return runewidth.Truncate(left, available-rightLen, "") + right
		}
		return runewidth.Truncate(left, available, "")
	}

	return left + strings.Repeat(" ", available-leftLen-rightLen) + right
}

// SelectedPath returns the path of the selected row
func (a *App) SelectedPath() (listview.IndexPath, bool) {
	return a.list.SelectedPath()
}
