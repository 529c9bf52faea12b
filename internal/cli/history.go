package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazytable/internal/history"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Search string
	Limit  int
	Prune  int
	Color  bool
	Style  string
}

func newHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the queries lazytable ran",
		Example: `  lazytable history --limit 20
  lazytable history --search "COUNT(DISTINCT"
  lazytable history --prune 100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Only queries containing this text")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "Number of entries")
	cmd.Flags().IntVar(&opts.Prune, "prune", 0, "Keep only this many newest entries")
	cmd.Flags().BoolVar(&opts.Color, "color", true, "Highlight queries")
	cmd.Flags().StringVar(&opts.Style, "style", "monokai", "Highlight style")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cfg := GetConfig(cmd.Context())
	ctx := cmd.Context()

	logger, closeLog, err := newLogger(cfg, nil)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openHistory(cfg, "", logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()

	if opts.Prune > 0 {
		n, err := store.Prune(ctx, opts.Prune)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "pruned %d entries\n", n)
		return nil
	}

	var entries []history.Entry
	if opts.Search != "" {
		entries, err = store.Search(ctx, opts.Search, opts.Limit)
	} else {
		entries, err = store.Recent(ctx, opts.Limit)
	}
	if err != nil {
		return err
	}

	var hl *sqlHighlighter
	if opts.Color {
		hl = newSQLHighlighter(opts.Style)
	}

	t := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		Headers("when", "connection", "rows", "time", "query")
	for _, e := range entries {
		query := hl.Highlight(e.Query)
		if !e.Success {
			query += "  ! " + e.ErrorMessage
		}
		t.Row(
			e.ExecutedAt.Format(time.DateTime),
			e.ConnectionName,
			fmt.Sprint(e.Rows),
			e.Duration.Round(time.Microsecond).String(),
			query,
		)
	}

	_, _ = fmt.Fprintln(out, t.Render())
	return nil
}
