package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// DumpOptions holds options for the dump command.
type DumpOptions struct {
	Search string
	Offset int
	Limit  int
}

func newDumpCommand() *cobra.Command {
	opts := &DumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print a range of rows as the list would show them",
		Example: `  # First page
  lazytable dump --db app.db --table Items

  # Rows 4992-5023 of a search
  lazytable dump --db app.db --table Items --search "title:row" --offset 4992 --limit 32`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDump(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Search text")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Index of the first row")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Number of rows (default: one page)")

	return cmd
}

func runDump(cmd *cobra.Command, opts *DumpOptions) error {
	cfg := GetConfig(cmd.Context())
	ctx := cmd.Context()

	logger, closeLog, err := newLogger(cfg, nil)
	if err != nil {
		return err
	}
	defer closeLog()

	sess, err := openSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sess.close()

	info, err := sess.resolveTable(ctx)
	if err != nil {
		return err
	}
	model, err := sess.newModel(info)
	if err != nil {
		return err
	}
	defer func() { _ = model.Close() }()

	model.SetSearchText(opts.Search)

	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.Table.PageSize
	}

	total, err := model.Count(ctx)
	if err != nil {
		return err
	}
	titles, err := model.SectionTitles(ctx)
	if err != nil {
		return err
	}

	columns := info.columnNames()
	headers := append([]string{"#"}, columns...)
	if titles != nil {
		headers = append([]string{"#", "section"}, columns...)
	}

	t := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...)

	shown := 0
	for index := opts.Offset; index < opts.Offset+limit; index++ {
		row, ok, err := model.Item(ctx, index)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		cells := []string{fmt.Sprint(index)}
		if titles != nil {
			section, _, _, err := model.IndexToSectionRow(ctx, index)
			if err != nil {
				return err
			}
			cells = append(cells, titles[section])
		}
		for _, col := range columns {
			cells = append(cells, row.String(col))
		}
		t.Row(cells...)
		shown++
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, t.Render())
	_, _ = fmt.Fprintf(out, "%d of %d rows\n", shown, total)
	return nil
}
