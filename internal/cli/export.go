package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazytable/internal/export"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Format string
	Out    string
	Search string
}

func newExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every matching row as CSV, JSON or YAML",
		Example: `  lazytable export --db app.db --table Items --format csv --out items.csv
  lazytable export --db app.db --table Items --search "error" --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "csv", "Output format: csv, json, yaml")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Search text")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"csv", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

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

	var n int
	if opts.Out == "" {
		n, err = export.Write(ctx, format, model, info.columnNames(), cmd.OutOrStdout())
	} else {
		n, err = export.ToFile(ctx, format, model, info.columnNames(), opts.Out)
	}
	if err != nil {
		return err
	}

	if opts.Out != "" {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "exported %d rows to %s\n", n, opts.Out)
	}
	return nil
}
