// Package cli provides the command-line interface for lazytable.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

var cfgFile string

// Version information (set at build time).
var Version = "0.1.0"

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lazytable",
		Short: "lazytable - browse large SQL tables page by page",
		Long: `lazytable shows a PostgreSQL or SQLite table as a scrollable, searchable
list. Rows are fetched a page at a time, so tables of any size open instantly.

Search text matches every text column; "field:value" restricts a term to one
column and double quotes keep a phrase together.`,
		Example: `  # Browse a SQLite table
  lazytable --db app.db --table Items

  # Group rows by first letter, newest first within a group
  lazytable --db app.db --table Items --section "substr(Title,1,1)" --order-by "Title"`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/lazytable/config.yaml)")
	flags.String("driver", "", "Database driver (sqlite3|postgres)")
	flags.String("db", "", "Path to SQLite database")
	flags.String("dsn", "", "PostgreSQL connection string")
	flags.String("table", "", "Table to browse")
	flags.Int("page-size", 0, "Rows fetched per page")
	flags.StringSlice("order-by", nil, `Ordering, e.g. "Title" or "Created desc"`)
	flags.String("section", "", "Expression grouping rows into sections")
	flags.String("theme", "", "UI theme (default|catppuccin-mocha)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-file", "", "Write logs to this file")

	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlite3", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("theme", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return theme.Names(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newDumpCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newTablesCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newPasswordCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return config.GetDefaults()
}

// newLogger builds the logger for a command. Without a log file, output
// goes to fallback; the TUI passes nil to keep the screen clean.
func newLogger(cfg *config.Config, fallback *os.File) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, opts)), func() { _ = f.Close() }, nil
	}

	if fallback == nil {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	return slog.New(slog.NewTextHandler(fallback, opts)), func() {}, nil
}
