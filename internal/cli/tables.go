package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazytable/internal/db/metadata"
)

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			tables, err := metadata.Tables(ctx, sess.exec, sess.conn.Dialect)
			if err != nil {
				return err
			}

			t := lgtable.New().
				Border(lipgloss.RoundedBorder()).
				Headers("table", "size")
			for _, tbl := range tables {
				t.Row(tbl.QualifiedName(), tbl.Size)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
