package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazytable/internal/config"
)

func newPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Store the database password in the OS keyring",
		Long: `Reads the PostgreSQL password from standard input and stores it in the OS
keyring under the configured user, host, port and database. Set
database.use_keyring to have lazytable read it back when connecting.`,
		Example: `  echo "$PGPASSWORD" | lazytable password --driver postgres`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPassword(cmd, GetConfig(cmd.Context()))
		},
	}
}

func runPassword(cmd *cobra.Command, cfg *config.Config) error {
	conn := cfg.Database.ConnectionConfig
	if conn.Driver == "sqlite3" || conn.Driver == "sqlite" {
		return errors.New("sqlite databases have no password")
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("empty password")
	}

	if err := config.StorePassword(conn, password); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "password stored for %s@%s\n", conn.User, conn.Host)
	return nil
}
