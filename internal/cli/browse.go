package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazytable/internal/app"
	"github.com/rebeliceyang/lazytable/internal/table"
)

func runBrowse(cmd *cobra.Command) error {
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

	ctrl := table.NewController(func() (*table.Model[table.Row], error) {
		return sess.newModel(info)
	}, cellFunc(info), logger)
	if err := ctrl.Activate(ctx); err != nil {
		return err
	}
	defer func() { _ = ctrl.Close() }()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(app.New(cfg, ctrl, info.name, info.columnNames(), logger), opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
