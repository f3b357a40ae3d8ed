// Package tui implements the interactive dashboard: login and registration
// screens, the task list and the assistant panel.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/config"
	"taskpad/internal/logging"
	"taskpad/internal/service"
)

// Run starts the dashboard and blocks until the user quits or ctx is
// cancelled. The dashboard owns the terminal, so debug logs are written
// only when cfg.LogFile is set.
func Run(ctx context.Context, cfg *config.Config, svc service.Service) error {
	var logOut io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logging.Setup(logOut, logOut != nil)

	m := NewModel(ctx, cfg, svc)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
