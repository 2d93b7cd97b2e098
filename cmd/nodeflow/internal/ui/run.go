package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/recera/nodeflow/pkg/editor"
)

// Run starts the terminal host on ed and blocks until the user quits or ctx
// is cancelled. Nothing is logged to the screen; pass a file-backed logger or
// nil.
func Run(ctx context.Context, ed *editor.Editor, log *zap.Logger) error {
	p := tea.NewProgram(
		NewModel(ed, log),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
