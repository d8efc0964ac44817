package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, source HistorySource, opts ...Option) error {
	if source == nil {
		return fmt.Errorf("history source is required")
	}

	cfg := defaultConfig()
	cfg.Source = source
	for _, opt := range opts {
		opt(&cfg)
	}

	p := tea.NewProgram(newModel(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
