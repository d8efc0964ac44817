package tui

import (
	"context"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/tui/themes"
)

// HistorySource is the part of the analysis store the dashboard reads.
type HistorySource interface {
	Analyses() []model.AnalysisRecord
	Stats() model.Stats
	FetchHistory(ctx context.Context) bool
	GetAnalysis(ctx context.Context, id string) (model.AnalysisRecord, bool)
	ClearCurrent()
}

// Config holds TUI configuration.
type Config struct {
	Source HistorySource
	User   *model.User
	Theme  themes.Theme
	Width  int
	Height int
	// SyncOnStart refreshes from the remote service when the dashboard opens.
	SyncOnStart bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) { c.Theme = theme }
}

// WithUser shows the signed-in user in the header.
func WithUser(user *model.User) Option {
	return func(c *Config) { c.User = user }
}

// WithSyncOnStart refreshes from the remote service on open.
func WithSyncOnStart(sync bool) Option {
	return func(c *Config) { c.SyncOnStart = sync }
}

func defaultConfig() Config {
	return Config{
		Theme:  themes.Dark,
		Width:  80,
		Height: 24,
	}
}
