// Package tui implements the interactive history dashboard.
package tui

import (
	"context"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/tui/components"
	"github.com/Veraticus/lensline/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// syncState describes where the shown history came from.
type syncState int

const (
	syncLocal syncState = iota
	syncing
	syncRemote
	syncFailed
)

// Model holds the dashboard state.
type Model struct {
	ctx        context.Context
	source     HistorySource
	user       *model.User
	theme      themes.Theme
	help       help.Model
	keymap     KeyMap
	records    []model.AnalysisRecord
	detail     *model.AnalysisRecord
	stats      components.StatsPanelModel
	activity   components.ActivityModel
	width      int
	height     int
	sync       syncState
	syncOnInit bool
	ready      bool
	quitting   bool
}

func newModel(ctx context.Context, cfg Config) Model {
	return Model{
		ctx:        contextOrBackground(ctx),
		source:     cfg.Source,
		user:       cfg.User,
		theme:      cfg.Theme,
		help:       help.New(),
		keymap:     DefaultKeyMap(),
		stats:      components.NewStatsPanelModel(cfg.Theme),
		activity:   components.NewActivityModel(cfg.Theme),
		width:      cfg.Width,
		height:     cfg.Height,
		syncOnInit: cfg.SyncOnStart,
	}
}

// Init loads the local history, and syncs when configured to.
func (m Model) Init() tea.Cmd {
	if m.syncOnInit {
		return tea.Batch(m.loadHistory(), func() tea.Msg { return startRefreshMsg{} })
	}
	return m.loadHistory()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.handleResize()
		return m, nil

	case startRefreshMsg:
		return m.startRefresh()

	case refreshDoneMsg:
		if msg.synced {
			m.sync = syncRemote
		} else {
			m.sync = syncFailed
		}
		return m.applyHistory(msg.history)

	case components.HistoryLoadedMsg:
		return m.applyHistory(msg)

	case detailLoadedMsg:
		if msg.found {
			m.detail = &msg.record
		}
		return m, nil
	}
	return m, nil
}

func (m Model) applyHistory(msg components.HistoryLoadedMsg) (tea.Model, tea.Cmd) {
	m.records = msg.Records
	m.ready = true
	var cmd tea.Cmd
	m.stats, _ = m.stats.Update(msg)
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Back):
		if m.detail != nil {
			m.detail = nil
			m.source.ClearCurrent()
		}
	case m.detail != nil:
		// Only back and quit apply in the detail view.
	case key.Matches(msg, m.keymap.Open):
		if sel, ok := m.activity.Selected(); ok {
			return m, m.openDetail(sel.ID)
		}
	case key.Matches(msg, m.keymap.Refresh):
		return m.startRefresh()
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.handleResize()
	case key.Matches(msg, m.keymap.Up):
		m.activity.MoveUp()
	case key.Matches(msg, m.keymap.Down):
		m.activity.MoveDown()
	}
	return m, nil
}

func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	if m.sync == syncing {
		return m, nil
	}
	m.sync = syncing
	return m, m.refresh()
}

// chromeHeight is the rows used by everything but the activity list.
const chromeHeight = 16

func (m *Model) handleResize() {
	m.help.Width = m.width
	m.stats.Resize(m.width)
	listHeight := m.height - chromeHeight
	if m.help.ShowAll {
		listHeight -= 2
	}
	m.activity.Resize(m.width-4, max(listHeight, 3))
}
