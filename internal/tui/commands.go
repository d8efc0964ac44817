package tui

import (
	"context"

	"github.com/Veraticus/lensline/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// loadHistory snapshots the history without touching the network.
func (m Model) loadHistory() tea.Cmd {
	src := m.source
	return func() tea.Msg {
		return components.HistoryLoadedMsg{Records: src.Analyses(), Stats: src.Stats()}
	}
}

// refresh replaces the history from the remote service and snapshots it.
func (m Model) refresh() tea.Cmd {
	src, ctx := m.source, m.ctx
	return func() tea.Msg {
		synced := src.FetchHistory(ctx)
		return refreshDoneMsg{
			synced:  synced,
			history: components.HistoryLoadedMsg{Records: src.Analyses(), Stats: src.Stats()},
		}
	}
}

// openDetail looks the record up through the store, which also makes it
// the current record.
func (m Model) openDetail(id string) tea.Cmd {
	src, ctx := m.source, m.ctx
	return func() tea.Msg {
		record, found := src.GetAnalysis(ctx, id)
		return detailLoadedMsg{record: record, found: found}
	}
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
