package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatsPanelModel shows the aggregate counters and the verdict
// distribution.
type StatsPanelModel struct {
	bars  map[model.Verdict]progress.Model
	theme themes.Theme
	stats model.Stats
	width int
}

// NewStatsPanelModel creates a stats panel.
func NewStatsPanelModel(theme themes.Theme) StatsPanelModel {
	bars := make(map[model.Verdict]progress.Model, len(model.Verdicts))
	for _, v := range model.Verdicts {
		bar := progress.New(progress.WithSolidFill(string(theme.VerdictColor(v))))
		bar.ShowPercentage = false
		bar.Width = 30
		bars[v] = bar
	}
	return StatsPanelModel{bars: bars, theme: theme}
}

// Update handles messages.
func (m StatsPanelModel) Update(msg tea.Msg) (StatsPanelModel, tea.Cmd) {
	switch msg := msg.(type) {
	case HistoryLoadedMsg:
		m.stats = msg.Stats
	case tea.WindowSizeMsg:
		m.Resize(msg.Width)
	}
	return m, nil
}

// Stats returns the stats being shown.
func (m StatsPanelModel) Stats() model.Stats {
	return m.stats
}

// Resize fits the bars to width.
func (m *StatsPanelModel) Resize(width int) {
	m.width = width
	for v, bar := range m.bars {
		bar.Width = max(min(width-28, 40), 10)
		m.bars[v] = bar
	}
}

// View renders the panel.
func (m StatsPanelModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderCounters(),
		"",
		m.renderDistribution(),
	)
}

func (m StatsPanelModel) renderCounters() string {
	cell := func(label string, value int, style lipgloss.Style) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Faint.Render(label),
			style.Bold(true).Render(fmt.Sprintf("%d", value)),
		)
	}

	gap := "    "
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Total scans", m.stats.TotalScans, m.theme.Normal), gap,
		cell("Authentic", m.stats.AuthenticCount, m.theme.StatusSuccess), gap,
		cell("Suspicious", m.stats.SuspiciousCount, m.theme.StatusWarning), gap,
		cell("Fake", m.stats.FakeCount, m.theme.StatusError), gap,
		cell("Avg confidence", m.stats.AvgConfidence, m.theme.StatusInfo),
	)
}

func (m StatsPanelModel) renderDistribution() string {
	lines := []string{m.theme.Subtitle.Render("Verdict distribution")}
	for _, v := range model.Verdicts {
		share := m.stats.Share(v)
		lines = append(lines, fmt.Sprintf("%-11s %s %3.0f%%",
			m.theme.Verdict(v).Render(verdictName(v)),
			m.bars[v].ViewAs(share),
			share*100,
		))
	}
	return strings.Join(lines, "\n")
}

func verdictName(v model.Verdict) string {
	s := string(v)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
