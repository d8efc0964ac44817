package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
)

// ActivityModel is a scrollable list of recent analyses, newest first.
type ActivityModel struct {
	theme   themes.Theme
	now     func() time.Time
	records []model.AnalysisRecord
	cursor  int
	offset  int
	height  int
	width   int
}

// NewActivityModel creates an empty list.
func NewActivityModel(theme themes.Theme) ActivityModel {
	return ActivityModel{theme: theme, now: time.Now, height: 8, width: 80}
}

// Update handles messages.
func (m ActivityModel) Update(msg tea.Msg) (ActivityModel, tea.Cmd) {
	if msg, ok := msg.(HistoryLoadedMsg); ok {
		m.records = msg.Records
		m.cursor = min(m.cursor, max(len(m.records)-1, 0))
		m.clampOffset()
	}
	return m, nil
}

// MoveUp moves the cursor one row up.
func (m *ActivityModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.clampOffset()
	}
}

// MoveDown moves the cursor one row down.
func (m *ActivityModel) MoveDown() {
	if m.cursor < len(m.records)-1 {
		m.cursor++
		m.clampOffset()
	}
}

// Selected returns the record under the cursor.
func (m ActivityModel) Selected() (model.AnalysisRecord, bool) {
	if len(m.records) == 0 {
		return model.AnalysisRecord{}, false
	}
	return m.records[m.cursor], true
}

// Resize sets the visible area.
func (m *ActivityModel) Resize(width, height int) {
	m.width = width
	m.height = max(height, 1)
	m.clampOffset()
}

func (m *ActivityModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// View renders the visible rows.
func (m ActivityModel) View() string {
	title := m.theme.Subtitle.Render("Recent activity")
	if len(m.records) == 0 {
		return title + "\n" + m.theme.Faint.Render("No analyses yet. Run: lensline analyze <image>")
	}

	lines := []string{title}
	end := min(m.offset+m.height, len(m.records))
	for i := m.offset; i < end; i++ {
		r := m.records[i]
		marker := " "
		if r.Synthetic {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-28s %-10s %3d%%  %s",
			marker,
			truncate(r.ID, 28),
			string(r.Verdict),
			r.Confidence,
			relativeTime(m.now(), r.Timestamp),
		)
		line = truncate(line, max(m.width, 20))
		if i == m.cursor {
			line = m.theme.Selected.Render(line)
		} else {
			line = m.theme.Verdict(r.Verdict).Render(line)
		}
		lines = append(lines, line)
	}

	if len(m.records) > m.height {
		lines = append(lines, m.theme.Faint.Render(fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(m.records))))
	}
	return strings.Join(lines, "\n")
}

func relativeTime(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Local().Format("Jan 2")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
