package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/testutil"
	"github.com/Veraticus/lensline/internal/tui/components"
	"github.com/Veraticus/lensline/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	records []model.AnalysisRecord
	remote  []model.AnalysisRecord
	opened  []string
	fetches int
	clears  int
	online  bool
	mu      sync.Mutex
}

func (f *fakeSource) Analyses() []model.AnalysisRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.AnalysisRecord(nil), f.records...)
}

func (f *fakeSource) Stats() model.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.Stats{TotalScans: len(f.records)}
}

func (f *fakeSource) FetchHistory(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if !f.online {
		return false
	}
	f.records = f.remote
	return true
}

func (f *fakeSource) GetAnalysis(_ context.Context, id string) (model.AnalysisRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, id)
	for _, r := range f.records {
		if r.ID == id {
			return r, true
		}
	}
	return model.AnalysisRecord{}, false
}

func (f *fakeSource) ClearCurrent() {
	f.mu.Lock()
	f.clears++
	f.mu.Unlock()
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func newTestModel(src *fakeSource) Model {
	cfg := defaultConfig()
	cfg.Source = src
	cfg.Width, cfg.Height = 100, 40
	cfg.Theme = themes.Dark
	return newModel(context.Background(), cfg)
}

func TestModel_InitLoadsLocalHistory(t *testing.T) {
	src := &fakeSource{records: testutil.Records(3)}
	m := newTestModel(src)

	assert.Contains(t, m.View(), "Loading")

	msg := m.Init()()
	loaded, ok := msg.(components.HistoryLoadedMsg)
	require.True(t, ok)
	assert.Len(t, loaded.Records, 3)
	assert.Zero(t, src.fetches, "opening the dashboard must not hit the network")

	m, _ = update(t, m, msg)
	view := m.View()
	assert.Contains(t, view, "LensLine")
	assert.Contains(t, view, "rec-2")
	assert.Contains(t, view, "Local history")
	assert.Contains(t, view, "First Scan")
}

func TestModel_RefreshKey(t *testing.T) {
	t.Run("remote available", func(t *testing.T) {
		src := &fakeSource{
			records: testutil.Records(1),
			remote:  []model.AnalysisRecord{testutil.NewRecord("srv-1"), testutil.NewRecord("srv-2")},
			online:  true,
		}
		m := newTestModel(src)
		m, _ = update(t, m, m.Init()())

		m, cmd := update(t, m, keyMsg("r"))
		require.NotNil(t, cmd)
		assert.Equal(t, syncing, m.sync)
		assert.Contains(t, m.View(), "Syncing")

		_, again := update(t, m, keyMsg("r"))
		assert.Nil(t, again, "a second refresh while syncing is ignored")

		m, _ = update(t, m, cmd())
		assert.Equal(t, 1, src.fetches)
		assert.Equal(t, syncRemote, m.sync)
		assert.Len(t, m.records, 2)
		assert.Contains(t, m.View(), "srv-2")
	})

	t.Run("remote down keeps local", func(t *testing.T) {
		src := &fakeSource{records: testutil.Records(2)}
		m := newTestModel(src)
		m, _ = update(t, m, m.Init()())

		m, cmd := update(t, m, keyMsg("r"))
		m, _ = update(t, m, cmd())
		assert.Equal(t, syncFailed, m.sync)
		assert.Len(t, m.records, 2)
		assert.Contains(t, m.View(), "Server unavailable")
	})
}

func TestModel_Keys(t *testing.T) {
	src := &fakeSource{records: testutil.Records(5)}
	m := newTestModel(src)
	m, _ = update(t, m, m.Init()())

	m, _ = update(t, m, keyMsg("j"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	sel, ok := m.activity.Selected()
	require.True(t, ok)
	assert.Equal(t, "rec-2", sel.ID)

	m, _ = update(t, m, keyMsg("k"))
	sel, _ = m.activity.Selected()
	assert.Equal(t, "rec-3", sel.ID)

	m, _ = update(t, m, keyMsg("?"))
	assert.True(t, m.help.ShowAll)

	m, cmd := update(t, m, keyMsg("q"))
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_DetailView(t *testing.T) {
	src := &fakeSource{records: testutil.Records(3)}
	m := newTestModel(src)
	m, _ = update(t, m, m.Init()())

	m, _ = update(t, m, keyMsg("j"))
	sel, ok := m.activity.Selected()
	require.True(t, ok)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.NotNil(t, m.detail)
	assert.Equal(t, sel.ID, m.detail.ID)
	assert.Equal(t, []string{sel.ID}, src.opened)
	assert.Contains(t, m.View(), "Verdict")

	// Navigation keys are ignored while a record is open.
	m, _ = update(t, m, keyMsg("j"))
	after, _ := m.activity.Selected()
	assert.Equal(t, sel.ID, after.ID)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.detail)
	assert.False(t, m.quitting, "esc closes the detail view, not the dashboard")
	assert.Equal(t, 1, src.clears)
	assert.Contains(t, m.View(), "Local history")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, src.clears, "esc on the list does nothing")
}

func TestModel_DetailViewMissingRecord(t *testing.T) {
	src := &fakeSource{records: testutil.Records(1)}
	m := newTestModel(src)
	m, _ = update(t, m, m.Init()())

	m, _ = update(t, m, detailLoadedMsg{found: false})
	assert.Nil(t, m.detail)
}

func TestModel_SyncOnStart(t *testing.T) {
	src := &fakeSource{online: true, remote: testutil.Records(4)}
	cfg := defaultConfig()
	cfg.Source = src
	cfg.SyncOnStart = true
	m := newModel(context.Background(), cfg)

	m, cmd := update(t, m, startRefreshMsg{})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, syncRemote, m.sync)
	assert.Len(t, m.records, 4)
}

func TestModel_HeaderShowsUser(t *testing.T) {
	src := &fakeSource{}
	cfg := defaultConfig()
	cfg.Source = src
	WithUser(&model.User{Name: "Demo User", Plan: model.PlanPro, ScansToday: 12})(&cfg)
	m := newModel(context.Background(), cfg)
	m, _ = update(t, m, m.Init()())

	view := m.View()
	assert.Contains(t, view, "Demo User")
	assert.Contains(t, view, "pro plan")
	assert.Contains(t, view, "No analyses yet")
}

func TestModel_Resize(t *testing.T) {
	m := newTestModel(&fakeSource{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 10})
	assert.Equal(t, 60, m.width)
	assert.Equal(t, 60, m.help.Width)
}

func TestRunRequiresSource(t *testing.T) {
	assert.Error(t, Run(context.Background(), nil))
}

func TestThemeByName(t *testing.T) {
	assert.Equal(t, "dark", themes.ByName("dark").Name)
	assert.Equal(t, "light", themes.ByName("light").Name)
	assert.Contains(t, []string{"dark", "light"}, themes.ByName("system").Name)
}
