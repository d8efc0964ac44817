package tui

import (
	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/tui/components"
)

// refreshDoneMsg reports whether the history came from the remote service
// and carries the resulting snapshot.
type refreshDoneMsg struct {
	history components.HistoryLoadedMsg
	synced  bool
}

type startRefreshMsg struct{}

// detailLoadedMsg carries the record opened in the detail view.
type detailLoadedMsg struct {
	record model.AnalysisRecord
	found  bool
}
