// Package components holds the panels the dashboard is built from.
package components

import "github.com/Veraticus/lensline/internal/model"

// HistoryLoadedMsg carries a fresh snapshot of the history.
type HistoryLoadedMsg struct {
	Records []model.AnalysisRecord
	Stats   model.Stats
}
