package analysis

import (
	"github.com/Veraticus/lensline/internal/model"
)

// Achievement is a profile badge unlocked by usage.
type Achievement struct {
	Name        string
	Description string
	Unlocked    bool
}

// speedDemonPerDay is how many scans in one UTC day unlock Speed Demon.
const speedDemonPerDay = 10

// Achievements evaluates every badge against the history and its stats.
func Achievements(records []model.AnalysisRecord, stats model.Stats) []Achievement {
	return []Achievement{
		{
			Name:        "First Scan",
			Description: "Complete your first analysis",
			Unlocked:    stats.TotalScans >= 1,
		},
		{
			Name:        "Detective",
			Description: "Detect 10 fake images",
			Unlocked:    stats.FakeCount >= 10,
		},
		{
			Name:        "Power User",
			Description: "Complete 100 scans",
			Unlocked:    stats.TotalScans >= 100,
		},
		{
			Name:        "Speed Demon",
			Description: "Analyze 10 images in one day",
			Unlocked:    busiestDay(records) >= speedDemonPerDay,
		},
	}
}

func busiestDay(records []model.AnalysisRecord) int {
	perDay := make(map[string]int)
	best := 0
	for _, r := range records {
		day := r.Timestamp.UTC().Format("2006-01-02")
		perDay[day]++
		best = max(best, perDay[day])
	}
	return best
}
