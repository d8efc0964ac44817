package analysis

import (
	"math"

	"github.com/Veraticus/lensline/internal/model"
)

// ComputeStats derives aggregate statistics from records. It is a full
// recomputation; an empty list yields the zero Stats.
func ComputeStats(records []model.AnalysisRecord) model.Stats {
	var stats model.Stats
	if len(records) == 0 {
		return stats
	}

	sum := 0
	for _, r := range records {
		switch r.Verdict {
		case model.VerdictAuthentic:
			stats.AuthenticCount++
		case model.VerdictSuspicious:
			stats.SuspiciousCount++
		case model.VerdictFake:
			stats.FakeCount++
		}
		sum += r.Confidence
	}

	stats.TotalScans = len(records)
	stats.AvgConfidence = int(math.Round(float64(sum) / float64(len(records))))
	return stats
}
