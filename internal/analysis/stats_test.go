package analysis

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	rec := func(v model.Verdict, c int) model.AnalysisRecord {
		return testutil.NewRecord("r", testutil.WithVerdict(v, c))
	}

	tests := []struct {
		name    string
		records []model.AnalysisRecord
		want    model.Stats
	}{
		{
			name: "empty yields zero and no division",
			want: model.Stats{},
		},
		{
			name:    "single",
			records: []model.AnalysisRecord{rec(model.VerdictSuspicious, 81)},
			want:    model.Stats{TotalScans: 1, SuspiciousCount: 1, AvgConfidence: 81},
		},
		{
			name: "rounds half up",
			records: []model.AnalysisRecord{
				rec(model.VerdictAuthentic, 70),
				rec(model.VerdictFake, 71),
			},
			want: model.Stats{TotalScans: 2, AuthenticCount: 1, FakeCount: 1, AvgConfidence: 71},
		},
		{
			name: "rounds down below half",
			records: []model.AnalysisRecord{
				rec(model.VerdictAuthentic, 90),
				rec(model.VerdictAuthentic, 90),
				rec(model.VerdictSuspicious, 91),
			},
			want: model.Stats{TotalScans: 3, AuthenticCount: 2, SuspiciousCount: 1, AvgConfidence: 90},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.records))
		})
	}
}

func TestStatsShare(t *testing.T) {
	stats := ComputeStats(testutil.Records(9))
	assert.InDelta(t, 1.0/3, stats.Share(model.VerdictFake), 1e-9)
	assert.Zero(t, model.Stats{}.Share(model.VerdictFake))
}

// The synthesizer produces placeholder demo data. These tests pin its
// shape and ranges only; nothing here is a detection result.
func TestSynthesizer_PlaceholderShape(t *testing.T) {
	syn := NewSynthesizer(rand.NewPCG(42, 7))
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	syn.now = func() time.Time { return fixed }

	seen := make(map[model.Verdict]int)
	ids := make(map[string]struct{})

	for range 600 {
		r := syn.Synthesize("https://example.com/x.jpg")
		require.NoError(t, r.Validate())
		seen[r.Verdict]++
		ids[r.ID] = struct{}{}

		assert.True(t, r.Synthetic)
		assert.Equal(t, fixed, r.Timestamp)
		assert.Nil(t, r.Heatmap)
		assert.Equal(t, SynthModel, r.Details.AIDetection.Model)
		assert.Regexp(t, `^analysis-1748779200000-[0-9a-f-]{8}$`, r.ID)

		assert.GreaterOrEqual(t, r.Confidence, 70)
		assert.LessOrEqual(t, r.Confidence, 99)
		assert.GreaterOrEqual(t, r.ProcessingTime, 500)
		assert.LessOrEqual(t, r.ProcessingTime, 2499)
		for _, score := range []int{r.Details.FaceAnalysis.Score, r.Details.MetadataAnalysis.Score, r.Details.AIDetection.Score} {
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 99)
		}

		switch r.Verdict {
		case model.VerdictAuthentic:
			assert.Empty(t, r.Details.FaceAnalysis.Inconsistencies)
			assert.Empty(t, r.Details.AIDetection.Patterns)
			assert.Empty(t, r.Details.MetadataAnalysis.Flags)
		case model.VerdictSuspicious:
			assert.Equal(t, faceFlags, r.Details.FaceAnalysis.Inconsistencies)
			assert.Equal(t, aiPatterns, r.Details.AIDetection.Patterns)
			assert.Empty(t, r.Details.MetadataAnalysis.Flags)
		case model.VerdictFake:
			assert.Equal(t, faceFlags, r.Details.FaceAnalysis.Inconsistencies)
			assert.Equal(t, aiPatterns, r.Details.AIDetection.Patterns)
			assert.Equal(t, metadataFlags, r.Details.MetadataAnalysis.Flags)
		}
	}

	for _, v := range model.Verdicts {
		assert.Greater(t, seen[v], 100, "verdict %s drawn too rarely", v)
	}
	assert.Len(t, ids, 600, "ids must stay unique within one millisecond")
}

func TestSynthesizer_FlagsAreNotShared(t *testing.T) {
	syn := NewSynthesizer(rand.NewPCG(3, 3))
	for range 50 {
		r := syn.Synthesize("u")
		if r.Verdict == model.VerdictFake {
			r.Details.MetadataAnalysis.Flags[0] = "mutated"
			break
		}
	}
	assert.Equal(t, "EXIF data stripped", metadataFlags[0])
}
