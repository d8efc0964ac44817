package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/lensline/internal/model"
)

// BaseTime anchors fixture timestamps so tests stay deterministic.
var BaseTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// RecordOption customizes a fixture record.
type RecordOption func(*model.AnalysisRecord)

// WithVerdict sets verdict and confidence together.
func WithVerdict(v model.Verdict, confidence int) RecordOption {
	return func(r *model.AnalysisRecord) {
		r.Verdict = v
		r.Confidence = confidence
	}
}

// WithTimestamp sets the analysis time.
func WithTimestamp(ts time.Time) RecordOption {
	return func(r *model.AnalysisRecord) {
		r.Timestamp = ts
	}
}

// WithImageURL sets the image reference.
func WithImageURL(u string) RecordOption {
	return func(r *model.AnalysisRecord) {
		r.ImageURL = u
	}
}

// Synthetic marks the record as locally synthesized.
func Synthetic() RecordOption {
	return func(r *model.AnalysisRecord) {
		r.Synthetic = true
	}
}

// NewRecord returns a valid authentic record with the given id.
func NewRecord(id string, opts ...RecordOption) model.AnalysisRecord {
	r := model.AnalysisRecord{
		ID:         id,
		ImageURL:   fmt.Sprintf("https://images.example.com/%s.jpg", id),
		Verdict:    model.VerdictAuthentic,
		Confidence: 90,
		Timestamp:  BaseTime,
		Details: model.Details{
			FaceAnalysis:     model.FaceAnalysis{Score: 12, Inconsistencies: []string{}},
			MetadataAnalysis: model.MetadataAnalysis{Score: 8, Flags: []string{}},
			AIDetection:      model.AIDetection{Score: 5, Patterns: []string{}},
		},
		ProcessingTime: 840,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Records returns n records, most recent first, with ids rec-<n-1> .. rec-0
// spaced one minute apart.
func Records(n int) []model.AnalysisRecord {
	out := make([]model.AnalysisRecord, 0, n)
	for i := n - 1; i >= 0; i-- {
		v := model.Verdicts[i%len(model.Verdicts)]
		out = append(out, NewRecord(fmt.Sprintf("rec-%d", i),
			WithVerdict(v, 70+i%30),
			WithTimestamp(BaseTime.Add(time.Duration(i)*time.Minute)),
		))
	}
	return out
}
