package analysis

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/lensline/internal/model"
)

// SortOrder orders history listings.
type SortOrder string

// Sort orders.
const (
	SortNewest         SortOrder = "newest"
	SortOldest         SortOrder = "oldest"
	SortConfidenceHigh SortOrder = "confidence-high"
	SortConfidenceLow  SortOrder = "confidence-low"
)

// SortOrders lists the accepted orders.
var SortOrders = []SortOrder{SortNewest, SortOldest, SortConfidenceHigh, SortConfidenceLow}

// ParseSortOrder validates a sort flag; empty means newest.
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortNewest, nil
	}
	order := SortOrder(s)
	if !slices.Contains(SortOrders, order) {
		return "", fmt.Errorf("unknown sort order %q", s)
	}
	return order, nil
}

// Query filters and sorts a history listing. The zero Query returns
// every record newest first.
type Query struct {
	Verdict model.Verdict
	Search  string
	Sort    SortOrder
}

// FilterRecords applies q to records without modifying them.
func FilterRecords(records []model.AnalysisRecord, q Query) []model.AnalysisRecord {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]model.AnalysisRecord, 0, len(records))
	for _, r := range records {
		if q.Verdict != "" && r.Verdict != q.Verdict {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.ID), search) {
			continue
		}
		out = append(out, r)
	}

	switch q.Sort {
	case SortOldest:
		slices.SortStableFunc(out, func(a, b model.AnalysisRecord) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
	case SortConfidenceHigh:
		slices.SortStableFunc(out, func(a, b model.AnalysisRecord) int {
			return cmp.Compare(b.Confidence, a.Confidence)
		})
	case SortConfidenceLow:
		slices.SortStableFunc(out, func(a, b model.AnalysisRecord) int {
			return cmp.Compare(a.Confidence, b.Confidence)
		})
	default:
		slices.SortStableFunc(out, func(a, b model.AnalysisRecord) int {
			return b.Timestamp.Compare(a.Timestamp)
		})
	}

	return out
}
