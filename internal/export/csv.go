// Package export writes analysis history to CSV and Google Sheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Veraticus/lensline/internal/model"
)

// Header is the column layout shared by every export format.
var Header = []string{
	"id", "timestamp", "verdict", "confidence",
	"face_score", "metadata_score", "ai_score",
	"processing_ms", "synthetic", "image_url",
}

// Row flattens a record into Header's column order.
func Row(r model.AnalysisRecord) []string {
	return []string{
		r.ID,
		r.Timestamp.UTC().Format(time.RFC3339),
		string(r.Verdict),
		strconv.Itoa(r.Confidence),
		strconv.Itoa(r.Details.FaceAnalysis.Score),
		strconv.Itoa(r.Details.MetadataAnalysis.Score),
		strconv.Itoa(r.Details.AIDetection.Score),
		strconv.Itoa(r.ProcessingTime),
		strconv.FormatBool(r.Synthetic),
		r.ImageURL,
	}
}

// WriteCSV writes a header line followed by one line per record, in the
// order given.
func WriteCSV(w io.Writer, records []model.AnalysisRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
