// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"time"
)

// Verdict is the three-way classification attached to an analyzed image.
type Verdict string

// Verdict constants.
const (
	VerdictAuthentic  Verdict = "authentic"
	VerdictSuspicious Verdict = "suspicious"
	VerdictFake       Verdict = "fake"
)

// Verdicts lists every verdict in display order.
var Verdicts = []Verdict{VerdictAuthentic, VerdictSuspicious, VerdictFake}

// Valid reports whether v is one of the known verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictAuthentic, VerdictSuspicious, VerdictFake:
		return true
	}
	return false
}

// ParseVerdict converts user input into a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown verdict %q (want authentic, suspicious or fake)", s)
	}
	return v, nil
}

// FaceAnalysis holds the face sub-score.
type FaceAnalysis struct {
	Inconsistencies []string `json:"inconsistencies"`
	Score           int      `json:"score"`
}

// MetadataAnalysis holds the metadata sub-score.
type MetadataAnalysis struct {
	Flags []string `json:"flags"`
	Score int      `json:"score"`
}

// AIDetection holds the generator-fingerprint sub-score.
type AIDetection struct {
	Model    string   `json:"model,omitempty"`
	Patterns []string `json:"patterns"`
	Score    int      `json:"score"`
}

// Details groups the three named sub-scores of an analysis.
type Details struct {
	FaceAnalysis     FaceAnalysis     `json:"faceAnalysis"`
	MetadataAnalysis MetadataAnalysis `json:"metadataAnalysis"`
	AIDetection      AIDetection      `json:"aiDetection"`
}

// AnalysisRecord is one completed analysis. Verdict and Confidence are set
// together at creation and never mutated independently afterwards.
type AnalysisRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	Heatmap        *string   `json:"heatmap"`
	ID             string    `json:"id"`
	ImageURL       string    `json:"imageUrl"`
	Verdict        Verdict   `json:"verdict"`
	Details        Details   `json:"details"`
	Confidence     int       `json:"confidence"`
	ProcessingTime int       `json:"processingTime"`
	Synthetic      bool      `json:"synthetic,omitempty"`
}

// Validate checks the invariants every record must satisfy.
func (r AnalysisRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("analysis id is required")
	}
	if !r.Verdict.Valid() {
		return fmt.Errorf("analysis %s: invalid verdict %q", r.ID, r.Verdict)
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return fmt.Errorf("analysis %s: confidence %d out of range", r.ID, r.Confidence)
	}
	return nil
}

// Stats is derived from the record list and never authored directly.
type Stats struct {
	TotalScans      int `json:"totalScans"`
	AuthenticCount  int `json:"authenticCount"`
	SuspiciousCount int `json:"suspiciousCount"`
	FakeCount       int `json:"fakeCount"`
	AvgConfidence   int `json:"avgConfidence"`
}

// Count returns the number of records with the given verdict.
func (s Stats) Count(v Verdict) int {
	switch v {
	case VerdictAuthentic:
		return s.AuthenticCount
	case VerdictSuspicious:
		return s.SuspiciousCount
	case VerdictFake:
		return s.FakeCount
	}
	return 0
}

// Share returns the fraction (0-1) of scans with the given verdict.
func (s Stats) Share(v Verdict) float64 {
	if s.TotalScans == 0 {
		return 0
	}
	return float64(s.Count(v)) / float64(s.TotalScans)
}

// MetadataStatus grades a single metadata row.
type MetadataStatus string

// Metadata status constants.
const (
	MetadataNormal  MetadataStatus = "normal"
	MetadataWarning MetadataStatus = "warning"
	MetadataAnomaly MetadataStatus = "anomaly"
)

// MetadataItem is one inspected EXIF field.
type MetadataItem struct {
	Field   string         `json:"field"`
	Value   string         `json:"value"`
	Status  MetadataStatus `json:"status"`
	Tooltip string         `json:"tooltip,omitempty"`
	Icon    string         `json:"icon,omitempty"`
}
