// Package service defines the interfaces shared between application packages.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/lensline/internal/model"
)

// KeyValueStore persists small named entries across process restarts.
// Get reports found=false for a missing key rather than an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// HistoryJournal mirrors the analysis history so it survives restarts.
// LoadAnalyses returns records most-recent-first, matching list order.
type HistoryJournal interface {
	SaveAnalysis(ctx context.Context, record model.AnalysisRecord) error
	DeleteAnalysis(ctx context.Context, id string) error
	ReplaceAnalyses(ctx context.Context, records []model.AnalysisRecord) error
	ClearAnalyses(ctx context.Context) error
	LoadAnalyses(ctx context.Context) ([]model.AnalysisRecord, error)
}

// BlobStore owns local image payloads referenced by synthesized records.
// A reference returned by Put stays valid until Release is called.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (ref string, err error)
	Release(ctx context.Context, ref string) error
	Owns(ref string) bool
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
