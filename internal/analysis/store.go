// Package analysis owns the analysis history: remote-or-synthesized analysis,
// history sync, derived statistics, and local history queries.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/lensline/internal/api"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/service"
)

// Record sources reported to the metrics recorder.
const (
	SourceRemote    = "remote"
	SourceSynthetic = "synthetic"
)

// Remote is the analysis half of the remote service.
type Remote interface {
	Analyze(ctx context.Context, in api.AnalyzeRequest) api.Result[model.AnalysisRecord]
	ListAnalyses(ctx context.Context) api.Result[[]model.AnalysisRecord]
	GetAnalysis(ctx context.Context, id string) api.Result[model.AnalysisRecord]
	DeleteAnalysis(ctx context.Context, id string) api.Result[struct{}]
}

// Recorder receives store events for metrics.
type Recorder interface {
	AnalysisAdded(source string, verdict model.Verdict)
	RemoteFailure(operation string)
	HistorySize(n int)
}

type nopRecorder struct{}

func (nopRecorder) AnalysisAdded(string, model.Verdict) {}
func (nopRecorder) RemoteFailure(string)                {}
func (nopRecorder) HistorySize(int)                     {}

// Option configures a Store.
type Option func(*Store)

// WithJournal mirrors every history mutation to j.
func WithJournal(j service.HistoryJournal) Option {
	return func(s *Store) { s.journal = j }
}

// WithBlobStore keeps local uploads behind owned references.
func WithBlobStore(b service.BlobStore) Option {
	return func(s *Store) { s.blobs = b }
}

// WithSynthesizer replaces the default randomly seeded synthesizer.
func WithSynthesizer(syn *Synthesizer) Option {
	return func(s *Store) { s.synth = syn }
}

// WithRecorder reports store events to r.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.metrics = r }
}

// Store is the single owner of the analysis history, the current record,
// the busy flag, and the derived statistics. It is safe for concurrent use.
type Store struct {
	remote  Remote
	journal service.HistoryJournal
	blobs   service.BlobStore
	synth   *Synthesizer
	metrics Recorder
	current *model.AnalysisRecord
	records []model.AnalysisRecord
	stats   model.Stats
	mu      sync.RWMutex
	busy    int
}

// NewStore creates an empty store backed by remote.
func NewStore(remote Remote, opts ...Option) *Store {
	s := &Store{
		remote:  remote,
		metrics: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.synth == nil {
		s.synth = NewSynthesizer(nil)
	}
	return s
}

// Analyze submits in to the remote service. When the service is unavailable
// a synthesized record is inserted instead, so exactly one record is added
// per valid call. A record whose id is already in the history replaces the
// older copy, keeping ids unique as the journal does. The only error is an
// invalid Input.
func (s *Store) Analyze(ctx context.Context, in Input) (model.AnalysisRecord, error) {
	if err := in.validate(); err != nil {
		return model.AnalysisRecord{}, err
	}

	s.setBusy(1)
	defer s.setBusy(-1)

	res := s.remoteAnalyze(ctx, in)
	record, ok := res.Get()
	source := SourceRemote
	if !ok {
		slog.Warn("Remote analysis unavailable, using synthesized placeholder",
			"operation", "analyze",
			"input", in.Label(),
			"error", res.Reason())
		s.metrics.RemoteFailure("analyze")
		record = s.synth.Synthesize(s.imageRef(ctx, in))
		source = SourceSynthetic
	}

	s.mu.Lock()
	var replaced []model.AnalysisRecord
	s.records = slices.DeleteFunc(s.records, func(r model.AnalysisRecord) bool {
		if r.ID == record.ID {
			if r.ImageURL != record.ImageURL {
				replaced = append(replaced, r)
			}
			return true
		}
		return false
	})
	s.records = slices.Insert(s.records, 0, record)
	s.setCurrentLocked(record)
	s.recomputeLocked()
	s.journalLocked("save", func(j service.HistoryJournal) error {
		return j.SaveAnalysis(ctx, record)
	})
	size := len(s.records)
	s.mu.Unlock()

	s.release(ctx, replaced)
	s.metrics.AnalysisAdded(source, record.Verdict)
	s.metrics.HistorySize(size)
	slog.Debug("Analysis added", "analysis_id", record.ID, "verdict", record.Verdict, "source", source)

	return record, nil
}

func (s *Store) remoteAnalyze(ctx context.Context, in Input) api.Result[model.AnalysisRecord] {
	if s.remote == nil {
		return api.Unavailable[model.AnalysisRecord](fmt.Errorf("no remote configured"))
	}
	return s.remote.Analyze(ctx, in.request())
}

// imageRef picks the image reference for a synthesized record.
func (s *Store) imageRef(ctx context.Context, in Input) string {
	if !in.IsFile() {
		return in.URL
	}
	if s.blobs != nil {
		ref, err := s.blobs.Put(ctx, in.FileName, in.ContentType, in.Data)
		if err == nil {
			return ref
		}
		slog.Warn("Failed to store local image", "file", in.FileName, "error", err)
	}
	return "local:" + in.FileName
}

// FetchHistory replaces the local history with the remote one. On failure
// the local history is kept and false is returned.
func (s *Store) FetchHistory(ctx context.Context) bool {
	if s.remote == nil {
		return false
	}

	res := s.remote.ListAnalyses(ctx)
	records, ok := res.Get()
	if !ok {
		slog.Warn("Remote history unavailable, keeping local history",
			"operation", "list_analyses",
			"error", res.Reason())
		s.metrics.RemoteFailure("list_analyses")
		return false
	}

	s.mu.Lock()
	old := s.records
	s.records = slices.Clone(records)
	s.recomputeLocked()
	s.journalLocked("replace", func(j service.HistoryJournal) error {
		return j.ReplaceAnalyses(ctx, s.records)
	})
	size := len(s.records)
	s.mu.Unlock()

	s.releaseDropped(ctx, old, records)
	s.metrics.HistorySize(size)
	return true
}

// GetAnalysis looks id up remotely, then locally. The found record becomes
// the current record. ok is false when neither source has it.
func (s *Store) GetAnalysis(ctx context.Context, id string) (model.AnalysisRecord, bool) {
	if s.remote != nil {
		res := s.remote.GetAnalysis(ctx, id)
		if record, ok := res.Get(); ok {
			s.mu.Lock()
			s.setCurrentLocked(record)
			s.mu.Unlock()
			return record, true
		}
		slog.Debug("Remote lookup failed, checking local history",
			"operation", "get_analysis",
			"analysis_id", id,
			"error", res.Reason())
		s.metrics.RemoteFailure("get_analysis")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			s.setCurrentLocked(r)
			return r, true
		}
	}
	return model.AnalysisRecord{}, false
}

// DeleteAnalysis asks the remote service to delete id and removes it locally
// whatever the remote outcome. Deleting an absent id is a no-op.
func (s *Store) DeleteAnalysis(ctx context.Context, id string) {
	if s.remote != nil {
		res := s.remote.DeleteAnalysis(ctx, id)
		switch {
		case res.OK():
		case api.IsStatus(res.Reason(), http.StatusNotFound):
			slog.Debug("Analysis already gone remotely", "analysis_id", id)
		default:
			slog.Warn("Remote delete failed, removing locally",
				"operation", "delete_analysis",
				"analysis_id", id,
				"error", res.Reason())
			s.metrics.RemoteFailure("delete_analysis")
		}
	}

	s.mu.Lock()
	var removed []model.AnalysisRecord
	s.records = slices.DeleteFunc(s.records, func(r model.AnalysisRecord) bool {
		if r.ID == id {
			removed = append(removed, r)
			return true
		}
		return false
	})
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.recomputeLocked()
	s.journalLocked("delete", func(j service.HistoryJournal) error {
		return j.DeleteAnalysis(ctx, id)
	})
	size := len(s.records)
	s.mu.Unlock()

	s.release(ctx, removed)
	s.metrics.HistorySize(size)
}

// ClearHistory empties the local history. No remote call is made.
func (s *Store) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	removed := s.records
	s.records = nil
	s.current = nil
	s.recomputeLocked()
	s.journalLocked("clear", func(j service.HistoryJournal) error {
		return j.ClearAnalyses(ctx)
	})
	s.mu.Unlock()

	s.release(ctx, removed)
	s.metrics.HistorySize(0)
}

// ClearCurrent drops the current record pointer only.
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Restore loads the journal into memory, replacing the in-memory history.
func (s *Store) Restore(ctx context.Context) error {
	if s.journal == nil {
		return nil
	}

	records, err := s.journal.LoadAnalyses(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore history: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.recomputeLocked()
	size := len(s.records)
	s.mu.Unlock()

	s.metrics.HistorySize(size)
	slog.Debug("Restored analysis history", "records", size)
	return nil
}

// Prune removes records analyzed before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) int {
	s.mu.Lock()
	var removed []model.AnalysisRecord
	s.records = slices.DeleteFunc(s.records, func(r model.AnalysisRecord) bool {
		if r.Timestamp.Before(cutoff) {
			removed = append(removed, r)
			return true
		}
		return false
	})
	if len(removed) == 0 {
		s.mu.Unlock()
		return 0
	}
	if s.current != nil && s.current.Timestamp.Before(cutoff) {
		s.current = nil
	}
	s.recomputeLocked()
	for _, r := range removed {
		s.journalLocked("prune", func(j service.HistoryJournal) error {
			return j.DeleteAnalysis(ctx, r.ID)
		})
	}
	size := len(s.records)
	s.mu.Unlock()

	s.release(ctx, removed)
	s.metrics.HistorySize(size)
	slog.Info("Pruned expired analyses", "removed", len(removed), "cutoff", cutoff)
	return len(removed)
}

// Analyses returns a copy of the history, most recent first.
func (s *Store) Analyses() []model.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Current returns the current record, if any.
func (s *Store) Current() (model.AnalysisRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.AnalysisRecord{}, false
	}
	return *s.current, true
}

// Stats returns the statistics derived from the current history.
func (s *Store) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// IsAnalyzing reports whether any Analyze call is in flight. It is a hint,
// not a gate: concurrent calls all proceed.
func (s *Store) IsAnalyzing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy > 0
}

func (s *Store) setBusy(delta int) {
	s.mu.Lock()
	s.busy += delta
	s.mu.Unlock()
}

func (s *Store) setCurrentLocked(r model.AnalysisRecord) {
	s.current = &r
}

func (s *Store) recomputeLocked() {
	s.stats = ComputeStats(s.records)
}

// journalLocked applies fn to the journal. Failures are logged, never
// surfaced: the in-memory history stays authoritative.
func (s *Store) journalLocked(op string, fn func(service.HistoryJournal) error) {
	if s.journal == nil {
		return
	}
	if err := fn(s.journal); err != nil {
		slog.Warn("Failed to update history journal", "operation", op, "error", err)
	}
}

// releaseDropped releases references held by old records that are absent
// from the replacement list.
func (s *Store) releaseDropped(ctx context.Context, old, replacement []model.AnalysisRecord) {
	kept := make(map[string]struct{}, len(replacement))
	for _, r := range replacement {
		kept[r.ImageURL] = struct{}{}
	}
	var dropped []model.AnalysisRecord
	for _, r := range old {
		if _, ok := kept[r.ImageURL]; !ok {
			dropped = append(dropped, r)
		}
	}
	s.release(ctx, dropped)
}

func (s *Store) release(ctx context.Context, records []model.AnalysisRecord) {
	if s.blobs == nil {
		return
	}
	for _, r := range records {
		if !s.blobs.Owns(r.ImageURL) {
			continue
		}
		if err := s.blobs.Release(ctx, r.ImageURL); err != nil {
			slog.Warn("Failed to release image", "analysis_id", r.ID, "ref", r.ImageURL, "error", err)
		}
	}
}
