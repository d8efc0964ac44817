package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/lensline/internal/model"
)

func TestSQLiteStorage_FullWorkflow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "workflow.db")
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	// Step 1: Persist a session and some history
	t.Log("Step 1: Saving session and history")
	if err := store.Set(ctx, "lensline-token", "tok-123"); err != nil {
		t.Fatalf("Failed to save token: %v", err)
	}
	for i := range 5 {
		r := record(fmt.Sprintf("workflow-%d", i), model.Verdicts[i%3], 60+i, base.Add(time.Duration(i)*time.Minute))
		if err := store.SaveAnalysis(ctx, r); err != nil {
			t.Fatalf("Failed to save analysis %d: %v", i, err)
		}
	}

	// Step 2: Delete one, then close as a process exit would
	t.Log("Step 2: Deleting and closing")
	if err := store.DeleteAnalysis(ctx, "workflow-2"); err != nil {
		t.Fatalf("Failed to delete analysis: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Failed to close storage: %v", err)
	}

	// Step 3: Reopen and verify everything survived
	t.Log("Step 3: Reopening")
	store, err = NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate reopened storage: %v", err)
	}

	token, found, err := store.Get(ctx, "lensline-token")
	if err != nil || !found || token != "tok-123" {
		t.Errorf("Get(lensline-token) = %q, %v, %v; want tok-123, true, nil", token, found, err)
	}

	loaded, err := store.LoadAnalyses(ctx)
	if err != nil {
		t.Fatalf("Failed to load analyses: %v", err)
	}
	want := []string{"workflow-4", "workflow-3", "workflow-1", "workflow-0"}
	if len(loaded) != len(want) {
		t.Fatalf("Expected %d analyses, got %d", len(want), len(loaded))
	}
	for i, id := range want {
		if loaded[i].ID != id {
			t.Errorf("loaded[%d].ID = %s, want %s", i, loaded[i].ID, id)
		}
	}
}

func TestSQLiteStorage_ErrorRecovery(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	ts := time.Now()

	original := []model.AnalysisRecord{
		record("keep-1", model.VerdictFake, 90, ts),
		record("keep-2", model.VerdictAuthentic, 70, ts),
	}
	if err := store.ReplaceAnalyses(ctx, original); err != nil {
		t.Fatalf("Failed to seed journal: %v", err)
	}

	// A replacement with one invalid record must leave the journal untouched
	replacement := []model.AnalysisRecord{
		record("new-1", model.VerdictSuspicious, 55, ts),
		record("", model.VerdictFake, 80, ts),
	}
	if err := store.ReplaceAnalyses(ctx, replacement); err == nil {
		t.Error("Expected error for invalid replacement")
	}

	loaded, err := store.LoadAnalyses(ctx)
	if err != nil {
		t.Fatalf("Failed to load analyses: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "keep-1" || loaded[1].ID != "keep-2" {
		t.Errorf("Journal changed after failed replace: %+v", loaded)
	}
}

func TestSQLiteStorage_DataIntegrity(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	heatmap := "https://example.com/heatmap.png"
	r := record("integrity-test", model.VerdictFake, 88, time.Now())
	r.Heatmap = &heatmap
	r.Synthetic = true
	r.Details.AIDetection.Patterns = []string{"Diffusion artifacts", "Upsampling grid"}

	if err := store.SaveAnalysis(ctx, r); err != nil {
		t.Fatalf("Failed to save analysis: %v", err)
	}

	loaded, err := store.LoadAnalyses(ctx)
	if err != nil {
		t.Fatalf("Failed to load analyses: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("Expected 1 analysis, got %d", len(loaded))
	}

	got := loaded[0]
	if got.ID != r.ID {
		t.Errorf("ID = %s, want %s", got.ID, r.ID)
	}
	if got.Verdict != r.Verdict || got.Confidence != r.Confidence {
		t.Errorf("Verdict = %s (%d), want %s (%d)", got.Verdict, got.Confidence, r.Verdict, r.Confidence)
	}
	if got.Heatmap == nil || *got.Heatmap != heatmap {
		t.Errorf("Heatmap = %v, want %s", got.Heatmap, heatmap)
	}
	if !got.Synthetic {
		t.Error("Synthetic flag was lost")
	}
	if len(got.Details.AIDetection.Patterns) != 2 {
		t.Errorf("Patterns = %v, want 2 entries", got.Details.AIDetection.Patterns)
	}
}
