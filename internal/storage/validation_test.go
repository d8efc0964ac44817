package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/lensline/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{name: "valid string", str: "lensline-token", paramName: "key", wantErr: false},
		{name: "empty string", str: "", paramName: "key", wantErr: true},
		{name: "whitespace only", str: "   ", paramName: "id", wantErr: true},
		{name: "string with spaces", str: "  analysis-1  ", paramName: "id", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should contain param name %s, got %v", tt.paramName, err)
			}
		})
	}
}

func TestValidateKeys(t *testing.T) {
	if err := validateKeys([]string{"lensline-auth", "lensline-token"}); err != nil {
		t.Errorf("validateKeys() unexpected error = %v", err)
	}
	if err := validateKeys(nil); err != nil {
		t.Errorf("validateKeys(nil) unexpected error = %v", err)
	}

	err := validateKeys([]string{"lensline-auth", " "})
	if !errors.Is(err, ErrEmptyString) {
		t.Errorf("validateKeys() error = %v, want ErrEmptyString", err)
	}
	if err != nil && !strings.Contains(err.Error(), "keys[1]") {
		t.Errorf("validateKeys() error should name the offending index, got %v", err)
	}
}

func TestValidateRecord(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		errMsg  string
		record  model.AnalysisRecord
		wantErr bool
	}{
		{
			name:    "valid record",
			record:  record("analysis-1", model.VerdictSuspicious, 64, ts),
			wantErr: false,
		},
		{
			name:    "confidence bounds are inclusive",
			record:  record("analysis-1", model.VerdictAuthentic, 100, ts),
			wantErr: false,
		},
		{
			name:    "missing id",
			record:  record("", model.VerdictFake, 80, ts),
			wantErr: true,
			errMsg:  "id is required",
		},
		{
			name:    "unknown verdict",
			record:  record("analysis-1", model.Verdict("real"), 80, ts),
			wantErr: true,
			errMsg:  "invalid verdict",
		},
		{
			name:    "confidence out of range",
			record:  record("analysis-1", model.VerdictFake, 150, ts),
			wantErr: true,
			errMsg:  "out of range",
		},
		{
			name:    "missing timestamp",
			record:  record("analysis-1", model.VerdictFake, 80, time.Time{}),
			wantErr: true,
			errMsg:  "missing timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRecord(tt.record)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("validateRecord() error should wrap ErrInvalidRecord, got %v", err)
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("validateRecord() error should contain %s, got %v", tt.errMsg, err)
			}
		})
	}
}

// TestStorageValidation checks that validation is applied at the storage layer.
func TestStorageValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	t.Run("nil context validation", func(t *testing.T) {
		// These calls intentionally pass nil to verify validation.
		var nilCtx context.Context

		if _, _, err := store.Get(nilCtx, "key"); !errors.Is(err, ErrNilContext) {
			t.Errorf("Get should fail with nil context, got: %v", err)
		}
		if err := store.Set(nilCtx, "key", "value"); !errors.Is(err, ErrNilContext) {
			t.Errorf("Set should fail with nil context, got: %v", err)
		}
		if err := store.Delete(nilCtx, "key"); !errors.Is(err, ErrNilContext) {
			t.Errorf("Delete should fail with nil context, got: %v", err)
		}
		if _, err := store.LoadAnalyses(nilCtx); !errors.Is(err, ErrNilContext) {
			t.Errorf("LoadAnalyses should fail with nil context, got: %v", err)
		}
		if err := store.ClearAnalyses(nilCtx); !errors.Is(err, ErrNilContext) {
			t.Errorf("ClearAnalyses should fail with nil context, got: %v", err)
		}
		if err := store.Migrate(nilCtx); !errors.Is(err, ErrNilContext) {
			t.Errorf("Migrate should fail with nil context, got: %v", err)
		}
	})

	t.Run("empty string validation", func(t *testing.T) {
		ctx := context.Background()

		if _, _, err := store.Get(ctx, ""); !errors.Is(err, ErrEmptyString) {
			t.Errorf("Get should fail with empty key, got: %v", err)
		}
		if err := store.Set(ctx, "   ", "value"); !errors.Is(err, ErrEmptyString) {
			t.Errorf("Set should fail with whitespace key, got: %v", err)
		}
		if err := store.DeleteAnalysis(ctx, ""); !errors.Is(err, ErrEmptyString) {
			t.Errorf("DeleteAnalysis should fail with empty id, got: %v", err)
		}
		if _, err := NewSQLiteStorage(""); !errors.Is(err, ErrEmptyString) {
			t.Errorf("NewSQLiteStorage should fail with empty path, got: %v", err)
		}
	})
}
