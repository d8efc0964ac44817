package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/lensline/internal/model"
)

// INSERT OR REPLACE drops a conflicting row first, so a re-saved id moves
// to the front of the journal.
const saveAnalysisSQL = `
	INSERT OR REPLACE INTO analyses (id, verdict, confidence, analyzed_at, synthetic, payload)
	VALUES (?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveAnalysis appends record as the most recent journal entry.
func (s *SQLiteStorage) SaveAnalysis(ctx context.Context, record model.AnalysisRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}
	return saveAnalysis(ctx, s.db, record)
}

func saveAnalysis(ctx context.Context, db execer, record model.AnalysisRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode analysis %s: %w", record.ID, err)
	}

	_, err = db.ExecContext(ctx, saveAnalysisSQL,
		record.ID,
		string(record.Verdict),
		record.Confidence,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
		record.Synthetic,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", record.ID, err)
	}
	return nil
}

// DeleteAnalysis removes the entry with id. Removing an absent id is a no-op.
func (s *SQLiteStorage) DeleteAnalysis(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete analysis %s: %w", id, err)
	}
	return nil
}

// ReplaceAnalyses swaps the whole journal for records, given most-recent-first.
func (s *SQLiteStorage) ReplaceAnalyses(ctx context.Context, records []model.AnalysisRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for _, record := range records {
		if err := validateRecord(record); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM analyses`); err != nil {
		return fmt.Errorf("failed to clear analyses: %w", err)
	}

	// Oldest first so the newest record ends up with the highest seq.
	for i := len(records) - 1; i >= 0; i-- {
		if err = saveAnalysis(ctx, tx, records[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analyses: %w", err)
	}
	return nil
}

// ClearAnalyses empties the journal.
func (s *SQLiteStorage) ClearAnalyses(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analyses`); err != nil {
		return fmt.Errorf("failed to clear analyses: %w", err)
	}
	return nil
}

// LoadAnalyses returns the journal most-recent-first.
func (s *SQLiteStorage) LoadAnalyses(ctx context.Context) ([]model.AnalysisRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM analyses ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.AnalysisRecord
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		var record model.AnalysisRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("%w: analysis %s: %w", ErrInvalidRecord, id, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return records, nil
}
