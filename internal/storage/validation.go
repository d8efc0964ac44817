// Package storage provides the SQLite persistence layer for lensline.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/lensline/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidRecord  = errors.New("invalid analysis record")
	ErrSchemaMismatch = errors.New("database schema mismatch")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateKeys(keys []string) error {
	for i, key := range keys {
		if err := validateString(key, fmt.Sprintf("keys[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// validateRecord checks a record before it is journaled.
func validateRecord(record model.AnalysisRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if record.Timestamp.IsZero() {
		return fmt.Errorf("%w: analysis %s: missing timestamp", ErrInvalidRecord, record.ID)
	}
	return nil
}
