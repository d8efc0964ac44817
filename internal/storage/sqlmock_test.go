package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*SQLiteStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newFromDB(db, "mock"), mock
}

func TestKeyValueErrors(t *testing.T) {
	ctx := context.Background()
	diskErr := errors.New("disk I/O error")

	t.Run("get surfaces query failure", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = ?`)).
			WithArgs("lensline-token").
			WillReturnError(diskErr)

		_, found, err := store.Get(ctx, "lensline-token")
		assert.ErrorIs(t, err, diskErr)
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete issues a single statement", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key IN (?,?)`)).
			WithArgs("lensline-auth", "lensline-token").
			WillReturnResult(sqlmock.NewResult(0, 2))

		require.NoError(t, store.Delete(ctx, "lensline-auth", "lensline-token"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("set surfaces exec failure", func(t *testing.T) {
		store, mock := newMockStorage(t)
		mock.ExpectExec(`INSERT INTO kv`).WillReturnError(diskErr)

		assert.ErrorIs(t, store.Set(ctx, "k", "v"), diskErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReplaceAnalysesRollsBack(t *testing.T) {
	store, mock := newMockStorage(t)
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	insertErr := errors.New("constraint failed")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM analyses`)).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`INSERT OR REPLACE INTO analyses`).
		WithArgs("older", "authentic", 70, sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT OR REPLACE INTO analyses`).
		WithArgs("newer", "fake", 99, sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnError(insertErr)
	mock.ExpectRollback()

	err := store.ReplaceAnalyses(ctx, []model.AnalysisRecord{
		record("newer", model.VerdictFake, 99, ts.Add(time.Hour)),
		record("older", model.VerdictAuthentic, 70, ts),
	})
	assert.ErrorIs(t, err, insertErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadAnalysesCorruptPayload(t *testing.T) {
	store, mock := newMockStorage(t)

	rows := sqlmock.NewRows([]string{"id", "payload"}).AddRow("analysis-1", "{not json")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, payload FROM analyses ORDER BY seq DESC`)).WillReturnRows(rows)

	_, err := store.LoadAnalyses(context.Background())
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateSchemaMismatch(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA user_version`)).
		WillReturnRows(sqlmock.NewRows([]string{"user_version"}).AddRow(ExpectedSchemaVersion + 3))
	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA user_version`)).
		WillReturnRows(sqlmock.NewRows([]string{"user_version"}).AddRow(ExpectedSchemaVersion + 3))

	err := store.Migrate(context.Background())
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}
