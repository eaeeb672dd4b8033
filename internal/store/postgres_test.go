package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-analyzer/internal/common/errors"
)

var recordColumns = []string{"id", "input", "mode", "source", "scenario_id", "response", "created_at"}

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db, 20), mock
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(schemaSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.EnsureSchema(context.Background()))

	mock.ExpectExec(schemaSQL).WillReturnError(stderrors.New("permission denied"))
	err := s.EnsureSchema(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreOperationFailed))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	rec := sampleRecord("charged twice")

	mock.ExpectExec(insertSQL).
		WithArgs(rec.ID, rec.Input, "simulated", "scenario", "support-billing", sqlmock.AnyArg(), rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveFallbackHasNullScenario(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	rec := sampleRecord("hello")
	rec.ScenarioID = ""
	rec.Source = "fallback"

	mock.ExpectExec(insertSQL).
		WithArgs(rec.ID, rec.Input, "simulated", "fallback", nil, sqlmock.AnyArg(), rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveFailure(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(insertSQL).WillReturnError(stderrors.New("duplicate key"))

	err := s.Save(context.Background(), sampleRecord("x"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreOperationFailed))
}

func TestPostgresStore_Get(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	rec := sampleRecord("charged twice")
	resp, err := json.Marshal(rec.Response)
	require.NoError(t, err)

	mock.ExpectQuery(selectOneSQL).
		WithArgs(rec.ID).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(rec.ID, rec.Input, rec.Mode, rec.Source, rec.ScenarioID, resp, rec.CreatedAt))

	got, err := s.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "support-billing", got.ScenarioID)
	assert.Equal(t, "Billing Dispute - Refund Request", got.Response.Intent)
	assert.InDelta(t, 0.92, *got.Response.IntentConfidence, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		setup func(sqlmock.Sqlmock, string)
	}{
		{
			name: "no rows",
			id:   uuid.NewString(),
			setup: func(mock sqlmock.Sqlmock, id string) {
				mock.ExpectQuery(selectOneSQL).WithArgs(id).
					WillReturnRows(sqlmock.NewRows(recordColumns))
			},
		},
		{
			name:  "malformed id skips the query",
			id:    "not-a-uuid",
			setup: func(sqlmock.Sqlmock, string) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockPostgresStore(t)
			tt.setup(mock, tt.id)

			_, err := s.Get(context.Background(), tt.id)
			assert.True(t, errors.HasCode(err, errors.ErrCodeAnalysisNotFound))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_List(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	newer := sampleRecord("newer")
	older := sampleRecord("older")
	older.ScenarioID = ""
	resp, _ := json.Marshal(newer.Response)

	mock.ExpectQuery(selectRecentSQL).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(newer.ID, "newer", "simulated", "scenario", "support-billing", resp, now).
			AddRow(older.ID, "older", "simulated", "fallback", nil, resp, now.Add(-time.Minute)))

	list, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Input)
	assert.Equal(t, "", list[1].ScenarioID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListFailures(t *testing.T) {
	t.Run("query error", func(t *testing.T) {
		s, mock := newMockPostgresStore(t)
		mock.ExpectQuery(selectRecentSQL).WithArgs(5).WillReturnError(stderrors.New("conn refused"))

		_, err := s.List(context.Background(), 5)
		assert.True(t, errors.HasCode(err, errors.ErrCodeStoreOperationFailed))
	})

	t.Run("corrupt response column", func(t *testing.T) {
		s, mock := newMockPostgresStore(t)
		mock.ExpectQuery(selectRecentSQL).WithArgs(5).
			WillReturnRows(sqlmock.NewRows(recordColumns).
				AddRow(uuid.NewString(), "x", "simulated", "fallback", nil, []byte("{oops"), time.Now()))

		_, err := s.List(context.Background(), 5)
		assert.True(t, errors.HasCode(err, errors.ErrCodeStoreOperationFailed))
	})
}
