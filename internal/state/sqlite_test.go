package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nlidb-labs/annotator/internal/testutil"
	"github.com/nlidb-labs/annotator/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleTranslation(question string, at time.Time) *Translation {
	return &Translation{
		DBID:     "car_1",
		Backend:  "irnet",
		Question: question,
		Annotation: &token.AnnotatedQuestion{
			Tokens:       []string{"4", "cylinders"},
			OriginTokens: []string{"4", "cylinders"},
			POS:          []string{"CD", "NNS"},
			Spans: []token.Span{
				{Start: 0, End: 1, Tag: token.TagValue},
				{Start: 1, End: 2, Tag: token.ConceptTag(token.NoneLabel)},
			},
		},
		Query:     "SELECT count(*) FROM cars WHERE cylinders = 4",
		Score:     0.75,
		Outcome:   OutcomeOK,
		CreatedAt: at,
	}
}

func TestSQLiteStore_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	require.NoError(t, store.Close())

	// Reopening an existing database is a no-op migration.
	store = NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Close())
}

func TestSQLiteStore_RecordGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tr := sampleTranslation("how many cars have 4 cylinders", time.Time{})
	require.NoError(t, store.Record(ctx, tr))
	assert.NotEmpty(t, tr.ID)
	assert.False(t, tr.CreatedAt.IsZero())

	got, err := store.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.Question, got.Question)
	assert.Equal(t, tr.Query, got.Query)
	assert.Equal(t, OutcomeOK, got.Outcome)
	assert.InDelta(t, 0.75, got.Score, 1e-9)
	assert.True(t, tr.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.Annotation)
	assert.Equal(t, tr.Annotation.Spans, got.Annotation.Spans)
}

func TestSQLiteStore_RecordWithoutAnnotation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tr := &Translation{DBID: "car_1", Backend: "irnet", Question: "?", Outcome: OutcomeError, Error: "backend irnet failed"}
	require.NoError(t, store.Record(ctx, tr))

	got, err := store.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Annotation)
	assert.Empty(t, got.Query)
	assert.Equal(t, "backend irnet failed", got.Error)
}

func TestSQLiteStore_List(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, q := range []string{"first", "second", "third"} {
		require.NoError(t, store.Record(ctx, sampleTranslation(q, base.Add(time.Duration(i)*time.Minute))))
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"third", "second", "first"}},
		{name: "limited", limit: 2, want: []string{"third", "second"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := store.List(ctx, tt.limit)
			require.NoError(t, err)
			got := make([]string, len(list))
			for i, tr := range list {
				got[i] = tr.Question
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tr := sampleTranslation("q", time.Time{})
	require.NoError(t, store.Record(ctx, tr))
	require.NoError(t, store.Delete(ctx, tr.ID))

	_, err := store.Get(ctx, tr.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, tr.ID), ErrNotFound)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.Error(t, store.Record(ctx, &Translation{}))
	_, err := store.List(ctx, 1)
	assert.Error(t, err)
	_, err = store.Get(ctx, "x")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "x"))
	assert.Error(t, store.Migrate())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(s *SQLiteStore) error
		errMsg    string
	}{
		{
			name: "insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO translations").WillReturnError(assert.AnError)
			},
			run:    func(s *SQLiteStore) error { return s.Record(ctx, sampleTranslation("q", time.Time{})) },
			errMsg: "failed to record translation",
		},
		{
			name: "list query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, db_id").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.List(ctx, 5)
				return err
			},
			errMsg: "failed to list translations",
		},
		{
			name: "corrupt annotation",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "db_id", "backend", "question", "annotation", "query", "score", "outcome", "error", "created_at"}).
					AddRow("abc", "car_1", "irnet", "q", "{", nil, nil, "ok", nil, int64(1))
				mock.ExpectQuery("SELECT id, db_id").WithArgs("abc").WillReturnRows(rows)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.Get(ctx, "abc")
				return err
			},
			errMsg: "failed to decode annotation of abc",
		},
		{
			name: "delete fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM translations").WithArgs("abc").WillReturnError(assert.AnError)
			},
			run:    func(s *SQLiteStore) error { return s.Delete(ctx, "abc") },
			errMsg: "failed to delete translation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)
			err = tt.run(NewSQLiteStoreWithDB(db, nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
