package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nlidb-labs/annotator/pkg/token"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store instance. Call Open before use.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewSQLiteStoreWithDB wraps an existing connection. The schema is assumed
// to be migrated.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens the database at path and migrates it.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}

	s.logger.Debug("state store opened", slog.String("path", path))
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, t *Translation) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	var annotation sql.NullString
	if t.Annotation != nil {
		b, err := json.Marshal(t.Annotation)
		if err != nil {
			return fmt.Errorf("failed to encode annotation: %w", err)
		}
		annotation = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translations (id, db_id, backend, question, annotation, query, score, outcome, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.DBID, t.Backend, t.Question, annotation,
		nullString(t.Query), t.Score, string(t.Outcome), nullString(t.Error), t.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record translation: %w", err)
	}

	s.logger.Debug("translation recorded", slog.String("id", t.ID), slog.String("outcome", string(t.Outcome)))
	return nil
}

const selectTranslation = `SELECT id, db_id, backend, question, annotation, query, score, outcome, error, created_at FROM translations`

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Translation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, selectTranslation+` ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	return out, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Translation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	t, err := scanTranslation(s.db.QueryRowContext(ctx, selectTranslation+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, err
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM translations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete translation: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTranslation(row scanner) (*Translation, error) {
	var (
		t                         Translation
		annotation, query, errMsg sql.NullString
		score                     sql.NullFloat64
		outcome                   string
		createdAt                 int64
	)
	err := row.Scan(&t.ID, &t.DBID, &t.Backend, &t.Question, &annotation, &query, &score, &outcome, &errMsg, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan translation: %w", err)
	}

	if annotation.Valid {
		t.Annotation = &token.AnnotatedQuestion{}
		if err := json.Unmarshal([]byte(annotation.String), t.Annotation); err != nil {
			return nil, fmt.Errorf("failed to decode annotation of %s: %w", t.ID, err)
		}
	}
	t.Query = query.String
	t.Score = score.Float64
	t.Outcome = Outcome(outcome)
	t.Error = errMsg.String
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
