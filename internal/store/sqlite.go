package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/noetic-labs/noesis/internal/domain"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteLog is the embedded single-node durable backend. WAL keeps appends
// atomic for concurrent readers; rowid autoincrement is the log position.
type SQLiteLog struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS triples (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	subject    TEXT NOT NULL,
	predicate  TEXT NOT NULL,
	object     TEXT NOT NULL,
	confidence REAL NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
	source     TEXT NOT NULL DEFAULT '',
	context    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_triples_subject_predicate
	ON triples (subject, predicate, created_at DESC, seq DESC);
`

func NewSQLiteLog(path string) (*SQLiteLog, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteLog{db: db}, nil
}

func (s *SQLiteLog) Append(ctx context.Context, t *domain.Triple) error {
	if err := t.Validate(); err != nil {
		return err
	}

	t.ID = uuid.New()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO triples (id, subject, predicate, object, confidence, source, context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Subject, t.Predicate, t.Object, t.Confidence, t.Source, t.Context, t.CreatedAt.UnixNano())
	if err != nil {
		return &domain.StorageError{Op: "append", Err: err}
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return &domain.StorageError{Op: "append", Err: err}
	}
	t.Seq = seq
	return nil
}

const sqliteColumns = `seq, id, subject, predicate, object, confidence, source, context, created_at`

func scanSQLiteTriple(row *sql.Row) (*domain.Triple, error) {
	var (
		t       domain.Triple
		idStr   string
		created int64
	)
	err := row.Scan(&t.Seq, &idStr, &t.Subject, &t.Predicate, &t.Object, &t.Confidence, &t.Source, &t.Context, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &domain.StorageError{Op: "scan", Err: err}
	}
	t.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, &domain.StorageError{Op: "scan", Err: err}
	}
	t.CreatedAt = time.Unix(0, created).UTC()
	return &t, nil
}

func (s *SQLiteLog) GetByID(ctx context.Context, id uuid.UUID) (*domain.Triple, error) {
	return scanSQLiteTriple(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM triples WHERE id = ?`, id.String()))
}

func (s *SQLiteLog) Search(ctx context.Context, p domain.TriplePattern) ([]domain.Triple, error) {
	var (
		where []string
		args  []any
	)
	if p.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, p.Subject)
	}
	if p.Predicate != "" {
		where = append(where, "predicate = ?")
		args = append(args, p.Predicate)
	}
	if p.Object != "" {
		where = append(where, "object LIKE '%' || ? || '%'")
		args = append(args, p.Object)
	}
	if p.MinConfidence > 0 {
		where = append(where, "confidence >= ?")
		args = append(args, p.MinConfidence)
	}
	if p.After != nil {
		where = append(where, "created_at >= ?")
		args = append(args, p.After.UnixNano())
	}
	if p.Before != nil {
		where = append(where, "created_at <= ?")
		args = append(args, p.Before.UnixNano())
	}

	query := `SELECT ` + sqliteColumns + ` FROM triples`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if p.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, p.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "search", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Triple
	for rows.Next() {
		var (
			t       domain.Triple
			idStr   string
			created int64
		)
		if err := rows.Scan(&t.Seq, &idStr, &t.Subject, &t.Predicate, &t.Object, &t.Confidence, &t.Source, &t.Context, &created); err != nil {
			return nil, &domain.StorageError{Op: "search", Err: err}
		}
		if t.ID, err = uuid.Parse(idStr); err != nil {
			return nil, &domain.StorageError{Op: "search", Err: err}
		}
		t.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "search", Err: err}
	}
	return out, nil
}

func (s *SQLiteLog) Latest(ctx context.Context, subject, predicate string) (*domain.Triple, error) {
	return scanSQLiteTriple(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM triples
		 WHERE subject = ? AND predicate = ?
		 ORDER BY created_at DESC, seq DESC
		 LIMIT 1`,
		subject, predicate))
}

func (s *SQLiteLog) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples`).Scan(&n); err != nil {
		return 0, &domain.StorageError{Op: "count", Err: err}
	}
	return n, nil
}

func (s *SQLiteLog) Close() error {
	return s.db.Close()
}
