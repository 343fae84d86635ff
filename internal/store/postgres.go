package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noetic-labs/noesis/internal/domain"
	pgvector "github.com/pgvector/pgvector-go"
)

// PostgresLog stores the append-only triple log in a Postgres table.
// seq is a BIGSERIAL, so log position is assigned by the database and
// concurrent appends are atomic at the row level.
type PostgresLog struct {
	db *pgxpool.Pool
}

func NewPostgresLog(db *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{db: db}
}

func (s *PostgresLog) Append(ctx context.Context, t *domain.Triple) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var embedding *pgvector.Vector
	if len(t.Embedding) > 0 {
		v := pgvector.NewVector(t.Embedding)
		embedding = &v
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO triples (subject, predicate, object, confidence, source, context, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, seq, created_at`,
		t.Subject, t.Predicate, t.Object, t.Confidence, t.Source, t.Context, embedding,
	).Scan(&t.ID, &t.Seq, &t.CreatedAt)
	if err != nil {
		return &domain.StorageError{Op: "append", Err: err}
	}
	return nil
}

const tripleColumns = `id, seq, subject, predicate, object, confidence, source, context, created_at`

func scanTriple(row pgx.Row) (*domain.Triple, error) {
	t := &domain.Triple{}
	err := row.Scan(&t.ID, &t.Seq, &t.Subject, &t.Predicate, &t.Object, &t.Confidence, &t.Source, &t.Context, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &domain.StorageError{Op: "scan", Err: err}
	}
	return t, nil
}

func (s *PostgresLog) GetByID(ctx context.Context, id uuid.UUID) (*domain.Triple, error) {
	return scanTriple(s.db.QueryRow(ctx,
		`SELECT `+tripleColumns+` FROM triples WHERE id = $1`, id))
}

func (s *PostgresLog) Search(ctx context.Context, p domain.TriplePattern) ([]domain.Triple, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if p.Subject != "" {
		add("subject = $%d", p.Subject)
	}
	if p.Predicate != "" {
		add("predicate = $%d", p.Predicate)
	}
	if p.Object != "" {
		add("object LIKE '%%' || $%d || '%%'", p.Object)
	}
	if p.MinConfidence > 0 {
		add("confidence >= $%d", p.MinConfidence)
	}
	if p.After != nil {
		add("created_at >= $%d", *p.After)
	}
	if p.Before != nil {
		add("created_at <= $%d", *p.Before)
	}

	query := `SELECT ` + tripleColumns + ` FROM triples`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if p.Limit > 0 {
		args = append(args, p.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "search", Err: err}
	}
	defer rows.Close()

	var out []domain.Triple
	for rows.Next() {
		t := domain.Triple{}
		if err := rows.Scan(&t.ID, &t.Seq, &t.Subject, &t.Predicate, &t.Object, &t.Confidence, &t.Source, &t.Context, &t.CreatedAt); err != nil {
			return nil, &domain.StorageError{Op: "search", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "search", Err: err}
	}
	return out, nil
}

func (s *PostgresLog) Latest(ctx context.Context, subject, predicate string) (*domain.Triple, error) {
	return scanTriple(s.db.QueryRow(ctx,
		`SELECT `+tripleColumns+` FROM triples
		 WHERE subject = $1 AND predicate = $2
		 ORDER BY created_at DESC, seq DESC
		 LIMIT 1`,
		subject, predicate))
}

func (s *PostgresLog) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM triples`).Scan(&n); err != nil {
		return 0, &domain.StorageError{Op: "count", Err: err}
	}
	return n, nil
}

// FindSimilar ranks triples by cosine similarity to the given embedding.
func (s *PostgresLog) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]domain.TripleWithScore, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+tripleColumns+`, 1 - (embedding <=> $1) AS score
		 FROM triples
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, &domain.StorageError{Op: "find_similar", Err: err}
	}
	defer rows.Close()

	var out []domain.TripleWithScore
	for rows.Next() {
		t := domain.TripleWithScore{}
		if err := rows.Scan(&t.ID, &t.Seq, &t.Subject, &t.Predicate, &t.Object, &t.Confidence, &t.Source, &t.Context, &t.CreatedAt, &t.Score); err != nil {
			return nil, &domain.StorageError{Op: "find_similar", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "find_similar", Err: err}
	}
	return out, nil
}

func (s *PostgresLog) Close() error {
	s.db.Close()
	return nil
}
