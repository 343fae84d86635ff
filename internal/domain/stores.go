package domain

import (
	"context"

	"github.com/google/uuid"
)

// TripleLog is the append-only durable log every component reads and writes
// through. Append is the only mutation primitive; there is no update or
// delete. Implementations must make appends atomic: a concurrent reader
// never observes a partially written record.
type TripleLog interface {
	// Append assigns ID, Seq and CreatedAt and persists the record.
	Append(ctx context.Context, t *Triple) error
	GetByID(ctx context.Context, id uuid.UUID) (*Triple, error)
	// Search returns records matching the pattern, unordered unless the
	// caller sorts.
	Search(ctx context.Context, p TriplePattern) ([]Triple, error)
	// Latest returns the (subject, predicate) record with the maximum
	// timestamp; equal timestamps resolve by later log position.
	Latest(ctx context.Context, subject, predicate string) (*Triple, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// SimilaritySearcher is implemented by backends that can rank triples by
// embedding similarity. Optional; the in-memory and sqlite logs do not.
type SimilaritySearcher interface {
	FindSimilar(ctx context.Context, embedding []float32, limit int) ([]TripleWithScore, error)
}

// LatestCache is a read-through cache over TripleLog.Latest, keyed by
// (subject, predicate). Invalidated on append.
type LatestCache interface {
	Get(ctx context.Context, subject, predicate string) (*Triple, bool)
	Set(ctx context.Context, t *Triple)
	Invalidate(ctx context.Context, subject, predicate string)
}

// LLMClient supplies proof text and pattern explanations. It never drives
// control flow; every caller must work with it absent.
type LLMClient interface {
	GenerateProof(ctx context.Context, precondition, command, postcondition string) (string, error)
	ExplainPattern(ctx context.Context, pattern, description, code string) (string, error)
}

// EmbeddingClient turns text into a vector for similarity suggestions.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
