package domain

import (
	"time"

	"github.com/google/uuid"
)

// Triple is an immutable (subject, predicate, object) record with confidence
// and provenance. Once appended to a log it is never mutated or deleted; the
// current value of a mutable entity is reconstructed with Latest.
type Triple struct {
	ID         uuid.UUID `json:"id"`
	Seq        int64     `json:"seq"`
	Subject    string    `json:"subject"`
	Predicate  string    `json:"predicate"`
	Object     string    `json:"object"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source,omitempty"`
	Context    string    `json:"context,omitempty"`
	Embedding  []float32 `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the append-time invariants.
func (t *Triple) Validate() error {
	if t.Subject == "" {
		return &ValidationError{Field: "subject", Reason: "must not be empty"}
	}
	if t.Predicate == "" {
		return &ValidationError{Field: "predicate", Reason: "must not be empty"}
	}
	if err := CheckConfidence(t.Confidence); err != nil {
		return err
	}
	return nil
}

// CheckConfidence rejects confidence values outside [0,1].
func CheckConfidence(c float64) error {
	if c < 0 || c > 1 {
		return &ValidationError{Field: "confidence", Reason: "must be in [0,1]"}
	}
	return nil
}

// TriplePattern filters a Search over the log. Zero-valued fields match
// everything. Object matching is substring-based.
type TriplePattern struct {
	Subject       string     `json:"subject,omitempty"`
	Predicate     string     `json:"predicate,omitempty"`
	Object        string     `json:"object,omitempty"`
	MinConfidence float64    `json:"min_confidence,omitempty"`
	After         *time.Time `json:"after,omitempty"`
	Before        *time.Time `json:"before,omitempty"`
	Limit         int        `json:"limit,omitempty"`
}

// TripleWithScore is a triple paired with a similarity score.
type TripleWithScore struct {
	Triple
	Score float64 `json:"score"`
}
