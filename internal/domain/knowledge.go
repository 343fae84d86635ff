package domain

import (
	"time"

	"github.com/google/uuid"
)

// Fact is a statement with supporting evidence. Persisted as a triple; the
// evidence and references travel in the triple context.
type Fact struct {
	ID         uuid.UUID `json:"id"`
	Statement  string    `json:"statement"`
	Evidence   []string  `json:"evidence,omitempty"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source,omitempty"`
	References []string  `json:"references,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	MinRulePriority = 0
	MaxRulePriority = 10
)

// Rule maps a condition over a context to a consequence. Rules apply in
// priority-descending order; ties are broken by creation order, earlier wins.
type Rule struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Condition   string            `json:"condition"`
	Consequence string            `json:"consequence"`
	Priority    int               `json:"priority"`
	Domain      string            `json:"domain"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Seq         int64             `json:"seq"`
}

func (r *Rule) Validate() error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if r.Condition == "" {
		return &ValidationError{Field: "condition", Reason: "must not be empty"}
	}
	if r.Consequence == "" {
		return &ValidationError{Field: "consequence", Reason: "must not be empty"}
	}
	if r.Domain == "" {
		return &ValidationError{Field: "domain", Reason: "must not be empty"}
	}
	if r.Priority < MinRulePriority || r.Priority > MaxRulePriority {
		return &ValidationError{Field: "priority", Reason: "must be in [0,10]"}
	}
	return nil
}

// FactValidation is the outcome of checking a statement against the
// knowledge base.
type FactValidation struct {
	IsValid     bool     `json:"is_valid"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"reasons,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}
