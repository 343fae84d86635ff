package domain

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a BDI agent: beliefs it holds, desires it ranks, intentions it
// commits to. The in-memory registry is authoritative for the process
// lifetime; the triple log is the durable trail.
type Agent struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Domains      []string    `json:"domains,omitempty"`
	Capabilities []string    `json:"capabilities,omitempty"`
	Beliefs      []Belief    `json:"beliefs"`
	Desires      []Desire    `json:"desires"`
	Intentions   []Intention `json:"intentions"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Belief is a held proposition with confidence and supporting evidence.
type Belief struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	Confidence float64   `json:"confidence"`
	Evidence   []string  `json:"evidence,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Desire is a goal with priority and utility.
type Desire struct {
	ID        uuid.UUID `json:"id"`
	Goal      string    `json:"goal"`
	Priority  int       `json:"priority"`
	Utility   float64   `json:"utility"`
	CreatedAt time.Time `json:"created_at"`
}

type IntentionStatus string

const (
	IntentionPending   IntentionStatus = "pending"
	IntentionActive    IntentionStatus = "active"
	IntentionCompleted IntentionStatus = "completed"
	IntentionFailed    IntentionStatus = "failed"
)

func ValidIntentionStatus(s string) bool {
	switch IntentionStatus(s) {
	case IntentionPending, IntentionActive, IntentionCompleted, IntentionFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s IntentionStatus) Terminal() bool {
	return s == IntentionCompleted || s == IntentionFailed
}

// CanTransition reports whether s -> to is a legal move. The only legal
// moves are pending->active, active->completed and active->failed.
func (s IntentionStatus) CanTransition(to IntentionStatus) bool {
	switch s {
	case IntentionPending:
		return to == IntentionActive
	case IntentionActive:
		return to == IntentionCompleted || to == IntentionFailed
	}
	return false
}

// Intention is a committed plan toward a desire.
type Intention struct {
	ID        uuid.UUID       `json:"id"`
	DesireID  uuid.UUID       `json:"desire_id"`
	Plan      []string        `json:"plan"`
	Status    IntentionStatus `json:"status"`
	Progress  float64         `json:"progress"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BeliefValidation is the outcome of checking a statement against an
// agent's beliefs.
type BeliefValidation struct {
	IsValid    bool     `json:"is_valid"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`
	// RuleFallback is true when no belief matched and the rule engine
	// supplied the verdict instead.
	RuleFallback bool `json:"rule_fallback"`
}
