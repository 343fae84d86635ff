package domain

import (
	"time"

	"github.com/google/uuid"
)

type Paradigm string

const (
	ParadigmAxiomatic    Paradigm = "axiomatic"
	ParadigmOperational  Paradigm = "operational"
	ParadigmDenotational Paradigm = "denotational"
)

func ValidParadigm(p string) bool {
	switch Paradigm(p) {
	case ParadigmAxiomatic, ParadigmOperational, ParadigmDenotational:
		return true
	}
	return false
}

// AxiomaticReasoning is a Hoare triple plus an optional proof sketch.
// The proof is stored verbatim; it is never machine-checked.
type AxiomaticReasoning struct {
	Precondition  string `json:"precondition"`
	Command       string `json:"command"`
	Postcondition string `json:"postcondition"`
	Proof         string `json:"proof,omitempty"`
	IsValid       bool   `json:"is_valid"`
}

// OperationalStep is one caller-declared transition. NextState is taken at
// face value; the action text is never interpreted.
type OperationalStep struct {
	Action    string            `json:"action"`
	NextState map[string]string `json:"next_state"`
}

// OperationalReasoning records a walk over caller-supplied transitions.
type OperationalReasoning struct {
	InitialState map[string]string `json:"initial_state"`
	Steps        []OperationalStep `json:"steps"`
	FinalState   map[string]string `json:"final_state"`
}

// DenotationalReasoning maps an expression to its denotation in a semantic
// domain. IsComposable is stored but not enforced.
type DenotationalReasoning struct {
	Expression   string `json:"expression"`
	Domain       string `json:"domain"`
	Denotation   string `json:"denotation"`
	IsComposable bool   `json:"is_composable"`
	// Bridge translations carry the assignment maps through this paradigm
	// so a round trip can restore them.
	InitialState map[string]string `json:"initial_state,omitempty"`
	FinalState   map[string]string `json:"final_state,omitempty"`
}

// Reasoning is the tagged variant over the three paradigms. Exactly one of
// the variant fields is populated, matching Paradigm; translation boundaries
// must switch exhaustively on Paradigm.
type Reasoning struct {
	ID           uuid.UUID              `json:"id"`
	Paradigm     Paradigm               `json:"paradigm"`
	Axiomatic    *AxiomaticReasoning    `json:"axiomatic,omitempty"`
	Operational  *OperationalReasoning  `json:"operational,omitempty"`
	Denotational *DenotationalReasoning `json:"denotational,omitempty"`
	// Limitation states what this engine deliberately did not do, e.g.
	// that a stored proof was not machine-checked. Returned, never thrown.
	Limitation string    `json:"limitation,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks that exactly the variant named by Paradigm is populated.
func (r *Reasoning) Validate() error {
	n := 0
	if r.Axiomatic != nil {
		n++
	}
	if r.Operational != nil {
		n++
	}
	if r.Denotational != nil {
		n++
	}
	if n != 1 {
		return &ValidationError{Field: "paradigm", Reason: "exactly one variant must be populated"}
	}
	switch r.Paradigm {
	case ParadigmAxiomatic:
		if r.Axiomatic == nil {
			return &ValidationError{Field: "axiomatic", Reason: "variant does not match paradigm"}
		}
	case ParadigmOperational:
		if r.Operational == nil {
			return &ValidationError{Field: "operational", Reason: "variant does not match paradigm"}
		}
	case ParadigmDenotational:
		if r.Denotational == nil {
			return &ValidationError{Field: "denotational", Reason: "variant does not match paradigm"}
		}
	default:
		return &ValidationError{Field: "paradigm", Reason: "unknown paradigm"}
	}
	return nil
}
