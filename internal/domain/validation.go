package domain

import "regexp"

// ErrorPattern is one entry in the static per-process registry of known
// failure modes. Registry order defines scan priority.
type ErrorPattern struct {
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	Probability        float64        `json:"probability"`
	Axioms             []string       `json:"axioms,omitempty"`
	DetectionRule      *regexp.Regexp `json:"-"`
	PreventionStrategy string         `json:"prevention_strategy,omitempty"`
}

// Matches reports whether the pattern's detection rule fires on the code.
func (p *ErrorPattern) Matches(code string) bool {
	return p.DetectionRule != nil && p.DetectionRule.MatchString(code)
}

// ThinkingToken is the validation budget allocated to one code segment.
// used+remaining == allocation always holds; remaining never goes negative.
type ThinkingToken struct {
	Allocation int     `json:"allocation"`
	Used       int     `json:"used"`
	Remaining  int     `json:"remaining"`
	Complexity float64 `json:"complexity"`
	Risk       float64 `json:"risk"`
}

// Spend deducts cost from the budget. Returns false without spending when
// the budget cannot cover it.
func (t *ThinkingToken) Spend(cost int) bool {
	if cost < 0 || t.Remaining < cost {
		return false
	}
	t.Used += cost
	t.Remaining -= cost
	return true
}

// Finding is one detected error-pattern occurrence.
type Finding struct {
	Pattern     string  `json:"pattern"`
	Description string  `json:"description"`
	Probability float64 `json:"probability"`
	Prevention  string  `json:"prevention,omitempty"`
	Explanation string  `json:"explanation,omitempty"`
}

// CodeValidation is the outcome of a budgeted error-pattern scan.
type CodeValidation struct {
	IsValid    bool           `json:"is_valid"`
	Confidence float64        `json:"confidence"`
	Errors     []Finding      `json:"errors"`
	TokensUsed int            `json:"tokens_used"`
	Reward     float64        `json:"reward"`
	Token      *ThinkingToken `json:"token"`
}
