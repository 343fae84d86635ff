package service

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule conditions are flat clauses joined by &&, each `ident op literal`.
// Supported operators: = == != < <= > >= ~= (substring). Both sides are
// compared numerically when they parse as numbers, as strings otherwise.
// A bare identifier is satisfied when the key is present and non-empty.

var clauseRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_.-]*)\s*(==|!=|<=|>=|~=|<|>|=)\s*(.+?)\s*$`)

// EvalCondition reports whether every clause of the condition holds in env.
// Unknown keys and malformed clauses evaluate to false, never to an error:
// an unsatisfiable rule simply does not fire.
func EvalCondition(condition string, env map[string]string) bool {
	clauses := strings.Split(condition, "&&")
	if len(clauses) == 0 {
		return false
	}
	for _, clause := range clauses {
		if !evalClause(clause, env) {
			return false
		}
	}
	return true
}

func evalClause(clause string, env map[string]string) bool {
	m := clauseRe.FindStringSubmatch(clause)
	if m == nil {
		key := strings.TrimSpace(clause)
		if key == "" {
			return false
		}
		v, ok := env[key]
		return ok && v != ""
	}

	key, op, want := m[1], m[2], strings.Trim(m[3], `"'`)
	got, ok := env[key]
	if !ok {
		return false
	}

	gotN, gotNum := parseNumber(got)
	wantN, wantNum := parseNumber(want)

	switch op {
	case "=", "==":
		if gotNum && wantNum {
			return gotN == wantN
		}
		return got == want
	case "!=":
		if gotNum && wantNum {
			return gotN != wantN
		}
		return got != want
	case "~=":
		return strings.Contains(got, want)
	case "<", "<=", ">", ">=":
		if !gotNum || !wantNum {
			return compareStrings(got, want, op)
		}
		return compareNumbers(gotN, wantN, op)
	}
	return false
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	return n, err == nil
}

func compareNumbers(a, b float64, op string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func compareStrings(a, b, op string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

var assignmentRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*(?::=|==|=)\s*([^\s,&∧;]+)`)

// ParseAssignments extracts `ident (=|:=|==) value` pairs from free text.
// Shared by the rule fallback path (statements become environments) and the
// semantic bridge (pre/postconditions become state maps). Later assignments
// to the same identifier win.
func ParseAssignments(text string) map[string]string {
	out := make(map[string]string)
	for _, m := range assignmentRe.FindAllStringSubmatch(text, -1) {
		out[m[1]] = strings.Trim(m[2], `"'`)
	}
	return out
}
