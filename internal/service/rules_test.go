package service

import (
	"testing"
)

func TestEvalCondition(t *testing.T) {
	env := map[string]string{
		"env":       "prod",
		"approvals": "1",
		"branch":    "release/1.2",
		"dirty":     "",
	}

	tests := []struct {
		condition string
		want      bool
	}{
		{"env = prod", true},
		{"env == prod", true},
		{"env != staging", true},
		{"env = staging", false},
		{"approvals < 2", true},
		{"approvals >= 1", true},
		{"approvals > 1", false},
		{"env = prod && approvals < 2", true},
		{"env = prod && approvals >= 2", false},
		{"branch ~= release", true},
		{"branch ~= hotfix", false},
		{"env", true},             // bare key present and non-empty
		{"dirty", false},          // present but empty
		{"missing = x", false},    // unknown key never satisfies
		{"missing", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := EvalCondition(tt.condition, env); got != tt.want {
			t.Errorf("EvalCondition(%q) = %v, want %v", tt.condition, got, tt.want)
		}
	}
}

func TestEvalCondition_NumericVsLexical(t *testing.T) {
	env := map[string]string{"count": "10"}

	// Numeric comparison: 10 > 9.
	if !EvalCondition("count > 9", env) {
		t.Fatal("expected numeric comparison, 10 > 9")
	}
	// Lexical would say "10" < "9"; numeric parsing must win.
	if EvalCondition("count < 9", env) {
		t.Fatal("expected numeric comparison to reject 10 < 9")
	}
}

func TestParseAssignments(t *testing.T) {
	got := ParseAssignments(`deploy when env=prod and region := "eu-west-1", retries == 3`)

	want := map[string]string{
		"env":     "prod",
		"region":  "eu-west-1",
		"retries": "3",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d assignments, got %d: %v", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("assignment %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestParseAssignments_LaterWins(t *testing.T) {
	got := ParseAssignments("x=1 then x=2")
	if got["x"] != "2" {
		t.Fatalf("expected the later assignment to win, got %q", got["x"])
	}
}

func TestParseAssignments_InvertsRenderState(t *testing.T) {
	state := map[string]string{"x": "1", "y": "2", "flag": "on"}

	got := ParseAssignments(RenderState(state))
	if len(got) != len(state) {
		t.Fatalf("expected %d assignments back, got %d", len(state), len(got))
	}
	for k, v := range state {
		if got[k] != v {
			t.Errorf("round trip lost %q: got %q, want %q", k, got[k], v)
		}
	}
}

func TestRenderState_Empty(t *testing.T) {
	if got := RenderState(nil); got != "true" {
		t.Fatalf("expected empty state to render as true, got %q", got)
	}
	if got := ParseAssignments("true"); len(got) != 0 {
		t.Fatalf("expected no assignments in the empty rendering, got %v", got)
	}
}
