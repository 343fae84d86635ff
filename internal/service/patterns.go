package service

import (
	"regexp"

	"github.com/noetic-labs/noesis/internal/domain"
)

// DefaultPatterns returns the packaged error-pattern registry. Slice order
// is scan priority: under a tight token budget only the earlier entries get
// checked, so the most damaging patterns come first.
func DefaultPatterns() []domain.ErrorPattern {
	return []domain.ErrorPattern{
		{
			Name:        "null-reference",
			Description: "chained member access with no preceding nil/null guard",
			Probability: 0.35,
			Axioms: []string{
				"dereference requires a proven non-null receiver",
			},
			DetectionRule:      regexp.MustCompile(`\w+\.\w+\.\w+\s*\(`),
			PreventionStrategy: "guard each link of the access chain before dereferencing",
		},
		{
			Name:        "unchecked-error",
			Description: "error return discarded or ignored",
			Probability: 0.25,
			Axioms: []string{
				"every fallible call yields an error that must be consumed",
			},
			DetectionRule:      regexp.MustCompile(`(?m)(_\s*(?:,\s*_\s*)?=\s*\w+(?:\.\w+)*\(|^\s*\w+(?:\.\w+)*\(.*\)\s*//\s*ignore)`),
			PreventionStrategy: "handle or explicitly propagate every error return",
		},
		{
			Name:        "resource-leak",
			Description: "resource opened without a visible close or release",
			Probability: 0.3,
			Axioms: []string{
				"every acquire must pair with a release on all paths",
			},
			DetectionRule:      regexp.MustCompile(`(?i)\b(open|acquire|lock|connect|dial)\w*\s*\(`),
			PreventionStrategy: "release in a defer immediately after a successful acquire",
		},
		{
			Name:        "off-by-one",
			Description: "boundary comparison against a length-derived index",
			Probability: 0.2,
			Axioms: []string{
				"valid indices run from 0 to len-1 inclusive",
			},
			DetectionRule:      regexp.MustCompile(`<=\s*(?:len|length|size|count)\b|\b(?:len|length|size|count)\s*\(\s*\w+\s*\)\s*\]`),
			PreventionStrategy: "compare with < len, index with at most len-1",
		},
		{
			Name:        "division-by-zero",
			Description: "division by a variable with no zero check in sight",
			Probability: 0.2,
			Axioms: []string{
				"a divisor must be proven non-zero",
			},
			DetectionRule:      regexp.MustCompile(`\w\s*/\s*[a-zA-Z_]\w*`),
			PreventionStrategy: "test the divisor against zero before dividing",
		},
		{
			Name:        "unbounded-loop",
			Description: "loop with no visible exit condition",
			Probability: 0.15,
			Axioms: []string{
				"every loop needs a decreasing measure or an explicit exit",
			},
			DetectionRule:      regexp.MustCompile(`(?i)while\s*\(\s*(?:true|1)\s*\)|for\s*\{|for\s*\(\s*;;\s*\)`),
			PreventionStrategy: "bound the loop or make the break condition explicit",
		},
	}
}
