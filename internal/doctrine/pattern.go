package doctrine

import (
	"skyshield/internal/model"
	"skyshield/internal/spec"
)

// Params is the structured parameter set a calculator produces. By
// convention it always carries "cost" (int), "success_rate" (int percent)
// and "systems_used" ([]string); the assembler lifts those into the
// machine-readable option summary.
type Params map[string]any

// Pattern is one doctrinal response template: an applicability predicate
// and a parameter calculator. Predicates and calculators are pure; a
// calculator that finds no eligible asset declines by returning false.
type Pattern interface {
	ID() string
	Title() string
	Applies(t model.Threat, s Summary, c model.Constraints) bool
	Compute(t model.Threat, s Summary, c model.Constraints) (Params, bool)
	Template() string
}

// Catalog returns the ordered pattern registry. Every pattern is evaluated
// independently; all qualifying patterns emit an option.
func Catalog(table *spec.Table) []Pattern {
	return []Pattern{
		&immediatePremium{table: table},
		&droneFirst{table: table},
		&threeTierLayered{table: table},
		&minimalEconomical{table: table},
		&ewKinetic{table: table},
		&coordination{},
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func pct(p float64) int {
	return int(p * 100)
}
