// Package derive holds the explicit derivation rule tables evaluated
// synchronously inside the orchestrator's update path, so derived fields
// (unit conversions, auto-calculated totals) recompute deterministically.
package derive

import (
	"fmt"
	"math"

	"listings-console/internal/forms/fieldpath"
)

// Unit conversion constants.
const (
	SqmPerSqft  = 0.09290304
	SqftPerAcre = 43560.0
)

// Rule recomputes derived leaves from their source leaves. A rule fires when
// any of its trigger paths is updated.
type Rule struct {
	Name     string
	Triggers []string
	Apply    func(tree map[string]interface{})
}

// Fires reports whether the rule is triggered by an update at the path.
func (r Rule) Fires(path string) bool {
	for _, trigger := range r.Triggers {
		if trigger == path {
			return true
		}
	}
	return false
}

// Apply runs every rule triggered by changedPath against the tree, in
// declared order.
func Apply(rules []Rule, tree map[string]interface{}, changedPath string) {
	for _, rule := range rules {
		if rule.Fires(changedPath) {
			rule.Apply(tree)
		}
	}
}

// All runs every rule against the tree in declared order, used when
// hydrating a form from a record or a restored draft.
func All(rules []Rule, tree map[string]interface{}) {
	for _, rule := range rules {
		rule.Apply(tree)
	}
}

// SqftToSqm builds a rule deriving a square-meter leaf from a square-foot
// leaf.
func SqftToSqm(sqftPath, sqmPath string) Rule {
	return Rule{
		Name:     "sqft-to-sqm",
		Triggers: []string{sqftPath},
		Apply: func(tree map[string]interface{}) {
			sqft, _ := fieldpath.Get(tree, sqftPath)
			sqm := round1(fieldpath.Number(sqft) * SqmPerSqft)
			fieldpath.Set(tree, sqmPath, sqm)
		},
	}
}

// SqftToAcres builds a rule deriving an acres leaf from a square-foot leaf.
func SqftToAcres(sqftPath, acresPath string) Rule {
	return Rule{
		Name:     "sqft-to-acres",
		Triggers: []string{sqftPath},
		Apply: func(tree map[string]interface{}) {
			sqft, _ := fieldpath.Get(tree, sqftPath)
			acres := round2(fieldpath.Number(sqft) / SqftPerAcre)
			fieldpath.Set(tree, acresPath, acres)
		},
	}
}

// TotalPrice builds a rule deriving price.totalNumeric and its formatted
// display form from a per-unit rate and a size leaf.
func TotalPrice(perUnitPath, sizePath, totalNumericPath, totalFormattedPath string) Rule {
	return Rule{
		Name:     "total-price",
		Triggers: []string{perUnitPath, sizePath},
		Apply: func(tree map[string]interface{}) {
			perUnit, _ := fieldpath.Get(tree, perUnitPath)
			size, _ := fieldpath.Get(tree, sizePath)
			total := fieldpath.Number(perUnit) * fieldpath.Number(size)
			fieldpath.Set(tree, totalNumericPath, total)
			fieldpath.Set(tree, totalFormattedPath, FormatAED(total))
		},
	}
}

// FormatAED renders an amount the way listing cards show it: "AED 73.5M",
// "AED 980K", "AED 1.2B", plain integers below a thousand.
func FormatAED(amount float64) string {
	if amount == 0 {
		return "AED 0"
	}

	abs := math.Abs(amount)
	switch {
	case abs >= 1e9:
		return "AED " + trimZero(amount/1e9) + "B"
	case abs >= 1e6:
		return "AED " + trimZero(amount/1e6) + "M"
	case abs >= 1e3:
		return "AED " + trimZero(amount/1e3) + "K"
	default:
		return fmt.Sprintf("AED %.0f", amount)
	}
}

func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
