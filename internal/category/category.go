package category

import (
	"fmt"
	"strings"
)

// Attribute identifies a binned clinical attribute.
type Attribute string

const (
	Hypertension Attribute = "hypertension"
	Mortality    Attribute = "mortality"
	Diabetes     Attribute = "diabetes"
	Age          Attribute = "age"
	BMI          Attribute = "bmi"
	ICUStay      Attribute = "icu_stay"
)

// Attributes lists every binned attribute in the order rules are applied.
var Attributes = []Attribute{Hypertension, Mortality, Diabetes, Age, BMI, ICUStay}

// BMIGapPolicy selects how BMI values in [24.9, 25) are classified.
type BMIGapPolicy string

const (
	// GapClose makes Normal cover [18.5, 25) so the bins are contiguous.
	GapClose BMIGapPolicy = "close"
	// GapLegacy keeps Normal at [18.5, 24.9); values in the gap fall to Obese.
	GapLegacy BMIGapPolicy = "legacy"
)

// ParseBMIGapPolicy accepts "close" (or empty) and "legacy".
func ParseBMIGapPolicy(s string) (BMIGapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(GapClose):
		return GapClose, nil
	case string(GapLegacy):
		return GapLegacy, nil
	default:
		return "", fmt.Errorf("invalid bmi gap policy: %s (use close or legacy)", s)
	}
}

// Bin is one labelled half-open interval [Min, Max).
// A bin with Min == Max matches exactly that value.
type Bin struct {
	Label string
	Min   float64
	Max   float64
}

// Contains reports whether v falls in the bin. NaN never matches.
func (b Bin) Contains(v float64) bool {
	if b.Min == b.Max {
		return v == b.Min
	}
	return v >= b.Min && v < b.Max
}

// Rule maps a raw column onto an ordered set of labels.
// Bins are tried in order; anything unmatched gets Fallback, the last label.
type Rule struct {
	Attribute Attribute
	Source    string
	Column    string
	Bins      []Bin
	Fallback  string
}

// Labels returns the ordered label set, fallback last.
func (r Rule) Labels() []string {
	out := make([]string, 0, len(r.Bins)+1)
	for _, b := range r.Bins {
		out = append(out, b.Label)
	}
	return append(out, r.Fallback)
}

// Rank returns the ordinal position of label, or -1 if it is not declared.
func (r Rule) Rank(label string) int {
	for i, l := range r.Labels() {
		if l == label {
			return i
		}
	}
	return -1
}

// Apply bins a single raw value.
func (r Rule) Apply(v float64) string {
	for _, b := range r.Bins {
		if b.Contains(v) {
			return b.Label
		}
	}
	return r.Fallback
}

// RuleSet is the full table of category rules.
type RuleSet struct {
	Policy BMIGapPolicy
	rules  []Rule
}

// All returns a copy of the rules in application order.
func (s RuleSet) All() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Rule returns the rule for attr.
func (s RuleSet) Rule(attr Attribute) (Rule, bool) {
	for _, r := range s.rules {
		if r.Attribute == attr {
			return r, true
		}
	}
	return Rule{}, false
}

// ByColumn returns the rule producing the given derived column.
func (s RuleSet) ByColumn(column string) (Rule, bool) {
	for _, r := range s.rules {
		if r.Column == column {
			return r, true
		}
	}
	return Rule{}, false
}

// Categorize bins v with the rule for attr. Unknown attributes yield "".
func (s RuleSet) Categorize(attr Attribute, v float64) string {
	r, ok := s.Rule(attr)
	if !ok {
		return ""
	}
	return r.Apply(v)
}

var defaultRules = Rules(GapClose)

// Default returns the rule set used when no policy is configured.
func Default() RuleSet { return defaultRules }

// Categorize bins v using the default rule set.
func Categorize(attr Attribute, v float64) string {
	return defaultRules.Categorize(attr, v)
}
