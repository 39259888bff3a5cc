package category

import (
	"fmt"
	"math"
)

// BinDoc is a Bin in a form JSON and YAML can carry. Open ends are nil.
type BinDoc struct {
	Label string   `json:"label" yaml:"label"`
	Min   *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max   *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// RuleDoc describes one rule for display.
type RuleDoc struct {
	Attribute string   `json:"attribute" yaml:"attribute"`
	Source    string   `json:"source" yaml:"source"`
	Column    string   `json:"column" yaml:"column"`
	Bins      []BinDoc `json:"bins" yaml:"bins"`
	Fallback  string   `json:"fallback" yaml:"fallback"`
}

func bound(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Describe returns the rule table in application order.
func (s RuleSet) Describe() []RuleDoc {
	out := make([]RuleDoc, 0, len(s.rules))
	for _, r := range s.rules {
		d := RuleDoc{Attribute: string(r.Attribute), Source: r.Source, Column: r.Column, Fallback: r.Fallback}
		for _, b := range r.Bins {
			d.Bins = append(d.Bins, BinDoc{Label: b.Label, Min: bound(b.Min), Max: bound(b.Max)})
		}
		out = append(out, d)
	}
	return out
}

// String renders the bin as an interval, e.g. "[18.5, 25)" or "= 0".
func (b Bin) String() string {
	switch {
	case b.Min == b.Max:
		return fmt.Sprintf("= %g", b.Min)
	case math.IsInf(b.Min, -1):
		return fmt.Sprintf("< %g", b.Max)
	case math.IsInf(b.Max, 1):
		return fmt.Sprintf(">= %g", b.Min)
	default:
		return fmt.Sprintf("[%g, %g)", b.Min, b.Max)
	}
}
