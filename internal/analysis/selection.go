package analysis

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/mortalisys/internal/category"
)

// ErrInvalidSelection is returned when a label is not part of a catalog.
var ErrInvalidSelection = errors.New("invalid selection")

// Option maps a user-facing label to a column.
type Option struct {
	Label  string `json:"label" yaml:"label"`
	Column string `json:"column" yaml:"column"`
}

// Catalog is an ordered set of options; the first one is the default.
type Catalog struct {
	Name    string   `json:"name" yaml:"name"`
	Options []Option `json:"options" yaml:"options"`
}

// Labels returns the option labels in order.
func (c Catalog) Labels() []string {
	out := make([]string, len(c.Options))
	for i, o := range c.Options {
		out[i] = o.Label
	}
	return out
}

// Default returns the first option.
func (c Catalog) Default() Option { return c.Options[0] }

var (
	OutcomeCatalog = Catalog{Name: "outcome", Options: []Option{
		{Label: "In-Hospital Mortality", Column: category.ColumnMortality},
		{Label: "Length of Stay", Column: category.ColumnICUStay},
	}}
	DetailCatalog = Catalog{Name: "detail", Options: []Option{
		{Label: "Department", Column: ColDepartment},
		{Label: "Operation Type", Column: ColOpType},
		{Label: "Approach", Column: ColApproach},
		{Label: "Anesthesia Type", Column: ColAneType},
	}}
	DemographicCatalog = Catalog{Name: "demographic", Options: []Option{
		{Label: "Age", Column: category.ColumnAge},
		{Label: "BMI", Column: category.ColumnBMI},
		{Label: "Gender", Column: ColSex},
	}}
	HistoryCatalog = Catalog{Name: "history", Options: []Option{
		{Label: "Hypertension", Column: category.ColumnHypertension},
		{Label: "Diabetes", Column: category.ColumnDiabetes},
		{Label: "Pulmonary", Column: ColPulmonary},
	}}
)

// Catalogs lists the four selectors in display order.
var Catalogs = []Catalog{OutcomeCatalog, DetailCatalog, DemographicCatalog, HistoryCatalog}

// Resolve maps label to its column in c.
func Resolve(label string, c Catalog) (string, error) {
	o, err := c.lookup(label)
	if err != nil {
		return "", err
	}
	return o.Column, nil
}

func (c Catalog) lookup(label string) (Option, error) {
	for _, o := range c.Options {
		if o.Label == label {
			return o, nil
		}
	}
	return Option{}, fmt.Errorf("%s %q: %w", c.Name, label, ErrInvalidSelection)
}

// SelectionLabels are the raw user choices. Empty means "use the default".
type SelectionLabels struct {
	Outcome     string `json:"outcome" yaml:"outcome"`
	Detail      string `json:"detail" yaml:"detail"`
	Demographic string `json:"demographic" yaml:"demographic"`
	History     string `json:"history" yaml:"history"`
}

// Selection is a fully resolved set of dimensions.
type Selection struct {
	Outcome     Option `json:"outcome" yaml:"outcome"`
	Detail      Option `json:"detail" yaml:"detail"`
	Demographic Option `json:"demographic" yaml:"demographic"`
	History     Option `json:"history" yaml:"history"`
}

// DefaultSelection picks the first option of every catalog.
func DefaultSelection() Selection {
	return Selection{
		Outcome:     OutcomeCatalog.Default(),
		Detail:      DetailCatalog.Default(),
		Demographic: DemographicCatalog.Default(),
		History:     HistoryCatalog.Default(),
	}
}

// Labels converts a resolved selection back to its labels.
func (s Selection) Labels() SelectionLabels {
	return SelectionLabels{
		Outcome:     s.Outcome.Label,
		Detail:      s.Detail.Label,
		Demographic: s.Demographic.Label,
		History:     s.History.Label,
	}
}

// ResolveSelection resolves each dimension independently. An invalid label
// falls back to that catalog's default and adds a warning; the others are
// unaffected.
func ResolveSelection(l SelectionLabels) (Selection, []string) {
	var warnings []string
	pick := func(label string, c Catalog) Option {
		if label == "" {
			return c.Default()
		}
		o, err := c.lookup(label)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Please select a valid %s (%v); showing %q.", c.Name, err, c.Default().Label))
			return c.Default()
		}
		return o
	}
	sel := Selection{
		Outcome:     pick(l.Outcome, OutcomeCatalog),
		Detail:      pick(l.Detail, DetailCatalog),
		Demographic: pick(l.Demographic, DemographicCatalog),
		History:     pick(l.History, HistoryCatalog),
	}
	return sel, warnings
}
