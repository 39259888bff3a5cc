package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/KaramelBytes/mortalisys/internal/category"
	"github.com/KaramelBytes/mortalisys/internal/parser"
)

// Raw column names of the clinical export.
const (
	ColAge          = "age"
	ColBMI          = "bmi"
	ColSex          = "sex"
	ColHypertension = "preop_htn"
	ColDiabetes     = "preop_dm"
	ColPulmonary    = "preop_pft"
	ColMortality    = "death_inhosp"
	ColICUDays      = "icu_days"
	ColDepartment   = "department"
	ColOpType       = "optype"
	ColOpName       = "opname"
	ColApproach     = "approach"
	ColAneType      = "ane_type"
)

// RequiredColumns must all be present in a dataset header.
var RequiredColumns = []string{
	ColAge, ColBMI, ColSex, ColHypertension, ColDiabetes, ColPulmonary,
	ColMortality, ColICUDays, ColDepartment, ColOpType, ColOpName, ColApproach, ColAneType,
}

var numericColumns = map[string]bool{
	ColAge: true, ColBMI: true, ColHypertension: true, ColDiabetes: true,
	ColMortality: true, ColICUDays: true,
}

// ErrUnknownColumn is returned when a column is neither raw nor derived.
var ErrUnknownColumn = errors.New("unknown column")

// MissingColumnsError lists required columns absent from a dataset header.
type MissingColumnsError struct {
	Source  string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Columns, ", "))
}

// Record is one clinical case. Numeric fields hold NaN when the cell is
// empty or not a number.
type Record struct {
	AgeText      string
	Age          float64
	BMI          float64
	Sex          string
	Hypertension float64
	Diabetes     float64
	Pulmonary    string
	Mortality    float64
	ICUDays      float64
	Department   string
	OpType       string
	OpName       string
	Approach     string
	AneType      string

	// Derived labels, set by NewTable.
	HypertensionCategory string
	MortalityCategory    string
	DiabetesCategory     string
	AgeCategory          string
	BMICategory          string
	ICUCategory          string
}

func (r *Record) raw(attr category.Attribute) float64 {
	switch attr {
	case category.Hypertension:
		return r.Hypertension
	case category.Mortality:
		return r.Mortality
	case category.Diabetes:
		return r.Diabetes
	case category.Age:
		return r.Age
	case category.BMI:
		return r.BMI
	case category.ICUStay:
		return r.ICUDays
	}
	return math.NaN()
}

func (r *Record) setCategory(attr category.Attribute, label string) {
	switch attr {
	case category.Hypertension:
		r.HypertensionCategory = label
	case category.Mortality:
		r.MortalityCategory = label
	case category.Diabetes:
		r.DiabetesCategory = label
	case category.Age:
		r.AgeCategory = label
	case category.BMI:
		r.BMICategory = label
	case category.ICUStay:
		r.ICUCategory = label
	}
}

// Value returns the cell for column as text. Missing numeric cells are "".
func (r Record) Value(column string) (string, bool) {
	switch column {
	case ColAge:
		return formatNumber(r.Age), true
	case ColBMI:
		return formatNumber(r.BMI), true
	case ColSex:
		return r.Sex, true
	case ColHypertension:
		return formatNumber(r.Hypertension), true
	case ColDiabetes:
		return formatNumber(r.Diabetes), true
	case ColPulmonary:
		return r.Pulmonary, true
	case ColMortality:
		return formatNumber(r.Mortality), true
	case ColICUDays:
		return formatNumber(r.ICUDays), true
	case ColDepartment:
		return r.Department, true
	case ColOpType:
		return r.OpType, true
	case ColOpName:
		return r.OpName, true
	case ColApproach:
		return r.Approach, true
	case ColAneType:
		return r.AneType, true
	case category.ColumnHypertension:
		return r.HypertensionCategory, true
	case category.ColumnMortality:
		return r.MortalityCategory, true
	case category.ColumnDiabetes:
		return r.DiabetesCategory, true
	case category.ColumnAge:
		return r.AgeCategory, true
	case category.ColumnBMI:
		return r.BMICategory, true
	case category.ColumnICUStay:
		return r.ICUCategory, true
	}
	return "", false
}

// Table is an immutable, fully categorized batch of records.
type Table struct {
	name     string
	records  []Record
	rules    category.RuleSet
	warnings []string
}

// NewTable copies records, applies every rule and freezes the result.
func NewTable(name string, records []Record, rules category.RuleSet) *Table {
	recs := make([]Record, len(records))
	copy(recs, records)
	all := rules.All()
	for i := range recs {
		for _, rule := range all {
			recs[i].setCategory(rule.Attribute, rule.Apply(recs[i].raw(rule.Attribute)))
		}
	}
	return &Table{name: name, records: recs, rules: rules}
}

// Name is the dataset's display name, usually the file base name.
func (t *Table) Name() string { return t.name }

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Rules returns the rule set the table was categorized with.
func (t *Table) Rules() category.RuleSet { return t.rules }

// Warnings lists non-fatal data-quality notes collected during load.
func (t *Table) Warnings() []string {
	out := make([]string, len(t.warnings))
	copy(out, t.warnings)
	return out
}

// Record returns a copy of row i.
func (t *Table) Record(i int) Record { return t.records[i] }

// Records returns a copy of all rows.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// HasColumn reports whether column is a raw or derived column.
func (t *Table) HasColumn(column string) bool {
	_, ok := Record{}.Value(column)
	return ok
}

// Levels returns the ordered values of column. Derived columns yield their
// full declared label set; raw columns yield the sorted distinct non-empty
// values present in the table.
func (t *Table) Levels(column string) ([]string, error) {
	if rule, ok := t.rules.ByColumn(column); ok {
		return rule.Labels(), nil
	}
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%s: %w", column, ErrUnknownColumn)
	}
	vals := make([]string, 0, len(t.records))
	for _, r := range t.records {
		if v, _ := r.Value(column); v != "" {
			vals = append(vals, v)
		}
	}
	vals = lo.Uniq(vals)
	if numericColumns[column] {
		sort.Slice(vals, func(i, j int) bool { return parseFloat(vals[i]) < parseFloat(vals[j]) })
	} else {
		sort.Strings(vals)
	}
	return vals, nil
}

// Options controls dataset loading.
type Options struct {
	Parser parser.Options
	BMIGap category.BMIGapPolicy
}

// DefaultOptions returns Latin-1 CSV decoding and contiguous BMI bins.
func DefaultOptions() Options {
	return Options{Parser: parser.DefaultOptions(), BMIGap: category.GapClose}
}

// LoadFile reads and categorizes a dataset from disk.
func LoadFile(path string, opt Options) (*Table, error) {
	sh, err := parser.ReadFile(path, opt.Parser)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return Load(sh, opt)
}

// Load builds a categorized table from a decoded sheet.
func Load(sh *parser.Sheet, opt Options) (*Table, error) {
	idx := make(map[string]int, len(sh.Header))
	for i, h := range sh.Header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Source: sh.Name, Columns: missing}
	}
	cell := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	records := make([]Record, 0, len(sh.Rows))
	nonNumericAge := 0
	for _, row := range sh.Rows {
		rec := Record{
			AgeText:      cell(row, ColAge),
			BMI:          parseFloat(cell(row, ColBMI)),
			Sex:          cell(row, ColSex),
			Hypertension: parseFloat(cell(row, ColHypertension)),
			Diabetes:     parseFloat(cell(row, ColDiabetes)),
			Pulmonary:    cell(row, ColPulmonary),
			Mortality:    parseFloat(cell(row, ColMortality)),
			ICUDays:      parseFloat(cell(row, ColICUDays)),
			Department:   cell(row, ColDepartment),
			OpType:       cell(row, ColOpType),
			OpName:       cell(row, ColOpName),
			Approach:     cell(row, ColApproach),
			AneType:      cell(row, ColAneType),
		}
		rec.Age = ParseAge(rec.AgeText)
		if math.IsNaN(rec.Age) {
			nonNumericAge++
		}
		records = append(records, rec)
	}
	t := NewTable(sh.Name, records, category.Rules(opt.BMIGap))
	if nonNumericAge > 0 {
		t.warnings = append(t.warnings, fmt.Sprintf("%d/%d age values are not numeric; binned as %q and counted as 0 in the mean age", nonNumericAge, len(records), lastLabel(t.rules, category.Age)))
	}
	return t, nil
}

// ParseAge reads the age column as a number. Non-numeric entries such as
// ">89" or blanks become NaN.
func ParseAge(s string) float64 {
	return parseFloat(s)
}

// parseFloat reads a numeric cell. Blanks, text and infinities ("inf",
// "Infinity") are missing.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func lastLabel(rs category.RuleSet, attr category.Attribute) string {
	r, _ := rs.Rule(attr)
	return r.Fallback
}
