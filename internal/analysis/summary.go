package analysis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ErrEmptyTable is returned when a summary is requested for zero records.
var ErrEmptyTable = errors.New("dataset has no records")

// Summary is the whole-dataset overview panel.
type Summary struct {
	Name            string  `json:"name" yaml:"name"`
	Total           int     `json:"total" yaml:"total"`
	Male            int     `json:"male" yaml:"male"`
	Female          int     `json:"female" yaml:"female"`
	Deaths          float64 `json:"deaths" yaml:"deaths"`
	Survivors       float64 `json:"survivors" yaml:"survivors"`
	MortalityPct    float64 `json:"mortality_pct" yaml:"mortality_pct"`
	ICURecorded     int     `json:"icu_recorded" yaml:"icu_recorded"`
	ICUMin          float64 `json:"icu_min" yaml:"icu_min"`
	ICUMax          float64 `json:"icu_max" yaml:"icu_max"`
	ICUMinPct       float64 `json:"icu_min_pct" yaml:"icu_min_pct"`
	ICUMaxPct       float64 `json:"icu_max_pct" yaml:"icu_max_pct"`
	MeanAge         float64 `json:"mean_age" yaml:"mean_age"`
	HypertensionPct float64 `json:"hypertension_pct" yaml:"hypertension_pct"`
	DiabetesPct     float64 `json:"diabetes_pct" yaml:"diabetes_pct"`
	Departments     int     `json:"departments" yaml:"departments"`
	OpTypes         int     `json:"optypes" yaml:"optypes"`
	Approaches      int     `json:"approaches" yaml:"approaches"`
}

// Summarize computes the overview over every record of t.
//
// Ages that are not numeric count as 0 and stay in the denominator of the
// mean. Flags are summed as numbers with missing cells skipped.
func Summarize(t *Table) (*Summary, error) {
	n := t.Len()
	if n == 0 {
		return nil, ErrEmptyTable
	}
	s := &Summary{Name: t.Name(), Total: n}
	total := float64(n)
	var ageSum, htn, dm float64
	minICU, maxICU := math.Inf(1), math.Inf(-1)
	for _, r := range t.records {
		switch r.Sex {
		case "M":
			s.Male++
		case "F":
			s.Female++
		}
		s.Deaths += zeroNaN(r.Mortality)
		ageSum += zeroNaN(r.Age)
		htn += zeroNaN(r.Hypertension)
		dm += zeroNaN(r.Diabetes)
		if !math.IsNaN(r.ICUDays) {
			s.ICURecorded++
			minICU = math.Min(minICU, r.ICUDays)
			maxICU = math.Max(maxICU, r.ICUDays)
		}
	}
	s.Survivors = total - s.Deaths
	s.MortalityPct = percent(s.Deaths, total)
	s.MeanAge = ageSum / total
	s.HypertensionPct = percent(htn, total)
	s.DiabetesPct = percent(dm, total)
	if s.ICURecorded > 0 {
		s.ICUMin, s.ICUMax = minICU, maxICU
		var atMin, atMax float64
		for _, r := range t.records {
			if r.ICUDays == minICU {
				atMin++
			}
			if r.ICUDays == maxICU {
				atMax++
			}
		}
		s.ICUMinPct = percent(atMin, total)
		s.ICUMaxPct = percent(atMax, total)
	}
	s.Departments = distinct(t.records, func(r Record) string { return r.Department })
	s.OpTypes = distinct(t.records, func(r Record) string { return r.OpType })
	s.Approaches = distinct(t.records, func(r Record) string { return r.Approach })
	return s, nil
}

func percent(count, total float64) float64 { return count / total * 100 }

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func distinct(recs []Record, field func(Record) string) int {
	vals := lo.FilterMap(recs, func(r Record, _ int) (string, bool) {
		v := field(r)
		return v, v != ""
	})
	return len(lo.Uniq(vals))
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(p float64) string { return fmt.Sprintf("%.2f%%", p) }

func formatCount(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Markdown renders the overview panel.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET OVERVIEW]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Total Patients: %d\n", s.Total))
	b.WriteString(fmt.Sprintf("Total Male Patients: %d\n", s.Male))
	b.WriteString(fmt.Sprintf("Total Female Patients: %d\n", s.Female))

	b.WriteString("\n[IN-HOSPITAL MORTALITY]\n")
	b.WriteString(fmt.Sprintf("Total Deaths: %s\n", formatCount(s.Deaths)))
	b.WriteString(fmt.Sprintf("Total Survivors: %s\n", formatCount(s.Survivors)))
	b.WriteString(fmt.Sprintf("Percentage of In-Hospital Mortality: %s\n", FormatPercent(s.MortalityPct)))

	b.WriteString("\n[ICU DAYS]\n")
	if s.ICURecorded == 0 {
		b.WriteString("No ICU stay recorded\n")
	} else {
		b.WriteString(fmt.Sprintf("Minimum ICU Days: %s\n", formatCount(s.ICUMin)))
		b.WriteString(fmt.Sprintf("Maximum ICU Days: %s\n", formatCount(s.ICUMax)))
		b.WriteString(fmt.Sprintf("Percentage of Patients with Minimum ICU Days (%s): %s\n", formatCount(s.ICUMin), FormatPercent(s.ICUMinPct)))
		b.WriteString(fmt.Sprintf("Percentage of Patients with Maximum ICU Days (%s): %s\n", formatCount(s.ICUMax), FormatPercent(s.ICUMaxPct)))
	}

	b.WriteString("\n[PATIENT DEMOGRAPHICS]\n")
	b.WriteString(fmt.Sprintf("Average Age: %.2f years\n", s.MeanAge))
	b.WriteString(fmt.Sprintf("Percentage of Patients with Hypertension: %s\n", FormatPercent(s.HypertensionPct)))
	b.WriteString(fmt.Sprintf("Percentage of Patients with Diabetes: %s\n", FormatPercent(s.DiabetesPct)))

	b.WriteString("\n[SURGICAL DETAILS]\n")
	b.WriteString(fmt.Sprintf("Total Departments: %d\n", s.Departments))
	b.WriteString(fmt.Sprintf("Total Operation Types: %d\n", s.OpTypes))
	b.WriteString(fmt.Sprintf("Total Approaches: %d\n", s.Approaches))
	return b.String()
}
