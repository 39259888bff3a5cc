package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/mortalisys/internal/category"
)

func TestSummarizeFixture(t *testing.T) {
	s, err := Summarize(loadFixture(t, tenRows))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Total != 10 || s.Male != 5 || s.Female != 5 {
		t.Fatalf("counts: %+v", s)
	}
	if s.Deaths != 3 || s.Survivors != 7 {
		t.Fatalf("mortality: %+v", s)
	}
	if FormatPercent(s.MortalityPct) != "30.00%" {
		t.Fatalf("mortality pct: %s", FormatPercent(s.MortalityPct))
	}
	if s.ICUMin != 0 || s.ICUMax != 32 {
		t.Fatalf("icu range: %v..%v", s.ICUMin, s.ICUMax)
	}
	if FormatPercent(s.ICUMinPct) != "50.00%" || FormatPercent(s.ICUMaxPct) != "10.00%" {
		t.Fatalf("icu pcts: %v %v", s.ICUMinPct, s.ICUMaxPct)
	}
	// ">89" counts as 0: (77+54+62+74+0+17+29+30+45+9)/10
	if math.Abs(s.MeanAge-39.7) > 1e-9 {
		t.Fatalf("mean age: %v", s.MeanAge)
	}
	if FormatPercent(s.HypertensionPct) != "40.00%" || FormatPercent(s.DiabetesPct) != "20.00%" {
		t.Fatalf("history pcts: %v %v", s.HypertensionPct, s.DiabetesPct)
	}
	if s.Departments != 4 || s.OpTypes != 5 || s.Approaches != 3 {
		t.Fatalf("distinct counts: %d %d %d", s.Departments, s.OpTypes, s.Approaches)
	}

	md := s.Markdown()
	for _, want := range []string{
		"[DATASET OVERVIEW]",
		"Total Patients: 10",
		"Percentage of In-Hospital Mortality: 30.00%",
		"Percentage of Patients with Maximum ICU Days (32): 10.00%",
		"Average Age: 39.70 years",
		"Total Approaches: 3",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestSummarizeAllZeroICU(t *testing.T) {
	recs := make([]Record, 4)
	for i := range recs {
		recs[i] = Record{Age: 50, Sex: "F", ICUDays: 0}
	}
	s, err := Summarize(NewTable("zero", recs, category.Default()))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.ICUMin != 0 || s.ICUMax != 0 {
		t.Fatalf("expected min == max == 0, got %v %v", s.ICUMin, s.ICUMax)
	}
	if FormatPercent(s.ICUMinPct) != "100.00%" || FormatPercent(s.ICUMaxPct) != "100.00%" {
		t.Fatalf("expected both 100.00%%, got %v %v", s.ICUMinPct, s.ICUMaxPct)
	}
}

func TestSummarizeMeanAgeCoercesNonNumeric(t *testing.T) {
	recs := []Record{
		{Age: ParseAge("40")},
		{Age: ParseAge("unknown")},
		{Age: ParseAge("80")},
	}
	s, err := Summarize(NewTable("ages", recs, category.Default()))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.MeanAge != 40 {
		t.Fatalf("expected (40+0+80)/3 = 40, got %v", s.MeanAge)
	}
}

func TestSummarizeNoICURecorded(t *testing.T) {
	recs := []Record{{ICUDays: math.NaN()}, {ICUDays: math.NaN()}}
	s, err := Summarize(NewTable("nan", recs, category.Default()))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.ICURecorded != 0 || s.ICUMin != 0 || s.ICUMax != 0 {
		t.Fatalf("expected zeroed icu stats, got %+v", s)
	}
	if !strings.Contains(s.Markdown(), "No ICU stay recorded") {
		t.Fatalf("markdown should note missing icu data")
	}
}

func TestSummarizeEmptyTable(t *testing.T) {
	_, err := Summarize(NewTable("empty", nil, category.Default()))
	if !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}
