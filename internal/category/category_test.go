package category

import (
	"math"
	"testing"
)

func TestCategorizeBMIBoundaries(t *testing.T) {
	cases := []struct {
		bmi    float64
		close  string
		legacy string
	}{
		{18.4, "Underweight", "Underweight"},
		{18.5, "Normal", "Normal"},
		{24.8, "Normal", "Normal"},
		{24.9, "Normal", "Obese"},
		{24.95, "Normal", "Obese"},
		{25, "Overweight", "Overweight"},
		{29.8, "Overweight", "Overweight"},
		{29.9, "Obese", "Obese"},
		{42, "Obese", "Obese"},
		{math.NaN(), "Obese", "Obese"},
	}
	closeRules := Rules(GapClose)
	legacyRules := Rules(GapLegacy)
	for _, tc := range cases {
		if got := closeRules.Categorize(BMI, tc.bmi); got != tc.close {
			t.Errorf("close policy bmi=%v: got %q want %q", tc.bmi, got, tc.close)
		}
		if got := legacyRules.Categorize(BMI, tc.bmi); got != tc.legacy {
			t.Errorf("legacy policy bmi=%v: got %q want %q", tc.bmi, got, tc.legacy)
		}
	}
}

func TestCategorizeICUBoundaries(t *testing.T) {
	cases := []struct {
		days float64
		want string
	}{
		{-1, "Less than a day"},
		{0, "Less than a day"},
		{0.99, "Less than a day"},
		{1, "Under a week"},
		{6.99, "Under a week"},
		{7, "Under a month"},
		{29.99, "Under a month"},
		{30, "More than one month"},
		{30.01, "More than one month"},
		{math.NaN(), "More than one month"},
	}
	rule, ok := Default().Rule(ICUStay)
	if !ok {
		t.Fatalf("icu rule missing")
	}
	for _, tc := range cases {
		got := Categorize(ICUStay, tc.days)
		if got != tc.want {
			t.Errorf("icu_days=%v: got %q want %q", tc.days, got, tc.want)
		}
		if rule.Rank(got) < 0 {
			t.Errorf("icu_days=%v: label %q not declared", tc.days, got)
		}
	}
}

func TestCategorizeAgeBoundaries(t *testing.T) {
	cases := []struct {
		age  float64
		want string
	}{
		{0, "Below 18"},
		{17.9, "Below 18"},
		{18, "18 - 29"},
		{29.5, "18 - 29"},
		{30, "30 - 45"},
		{45.9, "30 - 45"},
		{46, "Above 45"},
		{math.NaN(), "Above 45"},
	}
	for _, tc := range cases {
		if got := Categorize(Age, tc.age); got != tc.want {
			t.Errorf("age=%v: got %q want %q", tc.age, got, tc.want)
		}
	}
}

func TestCategorizeFlags(t *testing.T) {
	cases := []struct {
		attr Attribute
		v    float64
		want string
	}{
		{Hypertension, 0, "No"},
		{Hypertension, 1, "Yes"},
		{Hypertension, 2, "Yes"},
		{Hypertension, math.NaN(), "Yes"},
		{Diabetes, 0, "No"},
		{Diabetes, 1, "Yes"},
		{Mortality, 0, "Alive"},
		{Mortality, 1, "Dead"},
		{Mortality, -1, "Dead"},
	}
	for _, tc := range cases {
		if got := Categorize(tc.attr, tc.v); got != tc.want {
			t.Errorf("%s=%v: got %q want %q", tc.attr, tc.v, got, tc.want)
		}
	}
}

func TestRuleOrderAndColumns(t *testing.T) {
	rs := Default()
	if len(rs.All()) != len(Attributes) {
		t.Fatalf("expected %d rules, got %d", len(Attributes), len(rs.All()))
	}
	for i, r := range rs.All() {
		if r.Attribute != Attributes[i] {
			t.Fatalf("rule %d: got %s want %s", i, r.Attribute, Attributes[i])
		}
		if _, ok := rs.ByColumn(r.Column); !ok {
			t.Fatalf("ByColumn(%s) not found", r.Column)
		}
	}
	bmi, _ := rs.Rule(BMI)
	want := []string{"Underweight", "Normal", "Overweight", "Obese"}
	got := bmi.Labels()
	if len(got) != len(want) {
		t.Fatalf("bmi labels: %v", got)
	}
	for i := range want {
		if got[i] != want[i] || bmi.Rank(want[i]) != i {
			t.Fatalf("bmi labels: %v", got)
		}
	}
	if bmi.Rank("Skinny") != -1 {
		t.Fatalf("expected -1 rank for undeclared label")
	}
	if rs.Categorize(Attribute("weight"), 70) != "" {
		t.Fatalf("expected empty label for unknown attribute")
	}
}

func TestParseBMIGapPolicy(t *testing.T) {
	if p, err := ParseBMIGapPolicy(""); err != nil || p != GapClose {
		t.Fatalf("empty: %v %v", p, err)
	}
	if p, err := ParseBMIGapPolicy(" Legacy "); err != nil || p != GapLegacy {
		t.Fatalf("legacy: %v %v", p, err)
	}
	if _, err := ParseBMIGapPolicy("open"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestDescribeOmitsOpenBounds(t *testing.T) {
	docs := Rules(GapLegacy).Describe()
	if len(docs) != len(Attributes) {
		t.Fatalf("expected %d rules, got %d", len(Attributes), len(docs))
	}
	bmi := docs[4]
	if bmi.Column != ColumnBMI || bmi.Fallback != "Obese" {
		t.Fatalf("unexpected bmi doc: %+v", bmi)
	}
	if bmi.Bins[0].Min != nil || *bmi.Bins[0].Max != 18.5 {
		t.Fatalf("underweight bounds: %+v", bmi.Bins[0])
	}
	if *bmi.Bins[1].Max != 24.9 {
		t.Fatalf("legacy normal max: %v", *bmi.Bins[1].Max)
	}
	if s := docs[0].Bins[0]; s.Min == nil || *s.Min != 0 || *s.Max != 0 {
		t.Fatalf("flag bin should be exactly zero: %+v", s)
	}
}

func TestBinString(t *testing.T) {
	r, _ := Default().Rule(ICUStay)
	want := []string{"< 1", "[1, 7)", "[7, 30)"}
	for i, b := range r.Bins {
		if b.String() != want[i] {
			t.Errorf("bin %d: got %q want %q", i, b.String(), want[i])
		}
	}
	if (Bin{Min: 0, Max: 0}).String() != "= 0" {
		t.Errorf("exact bin: %q", (Bin{}).String())
	}
}
