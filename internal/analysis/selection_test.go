package analysis

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	col, err := Resolve("Hypertension", HistoryCatalog)
	if err != nil || col != "htn_category" {
		t.Fatalf("Resolve(Hypertension) = %q, %v", col, err)
	}
	cases := []struct {
		label string
		cat   Catalog
		want  string
	}{
		{"In-Hospital Mortality", OutcomeCatalog, "death_category"},
		{"Length of Stay", OutcomeCatalog, "icu_category"},
		{"Anesthesia Type", DetailCatalog, "ane_type"},
		{"Operation Type", DetailCatalog, "optype"},
		{"BMI", DemographicCatalog, "bmi_category"},
		{"Gender", DemographicCatalog, "sex"},
		{"Pulmonary", HistoryCatalog, "preop_pft"},
	}
	for _, tc := range cases {
		got, err := Resolve(tc.label, tc.cat)
		if err != nil || got != tc.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q", tc.label, got, err, tc.want)
		}
	}
}

func TestResolveInvalid(t *testing.T) {
	for _, c := range Catalogs {
		col, err := Resolve("Nonexistent", c)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("%s: expected ErrInvalidSelection, got %v", c.Name, err)
		}
		if col != "" {
			t.Fatalf("%s: expected empty column, got %q", c.Name, col)
		}
	}
	// labels are matched exactly
	if _, err := Resolve("hypertension", HistoryCatalog); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected case-sensitive match, got %v", err)
	}
}

func TestResolveSelectionFallsBackPerDimension(t *testing.T) {
	sel, warnings := ResolveSelection(SelectionLabels{
		Outcome:     "Length of Stay",
		Detail:      "Surgeon",
		Demographic: "BMI",
	})
	if sel.Outcome.Column != "icu_category" || sel.Demographic.Column != "bmi_category" {
		t.Fatalf("valid dimensions changed: %+v", sel)
	}
	if sel.Detail != DetailCatalog.Default() {
		t.Fatalf("invalid detail should fall back to default, got %+v", sel.Detail)
	}
	if sel.History != HistoryCatalog.Default() {
		t.Fatalf("empty history should use default, got %+v", sel.History)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], `detail "Surgeon"`) {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestDefaultSelectionRoundTripsLabels(t *testing.T) {
	def := DefaultSelection()
	sel, warnings := ResolveSelection(def.Labels())
	if len(warnings) != 0 || sel != def {
		t.Fatalf("default selection did not round trip: %+v %v", sel, warnings)
	}
	if got := strings.Join(DemographicCatalog.Labels(), ","); got != "Age,BMI,Gender" {
		t.Fatalf("demographic labels: %s", got)
	}
}
