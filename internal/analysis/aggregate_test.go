package analysis

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/mortalisys/internal/category"
)

func TestAggregateSumsRoundTrip(t *testing.T) {
	tbl := loadFixture(t, tenRows)
	var wantICU, wantDeaths float64
	for _, r := range tbl.Records() {
		wantICU += r.ICUDays
		wantDeaths += r.Mortality
	}
	views := [][]string{
		BarColumns(DefaultSelection()),
		HistogramColumns(DefaultSelection()),
		{ColSex},
		{category.ColumnBMI, ColPulmonary},
	}
	for _, cols := range views {
		rows, err := Aggregate(tbl, cols)
		if err != nil {
			t.Fatalf("Aggregate(%v): %v", cols, err)
		}
		var icu, deaths float64
		count := 0
		for _, r := range rows {
			if len(r.Key) != len(cols) {
				t.Fatalf("key %v does not match columns %v", r.Key, cols)
			}
			icu += r.ICUDays
			deaths += r.Deaths
			count += r.Count
		}
		if icu != wantICU || deaths != wantDeaths || count != tbl.Len() {
			t.Fatalf("%v: icu=%v deaths=%v count=%d, want %v %v %d", cols, icu, deaths, count, wantICU, wantDeaths, tbl.Len())
		}
	}
}

func TestAggregateOrderFollowsLevels(t *testing.T) {
	tbl := loadFixture(t, tenRows)
	rows, err := Aggregate(tbl, []string{category.ColumnICUStay})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	var keys []string
	for _, r := range rows {
		keys = append(keys, r.Key[0])
	}
	want := "Less than a day|Under a week|Under a month|More than one month"
	if strings.Join(keys, "|") != want {
		t.Fatalf("got order %v", keys)
	}
	// icu 0 x5 -> less than a day, 1 and 4 -> under a week, 7 -> under a month, 30 and 32 -> more.
	wantCounts := []int{5, 2, 1, 2}
	wantICU := []float64{0, 5, 7, 62}
	for i, r := range rows {
		if r.Count != wantCounts[i] || r.ICUDays != wantICU[i] {
			t.Fatalf("row %d: %+v", i, r)
		}
	}
	if rows[3].Deaths != 2 {
		t.Fatalf("expected 2 deaths in long stays, got %v", rows[3].Deaths)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	tbl := loadFixture(t, tenRows)
	cols := BarColumns(DefaultSelection())
	first, err := Aggregate(tbl, cols)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := Aggregate(tbl, cols)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("aggregate output changed between runs")
		}
	}
}

func TestAggregateNoZeroFill(t *testing.T) {
	tbl := loadFixture(t, tenRows)
	rows, err := Aggregate(tbl, []string{ColDepartment, category.ColumnMortality})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	// Nobody died in gynecology or urology, so 6 of the 8 combinations exist.
	if len(rows) != 6 {
		t.Fatalf("expected 6 present combinations, got %v", rows)
	}
	want := [][]string{
		{"General surgery", "Alive"}, {"General surgery", "Dead"},
		{"Gynecology", "Alive"},
		{"Thoracic surgery", "Alive"}, {"Thoracic surgery", "Dead"},
		{"Urology", "Alive"},
	}
	for i, r := range rows {
		if !reflect.DeepEqual(r.Key, want[i]) {
			t.Fatalf("row %d: got key %v want %v", i, r.Key, want[i])
		}
	}
	rows, _ = Aggregate(tbl, []string{category.ColumnAge, category.ColumnHypertension})
	for _, r := range rows {
		if r.Count == 0 {
			t.Fatalf("synthetic zero row %v", r)
		}
	}
}

func TestAggregateEmptyTable(t *testing.T) {
	tbl := NewTable("empty", nil, category.Default())
	rows, err := Aggregate(tbl, BarColumns(DefaultSelection()))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", rows)
	}
}

func TestAggregateSkipsMissingKeysAndNaN(t *testing.T) {
	recs := []Record{
		{Sex: "M", ICUDays: 2, Mortality: 1},
		{Sex: "M", ICUDays: math.NaN(), Mortality: math.NaN()},
		{Sex: "", ICUDays: 9, Mortality: 1},
	}
	tbl := NewTable("inline", recs, category.Default())
	rows, err := Aggregate(tbl, []string{ColSex})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 1 || rows[0].Count != 2 || rows[0].ICUDays != 2 || rows[0].Deaths != 1 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestAggregateUnknownColumn(t *testing.T) {
	tbl := loadFixture(t, tenRows)
	_, err := Aggregate(tbl, []string{"weight"})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestViewColumns(t *testing.T) {
	sel, _ := ResolveSelection(SelectionLabels{Detail: "Approach", Demographic: "Gender", History: "Pulmonary"})
	cols, err := ViewColumns(ViewBar, sel)
	if err != nil || strings.Join(cols, ",") != "approach,opname,sex,icu_category" {
		t.Fatalf("bar columns: %v %v", cols, err)
	}
	cols, err = ViewColumns(ViewHistogram, sel)
	if err != nil || strings.Join(cols, ",") != "sex,preop_pft,icu_category" {
		t.Fatalf("histogram columns: %v %v", cols, err)
	}
	if _, err := ViewColumns("pie", sel); err == nil {
		t.Fatalf("expected error for unknown view")
	}
}

func TestAggregateRowValueOf(t *testing.T) {
	r := AggregateRow{ICUDays: 3, Deaths: 1, Count: 4}
	if r.ValueOf(ValueICUDays) != 3 || r.ValueOf(ValueDeaths) != 1 || r.ValueOf(ValueCount) != 4 {
		t.Fatalf("ValueOf mismatch: %+v", r)
	}
}
