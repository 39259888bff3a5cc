package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
	"github.com/KaramelBytes/mortalisys/internal/category"
)

const (
	BarTitle       = "Clustered Column Chart: Length of Hospital Stay and Death In-Hospital by Surgery Details and Patient Demographics"
	HistogramTitle = "Histogram: Death In-Hospital and Length of Hospital Stay by Patient Demographics and Medical History"
	ScatterTitle   = "Scatter Plot: Correlation of Age and Body Mass Index in determining Inhospital Mortality and Length of Hospital Stay"
)

// BarSpec is the horizontal bar view: deaths per surgery detail, coloured by
// operation name and faceted by demographic and ICU duration.
func BarSpec(sel analysis.Selection) Spec {
	return Spec{
		Title:    BarTitle,
		X:        sel.Detail.Column,
		Color:    analysis.ColOpName,
		FacetRow: sel.Demographic.Column,
		FacetCol: category.ColumnICUStay,
		Value:    analysis.ValueDeaths,
		Labels: map[string]string{
			analysis.ValueDeaths:   "Number of Dead patients",
			sel.Detail.Column:      sel.Detail.Label,
			analysis.ColOpName:     "Operation Name",
			category.ColumnICUStay: "Duration",
			sel.Demographic.Column: sel.Demographic.Label,
		},
		Horizontal: true,
	}
}

// HistogramSpec is deaths per demographic level coloured by history.
func HistogramSpec(sel analysis.Selection) Spec {
	return Spec{
		Title:    HistogramTitle,
		X:        sel.Demographic.Column,
		Color:    sel.History.Column,
		FacetCol: category.ColumnICUStay,
		Value:    analysis.ValueDeaths,
		Labels: map[string]string{
			analysis.ValueDeaths:   "number of dead patients",
			sel.Demographic.Column: sel.Demographic.Label,
			sel.History.Column:     sel.History.Label,
			category.ColumnICUStay: "Duration",
		},
		Horizontal: true,
	}
}

// ScatterSpec plots age against BMI per outcome level, one chart per sex.
func ScatterSpec(sel analysis.Selection) Spec {
	return Spec{
		Title:    ScatterTitle,
		X:        analysis.ColBMI,
		Y:        analysis.ColAge,
		Color:    sel.Outcome.Column,
		FacetCol: analysis.ColSex,
		Labels: map[string]string{
			analysis.ColAge:    "Age",
			analysis.ColBMI:    "Body Mass Index",
			sel.Outcome.Column: sel.Outcome.Label,
			analysis.ColSex:    "sex",
		},
	}
}

// Views builds the three dashboard views for sel, in display order.
func Views(t *analysis.Table, sel analysis.Selection) ([]components.Charter, error) {
	var out []components.Charter
	for _, v := range []struct {
		spec    Spec
		columns []string
	}{
		{BarSpec(sel), analysis.BarColumns(sel)},
		{HistogramSpec(sel), analysis.HistogramColumns(sel)},
	} {
		rows, err := analysis.Aggregate(t, v.columns)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", v.spec.Title, err)
		}
		cs, err := Bars(v.spec, v.columns, rows, t.Levels)
		if err != nil {
			return nil, err
		}
		out = append(out, cs...)
	}
	cs, err := Scatter(ScatterSpec(sel), t)
	if err != nil {
		return nil, err
	}
	return append(out, cs...), nil
}

// Dashboard lays every view of sel out on a single page.
func Dashboard(t *analysis.Table, sel analysis.Selection) (*components.Page, error) {
	cs, err := Views(t, sel)
	if err != nil {
		return nil, err
	}
	page := components.NewPage()
	page.SetPageTitle("MortaliSys")
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(cs...)
	return page, nil
}

// Render writes the dashboard page for sel as standalone HTML.
func Render(w io.Writer, t *analysis.Table, sel analysis.Selection) error {
	page, err := Dashboard(t, sel)
	if err != nil {
		return err
	}
	return page.Render(w)
}
