package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
)

// Spec describes one view: which columns go on the axis, the series
// colour and the row/column facets, and which summed value is plotted.
type Spec struct {
	Title      string
	X          string
	Y          string // scatter only
	Color      string
	FacetRow   string
	FacetCol   string
	Value      string
	Labels     map[string]string
	Horizontal bool
}

// Label returns the human-readable name of column.
func (s Spec) Label(column string) string {
	if l := s.Labels[column]; l != "" {
		return l
	}
	return column
}

// LevelFunc returns the ordered levels of a column.
type LevelFunc func(column string) ([]string, error)

const (
	facetWidth  = "560px"
	facetHeight = "380px"
)

// Bars draws one grouped bar chart per facet cell. columns names the key
// positions of rows, as passed to analysis.Aggregate.
func Bars(spec Spec, columns []string, rows []analysis.AggregateRow, levels LevelFunc) ([]components.Charter, error) {
	pos := map[string]int{}
	for i, c := range columns {
		pos[c] = i
	}
	for _, c := range []string{spec.X, spec.Color, spec.FacetRow, spec.FacetCol} {
		if _, ok := pos[c]; c != "" && !ok {
			return nil, fmt.Errorf("chart %q: column %s is not part of the grouping", spec.Title, c)
		}
	}
	if spec.X == "" {
		return nil, fmt.Errorf("chart %q: x column is required", spec.Title)
	}
	present := func(col string) ([]string, error) {
		if col == "" {
			return []string{""}, nil
		}
		all, err := levels(col)
		if err != nil {
			return nil, err
		}
		seen := map[string]bool{}
		for _, r := range rows {
			seen[r.Key[pos[col]]] = true
		}
		out := make([]string, 0, len(seen))
		for _, l := range all {
			if seen[l] {
				out = append(out, l)
			}
		}
		return out, nil
	}
	xs, err := present(spec.X)
	if err != nil {
		return nil, err
	}
	series, err := present(spec.Color)
	if err != nil {
		return nil, err
	}
	facetRows, err := present(spec.FacetRow)
	if err != nil {
		return nil, err
	}
	facetCols, err := present(spec.FacetCol)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []components.Charter{emptyChart(spec)}, nil
	}

	key := func(r analysis.AggregateRow, col string) string {
		if col == "" {
			return ""
		}
		return r.Key[pos[col]]
	}
	var out []components.Charter
	for _, fr := range facetRows {
		for _, fc := range facetCols {
			cell := map[string]map[string]float64{}
			n := 0
			for _, r := range rows {
				if key(r, spec.FacetRow) != fr || key(r, spec.FacetCol) != fc {
					continue
				}
				x, s := key(r, spec.X), key(r, spec.Color)
				if cell[s] == nil {
					cell[s] = map[string]float64{}
				}
				cell[s][x] += r.ValueOf(spec.Value)
				n++
			}
			if n == 0 {
				continue
			}
			bar := charts.NewBar()
			bar.SetGlobalOptions(baseOptions(spec, facetTitle(spec, fr, fc))...)
			bar.SetGlobalOptions(axisOptions(spec)...)
			bar.SetXAxis(xs)
			for _, s := range series {
				data := make([]opts.BarData, len(xs))
				for i, x := range xs {
					data[i] = opts.BarData{Value: cell[s][x]}
				}
				name := s
				if name == "" {
					name = spec.Label(spec.Value)
				}
				bar.AddSeries(name, data)
			}
			if spec.Horizontal {
				bar.XYReversal()
			}
			out = append(out, bar)
		}
	}
	return out, nil
}

// Scatter plots spec.X against spec.Y for every record, one series per
// colour level and one chart per column facet.
func Scatter(spec Spec, t *analysis.Table) ([]components.Charter, error) {
	facets := []string{""}
	if spec.FacetCol != "" {
		lv, err := t.Levels(spec.FacetCol)
		if err != nil {
			return nil, err
		}
		facets = lv
	}
	colors := []string{""}
	if spec.Color != "" {
		lv, err := t.Levels(spec.Color)
		if err != nil {
			return nil, err
		}
		colors = lv
	}
	recs := t.Records()
	if len(recs) == 0 {
		return []components.Charter{emptyChart(spec)}, nil
	}
	var out []components.Charter
	for _, f := range facets {
		points := map[string][]opts.ScatterData{}
		for _, r := range recs {
			if fv, _ := r.Value(spec.FacetCol); spec.FacetCol != "" && fv != f {
				continue
			}
			x, y := numeric(r, spec.X), numeric(r, spec.Y)
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			c, _ := r.Value(spec.Color)
			points[c] = append(points[c], opts.ScatterData{Value: []interface{}{x, y}, SymbolSize: 6})
		}
		if len(points) == 0 {
			continue
		}
		sc := charts.NewScatter()
		sc.SetGlobalOptions(baseOptions(spec, facetTitle(spec, "", f))...)
		sc.SetGlobalOptions(
			charts.WithXAxisOpts(opts.XAxis{Name: spec.Label(spec.X), Type: "value", Scale: opts.Bool(true)}),
			charts.WithYAxisOpts(opts.YAxis{Name: spec.Label(spec.Y), Type: "value", Scale: opts.Bool(true)}),
		)
		for _, c := range colors {
			if len(points[c]) == 0 {
				continue
			}
			sc.AddSeries(c, points[c])
		}
		out = append(out, sc)
	}
	return out, nil
}

func baseOptions(spec Spec, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: facetWidth, Height: facetHeight}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom", Type: "scroll"}),
	}
}

// axisOptions names the axes; after XYReversal the category axis is vertical.
func axisOptions(spec Spec) []charts.GlobalOpts {
	category, value := spec.Label(spec.X), spec.Label(spec.Value)
	if spec.Horizontal {
		return []charts.GlobalOpts{
			charts.WithXAxisOpts(opts.XAxis{Name: value, Type: "value"}),
			charts.WithYAxisOpts(opts.YAxis{Name: category, Type: "category"}),
		}
	}
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{Name: category, Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: value, Type: "value"}),
	}
}

func facetTitle(spec Spec, row, col string) string {
	var parts []string
	if spec.FacetRow != "" {
		parts = append(parts, fmt.Sprintf("%s = %s", spec.Label(spec.FacetRow), row))
	}
	if spec.FacetCol != "" {
		parts = append(parts, fmt.Sprintf("%s = %s", spec.Label(spec.FacetCol), col))
	}
	return strings.Join(parts, " | ")
}

func emptyChart(spec Spec) components.Charter {
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions(spec, "no data for this selection")...)
	return bar
}

// numeric reads a plotted column. Non-numeric ages plot at 0, as they
// count in the mean age.
func numeric(r analysis.Record, column string) float64 {
	if column == analysis.ColAge && math.IsNaN(r.Age) {
		return 0
	}
	v, _ := r.Value(column)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
