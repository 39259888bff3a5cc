package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/mortalisys/internal/category"
)

// Value columns an aggregate can be plotted by.
const (
	ValueDeaths  = ColMortality
	ValueICUDays = ColICUDays
	ValueCount   = "count"
)

// AggregateRow is one group of the cross-tabulation.
type AggregateRow struct {
	Key     []string `json:"key" yaml:"key"`
	ICUDays float64  `json:"icu_days" yaml:"icu_days"`
	Deaths  float64  `json:"death_inhosp" yaml:"death_inhosp"`
	Count   int      `json:"count" yaml:"count"`
}

// ValueOf returns the summed column named by value.
func (r AggregateRow) ValueOf(value string) float64 {
	switch value {
	case ValueICUDays:
		return r.ICUDays
	case ValueCount:
		return float64(r.Count)
	default:
		return r.Deaths
	}
}

// Aggregate groups t by groupColumns and sums ICU days and deaths per
// group. Only combinations present in the data appear; rows with an empty
// key component are skipped. Rows are ordered by the rank of each key
// component, so identical input gives identical output.
func Aggregate(t *Table, groupColumns []string) ([]AggregateRow, error) {
	ranks := make([]map[string]int, len(groupColumns))
	for i, col := range groupColumns {
		levels, err := t.Levels(col)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		ranks[i] = make(map[string]int, len(levels))
		for j, l := range levels {
			ranks[i][l] = j
		}
	}
	out := []AggregateRow{}
	index := map[string]int{}
	key := make([]string, len(groupColumns))
	for _, rec := range t.records {
		complete := true
		for i, col := range groupColumns {
			v, _ := rec.Value(col)
			if v == "" {
				complete = false
				break
			}
			key[i] = v
		}
		if !complete {
			continue
		}
		k := strings.Join(key, "\x1f")
		pos, ok := index[k]
		if !ok {
			pos = len(out)
			index[k] = pos
			out = append(out, AggregateRow{Key: append([]string(nil), key...)})
		}
		row := &out[pos]
		row.Count++
		if !math.IsNaN(rec.ICUDays) {
			row.ICUDays += rec.ICUDays
		}
		if !math.IsNaN(rec.Mortality) {
			row.Deaths += rec.Mortality
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		for i := range groupColumns {
			ra, rb := rankOf(ranks[i], out[a].Key[i]), rankOf(ranks[i], out[b].Key[i])
			if ra != rb {
				return ra < rb
			}
		}
		return false
	})
	return out, nil
}

func rankOf(m map[string]int, v string) int {
	if r, ok := m[v]; ok {
		return r
	}
	return math.MaxInt
}

// BarColumns are the grouping dimensions of the clustered bar view.
func BarColumns(sel Selection) []string {
	return []string{sel.Detail.Column, ColOpName, sel.Demographic.Column, category.ColumnICUStay}
}

// HistogramColumns are the grouping dimensions of the faceted histogram view.
func HistogramColumns(sel Selection) []string {
	return []string{sel.Demographic.Column, sel.History.Column, category.ColumnICUStay}
}

// View names accepted by ViewColumns.
const (
	ViewBar       = "bar"
	ViewHistogram = "histogram"
)

// ViewColumns returns the grouping dimensions of a named view.
func ViewColumns(view string, sel Selection) ([]string, error) {
	switch view {
	case ViewBar:
		return BarColumns(sel), nil
	case ViewHistogram:
		return HistogramColumns(sel), nil
	default:
		return nil, fmt.Errorf("unknown view %q (use %s or %s)", view, ViewBar, ViewHistogram)
	}
}
