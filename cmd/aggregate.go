package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
	"github.com/KaramelBytes/mortalisys/internal/utils"
)

var (
	aggView       string
	aggBy         []string
	aggFormat     string
	aggOutputPath string
)

type aggregateOutput struct {
	Dataset   string                  `json:"dataset" yaml:"dataset"`
	View      string                  `json:"view,omitempty" yaml:"view,omitempty"`
	Columns   []string                `json:"columns" yaml:"columns"`
	Selection analysis.Selection      `json:"selection" yaml:"selection"`
	Rows      []analysis.AggregateRow `json:"rows" yaml:"rows"`
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [file]",
	Short: "Cross-tabulate ICU days and deaths by a view or an explicit column list",
	Long: `Groups the dataset by the dimensions of a dashboard view (--view bar|histogram,
resolved through the selector flags) or by explicit columns (--by), and sums ICU
days and in-hospital deaths per combination present in the data.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(aggBy) > 0 && cmd.Flags().Changed("view") {
			return fmt.Errorf("use either --view or --by, not both")
		}
		t, err := loadTable(args)
		if err != nil {
			return err
		}
		res := aggregateOutput{Dataset: t.Name(), Selection: resolveSelection()}
		if len(aggBy) > 0 {
			res.Columns = aggBy
		} else {
			res.View = aggView
			res.Columns, err = analysis.ViewColumns(aggView, res.Selection)
			if err != nil {
				return err
			}
		}
		res.Rows, err = analysis.Aggregate(t, res.Columns)
		if err != nil {
			return err
		}

		var out []byte
		switch strings.ToLower(aggFormat) {
		case "", "table":
			out = renderAggregateTable(res.Columns, res.Rows)
		default:
			out, err = utils.Encode(aggFormat, res)
			if err != nil {
				return err
			}
		}
		return writeOutput(cmd.OutOrStdout(), aggOutputPath, out, "aggregate")
	},
}

func renderAggregateTable(columns []string, rows []analysis.AggregateRow) []byte {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", strings.Join(columns, "\t"), analysis.ValueICUDays, analysis.ValueDeaths, analysis.ValueCount)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%d\n", strings.Join(r.Key, "\t"), r.ICUDays, r.Deaths, r.Count)
	}
	tw.Flush()
	if len(rows) == 0 {
		buf.WriteString("(no rows)\n")
	}
	return buf.Bytes()
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.Flags().StringVar(&aggView, "view", analysis.ViewBar, "dashboard view: bar|histogram")
	aggregateCmd.Flags().StringSliceVar(&aggBy, "by", nil, "comma-separated columns to group by (overrides --view)")
	aggregateCmd.Flags().StringVar(&aggFormat, "format", "table", "output format: table|json|yaml")
	aggregateCmd.Flags().StringVarP(&aggOutputPath, "output", "o", "", "optional path to write the result")
	addSelectorFlags(aggregateCmd)
}
