package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mortalisys/internal/category"
	"github.com/KaramelBytes/mortalisys/internal/utils"
)

var catFormat string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print the binning rules applied to every record",
	RunE: func(cmd *cobra.Command, args []string) error {
		gap, err := category.ParseBMIGapPolicy(currentConfig().BMIGapPolicy)
		if err != nil {
			return err
		}
		rules := category.Rules(gap)
		if f := strings.ToLower(catFormat); f != "" && f != "table" {
			out, err := utils.Encode(f, map[string]interface{}{
				"bmi_gap_policy": rules.Policy,
				"rules":          rules.Describe(),
			})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		var buf bytes.Buffer
		tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COLUMN\tSOURCE\tLABEL\tRANGE")
		for _, r := range rules.All() {
			for _, b := range r.Bins {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Column, r.Source, b.Label, b)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Column, r.Source, r.Fallback, "otherwise")
		}
		tw.Flush()
		fmt.Fprintf(&buf, "\nBMI gap policy: %s\n", rules.Policy)
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.Flags().StringVar(&catFormat, "format", "table", "output format: table|json|yaml")
}
