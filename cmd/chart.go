package cmd

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mortalisys/internal/chart"
)

var chartOutputPath string

var chartCmd = &cobra.Command{
	Use:   "chart [file]",
	Short: "Render the bar, histogram and scatter views to a standalone HTML page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := chart.Render(&buf, t, resolveSelection()); err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), chartOutputPath, buf.Bytes(), "dashboard")
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chartOutputPath, "output", "o", "dashboard.html", "path to write the HTML page")
	addSelectorFlags(chartCmd)
}
