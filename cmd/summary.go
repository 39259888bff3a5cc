package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
	"github.com/KaramelBytes/mortalisys/internal/utils"
)

var (
	sumFormat     string
	sumOutputPath string
)

var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Print the dataset overview: mortality, ICU days, demographics and surgical details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args)
		if err != nil {
			return err
		}
		s, err := analysis.Summarize(t)
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
		var out []byte
		switch strings.ToLower(sumFormat) {
		case "", "markdown", "md":
			out = []byte(s.Markdown())
		default:
			out, err = utils.Encode(sumFormat, s)
			if err != nil {
				return err
			}
		}
		return writeOutput(cmd.OutOrStdout(), sumOutputPath, out, "summary")
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&sumFormat, "format", "markdown", "output format: markdown|json|yaml")
	summaryCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary")
}
