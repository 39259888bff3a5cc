package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
	"github.com/KaramelBytes/mortalisys/internal/category"
	cfgpkg "github.com/KaramelBytes/mortalisys/internal/config"
	"github.com/KaramelBytes/mortalisys/internal/parser"
	"github.com/KaramelBytes/mortalisys/internal/utils"
)

// Selector flags shared by aggregate and chart.
var (
	selOutcome     string
	selDetail      string
	selDemographic string
	selHistory     string
)

func addSelectorFlags(c *cobra.Command) {
	c.Flags().StringVar(&selOutcome, "outcome", "", fmt.Sprintf("outcome: %s", strings.Join(analysis.OutcomeCatalog.Labels(), " | ")))
	c.Flags().StringVar(&selDetail, "detail", "", fmt.Sprintf("surgical detail: %s", strings.Join(analysis.DetailCatalog.Labels(), " | ")))
	c.Flags().StringVar(&selDemographic, "demographic", "", fmt.Sprintf("patient demographic: %s", strings.Join(analysis.DemographicCatalog.Labels(), " | ")))
	c.Flags().StringVar(&selHistory, "history", "", fmt.Sprintf("medical history: %s", strings.Join(analysis.HistoryCatalog.Labels(), " | ")))
}

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	return cfg
}

// defaultLabels are the configured selector defaults.
func defaultLabels() analysis.SelectionLabels {
	c := currentConfig()
	return analysis.SelectionLabels{
		Outcome:     c.DefaultOutcome,
		Detail:      c.DefaultDetail,
		Demographic: c.DefaultDemographic,
		History:     c.DefaultHistory,
	}
}

// resolveSelection resolves the selector flags over the configured
// defaults. Invalid labels fall back with a warning on stderr.
func resolveSelection() analysis.Selection {
	d := defaultLabels()
	sel, warnings := analysis.ResolveSelection(analysis.SelectionLabels{
		Outcome:     lo.CoalesceOrEmpty(selOutcome, d.Outcome),
		Detail:      lo.CoalesceOrEmpty(selDetail, d.Detail),
		Demographic: lo.CoalesceOrEmpty(selDemographic, d.Demographic),
		History:     lo.CoalesceOrEmpty(selHistory, d.History),
	})
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
	}
	return sel
}

// loadOptions builds dataset options from the effective configuration.
func loadOptions(c *cfgpkg.Global) (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	enc, err := parser.ParseEncoding(c.Encoding)
	if err != nil {
		return opt, err
	}
	opt.Parser.Encoding = enc
	switch c.Delimiter {
	case "":
	case ",":
		opt.Parser.Delimiter = ','
	case "\t", "tab":
		opt.Parser.Delimiter = '\t'
	case ";":
		opt.Parser.Delimiter = ';'
	case "|", "pipe":
		opt.Parser.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s (use ',' | ';' | 'tab' | 'pipe')", c.Delimiter)
	}
	opt.Parser.SheetName = c.SheetName
	gap, err := category.ParseBMIGapPolicy(c.BMIGapPolicy)
	if err != nil {
		return opt, err
	}
	opt.BMIGap = gap
	return opt, nil
}

// datasetPath is the positional FILE argument or the configured data_path.
func datasetPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return currentConfig().DataPath
}

// loadTable loads and categorizes the dataset. Load warnings go to stderr.
func loadTable(args []string) (*analysis.Table, error) {
	opt, err := loadOptions(currentConfig())
	if err != nil {
		return nil, err
	}
	path := datasetPath(args)
	t, err := analysis.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	for _, w := range t.Warnings() {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
	}
	logger.Debug().Str("path", path).Int("records", t.Len()).Msg("dataset loaded")
	return t, nil
}

// writeOutput writes data to path when set, else to w.
func writeOutput(w io.Writer, path string, data []byte, what string) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(w, "✓ Wrote %s to %s\n", what, path)
	return nil
}
