package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
	"github.com/KaramelBytes/mortalisys/internal/utils"
)

var (
	sbOutDir string
	sbFormat string
	sbQuiet  bool
)

var summaryBatchCmd = &cobra.Command{
	Use:   "summary-batch <files...>",
	Short: "Summarize several CSV/TSV/XLSX cohorts with progress and optional per-file reports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		ext := ".summary.md"
		switch strings.ToLower(sbFormat) {
		case "", "markdown", "md":
		case "json":
			ext = ".summary.json"
		case "yaml", "yml":
			ext = ".summary.yaml"
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", sbFormat)
		}
		if sbOutDir != "" {
			if err := os.MkdirAll(sbOutDir, 0o755); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !sbQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := loadTable([]string{path})
			if err != nil {
				return err
			}
			s, err := analysis.Summarize(t)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			var body []byte
			if ext == ".summary.md" {
				body = []byte(s.Markdown())
			} else if body, err = utils.Encode(sbFormat, s); err != nil {
				return err
			}

			if sbOutDir == "" {
				if !sbQuiet {
					fmt.Fprintln(out, string(body))
				}
				continue
			}
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			outFile := filepath.Join(sbOutDir, base+ext)
			if _, statErr := os.Stat(outFile); statErr == nil {
				for idx := 2; ; idx++ {
					cand := filepath.Join(sbOutDir, fmt.Sprintf("%s__%d%s", base, idx, ext))
					if _, err := os.Stat(cand); os.IsNotExist(err) {
						if !sbQuiet {
							fmt.Fprintf(out, "⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(cand))
						}
						outFile = cand
						break
					}
				}
			}
			if err := utils.SafeWriteFile(outFile, body); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !sbQuiet {
				fmt.Fprintf(out, "✓ Wrote summary to %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and returns
// the sorted distinct set.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(summaryBatchCmd)
	summaryBatchCmd.Flags().StringVar(&sbOutDir, "out-dir", "", "directory for per-file reports (prints to stdout if omitted)")
	summaryBatchCmd.Flags().StringVar(&sbFormat, "format", "markdown", "report format: markdown|json|yaml")
	summaryBatchCmd.Flags().BoolVar(&sbQuiet, "quiet", false, "suppress progress output")
}
