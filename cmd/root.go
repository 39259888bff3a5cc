package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/mortalisys/internal/config"
	"github.com/KaramelBytes/mortalisys/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Loader flags (override config if set)
	flagEncoding string
	flagBMIGap   string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostics logger; user-facing output goes to stdout.
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "mortalisys",
	Short: "MortaliSys: in-hospital mortality and ICU stay analytics for surgical cohorts",
	Long: `MortaliSys loads a clinical cohort (CSV, TSV or XLSX), bins age, BMI, ICU stay and
medical-history flags into categories, and reports mortality and length of stay
through summaries, cross-tabulations, charts and an interactive dashboard.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.mortalisys/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagEncoding, "encoding", "", "dataset text encoding: latin1|windows-1252|utf-8 (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagBMIGap, "bmi-gap", "", "BMI [24.9, 25) handling: close|legacy (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("encoding") && flagEncoding != "" {
		cfg.Encoding = flagEncoding
	}
	if f.Changed("bmi-gap") && flagBMIGap != "" {
		cfg.BMIGapPolicy = flagBMIGap
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := logging.New(cfg.LogFormat, level, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using json/info logging\n", err)
		l, _ = logging.New(logging.FormatJSON, "info", os.Stderr)
	}
	logger = l
	logger.Debug().Str("config", cfgFile).Str("data_path", cfg.DataPath).Str("bmi_gap_policy", cfg.BMIGapPolicy).Msg("configuration loaded")
}
