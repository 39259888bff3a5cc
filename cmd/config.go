package cmd

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/mortalisys/internal/analysis"
	"github.com/KaramelBytes/mortalisys/internal/category"
	cfgpkg "github.com/KaramelBytes/mortalisys/internal/config"
	"github.com/KaramelBytes/mortalisys/internal/logging"
	"github.com/KaramelBytes/mortalisys/internal/parser"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set MortaliSys configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "data_path: %s\n", c.DataPath)
		fmt.Fprintf(out, "addr: %s\n", c.Addr)
		fmt.Fprintf(out, "encoding: %s\n", c.Encoding)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		if c.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", c.SheetName)
		}
		fmt.Fprintf(out, "bmi_gap_policy: %s\n", c.BMIGapPolicy)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		for _, kv := range [][2]string{
			{"default_outcome", c.DefaultOutcome},
			{"default_detail", c.DefaultDetail},
			{"default_demographic", c.DefaultDemographic},
			{"default_history", c.DefaultHistory},
		} {
			if kv[1] != "" {
				fmt.Fprintf(out, "%s: %s\n", kv[0], kv[1])
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := currentConfig()
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

// checkLabel validates a selector default against its catalog. Empty clears it.
func checkLabel(val string, c analysis.Catalog) error {
	if val == "" {
		return nil
	}
	_, err := analysis.Resolve(val, c)
	if err != nil {
		return fmt.Errorf("%w (choose from %v)", err, c.Labels())
	}
	return nil
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "data_path":
		c.DataPath = val
	case "addr":
		c.Addr = val
	case "encoding":
		enc, err := parser.ParseEncoding(val)
		if err != nil {
			return err
		}
		c.Encoding = string(enc)
	case "delimiter":
		if _, err := loadOptions(&cfgpkg.Global{Delimiter: val}); err != nil {
			return err
		}
		c.Delimiter = val
	case "sheet_name":
		c.SheetName = val
	case "bmi_gap_policy":
		p, err := category.ParseBMIGapPolicy(val)
		if err != nil {
			return err
		}
		c.BMIGapPolicy = string(p)
	case "log_format":
		if _, err := logging.New(val, "", nil); err != nil {
			return err
		}
		c.LogFormat = val
	case "log_level":
		if _, err := zerolog.ParseLevel(val); err != nil {
			return fmt.Errorf("invalid log_level: %s", val)
		}
		c.LogLevel = val
	case "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for max_upload_mb: %v", val)
		}
		c.MaxUploadMB = i
	case "default_outcome":
		if err := checkLabel(val, analysis.OutcomeCatalog); err != nil {
			return err
		}
		c.DefaultOutcome = val
	case "default_detail":
		if err := checkLabel(val, analysis.DetailCatalog); err != nil {
			return err
		}
		c.DefaultDetail = val
	case "default_demographic":
		if err := checkLabel(val, analysis.DemographicCatalog); err != nil {
			return err
		}
		c.DefaultDemographic = val
	case "default_history":
		if err := checkLabel(val, analysis.HistoryCatalog); err != nil {
			return err
		}
		c.DefaultHistory = val
	default:
		return fmt.Errorf("unknown key: %s (valid: %v)", key, cfgpkg.Keys)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
