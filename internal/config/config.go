package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataPath     string `mapstructure:"data_path" yaml:"data_path"`
	Addr         string `mapstructure:"addr" yaml:"addr"`
	Encoding     string `mapstructure:"encoding" yaml:"encoding"`
	Delimiter    string `mapstructure:"delimiter" yaml:"delimiter"`
	SheetName    string `mapstructure:"sheet_name" yaml:"sheet_name"`
	BMIGapPolicy string `mapstructure:"bmi_gap_policy" yaml:"bmi_gap_policy"`

	// Logging
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`

	MaxUploadMB int `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// Dashboard selector defaults (labels, not column names)
	DefaultOutcome     string `mapstructure:"default_outcome" yaml:"default_outcome"`
	DefaultDetail      string `mapstructure:"default_detail" yaml:"default_detail"`
	DefaultDemographic string `mapstructure:"default_demographic" yaml:"default_demographic"`
	DefaultHistory     string `mapstructure:"default_history" yaml:"default_history"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"data_path", "addr", "encoding", "delimiter", "sheet_name", "bmi_gap_policy",
	"log_format", "log_level", "max_upload_mb",
	"default_outcome", "default_detail", "default_demographic", "default_history",
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".mortalisys"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.mortalisys/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_path", "clinical_data.csv")
	v.SetDefault("addr", ":8050")
	v.SetDefault("encoding", "latin1")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("bmi_gap_policy", "close")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("default_outcome", "")
	v.SetDefault("default_detail", "")
	v.SetDefault("default_demographic", "")
	v.SetDefault("default_history", "")
}

// Defaults returns the configuration used when no file or env is present.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("MORTALISYS")
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// a missing file is fine, a malformed one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
