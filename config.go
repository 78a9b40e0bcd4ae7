package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "grocery-checkout.yaml"

// Config holds all grocery-checkout settings.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Receipt ReceiptConfig `yaml:"receipt"`
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig points at the catalog: a JSON file, an http(s) URL,
// mysql://DSN or sqlite://PATH.
type CatalogConfig struct {
	Source string `yaml:"source"`
}

type ReceiptConfig struct {
	OutputDir   string `yaml:"output_dir"`
	DefaultName string `yaml:"default_name"`
	TitleSuffix string `yaml:"title_suffix"`
	Currency    string `yaml:"currency"`
	Font        string `yaml:"font"`      // core PDF font family
	FontFile    string `yaml:"font_file"` // optional UTF-8 TTF, e.g. for ₹
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	r := DefaultReceiptOptions()
	return &Config{
		Catalog: CatalogConfig{
			Source: "groceries.json",
		},
		Receipt: ReceiptConfig{
			OutputDir:   r.OutputDir,
			DefaultName: r.DefaultName,
			TitleSuffix: r.TitleSuffix,
			Currency:    r.Currency,
			Font:        r.FontFamily,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GROCERY_CATALOG"); v != "" {
		c.Catalog.Source = v
	}
	if v := os.Getenv("GROCERY_OUTPUT_DIR"); v != "" {
		c.Receipt.OutputDir = v
	}
	if v := os.Getenv("GROCERY_CURRENCY"); v != "" {
		c.Receipt.Currency = v
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

func (c *Config) Validate() error {
	if c.Catalog.Source == "" {
		return fmt.Errorf("catalog source not configured (set catalog.source or GROCERY_CATALOG)")
	}
	if c.Receipt.Font == "" && c.Receipt.FontFile == "" {
		return fmt.Errorf("receipt font not configured")
	}

	valid := false
	for _, l := range validLogLevels {
		if c.Logging.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, validLogLevels)
	}
	return nil
}

// ReceiptOptions maps the receipt section onto renderer options.
func (c *Config) ReceiptOptions() ReceiptOptions {
	opts := DefaultReceiptOptions()
	opts.OutputDir = c.Receipt.OutputDir
	opts.DefaultName = c.Receipt.DefaultName
	opts.TitleSuffix = c.Receipt.TitleSuffix
	opts.Currency = c.Receipt.Currency
	opts.FontFamily = c.Receipt.Font
	opts.FontFile = c.Receipt.FontFile
	return opts
}
