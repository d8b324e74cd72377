// Package config holds the settings of a turtleshot invocation and loads
// them from YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/turtleshot"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the full set of run, output and service settings.
type Config struct {
	File     string `mapstructure:"file" yaml:"file" json:"file"`
	Out      string `mapstructure:"out" yaml:"out" json:"out"`
	Tag      string `mapstructure:"tag" yaml:"tag" json:"tag"`
	Combined bool   `mapstructure:"combined" yaml:"combined" json:"combined"`

	Width  int `mapstructure:"width" yaml:"width" json:"width"`
	Height int `mapstructure:"height" yaml:"height" json:"height"`
	Margin int `mapstructure:"margin" yaml:"margin" json:"margin"`

	MaxCycles int `mapstructure:"max_cycles" yaml:"max_cycles" json:"max_cycles"`
	MaxStack  int `mapstructure:"max_stack" yaml:"max_stack" json:"max_stack"`

	Ledger string `mapstructure:"ledger" yaml:"ledger" json:"ledger"`
	// Redact lists patterns masked in recorded error texts.
	Redact []string `mapstructure:"redact" yaml:"redact" json:"redact"`
	// LedgerKey is a base64 AES-256 key sealing recorded error texts.
	// LedgerOldKeys still open records sealed before a rotation.
	LedgerKey     string   `mapstructure:"ledger_key" yaml:"ledger_key" json:"ledger_key"`
	LedgerOldKeys []string `mapstructure:"ledger_old_keys" yaml:"ledger_old_keys" json:"ledger_old_keys"`
	MetricsFile   string   `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
	Summary   bool   `mapstructure:"summary" yaml:"summary" json:"summary"`

	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		File:      "/dev/stdin",
		Out:       "out",
		Width:     1000,
		Height:    1000,
		Margin:    5,
		MaxCycles: 80000,
		MaxStack:  10000,
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      ":8080",
	}
}

// Load returns Default overlaid with the settings in path. The format is
// chosen by extension: .json is JSON, anything else YAML. Unknown keys are
// rejected; scalar types are converted loosely ("800" is a valid width).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings no run could use.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.Margin < 0 {
		errs = append(errs, fmt.Errorf("margin must not be negative, got %d", c.Margin))
	}
	if c.MaxCycles < 0 || c.MaxStack < 0 {
		errs = append(errs, errors.New("ceilings must not be negative"))
	}
	if c.Out == "" {
		errs = append(errs, errors.New("output prefix must not be empty"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Request builds the pipeline request for a run reading from c.File.
func (c Config) Request() turtleshot.Request {
	return turtleshot.Request{
		SourcePath:   c.File,
		OutputPrefix: c.Out,
		Combined:     c.Combined,
		Tag:          c.Tag,
		Width:        c.Width,
		Height:       c.Height,
		Margin:       c.Margin,
		MaxCycles:    c.MaxCycles,
		MaxStack:     c.MaxStack,
	}
}
