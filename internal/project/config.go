package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/CutFlow/internal/model"
)

// CLIConfig holds the CLI defaults loaded from a YAML config file. String
// fields use human-readable values and are mapped onto model.Configuration
// by ToConfiguration.
type CLIConfig struct {
	CutThickness       float64 `yaml:"cut_thickness"`
	MinTrimDimension   float64 `yaml:"min_trim_dimension"`
	OptimizationFactor float64 `yaml:"optimization_factor"`
	Priority           string  `yaml:"priority"`
	Orientation        string  `yaml:"orientation"`
	ConsiderGrain      bool    `yaml:"consider_grain"`
	Workers            int     `yaml:"workers"`
}

// DefaultConfigDir returns the default directory for CutFlow configuration.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cutflow")
}

// DefaultConfigPath returns the default path for the CLI config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultCLIConfig returns a CLIConfig matching model.DefaultConfiguration.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		CutThickness:       3.2,
		MinTrimDimension:   0,
		OptimizationFactor: 0.5,
		Priority:           "area",
		Orientation:        "both",
	}
}

// LoadCLIConfig reads a YAML config file. A missing file yields the defaults
// with no error.
func LoadCLIConfig(path string) (CLIConfig, error) {
	cfg := DefaultCLIConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return CLIConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveCLIConfig writes a YAML config file, creating parent directories.
func SaveCLIConfig(path string, cfg CLIConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ToConfiguration maps the CLI config onto an optimizer configuration.
func (c CLIConfig) ToConfiguration() (model.Configuration, error) {
	cfg := model.DefaultConfiguration()

	if c.CutThickness > 0 {
		cfg.CutThickness = c.CutThickness
	}
	if c.MinTrimDimension > 0 {
		cfg.MinTrimDimension = c.MinTrimDimension
	}
	if c.OptimizationFactor > 0 {
		cfg.OptimizationFactor = c.OptimizationFactor
	}
	cfg.ConsiderGrain = c.ConsiderGrain
	if c.Workers > 0 {
		cfg.Performance.WorkerCount = c.Workers
	}

	switch strings.ToLower(c.Priority) {
	case "", "area", "waste":
		cfg.Priority = model.PriorityLeastWastedArea
	case "cuts":
		cfg.Priority = model.PriorityLeastCuts
	default:
		return model.Configuration{}, fmt.Errorf("unknown priority %q", c.Priority)
	}

	switch strings.ToLower(c.Orientation) {
	case "", "both":
		cfg.OrientationPref = model.PreferBoth
	case "horizontal":
		cfg.OrientationPref = model.PreferHorizontal
	case "vertical":
		cfg.OrientationPref = model.PreferVertical
	default:
		return model.Configuration{}, fmt.Errorf("unknown orientation %q", c.Orientation)
	}

	return cfg, nil
}
