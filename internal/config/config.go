// Package config loads synthesizer configuration from a layered YAML file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Options carries the knobs the synthesizer needs to run. Zero values mean
// "not set here" so the CLI layer can fall through CLI flag > env var >
// config file > built-in default.
type Options struct {
	PopulationForecastFile string `yaml:"population_forecast_file"`
	InputDirectory         string `yaml:"input_directory"`
	OutputDirectory        string `yaml:"output_directory"`
	RandomSeed             int64  `yaml:"random_seed"`
	Workers                int    `yaml:"workers"`
	ReportProgress         bool   `yaml:"report_progress"`
}

// Config is the root of the YAML configuration document.
type Config struct {
	Options Options `yaml:"options"`
}

// Load reads and parses a YAML config file.
// If path is empty, it returns an empty Config.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault tries to load from the given path. If path is empty, it
// attempts to auto-detect "go-popsynth.yaml" in the current directory.
// Returns an empty Config if no file is found at the auto-detect path.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	const defaultFile = "go-popsynth.yaml"
	if _, err := os.Stat(defaultFile); err != nil {
		// File doesn't exist — that's fine, return empty config.
		return &Config{}, nil
	}

	return Load(defaultFile)
}
