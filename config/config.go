// Package config loads decodex's process-lifetime configuration: deadline,
// batching, cost-model, and recognition-cascade knobs from YAML/env/flags
// via spf13/viper, plus a set of named preset chains a caller can hand to
// Engine.SeedFrontier. Load runs Validate, which rejects a regex that does
// not compile, a non-positive deadline or batch size, and an unknown
// sensitivity name before any search starts. The wordlist file is not read
// here; wire.New reads it and reports an unreadable one.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vantyr/decodex"
)

// Config is decodex's full external configuration surface.
type Config struct {
	DeadlineSeconds             int               `mapstructure:"deadlineSeconds"`
	InteractiveConfirmation     bool              `mapstructure:"interactiveConfirmation"`
	CollectAll                  bool              `mapstructure:"collectAll"`
	Regex                       string            `mapstructure:"regex"`
	WordlistSource              string            `mapstructure:"wordlistSource"`
	EnglishSensitivityOverrides map[string]string `mapstructure:"englishSensitivityOverrides"`
	DepthPenalty                float64           `mapstructure:"depthPenalty"`
	DecoderBatchSize            int               `mapstructure:"decoderBatchSize"`
	ParallelBatchSize           int               `mapstructure:"parallelBatchSize"`
	InitialPruneThreshold       int               `mapstructure:"initialPruneThreshold"`
	CacheDatabasePath           string            `mapstructure:"cacheDatabasePath"`
	PresetsFile                 string            `mapstructure:"presetsFile"`
}

// Defaults returns the configuration decodex runs with when nothing is
// overridden.
func Defaults() Config {
	return Config{
		DeadlineSeconds:       5,
		DepthPenalty:          0.5,
		DecoderBatchSize:      5,
		ParallelBatchSize:     10,
		InitialPruneThreshold: 10000,
	}
}

// Load reads configuration from path (YAML) plus environment variables
// prefixed DECODEX_, layered over Defaults, and validates the result.
// path may be empty, in which case only defaults and the environment are
// consulted.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults := Defaults()
	v.SetDefault("deadlineSeconds", defaults.DeadlineSeconds)
	v.SetDefault("depthPenalty", defaults.DepthPenalty)
	v.SetDefault("decoderBatchSize", defaults.DecoderBatchSize)
	v.SetDefault("parallelBatchSize", defaults.ParallelBatchSize)
	v.SetDefault("initialPruneThreshold", defaults.InitialPruneThreshold)

	v.SetEnvPrefix("DECODEX")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("decodex: config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decodex: config unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field whose invalid value would only surface as a
// confusing runtime symptom otherwise: an unparseable regex, a
// non-positive deadline, or an unknown sensitivity name.
func (c Config) Validate() error {
	if c.DeadlineSeconds <= 0 {
		return fmt.Errorf("decodex: config: deadlineSeconds must be positive, got %d", c.DeadlineSeconds)
	}
	if c.DecoderBatchSize <= 0 {
		return fmt.Errorf("decodex: config: decoderBatchSize must be positive, got %d", c.DecoderBatchSize)
	}
	if c.ParallelBatchSize <= 0 {
		return fmt.Errorf("decodex: config: parallelBatchSize must be positive, got %d", c.ParallelBatchSize)
	}
	if c.Regex != "" {
		if _, err := regexp.Compile(c.Regex); err != nil {
			return fmt.Errorf("decodex: config: regex %q: %w", c.Regex, err)
		}
	}
	for name, level := range c.EnglishSensitivityOverrides {
		if _, err := ParseSensitivity(level); err != nil {
			return fmt.Errorf("decodex: config: englishSensitivityOverrides[%q]: %w", name, err)
		}
	}
	return nil
}

// ParseSensitivity maps a config-file sensitivity name to its integer
// value, kept here rather than in the root package so config stays the one
// place a caller-facing string is parsed into an internal enum.
func ParseSensitivity(name string) (int, error) {
	switch name {
	case "low":
		return 0, nil
	case "medium":
		return 1, nil
	case "high":
		return 2, nil
	default:
		return 0, fmt.Errorf("decodex: unknown sensitivity %q (want low, medium, or high)", name)
	}
}

// LoadPresets reads a YAML file of named preset chains. An empty path is
// not an error and yields no presets; a path naming a file that is missing
// or malformed is.
func LoadPresets(path string) ([]decodex.Preset, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("decodex: presets %q: %w", path, err)
	}
	var wire []struct {
		Name  string   `yaml:"name"`
		Steps []string `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decodex: presets %q: %w", path, err)
	}
	presets := make([]decodex.Preset, len(wire))
	for i, w := range wire {
		presets[i] = decodex.Preset{Name: w.Name, Steps: w.Steps}
	}
	return presets, nil
}
