package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/claimsight/claimsight/internal/record"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultMinFields   = 17
	DefaultDateField   = 5
	DefaultAmountField = 9
	DefaultRegionField = 16

	DefaultThreshold          = 2.0
	DefaultMaxBaselineEntries = 2_000_000

	DefaultReducers = 4
)

// Storage backend names accepted by engine.storage.
const (
	StorageMemory = "memory"
	StorageBolt   = "bolt"
)

// Config is the top-level configuration for every claimsight stage.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Labeling LabelingConfig `yaml:"labeling"`
	Engine   EngineConfig   `yaml:"engine"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InputConfig describes the raw dataset schema. Offsets are zero-based.
type InputConfig struct {
	// MinFields is the minimum field count of a usable line.
	MinFields int `yaml:"min_fields"`

	// DateField is the offset of the admission date (ISO-like; the
	// first 7 characters form the year-month bucket).
	DateField int `yaml:"date_field"`

	// AmountField is the offset of the decimal billing amount.
	AmountField int `yaml:"amount_field"`

	// RegionField is the offset of the region identifier.
	RegionField int `yaml:"region_field"`
}

// Schema converts the input section into the record package's form.
func (c InputConfig) Schema() record.Schema {
	return record.Schema{
		MinFields:   c.MinFields,
		DateField:   c.DateField,
		AmountField: c.AmountField,
		RegionField: c.RegionField,
	}
}

// LabelingConfig holds stage-2 settings.
type LabelingConfig struct {
	// Threshold is the absolute deviation score at or above which a
	// record is flagged anomalous.
	Threshold float64 `yaml:"threshold"`

	// MaxBaselineEntries bounds the broadcast baseline table loaded by
	// every labeling worker. Loading a larger stage-1 artifact fails at
	// setup rather than exhausting worker memory.
	MaxBaselineEntries int `yaml:"max_baseline_entries"`
}

// EngineConfig holds the parallel execution settings shared by the
// grouping stages.
type EngineConfig struct {
	// Mappers is the number of concurrent map workers per stage.
	// Defaults to GOMAXPROCS.
	Mappers int `yaml:"mappers"`

	// Reducers is the number of reduce partitions for stages with a
	// grouping phase.
	Reducers int `yaml:"reducers"`

	// Storage selects where reducers buffer shuffled values before
	// folding: memory | bolt.
	Storage string `yaml:"storage"`

	// BoltPath is the shuffle database file, required when Storage is
	// bolt. The file is recreated per run.
	BoltPath string `yaml:"bolt_path"`
}

// MetricsConfig configures the counter dump.
type MetricsConfig struct {
	// Textfile, when set, is where each run writes its counters in
	// Prometheus text exposition format (textfile-collector layout).
	Textfile string `yaml:"textfile"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values. Exported
// because every stage must run without a config file.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			MinFields:   DefaultMinFields,
			DateField:   DefaultDateField,
			AmountField: DefaultAmountField,
			RegionField: DefaultRegionField,
		},
		Labeling: LabelingConfig{
			Threshold:          DefaultThreshold,
			MaxBaselineEntries: DefaultMaxBaselineEntries,
		},
		Engine: EngineConfig{
			Mappers:  runtime.GOMAXPROCS(0),
			Reducers: DefaultReducers,
			Storage:  StorageMemory,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	in := cfg.Input
	if in.MinFields < 1 {
		return fmt.Errorf("input.min_fields must be positive")
	}
	for name, off := range map[string]int{
		"input.date_field":   in.DateField,
		"input.amount_field": in.AmountField,
		"input.region_field": in.RegionField,
	} {
		if off < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
		if off >= in.MinFields {
			return fmt.Errorf("%s (%d) must be below input.min_fields (%d)", name, off, in.MinFields)
		}
	}

	if cfg.Labeling.Threshold <= 0 {
		return fmt.Errorf("labeling.threshold must be positive")
	}
	if cfg.Labeling.MaxBaselineEntries <= 0 {
		return fmt.Errorf("labeling.max_baseline_entries must be positive")
	}

	if cfg.Engine.Mappers <= 0 {
		return fmt.Errorf("engine.mappers must be positive")
	}
	if cfg.Engine.Reducers <= 0 {
		return fmt.Errorf("engine.reducers must be positive")
	}
	switch cfg.Engine.Storage {
	case StorageMemory:
	case StorageBolt:
		if cfg.Engine.BoltPath == "" {
			return fmt.Errorf("engine.bolt_path is required when engine.storage is %q", StorageBolt)
		}
	default:
		return fmt.Errorf("engine.storage: unknown backend %q", cfg.Engine.Storage)
	}

	return nil
}
