package dataprocessing

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/lzy234/dataprocessing/llm"
)

// Config holds all configuration for a pipeline run. Fields load from the
// environment (and an optional .env file) and can be overridden by flags.
type Config struct {
	// InputPath is the roster CSV to process.
	InputPath string `env:"INPUT_CSV"`

	// OutputDir receives the exported CSVs, the XLSX workbook, the
	// validation report, and intermediate artifacts.
	OutputDir string `env:"OUTPUT_DIR"`

	// CachePath is the SQLite cache database. Empty means
	// <OutputDir>/cache.db.
	CachePath string `env:"CACHE_DB"`

	// LLM is the generation provider used for enrichment, organization
	// dedup, and hierarchy resolution.
	LLM llm.Config `envPrefix:"LLM_"`

	// SectorTablePath and PartyTablePath point at JSON mapping files.
	// Empty means the built-in tables.
	SectorTablePath string `env:"SECTOR_TABLE"`
	PartyTablePath  string `env:"PARTY_TABLE"`

	// SkipWikipedia disables biography fetching; enrichment then has no
	// grounding text and is skipped too.
	SkipWikipedia bool `env:"SKIP_WIKIPEDIA"`

	// BatchSize is how many people one enhancement batch processes.
	BatchSize int `env:"BATCH_SIZE"`

	// Temperature for generation calls.
	Temperature float64 `env:"LLM_TEMPERATURE"`

	// WikiCallsPerMinute and LLMCallsPerMinute throttle the two external
	// services independently.
	WikiCallsPerMinute int `env:"WIKI_CALLS_PER_MINUTE"`
	LLMCallsPerMinute  int `env:"LLM_CALLS_PER_MINUTE"`
}

// DefaultConfig returns a Config with working defaults for everything
// except the API key.
func DefaultConfig() Config {
	return Config{
		InputPath: "data/roster.csv",
		OutputDir: "output",
		LLM: llm.Config{
			Provider: "deepseek",
			Model:    "deepseek-chat",
		},
		BatchSize:          5,
		Temperature:        0.3,
		WikiCallsPerMinute: 30,
		LLMCallsPerMinute:  20,
	}
}

// LoadConfig builds configuration from defaults, an optional .env file,
// and the environment.
func LoadConfig() (Config, error) {
	// Missing .env is fine, the environment may carry everything.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Validate reports configuration problems before any work starts.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: input path is required", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}
	if c.LLM.APIKey == "" && !c.SkipWikipedia {
		// Enrichment needs a provider key; without Wikipedia there is
		// nothing to enrich so a key is not required.
		return fmt.Errorf("%w: LLM API key is required (set LLM_API_KEY)", ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	if c.WikiCallsPerMinute <= 0 || c.LLMCallsPerMinute <= 0 {
		return fmt.Errorf("%w: rate limits must be positive", ErrInvalidConfig)
	}
	return nil
}
