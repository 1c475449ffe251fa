package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	analytics "msb-report/internal/analytics/domain"
	ingest "msb-report/internal/ingest/domain"
)

// SignConvention declares how raw power values map to building load.
type SignConvention string

const (
	// SignAsIs keeps the meter's sign.
	SignAsIs SignConvention = "as-is"
	// SignNegate flips the sign, for meters that export consumption as negative.
	SignNegate SignConvention = "negate"
)

// IsValid checks the convention is supported.
func (s SignConvention) IsValid() bool {
	switch s {
	case SignAsIs, SignNegate:
		return true
	default:
		return false
	}
}

// SheetNames configures the deployment's output sheet naming.
type SheetNames struct {
	Total        string `yaml:"total"`
	Apportioning string `yaml:"apportioning"`
	TotalColumn  string `yaml:"total_column"`
}

// SourceConfig is one MSB source: its sheet name, its file path for batch
// runs, and its parse descriptor. Negate overrides the global sign convention
// for this source when set.
type SourceConfig struct {
	Name       string                  `yaml:"name"`
	File       string                  `yaml:"file"`
	Descriptor ingest.SourceDescriptor `yaml:",inline"`
	Negate     *bool                   `yaml:"negate"`
}

// Config is the full deployment configuration, passed explicitly into the
// pipeline stages; there is no process-wide mutable state.
type Config struct {
	ListenAddr     string                    `yaml:"listen_addr"`
	JWTSecret      string                    `yaml:"jwt_secret"`
	MergeMode      analytics.MergeMode       `yaml:"merge_mode"`
	Mode           analytics.AggregationMode `yaml:"aggregation_mode"`
	SignConvention SignConvention            `yaml:"sign_convention"`
	RoundDecimals  int                       `yaml:"round_decimals"`
	Sheets         SheetNames                `yaml:"sheets"`
	Sources        []SourceConfig            `yaml:"sources"`
}

// Load reads and validates the yaml configuration, applying defaults and env
// fallbacks the same way across batch and serve modes.
func Load(path string) (Config, error) {
	cfg := Config{
		ListenAddr:     getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:      getenvDefault("AUTH_JWT_SECRET", ""),
		MergeMode:      analytics.MergeUnion,
		Mode:           analytics.ModeAuto,
		SignConvention: SignNegate,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	cfg.applySignConvention()
	return cfg, nil
}

func (c Config) validate() error {
	if !c.MergeMode.IsValid() {
		return fmt.Errorf("config: %w: %q", analytics.ErrInvalidMergeMode, c.MergeMode)
	}
	if !c.Mode.IsValid() {
		return fmt.Errorf("config: %w: %q", analytics.ErrInvalidAggregationMode, c.Mode)
	}
	if !c.SignConvention.IsValid() {
		return fmt.Errorf("config: invalid sign convention %q", c.SignConvention)
	}
	if len(c.Sources) == 0 {
		return errors.New("config: at least one source is required")
	}
	names := make(map[string]bool, len(c.Sources))
	for i, source := range c.Sources {
		if source.Name == "" {
			return fmt.Errorf("config: source %d has no name", i)
		}
		if names[source.Name] {
			return fmt.Errorf("config: duplicate source name %q", source.Name)
		}
		names[source.Name] = true
		if err := source.Descriptor.Validate(); err != nil {
			return fmt.Errorf("config: source %q: %w", source.Name, err)
		}
	}
	return nil
}

// applySignConvention stamps the global convention onto each descriptor,
// keeping per-source overrides.
func (c *Config) applySignConvention() {
	for i := range c.Sources {
		negate := c.SignConvention == SignNegate
		if c.Sources[i].Negate != nil {
			negate = *c.Sources[i].Negate
		}
		c.Sources[i].Descriptor.Negate = negate
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
