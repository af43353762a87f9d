// YAML config loader with CUE validation integration
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var defaultSchema []byte

// Config is the root configuration of the dashboard service.
type Config struct {
	ListenAddr     string        `yaml:"listen_addr"`
	TickInterval   time.Duration `yaml:"tick_interval"`
	InjectLatency  time.Duration `yaml:"inject_latency"`
	RestoreLatency time.Duration `yaml:"restore_latency"`
	ToastVisible   time.Duration `yaml:"toast_visible"`
	ToastFade      time.Duration `yaml:"toast_fade"`
	FaultLink      string        `yaml:"fault_link"`
	Snapshot       string        `yaml:"snapshot"`
	Scenario       string        `yaml:"scenario"`
	ConfigBaseURL  string        `yaml:"config_base_url"`
	LogLevel       string        `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ListenAddr:     ":8080",
		TickInterval:   time.Second,
		InjectLatency:  1500 * time.Millisecond,
		RestoreLatency: time.Second,
		ToastVisible:   3 * time.Second,
		ToastFade:      300 * time.Millisecond,
		ConfigBaseURL:  "https://ppl-ai-code-interpreter-files.s3.amazonaws.com/web/direct-files/7c170ba018271e8eef713af34ad69fb9/b32b06c9-62d2-4224-8fec-362d1af66e90",
		LogLevel:       "info",
	}
}

// Load loads a YAML config and validates it against a CUE schema.
// An empty configPath yields the defaults; an empty cueSchemaPath selects
// the embedded schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	schema := defaultSchema
	if cueSchemaPath != "" {
		if schema, err = os.ReadFile(cueSchemaPath); err != nil {
			return nil, fmt.Errorf("cannot read CUE schema: %w", err)
		}
	}
	if err := ValidateWithCue(configPath, data, schema); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("loaded configuration", "path", configPath, "config", fmt.Sprintf("%+v", *cfg))

	return cfg, nil
}

// ValidateWithCue validates YAML configuration bytes using CUE schema bytes.
func ValidateWithCue(filename string, yamlBytes, schemaBytes []byte) error {
	ctx := cuecontext.New()

	f, err := cueyaml.Extract(filename, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(f)

	schemaVal := ctx.CompileBytes(schemaBytes, cuecontext.Filename("schema.cue"))
	if schemaVal.Err() != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", schemaVal.Err())
	}

	// Merge values with schema
	final := schemaVal.Unify(configVal)
	if final.Err() != nil {
		return fmt.Errorf("schema unify failed: %w", final.Err())
	}

	// Validate final structure
	if err := final.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		c.TickInterval = d
	}
	if v := os.Getenv("FAULT_LINK"); v != "" {
		c.FaultLink = v
	}
	return c.Validate()
}

// Validate checks the timing fields.
func (c *Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("tick_interval must be positive"))
	}
	if c.InjectLatency < 0 {
		errs = append(errs, errors.New("inject_latency must not be negative"))
	}
	if c.RestoreLatency < 0 {
		errs = append(errs, errors.New("restore_latency must not be negative"))
	}
	if c.ToastVisible < 0 || c.ToastFade < 0 {
		errs = append(errs, errors.New("toast durations must not be negative"))
	}
	return errors.Join(errs...)
}
