// Package config loads the attire configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/attire/internal/cache"
	"github.com/felixgeelhaar/attire/internal/errors"
	"github.com/felixgeelhaar/attire/internal/pose"
)

// Config represents the complete attire.yaml configuration
type Config struct {
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Closet    ClosetConfig    `yaml:"closet,omitempty"`
	Generator GeneratorConfig `yaml:"generator,omitempty"`
	Poses     []PoseConfig    `yaml:"poses,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// CacheConfig bounds the in-memory artifact cache
type CacheConfig struct {
	Capacity int `yaml:"capacity,omitempty"`
}

// ClosetConfig locates the saved-outfit store
type ClosetConfig struct {
	Path string `yaml:"path,omitempty"`
}

// GeneratorConfig configures the image generation service
type GeneratorConfig struct {
	// Scripted swaps the remote service for the deterministic in-process
	// client. Useful for demos and offline runs.
	Scripted  bool   `yaml:"scripted,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Model     string `yaml:"model,omitempty"`
	TimeoutMs int    `yaml:"timeout_ms,omitempty"`
}

// Timeout returns the request timeout as a duration.
func (g GeneratorConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutMs) * time.Millisecond
}

// PoseConfig overrides one entry of the pose catalog
type PoseConfig struct {
	Key       string `yaml:"key"`
	Label     string `yaml:"label,omitempty"`
	Directive string `yaml:"directive"`
}

// LogConfig configures logging output
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Cache: CacheConfig{Capacity: cache.DefaultCapacity},
		Closet: ClosetConfig{
			Path: filepath.Join(home, ".attire", "closet.db"),
		},
		Generator: GeneratorConfig{
			APIKey:    "${GEMINI_API_KEY}",
			TimeoutMs: 60000,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load loads configuration from a YAML file. Environment variables in the
// file are expanded, so api_key can reference ${GEMINI_API_KEY}.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeConfigNotFound,
				fmt.Sprintf("config file not found: %s", path), err).
				WithSuggestion("Run without --config to use the defaults")
		}
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("failed to read config file: %s", path), err)
	}

	expanded := os.ExpandEnv(string(data))

	config := Default()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, errors.NewConfigUnmarshalError(path, err)
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate validates a configuration
func Validate(config *Config) error {
	if config.Cache.Capacity < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "cache capacity must be non-negative")
	}
	if config.Generator.TimeoutMs < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "generator timeout_ms must be non-negative")
	}
	for i, p := range config.Poses {
		if p.Key == "" {
			return errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("pose %d: key is required", i))
		}
		if p.Directive == "" {
			return errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("pose %d (%s): directive is required", i, p.Key))
		}
	}
	return nil
}

// Save writes the configuration to a YAML file
func Save(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to write config file: %s", path), err)
	}
	return nil
}

// Catalog builds the pose catalog from the configuration, falling back to
// the built-in catalog when no poses are configured.
func (c *Config) Catalog() (*pose.Catalog, error) {
	if len(c.Poses) == 0 {
		return pose.Default(), nil
	}

	instructions := make([]pose.Instruction, 0, len(c.Poses))
	for _, p := range c.Poses {
		label := p.Label
		if label == "" {
			label = p.Key
		}
		instructions = append(instructions, pose.Instruction{
			Key:       p.Key,
			Label:     label,
			Directive: p.Directive,
		})
	}

	catalog, err := pose.New(instructions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "invalid pose catalog", err)
	}
	return catalog, nil
}
