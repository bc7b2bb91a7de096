// Package config holds the QA Hub configuration: LLM endpoint, storage
// backend, extractor tuning, server surface, and logging. Config lives
// in a YAML file; environment variables override the sensitive fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"qahub/internal/extract"
	"qahub/internal/logging"
)

// Config holds all QA Hub configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// DataDir is where the store and debug logs live.
	DataDir string `yaml:"data_dir"`

	LLM     LLMConfig     `yaml:"llm"`
	Store   StoreConfig   `yaml:"store"`
	Extract ExtractConfig `yaml:"extract"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, groq, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // sqlite, json, memory
	Path    string `yaml:"path"`    // db or json file path; empty uses DataDir
}

// ExtractConfig tunes the scenario extractor. The denylist is injected
// here rather than hardcoded because echo filtering is heuristic and
// changes with prompt revisions.
type ExtractConfig struct {
	Marker          string   `yaml:"marker"`
	Sentinel        string   `yaml:"sentinel"`
	Denylist        []string `yaml:"denylist"`
	RequireSentinel bool     `yaml:"require_sentinel"`
	DefaultExpected string   `yaml:"default_expected"`
	DefaultAssignee string   `yaml:"default_assignee"`
	CaseTarget      int      `yaml:"case_target"` // how many cases the prompt asks for
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// LoggingConfig configures the categorized debug logger.
type LoggingConfig struct {
	Debug      bool   `yaml:"debug"`
	Level      string `yaml:"level"` // debug, info, warn, error
	JSONFormat bool   `yaml:"json_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "qahub",
		Version: "1.0.0",
		DataDir: "data",

		LLM: LLMConfig{
			Provider: "groq",
			Model:    "llama-3.3-70b-versatile",
			BaseURL:  "https://api.groq.com/openai/v1",
			Timeout:  "120s",
		},

		Store: StoreConfig{
			Backend: "sqlite",
		},

		Extract: ExtractConfig{
			Marker:          extract.DefaultMarker,
			Sentinel:        extract.DefaultSentinel,
			Denylist:        append([]string(nil), extract.DefaultDenylist...),
			DefaultExpected: "As specified",
			CaseTarget:      15,
		},

		Server: ServerConfig{
			Addr:         ":8433",
			ReadTimeout:  "30s",
			WriteTimeout: "30s",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// providerEnvKeys maps each provider to its API key variable, in the
// priority order used when no provider has been picked yet.
var providerEnvKeys = []struct{ provider, env string }{
	{"groq", "GROQ_API_KEY"},
	{"openai", "OPENAI_API_KEY"},
	{"gemini", "GEMINI_API_KEY"},
}

// applyEnvOverrides applies environment variable overrides. Only the
// key variable matching the configured provider can replace its key;
// an ambient key for some other provider never flips the provider
// choice. When the configured provider has no key at all, the first
// provider with a key set in the environment is adopted instead.
func (c *Config) applyEnvOverrides() {
	matched := false
	for _, pk := range providerEnvKeys {
		if pk.provider != c.LLM.Provider {
			continue
		}
		if key := os.Getenv(pk.env); key != "" {
			c.LLM.APIKey = key
			matched = true
		}
	}
	if !matched && c.LLM.APIKey == "" {
		for _, pk := range providerEnvKeys {
			if key := os.Getenv(pk.env); key != "" {
				if pk.provider != c.LLM.Provider {
					// Adopting the implied provider drops the old
					// provider's endpoint and model defaults with it.
					c.LLM.Provider = pk.provider
					c.LLM.BaseURL = ""
					c.LLM.Model = ""
				}
				c.LLM.APIKey = key
				break
			}
		}
	}

	if path := os.Getenv("QAHUB_DB"); path != "" {
		c.Store.Path = path
	}
	if dir := os.Getenv("QAHUB_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if addr := os.Getenv("QAHUB_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (set GROQ_API_KEY, OPENAI_API_KEY, or GEMINI_API_KEY)")
	}
	switch c.LLM.Provider {
	case "openai", "groq", "gemini":
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}
	switch c.Store.Backend {
	case "sqlite", "json", "memory":
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	return nil
}

// StorePath resolves the backend file path, defaulting into DataDir.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	switch c.Store.Backend {
	case "json":
		return filepath.Join(c.DataDir, "qa_database.json")
	default:
		return filepath.Join(c.DataDir, "qahub.db")
	}
}

// LLMTimeout returns the LLM timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// ServerTimeouts returns the HTTP read and write timeouts.
func (c *Config) ServerTimeouts() (read, write time.Duration) {
	read, write = 30*time.Second, 30*time.Second
	if d, err := time.ParseDuration(c.Server.ReadTimeout); err == nil {
		read = d
	}
	if d, err := time.ParseDuration(c.Server.WriteTimeout); err == nil {
		write = d
	}
	return read, write
}

// ExtractOptions converts the extract section into extractor options.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{
		Marker:          c.Extract.Marker,
		Sentinel:        c.Extract.Sentinel,
		Denylist:        append([]string(nil), c.Extract.Denylist...),
		RequireSentinel: c.Extract.RequireSentinel,
		DefaultExpected: c.Extract.DefaultExpected,
		DefaultAssignee: c.Extract.DefaultAssignee,
	}
}

// LoggingOptions converts the logging section into logger options.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Debug:      c.Logging.Debug,
		Level:      c.Logging.Level,
		JSONFormat: c.Logging.JSONFormat,
	}
}
