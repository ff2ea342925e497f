package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application settings (in-memory representation).
// File values override Default(); BORDERHOPPER_* environment variables override both.
type Config struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	DBPath  string `yaml:"db_path"`
	DataDir string `yaml:"data_dir"`

	// Allowed CORS origin for the web client.
	CORSOrigin string `yaml:"cors_origin"`

	// Per-client token bucket. RateLimit <= 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	SuggestDefaultTopN int `yaml:"suggest_default_top_n"`
	SuggestMaxTopN     int `yaml:"suggest_max_top_n"`

	// Re-ingest types that already have data on startup.
	ForceIngest bool `yaml:"force_ingest"`
	// Ingest datasets on `serve` before building graphs.
	IngestOnStart bool `yaml:"ingest_on_start"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Host:               "127.0.0.1",
		Port:               13370,
		DBPath:             "borderhopper.db",
		DataDir:            "data",
		CORSOrigin:         "http://localhost:8080",
		RateLimit:          50,
		RateBurst:          100,
		SuggestDefaultTopN: 10,
		SuggestMaxTopN:     100,
		IngestOnStart:      true,
	}
}

// Load reads the YAML configuration file using strict parsing, then
// applies environment overrides. An empty path yields defaults plus env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Host = envOrDefault("BORDERHOPPER_HOST", c.Host)
	c.DBPath = envOrDefault("BORDERHOPPER_DB", c.DBPath)
	c.DataDir = envOrDefault("BORDERHOPPER_DATA_DIR", c.DataDir)
	c.CORSOrigin = envOrDefault("BORDERHOPPER_CORS_ORIGIN", c.CORSOrigin)

	if v := os.Getenv("BORDERHOPPER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BORDERHOPPER_PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("BORDERHOPPER_RATE_LIMIT"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BORDERHOPPER_RATE_LIMIT: %w", err)
		}
		c.RateLimit = rate
	}
	return nil
}

// Validate rejects unusable values and clamps the suggest limits.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		c.RateBurst = 1
	}
	if c.SuggestMaxTopN < 1 {
		c.SuggestMaxTopN = 1
	}
	if c.SuggestDefaultTopN < 1 {
		c.SuggestDefaultTopN = 1
	}
	if c.SuggestDefaultTopN > c.SuggestMaxTopN {
		c.SuggestDefaultTopN = c.SuggestMaxTopN
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
