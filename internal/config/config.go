package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config holds all application configuration. Components receive the values
// they need explicitly at construction; nothing reads process-wide state.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	DataSource struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	Refresh struct {
		Series   []string `yaml:"series"`
		Start    string   `yaml:"start"`
		Parallel int      `yaml:"parallel"`
	} `yaml:"refresh"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FREDLENS_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FRED_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("FREDLENS_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Refresh.Parallel = n
		}
	}

	// Defaults
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/fred.db"
	}
	if cfg.DataSource.TimeoutSeconds == 0 {
		cfg.DataSource.TimeoutSeconds = 30
	}
	if len(cfg.Refresh.Series) == 0 {
		cfg.Refresh.Series = []string{"UNRATE", "DCOILWTICO"}
	}
	if cfg.Refresh.Start == "" {
		// earliest UNRATE observation
		cfg.Refresh.Start = "1948-01-01"
	}
	if cfg.Refresh.Parallel == 0 {
		cfg.Refresh.Parallel = 1
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "outputs"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := time.Parse(dateLayout, c.Refresh.Start); err != nil {
		return fmt.Errorf("refresh.start: invalid date %q", c.Refresh.Start)
	}
	if c.Refresh.Parallel < 1 {
		return fmt.Errorf("refresh.parallel must be at least 1")
	}
	if c.DataSource.TimeoutSeconds < 1 {
		return fmt.Errorf("data_source.timeout_seconds must be positive")
	}
	return nil
}

// Timeout returns the remote fetch timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}
