// Package config loads the YAML run file describing export jobs.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/criscriscristof/pagestream/pkg/export"
	"github.com/criscriscristof/pagestream/pkg/paginate"
	"github.com/criscriscristof/pagestream/pkg/transform"
	"gopkg.in/yaml.v3"
)

// Config holds one run's full configuration.
type Config struct {
	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Cache configures the optional Redis page cache
	Cache CacheConfig `yaml:"cache"`

	// Fetch configures the HTTP client
	Fetch FetchConfig `yaml:"fetch"`

	// Jobs lists the resources to export
	Jobs []JobConfig `yaml:"jobs"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// CacheConfig holds the optional Redis page cache configuration.
type CacheConfig struct {
	// RedisAddr enables the cache when non-empty (host:port)
	RedisAddr string `yaml:"redis_addr"`

	// TTL is the lifetime of cached page bodies
	TTL time.Duration `yaml:"ttl"`
}

// FetchConfig holds HTTP client configuration.
type FetchConfig struct {
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// JobConfig describes one export job in the run file.
type JobConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Output string `yaml:"output"`

	// Strategy is "offset" (default) or "link"
	Strategy string `yaml:"strategy"`

	PageSize       int    `yaml:"page_size"`
	OffsetParam    string `yaml:"offset_param"`
	LimitParam     string `yaml:"limit_param"`
	TotalKey       string `yaml:"total_key"`
	ItemsKey       string `yaml:"items_key"`
	NextKey        string `yaml:"next_key"`
	TotalOverride  int    `yaml:"total_override"`
	MaxConcurrency int    `yaml:"max_concurrency"`

	// Fields lists the output columns in order
	Fields []FieldConfig `yaml:"fields"`
}

// FieldConfig describes one output column.
type FieldConfig struct {
	// Column is the output column name
	Column string `yaml:"column"`

	// Key is the source key; defaults to Column
	Key string `yaml:"key"`
}

// DefaultConfig returns a Config with sensible defaults and no jobs.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Fetch: FetchConfig{
			UserAgent: "pagestream/0.1.0",
			Timeout:   30 * time.Second,
		},
	}
}

// Load reads and validates a run file. The LOG_LEVEL environment variable
// overrides the configured logging level.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the run file before any request is made.
func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return fmt.Errorf("no jobs configured")
	}

	seen := make(map[string]bool, len(c.Jobs))
	for i, job := range c.Jobs {
		if job.Name == "" {
			return fmt.Errorf("job %d: name is required", i)
		}
		if seen[job.Name] {
			return fmt.Errorf("job %q: duplicate name", job.Name)
		}
		seen[job.Name] = true

		if job.URL == "" {
			return fmt.Errorf("job %q: url is required", job.Name)
		}
		if job.Output == "" {
			return fmt.Errorf("job %q: output is required", job.Name)
		}
		if len(job.Fields) == 0 {
			return fmt.Errorf("job %q: at least one field is required", job.Name)
		}
		if _, err := job.paginateConfig(); err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
	}

	return nil
}

// paginateConfig builds the validated pagination configuration for one job.
func (j JobConfig) paginateConfig() (paginate.Config, error) {
	cfg := paginate.DefaultConfig()

	switch j.Strategy {
	case "", "offset":
		cfg.Strategy = paginate.TotalOffset
	case "link":
		cfg.Strategy = paginate.LinkFollowing
	default:
		return cfg, fmt.Errorf("%w: %q", paginate.ErrUnknownStrategy, j.Strategy)
	}

	if j.PageSize != 0 {
		cfg.PageSize = j.PageSize
	}
	if j.OffsetParam != "" {
		cfg.OffsetParam = j.OffsetParam
	}
	if j.LimitParam != "" {
		cfg.LimitParam = j.LimitParam
	}
	if j.TotalKey != "" {
		cfg.TotalKey = j.TotalKey
	}
	if j.ItemsKey != "" {
		cfg.ItemsKey = j.ItemsKey
	}
	if j.NextKey != "" {
		cfg.NextKey = j.NextKey
	}
	if j.TotalOverride > 0 {
		cfg.TotalOverride = j.TotalOverride
	}
	if j.MaxConcurrency > 0 {
		cfg.MaxConcurrency = j.MaxConcurrency
	}

	return cfg, cfg.Validate()
}

// ExportJobs builds the export jobs described by the run file.
func (c *Config) ExportJobs() ([]export.Job, error) {
	jobs := make([]export.Job, 0, len(c.Jobs))
	for _, jc := range c.Jobs {
		pcfg, err := jc.paginateConfig()
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", jc.Name, err)
		}

		fields := make([]transform.Field, 0, len(jc.Fields))
		for _, fc := range jc.Fields {
			fields = append(fields, transform.Field{Column: fc.Column, Key: fc.Key})
		}
		proj, err := transform.NewProjection(fields)
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", jc.Name, err)
		}

		jobs = append(jobs, export.Job{
			Name:       jc.Name,
			BaseURL:    jc.URL,
			Paginate:   pcfg,
			Projection: proj,
			OutPath:    jc.Output,
		})
	}
	return jobs, nil
}
