package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"staffbook/internal/db"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup db.BackupConfig `yaml:"backup"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		StepMinutes            int `yaml:"step_minutes"`
		DefaultDurationMinutes int `yaml:"default_duration_minutes"`
	} `yaml:"booking"`

	Leave struct {
		AutoApprove *bool `yaml:"auto_approve"`
	} `yaml:"leave"`

	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/staffbook.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// StepMinutes returns the configured slot granularity, defaulting to 15.
func (c *Config) StepMinutes() int {
	if c.Booking.StepMinutes <= 0 {
		return 15
	}
	return c.Booking.StepMinutes
}

// DefaultDuration returns the service duration used when a caller supplies
// none.
func (c *Config) DefaultDuration() int {
	if c.Booking.DefaultDurationMinutes <= 0 {
		return 30
	}
	return c.Booking.DefaultDurationMinutes
}

// LeaveAutoApprove reports whether new leave requests skip the approval step.
// The surrounding business has no approval workflow, so the default is true.
func (c *Config) LeaveAutoApprove() bool {
	if c.Leave.AutoApprove == nil {
		return true
	}
	return *c.Leave.AutoApprove
}

// CacheTTL returns the availability cache TTL; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}
