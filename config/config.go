package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Rotation   RotationConfig   `yaml:"rotation"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// RotationConfig drives the sweep and the two expiry monitors.
type RotationConfig struct {
	LimitMinutes         int           `yaml:"limit_minutes"`
	WarningMinutes       int           `yaml:"warning_minutes"`
	CountdownSeconds     int           `yaml:"countdown_seconds"`
	BreakMinutes         int           `yaml:"break_minutes"`
	SweepIntervalSeconds int           `yaml:"sweep_interval_seconds"`
	PollIntervalSeconds  int           `yaml:"poll_interval_seconds"`
	SweepAllowReuse      *bool         `yaml:"sweep_allow_reuse"`
	Limit                time.Duration `yaml:"-"`
	Warning              time.Duration `yaml:"-"`
	Countdown            time.Duration `yaml:"-"`
	SweepInterval        time.Duration `yaml:"-"`
	PollInterval         time.Duration `yaml:"-"`
	AllowReuse           bool          `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Rotation.LimitMinutes <= 0 {
		cfg.Rotation.LimitMinutes = 20
	}
	if cfg.Rotation.WarningMinutes <= 0 {
		cfg.Rotation.WarningMinutes = 2
	}
	if cfg.Rotation.CountdownSeconds <= 0 {
		cfg.Rotation.CountdownSeconds = 15
	}
	if cfg.Rotation.BreakMinutes <= 0 {
		cfg.Rotation.BreakMinutes = 15
	}
	if cfg.Rotation.SweepIntervalSeconds <= 0 {
		cfg.Rotation.SweepIntervalSeconds = 30
	}
	if cfg.Rotation.PollIntervalSeconds <= 0 {
		cfg.Rotation.PollIntervalSeconds = 1
	}
	cfg.Rotation.Limit = time.Duration(cfg.Rotation.LimitMinutes) * time.Minute
	cfg.Rotation.Warning = time.Duration(cfg.Rotation.WarningMinutes) * time.Minute
	cfg.Rotation.Countdown = time.Duration(cfg.Rotation.CountdownSeconds) * time.Second
	cfg.Rotation.SweepInterval = time.Duration(cfg.Rotation.SweepIntervalSeconds) * time.Second
	cfg.Rotation.PollInterval = time.Duration(cfg.Rotation.PollIntervalSeconds) * time.Second

	// Reuse defaults to on: a sweep short on dealers re-rotates the top
	// candidate rather than leaving tables dark.
	if cfg.Rotation.SweepAllowReuse == nil {
		cfg.Rotation.AllowReuse = true
	} else {
		cfg.Rotation.AllowReuse = *cfg.Rotation.SweepAllowReuse
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
