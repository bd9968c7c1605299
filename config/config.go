package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	Auth       AuthConfig       `yaml:"auth"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Backup     BackupConfig     `yaml:"backup"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the FCM gateway configuration.
type PushConfig struct {
	CredentialsFile string        `yaml:"credentials_file"`
	TimeoutSeconds  int           `yaml:"timeout_seconds"`
	Timeout         time.Duration `yaml:"-"` // Ignored by YAML parser
}

// AuthConfig holds the admin authentication settings.
type AuthConfig struct {
	AdminPassword      string        `yaml:"admin_password"`
	LoginMaxAttempts   int           `yaml:"login_max_attempts"`
	LoginWindowMinutes int           `yaml:"login_window_minutes"`
	LoginWindow        time.Duration `yaml:"-"`
}

// WorkerPoolConfig holds the configuration for the broadcast worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// BackupConfig holds the snapshot output settings.
type BackupConfig struct {
	Dir string `yaml:"dir"`
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

	// The admin password is a secret; the environment wins over the file.
	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		cfg.Auth.AdminPassword = pw
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Push.TimeoutSeconds <= 0 {
		cfg.Push.TimeoutSeconds = 10
	}
	cfg.Push.Timeout = time.Duration(cfg.Push.TimeoutSeconds) * time.Second

	if cfg.Auth.LoginMaxAttempts <= 0 {
		cfg.Auth.LoginMaxAttempts = 5
	}
	if cfg.Auth.LoginWindowMinutes <= 0 {
		cfg.Auth.LoginWindowMinutes = 15
	}
	cfg.Auth.LoginWindow = time.Duration(cfg.Auth.LoginWindowMinutes) * time.Minute

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "./backups"
	}

	return &cfg, nil
}
