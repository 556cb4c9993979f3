package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Export   ExportConfig   `yaml:"export"`
	Engine   EngineConfig   `yaml:"engine"`
	Derive   DeriveConfig   `yaml:"derive"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the configured host, defaulting to all interfaces.
func (s ServerConfig) GetHost() string {
	if s.Host == "" {
		return "0.0.0.0"
	}
	return s.Host
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the optional cache/lock backend settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ExportConfig holds the optional S3 derive-report export settings.
type ExportConfig struct {
	Enabled  bool   `yaml:"enabled"`
	S3Region string `yaml:"s3_region"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
}

// EngineConfig holds recommendation pipeline tuning.
type EngineConfig struct {
	LookbackDays    int `yaml:"lookback_days"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the recommendation cache TTL as a duration.
func (e EngineConfig) CacheTTL() time.Duration {
	if e.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(e.CacheTTLSeconds) * time.Second
}

// DeriveConfig holds the learning derive worker settings.
type DeriveConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"interval_minutes"`
}

// Interval returns the derive interval as a duration.
func (d DeriveConfig) Interval() time.Duration {
	if d.IntervalMinutes <= 0 {
		return 6 * time.Hour
	}
	return time.Duration(d.IntervalMinutes) * time.Minute
}

// LoadFromEnv loads config from a YAML file, then applies .env and
// environment overrides. A missing config file is not an error; env-only
// deployments are supported.
func LoadFromEnv(path string) (*Config, error) {
	// Best-effort .env for local development
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("EXPORT_S3_BUCKET"); v != "" {
		cfg.Export.Enabled = true
		cfg.Export.S3Bucket = v
	}
	if v := os.Getenv("EXPORT_S3_REGION"); v != "" {
		cfg.Export.S3Region = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Engine.LookbackDays == 0 {
		cfg.Engine.LookbackDays = 30
	}
	if cfg.Export.S3Region == "" {
		cfg.Export.S3Region = "us-east-1"
	}
	if cfg.Export.S3Prefix == "" {
		cfg.Export.S3Prefix = "adpilot"
	}
}
