// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type BillingConfig struct {
	Provider      string `yaml:"provider"` // stripe | noop
	SecretKey     string `yaml:"secret_key"`
	AccountID     string `yaml:"account_id"`
	BaseURL       string `yaml:"base_url"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	SecureCookie bool          `yaml:"secure_cookie"`
	CookieDomain string        `yaml:"cookie_domain"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

type SchedulerConfig struct {
	LifecycleInterval time.Duration `yaml:"lifecycle_interval"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	ReconcileStale    time.Duration `yaml:"reconcile_stale"`
	MetricsPollEvery  time.Duration `yaml:"metrics_poll_every"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Billing   BillingConfig   `yaml:"billing"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Billing.Provider == "" {
		cfg.Billing.Provider = "stripe"
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 8 * time.Hour
	}
	if cfg.Scheduler.LifecycleInterval <= 0 {
		cfg.Scheduler.LifecycleInterval = time.Minute
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = time.Minute
	}
	if cfg.Scheduler.ReconcileStale <= 0 {
		cfg.Scheduler.ReconcileStale = 10 * time.Minute
	}
	if cfg.Scheduler.MetricsPollEvery <= 0 {
		cfg.Scheduler.MetricsPollEvery = 30 * time.Second
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if cfg.Billing.Provider == "stripe" && cfg.Billing.SecretKey == "" {
		return nil, errors.New("billing.secret_key is required for the stripe provider")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
