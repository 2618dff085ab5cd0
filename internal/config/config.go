package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost    string `toml:"postgres_host"`
	PostgresPort    string `toml:"postgres_port"`
	PostgresUser    string `toml:"postgres_user"`
	PostgresDBName  string `toml:"postgres_db_name"`
	PostgresSSLMode string `toml:"postgres_ssl_mode"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// auth
	SessionTTLHours             int `toml:"session_ttl_hours"`
	SessionCleanupIntervalHours int `toml:"session_cleanup_interval_hours"`
	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`
	// api
	DefaultPageSize      int      `toml:"default_page_size"`
	MaxPageSize          int      `toml:"max_page_size"`
	AllowedOrigins       []string `toml:"allowed_origins"`
	RunMigrationsOnStart bool     `toml:"run_migrations_on_start"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env, with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.SessionCleanupIntervalHours == 0 {
		c.SessionCleanupIntervalHours = 8
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 10
	}
	if c.DefaultPageSize == 0 {
		c.DefaultPageSize = 25
	}
	if c.MaxPageSize == 0 {
		c.MaxPageSize = 100
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
		return errors.New("postgres host, port and db name are required")
	}
	if c.RedisHost == "" || c.RedisPort == "" {
		return errors.New("redis host and port are required")
	}
	if c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}
