// Package config loads the dashboard configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Supported dividend sources.
const (
	SourceElasticsearch = "elasticsearch"
	SourceSQL           = "sql"
)

// Supported SQL drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Source   string         `yaml:"source"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Refresh  RefreshConfig  `yaml:"refresh"`
}

// StoreConfig holds the document store (Elasticsearch) settings.
type StoreConfig struct {
	URL     string        `yaml:"url"`
	Index   string        `yaml:"index"`
	Timeout time.Duration `yaml:"timeout"`
	// FetchLimit caps store fetches per minute. Zero means unlimited.
	FetchLimit int `yaml:"fetch_limit"`
}

// RedisConfig holds the optional shared cache settings. An empty Host disables it.
type RedisConfig struct {
	Host      string        `yaml:"host"`
	Port      string        `yaml:"port"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	TTL       time.Duration `yaml:"ttl"`
	Namespace string        `yaml:"namespace"`
}

// DatabaseConfig holds the SQL source settings, used when Source is "sql".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig holds logger configuration. A non-empty File enables rotation to disk.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// RefreshConfig schedules dataset invalidation. An empty Cron disables it.
type RefreshConfig struct {
	Cron string `yaml:"cron"`
	// OnStart runs one refresh at startup, warming the cache.
	OnStart bool `yaml:"on_start"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Source, "DIVIDEND_SOURCE")
	setString(&c.Store.URL, "ES_URL")
	setString(&c.Store.Index, "ES_INDEX")
	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")
	setString(&c.Refresh.Cron, "REFRESH_CRON")

	if v := os.Getenv("ES_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ES_TIMEOUT: %w", err)
		}
		c.Store.Timeout = d
	}
	if v := os.Getenv("FETCH_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FETCH_LIMIT: %w", err)
		}
		c.Store.FetchLimit = n
	}
	if err := setBool(&c.Refresh.OnStart, "RUN_ON_START"); err != nil {
		return err
	}
	if err := setBool(&c.Log.JSON, "LOG_JSON"); err != nil {
		return err
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Redis.TTL = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = SourceElasticsearch
	}
	if c.Store.URL == "" {
		c.Store.URL = "http://localhost:9200"
	}
	if c.Store.Index == "" {
		c.Store.Index = "dividends"
	}
	if c.Redis.Port == "" {
		c.Redis.Port = "6379"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.Redis.Namespace == "" {
		c.Redis.Namespace = "dividends"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceElasticsearch:
		u, err := url.Parse(c.Store.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("store.url %q is not a valid URL", c.Store.URL)
		}
	case SourceSQL:
		if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
			return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
		}
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for source %q", SourceSQL)
		}
	default:
		return fmt.Errorf("source must be %q or %q, got %q", SourceElasticsearch, SourceSQL, c.Source)
	}

	if c.Store.FetchLimit < 0 {
		return fmt.Errorf("store.fetch_limit must not be negative, got %d", c.Store.FetchLimit)
	}
	if c.Refresh.Cron != "" {
		if _, err := CronParser.Parse(c.Refresh.Cron); err != nil {
			return fmt.Errorf("refresh.cron: %w", err)
		}
	}
	return nil
}

// RedisEnabled reports whether a shared cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// RedisAddr returns host:port of the shared cache.
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// CronParser parses refresh schedules: seconds field first, descriptors allowed.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
