package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"DIVIDEND_SOURCE", "ES_URL", "ES_INDEX", "ES_TIMEOUT", "REDIS_HOST", "REDIS_PORT",
	"REDIS_PASSWORD", "DB_DRIVER", "DB_DSN", "SERVER_ADDR", "LOG_LEVEL", "LOG_FILE",
	"REFRESH_CRON", "RUN_ON_START", "CACHE_TTL", "FETCH_LIMIT", "LOG_JSON",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, SourceElasticsearch, cfg.Source)
	assert.Equal(t, "http://localhost:9200", cfg.Store.URL)
	assert.Equal(t, "dividends", cfg.Store.Index)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.False(t, cfg.RedisEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ES_URL", "http://es.internal:9200")
	t.Setenv("ES_INDEX", "dividends-v2")
	t.Setenv("ES_TIMEOUT", "3s")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("RUN_ON_START", "true")
	t.Setenv("FETCH_LIMIT", "6")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://es.internal:9200", cfg.Store.URL)
	assert.Equal(t, "dividends-v2", cfg.Store.Index)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
	assert.True(t, cfg.Refresh.OnStart)
	assert.Equal(t, 6, cfg.Store.FetchLimit)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_TTL", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_BoolEnv(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{value: "true", want: true},
		{value: "1", want: true},
		{value: "TRUE", want: true},
		{value: "false", want: false},
		{value: "0", want: false},
		{value: "yes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("RUN_ON_START", tt.value)
			t.Setenv("LOG_JSON", tt.value)

			cfg, err := Load("")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Refresh.OnStart)
			assert.Equal(t, tt.want, cfg.Log.JSON)
		})
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDR", ":9090")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
source: sql
store:
  index: payouts
database:
  driver: sqlite
  dsn: file:dividends.db
server:
  addr: ":7070"
refresh:
  cron: "0 0 8 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourceSQL, cfg.Source)
	assert.Equal(t, "payouts", cfg.Store.Index)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":9090", cfg.Server.Addr, "env overrides file")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BrokenYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{Source: SourceElasticsearch, Store: StoreConfig{URL: "http://localhost:9200"}}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "elasticsearch ok", mutate: func(c *Config) {}},
		{name: "unknown source", mutate: func(c *Config) { c.Source = "mongo" }, wantErr: true},
		{name: "bad store url", mutate: func(c *Config) { c.Store.URL = "localhost" }, wantErr: true},
		{name: "sql without driver", mutate: func(c *Config) { c.Source = SourceSQL; c.Database.DSN = "x" }, wantErr: true},
		{name: "sql without dsn", mutate: func(c *Config) { c.Source = SourceSQL; c.Database.Driver = DriverPostgres }, wantErr: true},
		{name: "sql ok", mutate: func(c *Config) {
			c.Source = SourceSQL
			c.Database.Driver = DriverPostgres
			c.Database.DSN = "postgres://localhost/dividends"
		}},
		{name: "descriptor cron", mutate: func(c *Config) { c.Refresh.Cron = "@hourly" }},
		{name: "bad cron", mutate: func(c *Config) { c.Refresh.Cron = "every day" }, wantErr: true},
		{name: "negative fetch limit", mutate: func(c *Config) { c.Store.FetchLimit = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
