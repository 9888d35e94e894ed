package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/pkg/cache"
)

func writeLayer(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"CAN"}, cfg.Countries)
	assert.Equal(t, DefaultEndpoint, cfg.SPARQL.Endpoint)
	assert.Equal(t, "result.json", cfg.Guides.Filename)
	assert.Equal(t, "./target", cfg.Output.Target)
	assert.Equal(t, "gis", cfg.FOI.Database)
	assert.False(t, cfg.FOI.Enabled())
	assert.Equal(t, MemoStoreNone, cfg.Memo.Store)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid default", func(*Config) {}, ""},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"missing guide root", func(c *Config) { c.Guides.Root = "" }, "guides.root"},
		{"relative endpoint", func(c *Config) { c.SPARQL.Endpoint = "/sparql" }, "sparql.endpoint"},
		{"zero timeout", func(c *Config) { c.SPARQL.Timeout = 0 }, "sparql.timeout"},
		{"negative rate", func(c *Config) { c.SPARQL.RateLimit = -1 }, "rate_limit"},
		{"bad cache strategy", func(c *Config) { c.Cache.Strategy = "lru" }, "cache strategy"},
		{"sqlite without path", func(c *Config) { c.Memo.Store = MemoStoreSQLite }, "memo.path"},
		{"sqlite with path", func(c *Config) { c.Memo.Store = MemoStoreSQLite; c.Memo.Path = "memo.db" }, ""},
		{"nats without url", func(c *Config) { c.Memo.Store = MemoStoreNATS }, "memo.url"},
		{"unknown store", func(c *Config) { c.Memo.Store = "redis" }, "unknown memo store"},
		{"no output", func(c *Config) { c.Output.Target = "" }, "output.target"},
		{"object only", func(c *Config) {
			c.Output.Target = ""
			c.Output.Object = &ObjectConfig{Endpoint: "minio:9000", Bucket: "guides"}
		}, ""},
		{"object without bucket", func(c *Config) {
			c.Output.Object = &ObjectConfig{Endpoint: "minio:9000"}
		}, "output.object"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestLoader_Layers(t *testing.T) {
	base := writeLayer(t, "base.yaml", `
countries: [CAN, USA]
workers: 8
sparql:
  endpoint: http://graph.internal:8890/sparql
  timeout: 45s
  rate_limit: 10
cache:
  enabled: true
  strategy: noop
foi:
  host: postgis
  user: regions
`)
	override := writeLayer(t, "override.yml", `
countries: [PER]
guides:
  root: /data/guides
`)

	loader := NewLoader()
	loader.AddLayer(base)
	loader.AddLayer(override)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"PER"}, cfg.Countries)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "http://graph.internal:8890/sparql", cfg.SPARQL.Endpoint)
	assert.Equal(t, 45*time.Second, cfg.SPARQL.Timeout)
	assert.Equal(t, 10.0, cfg.SPARQL.RateLimit)
	assert.Equal(t, cache.StrategyNoop, cfg.Cache.Strategy)
	assert.Equal(t, "/data/guides", cfg.Guides.Root)
	assert.Equal(t, "result.json", cfg.Guides.Filename, "unset fields keep defaults")
	assert.Equal(t, "gis", cfg.FOI.Database)
	assert.True(t, cfg.FOI.Enabled())
}

func TestLoader_EnvOverrides(t *testing.T) {
	path := writeLayer(t, "regions.yaml", `
output:
  object:
    endpoint: minio:9000
    bucket: guides
`)
	t.Setenv("REGIONS_SPARQL_ENDPOINT", "http://override:8890/sparql")
	t.Setenv("REGIONS_DB_PASSWORD", "s3cret")
	t.Setenv("REGIONS_OBJECT_SECRET_KEY", "minio-secret")

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://override:8890/sparql", cfg.SPARQL.Endpoint)
	assert.Equal(t, "s3cret", cfg.FOI.Password)
	require.NotNil(t, cfg.Output.Object)
	assert.Equal(t, "minio-secret", cfg.Output.Object.SecretKey)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("wrong extension", func(t *testing.T) {
		path := writeLayer(t, "regions.toml", "workers = 2")
		_, err := NewLoader().LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only YAML or JSON")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeLayer(t, "bad.yaml", "workers: [1, 2")
		_, err := NewLoader().LoadFile(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrParsingFailed)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeLayer(t, "bad.yaml", "workers: 0")
		_, err := NewLoader().LoadFile(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})

	t.Run("validation disabled", func(t *testing.T) {
		path := writeLayer(t, "bad.yaml", "workers: 0")
		loader := NewLoader()
		loader.EnableValidation(false)
		cfg, err := loader.LoadFile(path)
		require.NoError(t, err)
		assert.Zero(t, cfg.Workers)
	})

	t.Run("directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "conf.yaml")
		require.NoError(t, os.Mkdir(dir, 0o755))
		_, err := NewLoader().LoadFile(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a regular file")
	})
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	cfg := Default()
	cfg.FOI.Password = "hunter2"
	cfg.Output.Object = &ObjectConfig{Endpoint: "minio:9000", Bucket: "b", SecretKey: "topsecret"}

	out := cfg.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "topsecret")
	assert.True(t, strings.Contains(out, "minio:9000"))
	assert.Equal(t, "topsecret", cfg.Output.Object.SecretKey, "String does not modify the config")
}
