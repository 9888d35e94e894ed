package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/pkg/cache"
)

// Memo store backends
const (
	MemoStoreNone   = "none"   // In-process only
	MemoStoreSQLite = "sqlite" // Local SQLite file
	MemoStoreNATS   = "nats"   // NATS JetStream KV bucket
)

// Log formats
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// DefaultEndpoint is the SPARQL endpoint of the deployed datastore.
const DefaultEndpoint = "http://datastore:8890/sparql"

// Config represents the complete run configuration
type Config struct {
	Countries []string      `yaml:"countries"`
	Workers   int           `yaml:"workers"`
	Guides    GuidesConfig  `yaml:"guides"`
	SPARQL    SPARQLConfig  `yaml:"sparql"`
	Cache     cache.Config  `yaml:"cache"`
	Memo      MemoConfig    `yaml:"memo"`
	FOI       FOIConfig     `yaml:"foi"`
	Output    OutputConfig  `yaml:"output"`
	Log       LogConfig     `yaml:"log"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

// GuidesConfig locates the city guides
type GuidesConfig struct {
	Root        string `yaml:"root"`
	Filename    string `yaml:"filename"`
	SearchField string `yaml:"search_field"`
}

// SPARQLConfig defines the graph endpoint
type SPARQLConfig struct {
	Endpoint  string            `yaml:"endpoint"`
	Timeout   time.Duration     `yaml:"timeout"`
	RateLimit float64           `yaml:"rate_limit"` // Queries per second, 0 = unlimited
	Burst     int               `yaml:"burst"`
	Prefixes  map[string]string `yaml:"prefixes,omitempty"`
}

// MemoConfig selects where resolved lookups are persisted between runs
type MemoConfig struct {
	Store  string `yaml:"store"`
	Path   string `yaml:"path,omitempty"`    // sqlite
	URL    string `yaml:"url,omitempty"`     // nats
	Bucket string `yaml:"bucket,omitempty"`  // nats
}

// FOIConfig defines the facility database. When DSN is empty it is built
// from the individual fields; an empty Host disables facilities.
type FOIConfig struct {
	DSN      string        `yaml:"dsn,omitempty"`
	Host     string        `yaml:"host"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Database string        `yaml:"database"`
	Query    string        `yaml:"query,omitempty"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Enabled reports whether a facility database is configured.
func (f FOIConfig) Enabled() bool {
	return f.DSN != "" || f.Host != ""
}

// OutputConfig defines where regional guides are written
type OutputConfig struct {
	Target string        `yaml:"target"`
	Object *ObjectConfig `yaml:"object,omitempty"`
}

// ObjectConfig defines an S3-compatible bucket receiving a copy of every guide
type ObjectConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region,omitempty"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix,omitempty"`
}

// LogConfig defines log output
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// MetricsConfig defines where run metrics are pushed
type MetricsConfig struct {
	Pushgateway string `yaml:"pushgateway,omitempty"`
	Job         string `yaml:"job"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Countries: []string{"CAN"},
		Workers:   4,
		Guides: GuidesConfig{
			Root:        "./",
			Filename:    "result.json",
			SearchField: "search",
		},
		SPARQL: SPARQLConfig{
			Endpoint: DefaultEndpoint,
			Timeout:  30 * time.Second,
			Burst:    1,
		},
		Cache: cache.DefaultConfig(),
		Memo: MemoConfig{
			Store:  MemoStoreNone,
			Bucket: "regions-memo",
		},
		FOI: FOIConfig{
			Database: "gis",
			Timeout:  30 * time.Second,
		},
		Output: OutputConfig{
			Target: "./target",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatJSON,
		},
		Metrics: MetricsConfig{
			Job: "regions",
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return invalid("workers must be at least 1, got %d", c.Workers)
	}

	if c.Guides.Root == "" {
		return invalid("guides.root is required")
	}
	if c.Guides.Filename == "" {
		return invalid("guides.filename is required")
	}

	u, err := url.Parse(c.SPARQL.Endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return invalid("sparql.endpoint %q is not an absolute URL", c.SPARQL.Endpoint)
	}
	if c.SPARQL.Timeout <= 0 {
		return invalid("sparql.timeout must be positive")
	}
	if c.SPARQL.RateLimit < 0 {
		return invalid("sparql.rate_limit cannot be negative")
	}

	if err := c.Cache.Validate(); err != nil {
		return err
	}

	switch c.Memo.Store {
	case "", MemoStoreNone:
	case MemoStoreSQLite:
		if c.Memo.Path == "" {
			return invalid("memo.path is required for the sqlite store")
		}
	case MemoStoreNATS:
		if c.Memo.URL == "" || c.Memo.Bucket == "" {
			return invalid("memo.url and memo.bucket are required for the nats store")
		}
	default:
		return invalid("unknown memo store %q", c.Memo.Store)
	}

	if c.Output.Target == "" && c.Output.Object == nil {
		return invalid("output.target or output.object is required")
	}
	if o := c.Output.Object; o != nil {
		if o.Endpoint == "" || o.Bucket == "" {
			return invalid("output.object.endpoint and output.object.bucket are required")
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case LogFormatJSON, LogFormatText:
	default:
		return invalid("log.format must be %q or %q", LogFormatJSON, LogFormatText)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return errors.WrapInvalid(fmt.Errorf("%w: "+format, append([]any{errors.ErrInvalidConfig}, args...)...),
		"Config", "Validate", "config validation")
}

// String returns a YAML representation of the config with secrets masked
func (c *Config) String() string {
	masked := *c
	if masked.FOI.Password != "" {
		masked.FOI.Password = "***"
	}
	if masked.FOI.DSN != "" {
		masked.FOI.DSN = "***"
	}
	if c.Output.Object != nil {
		obj := *c.Output.Object
		if obj.SecretKey != "" {
			obj.SecretKey = "***"
		}
		masked.Output.Object = &obj
	}
	data, _ := yaml.Marshal(&masked)
	return string(data)
}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: true,
		envPrefix:  "REGIONS",
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file on top of the defaults
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load applies the defaults, every layer in order, then environment overrides
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		data, err := safeReadFile(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", "read "+path)
		}
		// Fields absent from the layer keep their current value.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
				"Loader", "Load", "parse "+path)
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides for secrets and
// endpoints that are usually injected by the deployment
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	lookup := func(name string) (string, bool, error) {
		key := l.envPrefix + "_" + name
		val := os.Getenv(key)
		if err := validateEnvVar(key, val); err != nil {
			return "", false, errors.WrapInvalid(err, "Loader", "applyEnvOverrides", "read "+key)
		}
		return val, val != "", nil
	}

	overrides := []struct {
		name   string
		target *string
	}{
		{"SPARQL_ENDPOINT", &cfg.SPARQL.Endpoint},
		{"DB_PASSWORD", &cfg.FOI.Password},
		{"DB_DSN", &cfg.FOI.DSN},
		{"MEMO_URL", &cfg.Memo.URL},
		{"PUSHGATEWAY", &cfg.Metrics.Pushgateway},
	}
	for _, o := range overrides {
		val, ok, err := lookup(o.name)
		if err != nil {
			return err
		}
		if ok {
			*o.target = val
		}
	}

	if cfg.Output.Object != nil {
		if val, ok, err := lookup("OBJECT_ACCESS_KEY"); err != nil {
			return err
		} else if ok {
			cfg.Output.Object.AccessKey = val
		}
		if val, ok, err := lookup("OBJECT_SECRET_KEY"); err != nil {
			return err
		} else if ok {
			cfg.Output.Object.SecretKey = val
		}
	}
	return nil
}
