package cache

import (
	"fmt"

	"github.com/jopela/regions/errors"
)

// Strategy defines the storage strategy for the cache.
type Strategy string

const (
	// StrategySimple keeps every entry for the life of the process.
	StrategySimple Strategy = "simple"

	// StrategyNoop stores nothing; every lookup is a miss.
	StrategyNoop Strategy = "noop"
)

// Config contains configuration for cache creation.
type Config struct {
	// Enabled determines if caching is enabled.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Strategy determines how entries are stored.
	Strategy Strategy `yaml:"strategy" json:"strategy"`
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Strategy: StrategySimple,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Strategy {
	case StrategySimple, StrategyNoop, "":
		return nil
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
			fmt.Sprintf("unknown cache strategy: %s", c.Strategy))
	}
}

// NewFromConfig creates a cache based on the provided configuration.
// Returns a Noop cache if config.Enabled is false.
func NewFromConfig[V any](config Config, options ...Option[V]) (Cache[V], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if !config.Enabled || config.Strategy == StrategyNoop {
		return NewNoop[V](), nil
	}

	return NewSimple[V](options...)
}
