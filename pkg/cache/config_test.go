package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jopela/regions/errors"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"noop", Config{Enabled: true, Strategy: StrategyNoop}, false},
		{"empty strategy", Config{Enabled: true}, false},
		{"disabled ignores strategy", Config{Enabled: false, Strategy: "bogus"}, false},
		{"unknown strategy", Config{Enabled: true, Strategy: "lru"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Run("simple stores values", func(t *testing.T) {
		c, err := NewFromConfig[string](DefaultConfig())
		require.NoError(t, err)
		defer c.Close()

		_, err = c.Set("k", "v")
		require.NoError(t, err)
		v, ok := c.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	})

	t.Run("disabled yields noop", func(t *testing.T) {
		c, err := NewFromConfig[string](Config{Enabled: false})
		require.NoError(t, err)

		_, _ = c.Set("k", "v")
		_, ok := c.Get("k")
		assert.False(t, ok)
	})

	t.Run("noop strategy", func(t *testing.T) {
		c, err := NewFromConfig[string](Config{Enabled: true, Strategy: StrategyNoop})
		require.NoError(t, err)
		assert.Nil(t, c.Stats())
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := NewFromConfig[string](Config{Enabled: true, Strategy: "ttl"})
		assert.Error(t, err)
	})
}

func TestConfig_UnmarshalYAML(t *testing.T) {
	raw := []byte("enabled: true\nstrategy: noop\n")

	var cfg Config
	require.NoError(t, yaml.Unmarshal(raw, &cfg))
	assert.True(t, cfg.Enabled)
	assert.Equal(t, StrategyNoop, cfg.Strategy)
}
