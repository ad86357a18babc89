package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidam/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("parses env with defaults", func(t *testing.T) {
		type serverSettings struct {
			Addr  string `env:"TEST_LOADER_ADDR" envDefault:":9090"`
			Debug bool   `env:"TEST_LOADER_DEBUG" envDefault:"false"`
		}
		t.Setenv("TEST_LOADER_DEBUG", "true")

		var cfg serverSettings
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":9090", cfg.Addr)
		assert.True(t, cfg.Debug)
	})

	t.Run("caches per type", func(t *testing.T) {
		type cachedSettings struct {
			Value string `env:"TEST_LOADER_CACHED" envDefault:"first"`
		}

		var first cachedSettings
		require.NoError(t, config.Load(&first))

		t.Setenv("TEST_LOADER_CACHED", "second")
		var again cachedSettings
		require.NoError(t, config.Load(&again))
		assert.Equal(t, first.Value, again.Value)
	})

	t.Run("required field missing", func(t *testing.T) {
		type strictSettings struct {
			Token string `env:"TEST_LOADER_TOKEN,required"`
		}

		var cfg strictSettings
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil target", func(t *testing.T) {
		err := config.Load[struct{}](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}
