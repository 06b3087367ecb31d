package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/config"
)

type testConfig struct {
	TTL   time.Duration `env:"TEST_SESSION_TTL" envDefault:"1h"`
	Name  string        `env:"TEST_SERVICE_NAME" envDefault:"sessionkit"`
	Count int           `env:"TEST_COUNT" envDefault:"5"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, time.Hour, cfg.TTL)
		assert.Equal(t, "sessionkit", cfg.Name)
		assert.Equal(t, 5, cfg.Count)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("TEST_SESSION_TTL", "30m")
		t.Setenv("TEST_COUNT", "9")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 30*time.Minute, cfg.TTL)
		assert.Equal(t, 9, cfg.Count)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[testConfig](nil), config.ErrNilPointer)
	})

	t.Run("parse failure", func(t *testing.T) {
		t.Setenv("TEST_COUNT", "not-a-number")

		var cfg testConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	})
}
