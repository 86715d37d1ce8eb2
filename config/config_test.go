package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-stackblur/images/kernels"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, 15, s.Options.Radius)
	assert.Equal(t, kernels.DivideExact, s.Options.Divisor)
	assert.Equal(t, kernels.UpdateIncremental, s.Options.Update)
	assert.True(t, s.Linear)
}

func TestLoad(t *testing.T) {
	t.Run("yaml overrides defaults", func(t *testing.T) {
		path := writeFile(t, "blur.yaml", "radius: 40\ndivisor: table\nparallel: true\nmaxSize: 2048\n")
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 40, cfg.Radius)
		assert.Equal(t, "table", cfg.Divisor)
		assert.True(t, cfg.Parallel)
		assert.Equal(t, 2048, cfg.MaxSize)
		// Untouched fields keep their defaults.
		assert.True(t, cfg.Linear)
		assert.Equal(t, "incremental", cfg.Update)
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "blur.json", `{"radius": 3, "update": "recompute", "linear": false}`)
		cfg, err := Load(path)
		require.NoError(t, err)

		opt, err := cfg.Options()
		require.NoError(t, err)
		assert.Equal(t, kernels.UpdateRecompute, opt.Update)
		assert.False(t, cfg.Linear)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "radius: [1, 2"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"radius", func(c *Config) { c.Radius = 0 }},
		{"max size", func(c *Config) { c.MaxSize = -1 }},
		{"quality", func(c *Config) { c.Quality = 101 }},
		{"divisor", func(c *Config) { c.Divisor = "float" }},
		{"update", func(c *Config) { c.Update = "lazy" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
