package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/recera/fightweb/internal/cache"
)

func load(t *testing.T, doc string) (*Config, error) {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(doc)))
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 800.0, cfg.Viewport.Width)
	assert.Equal(t, 0.2, cfg.Viewport.MinScale)
	assert.Equal(t, 5.0, cfg.Viewport.MaxScale)
	assert.Equal(t, 150*time.Millisecond, cfg.Interaction.CloseDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.Server.Debounce)
	assert.Equal(t, "lru", cfg.Cache.Strategy)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(t, `
layout:
  iterations: 120
  repulsion: 1500
  warm_start: true
viewport:
  width: 1024
  max_scale: 8
interaction:
  close_delay: 300ms
cache:
  strategy: lfu
  max_entries: 4
detail:
  base_url: http://localhost:9000/api
`)
	require.NoError(t, err)

	opts := cfg.ViewOptions()
	assert.Equal(t, 1024.0, opts.Width)
	assert.Equal(t, 120, opts.Layout.Iterations)
	assert.Equal(t, 1500.0, opts.Layout.Repulsion)
	assert.Equal(t, 0.85, opts.Layout.Damping)
	assert.True(t, opts.WarmStart)
	assert.Equal(t, 8.0, opts.Limits.Max)
	assert.Equal(t, 300*time.Millisecond, opts.CloseDelay)
	assert.Equal(t, cache.LFU, opts.Cache.Strategy)
	assert.Equal(t, 4, opts.Cache.MaxEntries)
	assert.Equal(t, "http://localhost:9000/api", cfg.Detail.BaseURL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FIGHTWEB_SERVER_ADDR", "0.0.0.0:9999")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad format", "logger: {format: xml}", "logger.format"},
		{"bad damping", "layout: {damping: 1.5}", "layout.damping"},
		{"empty scale range", "viewport: {min_scale: 3, max_scale: 2}", "scale range"},
		{"bad strategy", "cache: {strategy: random}", "cache.strategy"},
		{"two detail sources", "detail: {base_url: http://x, file: d.json}", "mutually exclusive"},
		{"negative offset", "overlay: {offset: -1}", "overlay.offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	cfg, err := load(t, "server: {addr: 'localhost:7000', watch: true}")
	require.NoError(t, err)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "localhost:7000")
	assert.Contains(t, string(out), "watch: true")
}
