// Package config is the fightweb configuration tree, read through viper
// from fightweb.yaml, FIGHTWEB_* environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/recera/fightweb/internal/cache"
	"github.com/recera/fightweb/pkg/fightweb/layout"
	"github.com/recera/fightweb/pkg/fightweb/view"
	"github.com/recera/fightweb/pkg/fightweb/viewport"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration structure.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Layout      LayoutConfig      `mapstructure:"layout" yaml:"layout"`
	Viewport    ViewportConfig    `mapstructure:"viewport" yaml:"viewport"`
	Overlay     OverlayConfig     `mapstructure:"overlay" yaml:"overlay"`
	Interaction InteractionConfig `mapstructure:"interaction" yaml:"interaction"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Detail      DetailConfig      `mapstructure:"detail" yaml:"detail"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
}

// ColorConfig defines the console color of each log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// LayoutConfig tunes the force simulation. Zero values use the layout
// defaults.
type LayoutConfig struct {
	Iterations     int     `mapstructure:"iterations" yaml:"iterations"`
	Repulsion      float64 `mapstructure:"repulsion" yaml:"repulsion"`
	IdealLength    float64 `mapstructure:"ideal_length" yaml:"ideal_length"`
	SpringStrength float64 `mapstructure:"spring_strength" yaml:"spring_strength"`
	Damping        float64 `mapstructure:"damping" yaml:"damping"`
	CenterPull     float64 `mapstructure:"center_pull" yaml:"center_pull"`
	Step           float64 `mapstructure:"step" yaml:"step"`
	MaxSpeed       float64 `mapstructure:"max_speed" yaml:"max_speed"`
	WarmStart      bool    `mapstructure:"warm_start" yaml:"warm_start"`
}

// ViewportConfig sizes the surface and bounds zoom.
type ViewportConfig struct {
	Width      float64 `mapstructure:"width" yaml:"width"`
	Height     float64 `mapstructure:"height" yaml:"height"`
	MinScale   float64 `mapstructure:"min_scale" yaml:"min_scale"`
	MaxScale   float64 `mapstructure:"max_scale" yaml:"max_scale"`
	LabelScale float64 `mapstructure:"label_scale" yaml:"label_scale"`
}

// Limits returns the zoom range.
func (c ViewportConfig) Limits() viewport.Limits {
	return viewport.Limits{Min: c.MinScale, Max: c.MaxScale}
}

// OverlayConfig places the detail panel.
type OverlayConfig struct {
	Offset float64 `mapstructure:"offset" yaml:"offset"`
}

// InteractionConfig holds the interaction timings.
type InteractionConfig struct {
	CloseDelay   time.Duration `mapstructure:"close_delay" yaml:"close_delay"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
}

// ServerConfig holds settings for `fightweb serve`.
type ServerConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Title    string        `mapstructure:"title" yaml:"title"`
	Watch    bool          `mapstructure:"watch" yaml:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// DetailConfig selects the detail source: an HTTP service or a JSON file.
type DetailConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	File    string        `mapstructure:"file" yaml:"file"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CacheConfig sizes the per-view layout cache.
type CacheConfig struct {
	MaxEntries int           `mapstructure:"max_entries" yaml:"max_entries"`
	MaxAge     time.Duration `mapstructure:"max_age" yaml:"max_age"`
	Strategy   string        `mapstructure:"strategy" yaml:"strategy"`
}

// SetDefaults registers every default on v so the app runs without a
// config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "fightweb")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	v.SetDefault("layout.damping", 0.85)
	v.SetDefault("layout.warm_start", false)

	lim := viewport.DefaultLimits()
	v.SetDefault("viewport.width", 800.0)
	v.SetDefault("viewport.height", 600.0)
	v.SetDefault("viewport.min_scale", lim.Min)
	v.SetDefault("viewport.max_scale", lim.Max)

	v.SetDefault("overlay.offset", 16.0)

	v.SetDefault("interaction.close_delay", "150ms")
	v.SetDefault("interaction.fetch_timeout", "10s")

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.title", "Rivalry network")
	v.SetDefault("server.debounce", "100ms")

	v.SetDefault("detail.timeout", "5s")

	v.SetDefault("cache.max_entries", 16)
	v.SetDefault("cache.max_age", "1h")
	v.SetDefault("cache.strategy", "lru")
}

// EnvPrefix prefixes environment overrides, e.g. FIGHTWEB_SERVER_ADDR.
const EnvPrefix = "FIGHTWEB"

// BindEnv makes every key overridable from the environment.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch strings.ToLower(c.Logger.Format) {
	case "", "console", "json":
	default:
		bad("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Layout.Iterations < 0 {
		bad("layout.iterations must not be negative")
	}
	if c.Layout.Damping != 0 && (c.Layout.Damping <= 0 || c.Layout.Damping >= 1) {
		bad("layout.damping must be in (0, 1), got %v", c.Layout.Damping)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		bad("viewport size must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Viewport.MinScale <= 0 || c.Viewport.MaxScale < c.Viewport.MinScale {
		bad("viewport scale range [%v, %v] is empty", c.Viewport.MinScale, c.Viewport.MaxScale)
	}
	if c.Overlay.Offset < 0 {
		bad("overlay.offset must not be negative")
	}
	if c.Interaction.CloseDelay < 0 {
		bad("interaction.close_delay must not be negative")
	}
	if _, err := cache.ParseStrategy(c.Cache.Strategy); err != nil {
		bad("cache.strategy: %v", err)
	}
	if c.Cache.MaxEntries < 0 {
		bad("cache.max_entries must not be negative")
	}
	if c.Detail.BaseURL != "" && c.Detail.File != "" {
		bad("detail.base_url and detail.file are mutually exclusive")
	}
	return errors.Join(errs...)
}

// Options converts the layout section.
func (c LayoutConfig) Options() *layout.Options {
	return &layout.Options{
		Iterations:     c.Iterations,
		Repulsion:      c.Repulsion,
		IdealLength:    c.IdealLength,
		SpringStrength: c.SpringStrength,
		Damping:        c.Damping,
		CenterPull:     c.CenterPull,
		Step:           c.Step,
		MaxSpeed:       c.MaxSpeed,
	}
}

// ViewOptions builds the controller options. Call after Validate.
func (c *Config) ViewOptions() view.Options {
	strategy, _ := cache.ParseStrategy(c.Cache.Strategy)
	return view.Options{
		Width:         c.Viewport.Width,
		Height:        c.Viewport.Height,
		Layout:        c.Layout.Options(),
		WarmStart:     c.Layout.WarmStart,
		Limits:        c.Viewport.Limits(),
		CloseDelay:    c.Interaction.CloseDelay,
		OverlayOffset: c.Overlay.Offset,
		FetchTimeout:  c.Interaction.FetchTimeout,
		LabelScale:    c.Viewport.LabelScale,
		Cache: cache.Config{
			MaxEntries: c.Cache.MaxEntries,
			MaxAge:     c.Cache.MaxAge,
			Strategy:   strategy,
		},
	}
}
