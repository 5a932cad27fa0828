// Package config loads the shattered configuration file.
//
// The file is TOML or YAML, chosen by extension, and lives at
// $XDG_CONFIG_HOME/shattered/config.toml unless --config names another.
// Every field is optional; flags override the file and pipeline defaults
// fill whatever neither sets.
//
//	[canvas]
//	width = 420
//	height = 297
//
//	[render]
//	palette = "forest"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[[palettes]]
//	name = "sepia"
//	paper = "#f3e9d2"
//	dark_paper = "#1b140c"
//	colors = [{ name = "Umber", main = "#635147", highlight = "#a58c7e" }]
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gre/shattered/pkg/errors"
	"github.com/gre/shattered/pkg/pipeline"
	"github.com/gre/shattered/pkg/render/palette"
)

const appName = "shattered"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the parsed configuration file.
type Config struct {
	Canvas   Canvas            `toml:"canvas" yaml:"canvas"`
	Render   Render            `toml:"render" yaml:"render"`
	Cache    Cache             `toml:"cache" yaml:"cache"`
	Archive  Archive           `toml:"archive" yaml:"archive"`
	Server   Server            `toml:"server" yaml:"server"`
	Palettes []palette.Palette `toml:"palettes" yaml:"palettes"`
}

// Canvas holds generation defaults.
type Canvas struct {
	Width    float64 `toml:"width" yaml:"width"`
	Height   float64 `toml:"height" yaml:"height"`
	Pad      float64 `toml:"pad" yaml:"pad"`
	MaxDepth int     `toml:"max_depth" yaml:"max_depth"`
	Density  float64 `toml:"density" yaml:"density"`
}

// Render holds output defaults.
type Render struct {
	Palette  string  `toml:"palette" yaml:"palette"`
	PenWidth float64 `toml:"pen_width" yaml:"pen_width"`
	Scale    float64 `toml:"scale" yaml:"scale"`
	Paper    bool    `toml:"paper" yaml:"paper"`
	Blend    bool    `toml:"blend" yaml:"blend"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend  string `toml:"backend" yaml:"backend"`
	Dir      string `toml:"dir" yaml:"dir"`
	RedisURL string `toml:"redis_url" yaml:"redis_url"`
}

// Archive configures the plot archive.
type Archive struct {
	Path     string `toml:"path" yaml:"path"`
	Disabled bool   `toml:"disabled" yaml:"disabled"`
}

// Server configures `shattered serve`.
type Server struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache:  Cache{Backend: CacheFile},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads the file at path. The format follows the extension: .toml,
// .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %v", path, undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "config %s: unsupported extension %q (use .toml or .yaml)", path, ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefault loads the first config file found in [Dir]. No file is not an
// error.
func LoadDefault() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), nil
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// Dir returns the configuration directory (~/.config/shattered/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Validate checks enumerations and palettes.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Canvas.Width < 0 || c.Canvas.Height < 0 || c.Canvas.Pad < 0 || c.Canvas.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas values must not be negative")
	}
	for _, p := range c.Palettes {
		if err := p.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "palette %q", p.Name)
		}
	}
	if c.Render.Palette != "" {
		reg, err := c.Registry()
		if err != nil {
			return err
		}
		if _, err := reg.Get(c.Render.Palette); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.palette")
		}
	}
	return nil
}

// Registry returns the built-in palettes plus the configured ones.
func (c Config) Registry() (*palette.Registry, error) {
	reg := palette.NewRegistry()
	for _, p := range c.Palettes {
		if err := reg.Add(p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "palette %q", p.Name)
		}
	}
	return reg, nil
}

// Apply fills the zero fields of opts from the configuration.
func (c Config) Apply(opts *pipeline.Options) {
	setFloat(&opts.Width, c.Canvas.Width)
	setFloat(&opts.Height, c.Canvas.Height)
	setFloat(&opts.Pad, c.Canvas.Pad)
	setFloat(&opts.Density, c.Canvas.Density)
	if opts.MaxDepth == 0 {
		opts.MaxDepth = c.Canvas.MaxDepth
	}
	if opts.Palette == "" {
		opts.Palette = c.Render.Palette
	}
	setFloat(&opts.PenWidth, c.Render.PenWidth)
	setFloat(&opts.Scale, c.Render.Scale)
	opts.Paper = opts.Paper || c.Render.Paper
	opts.Blend = opts.Blend || c.Render.Blend
}

func setFloat(dst *float64, v float64) {
	if *dst == 0 {
		*dst = v
	}
}
