package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gre/shattered/pkg/errors"
	"github.com/gre/shattered/pkg/pipeline"
)

const tomlConfig = `
[canvas]
width = 420
height = 297
max_depth = 8

[render]
palette = "sepia"
pen_width = 0.5

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"

[[palettes]]
name = "sepia"
paper = "#f3e9d2"
dark_paper = "#1b140c"
colors = [{ name = "Umber", main = "#635147", highlight = "#a58c7e" }]
`

const yamlConfig = `
canvas:
  width: 200
  height: 200
render:
  paper: true
archive:
  disabled: true
server:
  addr: ":9000"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.toml", tomlConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Canvas.Width != 420 || cfg.Canvas.MaxDepth != 8 {
		t.Errorf("Canvas = %+v", cfg.Canvas)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisURL == "" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want the default", cfg.Server.Addr)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatal(err)
	}
	p, err := reg.Get("sepia")
	if err != nil {
		t.Fatalf("configured palette missing: %v", err)
	}
	if p.At(0).Main != "#635147" {
		t.Errorf("sepia ink = %s", p.At(0).Main)
	}
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", yamlConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Canvas.Width != 200 || !cfg.Render.Paper || !cfg.Archive.Disabled || cfg.Server.Addr != ":9000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("Cache.Backend = %q, want the default", cfg.Cache.Backend)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	if _, err := Load(writeFile(t, "config.yml", "")); err != nil {
		t.Errorf("empty yaml: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.Code
	}{
		{"unknown toml key", "c.toml", "[canvas]\nwidht = 3\n", errors.ErrCodeInvalidConfig},
		{"unknown yaml key", "c.yaml", "canvas:\n  widht: 3\n", errors.ErrCodeInvalidConfig},
		{"bad syntax", "c.toml", "[canvas\n", errors.ErrCodeInvalidConfig},
		{"bad backend", "c.toml", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig},
		{"redis without url", "c.toml", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidConfig},
		{"negative canvas", "c.yaml", "canvas:\n  width: -1\n", errors.ErrCodeInvalidConfig},
		{"unknown palette", "c.toml", "[render]\npalette = \"neon\"\n", errors.ErrCodeInvalidConfig},
		{"bad palette colour", "c.toml", "[[palettes]]\nname = \"x\"\npaper = \"red\"\ndark_paper = \"#000\"\ncolors = [{ name = \"a\", main = \"#111\", highlight = \"#222\" }]\n", errors.ErrCodeInvalidConfig},
		{"extension", "c.json", "{}", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault without file: %v", err)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("default backend = %q", cfg.Cache.Backend)
	}

	dir := filepath.Join(home, "shattered")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadDefault()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("LoadDefault did not read %s", dir)
	}
}

func TestApply(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.toml", tomlConfig))
	if err != nil {
		t.Fatal(err)
	}

	opts := pipeline.Options{Seed: "s", Height: 100}
	cfg.Apply(&opts)
	if opts.Width != 420 || opts.Height != 100 {
		t.Errorf("canvas = %gx%g, want 420x100 (flag wins)", opts.Width, opts.Height)
	}
	if opts.MaxDepth != 8 || opts.Palette != "sepia" || opts.PenWidth != 0.5 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Pad != 0 {
		t.Errorf("unset config value leaked: pad = %g", opts.Pad)
	}
}
