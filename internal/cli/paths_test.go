package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gre/shattered/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Config.Cache.Dir = "/srv/shattered-cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/srv/shattered-cache" {
		t.Errorf("cacheDir() = %q, want the configured directory", dir)
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")

	dir, err := dataDir()
	if err != nil {
		t.Fatalf("dataDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join(".local", "share", appName)) {
		t.Errorf("dataDir() = %q, want ~/.local/share/%s", dir, appName)
	}

	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	dir, _ = dataDir()
	if dir != filepath.Join("/tmp/data", appName) {
		t.Errorf("dataDir() with XDG_DATA_HOME = %q", dir)
	}
}

func TestOpenArchive(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Config.Archive.Path = filepath.Join(t.TempDir(), "a.db")

	a, err := c.openArchive()
	if err != nil {
		t.Fatalf("openArchive() error: %v", err)
	}
	if a == nil {
		t.Fatal("openArchive() returned nil with archiving enabled")
	}
	a.Close()

	c.Config.Archive.Disabled = true
	if a, err := c.openArchive(); a != nil || err != nil {
		t.Errorf("openArchive() disabled = %v, %v; want nil, nil", a, err)
	}
}

func TestNewCacheBackends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		noCache bool
		want    string
	}{
		{"file", config.CacheFile, false, "*cache.FileCache"},
		{"default is file", "", false, "*cache.FileCache"},
		{"none", config.CacheNone, false, "*cache.NullCache"},
		{"no-cache flag wins", config.CacheFile, true, "*cache.NullCache"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(os.Stderr, LogInfo)
			c.Config.Cache.Backend = tt.backend
			c.Config.Cache.Dir = t.TempDir()

			cc, err := c.newCache(t.Context(), tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer cc.Close()
			if got := typeName(cc); got != tt.want {
				t.Errorf("newCache() = %s, want %s", got, tt.want)
			}
		})
	}
}
