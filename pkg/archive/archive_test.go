package archive

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/gre/shattered/pkg/errors"
)

func openTest(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "nested", "archive.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRecordGet(t *testing.T) {
	a := openTest(t)
	ctx := context.Background()

	in := Entry{
		Seed:     "0xabc",
		Palette:  "forest",
		Width:    297,
		Height:   210,
		MaxDepth: 6,
		Attempts: 2,
		Leaves:   40,
		Routes:   900,
		Dark:     true,
		Params:   json.RawMessage(`{"seed":"0xabc"}`),
	}
	rec, err := a.Record(ctx, in)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(rec.ID) != 36 || rec.CreatedAt.IsZero() {
		t.Fatalf("Record did not assign id/time: %+v", rec)
	}

	got, err := a.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Seed != in.Seed || got.Palette != "forest" || !got.Dark || got.Leaves != 40 {
		t.Errorf("Get = %+v", got)
	}
	if string(got.Params) != `{"seed":"0xabc"}` {
		t.Errorf("Params = %s", got.Params)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}

	byPrefix, err := a.Get(ctx, rec.ShortID())
	if err != nil || byPrefix.ID != rec.ID {
		t.Errorf("Get by short id = %v, %v", byPrefix.ID, err)
	}
}

func TestGetErrors(t *testing.T) {
	a := openTest(t)
	ctx := context.Background()

	if _, err := a.Get(ctx, "00000000-0000"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing id: error = %v, want NOT_FOUND", err)
	}
	if _, err := a.Get(ctx, "abc"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("short id: error = %v, want INVALID_INPUT", err)
	}
	if _, err := a.Record(ctx, Entry{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty seed: error = %v, want INVALID_INPUT", err)
	}
}

func TestList(t *testing.T) {
	a := openTest(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, seed := range []string{"0xaa01", "0xaa02", "0xbb01"} {
		if _, err := a.Record(ctx, Entry{Seed: seed, CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := a.List(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Seed != "0xbb01" || all[2].Seed != "0xaa01" {
		t.Errorf("List order = %v", all)
	}

	tests := []struct {
		name string
		opts ListOptions
		want int
	}{
		{"prefix", ListOptions{Seed: "0xaa"}, 2},
		{"limit", ListOptions{Limit: 1}, 1},
		{"no match", ListOptions{Seed: "0xcc"}, 0},
		{"wildcards are literal", ListOptions{Seed: "0x%"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.List(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}

	if n, err := a.Count(ctx); err != nil || n != 3 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestDelete(t *testing.T) {
	a := openTest(t)
	ctx := context.Background()

	rec, err := a.Record(ctx, Entry{Seed: "0x1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := a.Delete(ctx, rec.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second Delete error = %v, want NOT_FOUND", err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); !errors.Is(err, errors.ErrCodeArchive) {
		t.Errorf("error = %v, want ARCHIVE_ERROR", err)
	}
}
