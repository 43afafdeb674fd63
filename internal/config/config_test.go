package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.PageSize != 15 || cfg.PageWindow != 5 || cfg.Debounce != DefaultDebounce {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Watch {
		t.Error("watch must default to false")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `page_size: 25
page_window: 7
watch: true
debounce: 500ms
labels:
  CHANNEL: Lines
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.PageSize != 25 || cfg.PageWindow != 7 || !cfg.Watch {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Debounce != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %v", cfg.Debounce)
	}
	if cfg.Labels["CHANNEL"] != "Lines" {
		t.Errorf("expected label override, got %v", cfg.Labels)
	}
	opts := cfg.BrowseOptions()
	if opts.PageSize != 25 || opts.Window != 7 {
		t.Errorf("unexpected browse options %+v", opts)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("page_size: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if cfg.PageSize != 15 {
		t.Errorf("expected defaults alongside the error, got %+v", cfg)
	}
}

func TestNonPositiveValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("page_size: 0\npage_window: -3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PageSize != 15 || cfg.PageWindow != 5 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got, want := Path(), filepath.Join(dir, "topoview", "config.yaml"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.StartDir = "/srv/topologies"
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.PickerDir() != "/srv/topologies" {
		t.Errorf("expected start dir to persist, got %q", got.PickerDir())
	}
}

func TestLoadRejectsOversizedPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("page_size: 10000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if cfg.PageSize != 15 {
		t.Errorf("expected defaults on error, got page size %d", cfg.PageSize)
	}
}

func TestSaveToValidates(t *testing.T) {
	cfg := Default()
	cfg.PageWindow = 99
	if err := SaveTo(cfg, filepath.Join(t.TempDir(), "c.yaml")); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
