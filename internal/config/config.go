// Package config loads topoview settings.
//
// The file lives at $XDG_CONFIG_HOME/topoview/config.yaml, falling back to
// ~/.config/topoview/config.yaml. A missing file yields the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v3"

	"github.com/Mr-Dark-debug/topoview/internal/browse"
)

// ErrInvalid reports a config value outside its allowed range.
var ErrInvalid = errors.New("invalid config")

// DefaultDebounce is the reload delay after a watched file changes.
const DefaultDebounce = 200 * time.Millisecond

// Config is the top-level configuration.
type Config struct {
	PageSize   int               `yaml:"page_size,omitempty" validate:"min=1,max=500"`
	PageWindow int               `yaml:"page_window,omitempty" validate:"min=1,max=25"`
	Labels     map[string]string `yaml:"labels,omitempty"` // record type -> menu label
	Watch      bool              `yaml:"watch,omitempty"`
	StartDir   string            `yaml:"start_dir,omitempty"`
	Debounce   time.Duration     `yaml:"debounce,omitempty" validate:"max=60000000000"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		PageSize:   browse.DefaultPageSize,
		PageWindow: browse.DefaultWindow,
		Labels:     map[string]string{},
		Debounce:   DefaultDebounce,
	}
}

// Dir returns the topoview config directory.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "topoview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "topoview")
}

// Path returns the full path to config.yaml.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config from Path.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path. Zero or negative numbers fall back to
// the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = browse.DefaultPageSize
	}
	if cfg.PageWindow <= 0 {
		cfg.PageWindow = browse.DefaultWindow
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
	cfg.StartDir = expandHome(cfg.StartDir)
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the numeric settings against their bounds. Zero values
// are replaced by defaults before this runs, so only oversized values fail.
func (c Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// SaveTo writes cfg to path, creating the directory.
func SaveTo(cfg Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// BrowseOptions maps the paging settings onto the presenter options.
func (c Config) BrowseOptions() browse.Options {
	return browse.Options{PageSize: c.PageSize, Window: c.PageWindow}
}

// PickerDir is the directory the file picker opens in.
func (c Config) PickerDir() string {
	if c.StartDir != "" {
		return c.StartDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
