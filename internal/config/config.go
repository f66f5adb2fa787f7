// Package config loads callmodel.toml, the optional per-project settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the name searched for by Find.
const FileName = "callmodel.toml"

// Config is the merged configuration. Zero values mean "not set".
type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path   string       `toml:"-"`
	Trace  TraceConfig  `toml:"trace"`
	Output OutputConfig `toml:"output"`
}

type TraceConfig struct {
	Level     string        `toml:"level"`
	Mode      string        `toml:"mode"`
	Format    string        `toml:"format"`
	Output    string        `toml:"output"`
	RingSize  int           `toml:"ring_size"`
	Heartbeat time.Duration `toml:"heartbeat"`
}

type OutputConfig struct {
	// Format is "text", "msgpack" or "yaml".
	Format string `toml:"format"`
	// Color is "auto", "on" or "off".
	Color string `toml:"color"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Trace: TraceConfig{
			Level:    "off",
			Mode:     "stream",
			Format:   "auto",
			RingSize: 4096,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("output", "format") {
		switch cfg.Output.Format {
		case "text", "msgpack", "yaml":
		default:
			return Config{}, fmt.Errorf("%s: [output].format must be text, msgpack or yaml, got %q", path, cfg.Output.Format)
		}
	}
	if meta.IsDefined("output", "color") {
		switch cfg.Output.Color {
		case "auto", "on", "off":
		default:
			return Config{}, fmt.Errorf("%s: [output].color must be auto, on or off, got %q", path, cfg.Output.Color)
		}
	}
	if meta.IsDefined("trace", "ring_size") && cfg.Trace.RingSize <= 0 {
		return Config{}, fmt.Errorf("%s: [trace].ring_size must be positive", path)
	}
	if cfg.Trace.Output != "" && !filepath.IsAbs(cfg.Trace.Output) {
		cfg.Trace.Output = filepath.Join(filepath.Dir(path), cfg.Trace.Output)
	}
	cfg.Path = path
	return cfg, nil
}

// Discover finds and loads the nearest config above startDir, falling back to
// Default when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}
