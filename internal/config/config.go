// Package config loads the server configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// LOOK_MCP_* environment variables. Command line flags are applied last by
// the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/look-mcp/internal/captures"
	"github.com/ironsheep/look-mcp/internal/screen"
)

// Environment variables read by ApplyEnv.
const (
	EnvCapturesDir    = "LOOK_MCP_CAPTURES_DIR"
	EnvCaptureCommand = "LOOK_MCP_CAPTURE_COMMAND"
	EnvSuccessPattern = "LOOK_MCP_SUCCESS_PATTERN"
	EnvRetention      = "LOOK_MCP_RETENTION"
	EnvCaptureTimeout = "LOOK_MCP_CAPTURE_TIMEOUT"
	EnvLogLevel       = "LOOK_MCP_LOG_LEVEL"
)

// Config is the server configuration.
type Config struct {
	// CapturesDir is where screenshots and the counter file live.
	CapturesDir string `yaml:"captures_dir"`

	// CaptureCommand is the capture program and its leading arguments; the
	// destination path is appended. Empty means detect per platform.
	CaptureCommand []string `yaml:"capture_command"`

	// SuccessPattern is stderr output the capture command may print
	// without failing the capture.
	SuccessPattern string `yaml:"success_pattern"`

	// Retention is the age after which captures are deleted. Zero keeps
	// captures forever.
	Retention time.Duration `yaml:"retention"`

	// CaptureTimeout bounds a single capture. Zero means no timeout.
	CaptureTimeout time.Duration `yaml:"capture_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CapturesDir:    DefaultCapturesDir(),
		SuccessPattern: screen.DefaultSuccessPattern,
		Retention:      captures.DefaultRetention,
		LogLevel:       "info",
	}
}

// DefaultCapturesDir returns "captures" beside the install root, the
// parent of the directory holding the executable. It falls back to
// ./captures when the executable cannot be located.
func DefaultCapturesDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "captures"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(filepath.Dir(exe)), "captures")
}

// Load builds a configuration from defaults, the YAML file at path (if
// path is not empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file at path onto c. Keys absent from the
// file keep their current value.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays the LOOK_MCP_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCapturesDir); ok && v != "" {
		c.CapturesDir = v
	}
	if v, ok := lookup(EnvCaptureCommand); ok && strings.TrimSpace(v) != "" {
		c.CaptureCommand = strings.Fields(v)
	}
	if v, ok := lookup(EnvSuccessPattern); ok && v != "" {
		c.SuccessPattern = v
	}
	if v, ok := lookup(EnvRetention); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRetention, err)
		}
		c.Retention = d
	}
	if v, ok := lookup(EnvCaptureTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCaptureTimeout, err)
		}
		c.CaptureTimeout = d
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	var errs []error
	if c.CapturesDir == "" {
		errs = append(errs, errors.New("captures_dir must not be empty"))
	}
	if c.Retention < 0 {
		errs = append(errs, fmt.Errorf("retention must not be negative, got %s", c.Retention))
	}
	if c.CaptureTimeout < 0 {
		errs = append(errs, fmt.Errorf("capture_timeout must not be negative, got %s", c.CaptureTimeout))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return lvl, nil
}
