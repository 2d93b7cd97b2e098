// Package config loads nodeflow.yaml / nodeflow.toml and maps it onto the
// editor and server options.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/palette"
	"github.com/recera/nodeflow/pkg/viewport"
)

// FileNames are searched in order when no explicit path is given
var FileNames = []string{"nodeflow.yaml", "nodeflow.yml", "nodeflow.toml"}

const (
	EnvHost     = "NODEFLOW_HOST"
	EnvPort     = "NODEFLOW_PORT"
	EnvLogLevel = "NODEFLOW_LOG_LEVEL"
)

// Config represents the nodeflow configuration file
type Config struct {
	Editor  EditorConfig    `yaml:"editor" toml:"editor"`
	Wire    geom.Bend       `yaml:"wire" toml:"wire"`
	Palette palette.Stagger `yaml:"palette" toml:"palette"`
	Server  ServerConfig    `yaml:"server" toml:"server"`
	Log     LogConfig       `yaml:"log" toml:"log"`
}

// EditorConfig contains viewport and hit-testing settings
type EditorConfig struct {
	MinScale        float64 `yaml:"minScale" toml:"min_scale"`
	MaxScale        float64 `yaml:"maxScale" toml:"max_scale"`
	ZoomSensitivity float64 `yaml:"zoomSensitivity" toml:"zoom_sensitivity"`

	// Screen pixels, independent of zoom
	DropRadius float64 `yaml:"dropRadius" toml:"drop_radius"`

	// Content units
	PortRadius float64 `yaml:"portRadius" toml:"port_radius"`
}

// ServerConfig contains the host page server settings
type ServerConfig struct {
	Host           string   `yaml:"host" toml:"host"`
	Port           int      `yaml:"port" toml:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins" toml:"allowed_origins"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level       string `yaml:"level" toml:"level"`
	Development bool   `yaml:"development" toml:"development"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			MinScale:        viewport.DefaultMinScale,
			MaxScale:        viewport.DefaultMaxScale,
			ZoomSensitivity: viewport.DefaultZoomSensitivity,
			DropRadius:      editor.DefaultDropRadius,
			PortRadius:      editor.DefaultPortRadius,
		},
		Wire:    geom.DefaultBend,
		Palette: palette.DefaultStagger,
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Find returns the first config file present in dir, or "" if there is none
func Find(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads the config at path. An empty path yields the defaults. Missing
// values are filled from the defaults and the environment overrides are
// applied last.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
	}

	applyDefaults(cfg)
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(cfg *Config) {
	d := DefaultConfig()

	if cfg.Editor.MinScale == 0 {
		cfg.Editor.MinScale = d.Editor.MinScale
	}
	if cfg.Editor.MaxScale == 0 {
		cfg.Editor.MaxScale = d.Editor.MaxScale
	}
	if cfg.Editor.ZoomSensitivity == 0 {
		cfg.Editor.ZoomSensitivity = d.Editor.ZoomSensitivity
	}
	if cfg.Editor.DropRadius == 0 {
		cfg.Editor.DropRadius = d.Editor.DropRadius
	}
	if cfg.Editor.PortRadius == 0 {
		cfg.Editor.PortRadius = d.Editor.PortRadius
	}

	if cfg.Wire.Factor == 0 {
		cfg.Wire.Factor = d.Wire.Factor
	}
	if cfg.Wire.Min == 0 {
		cfg.Wire.Min = d.Wire.Min
	}
	if cfg.Wire.Max == 0 {
		cfg.Wire.Max = d.Wire.Max
	}

	if cfg.Palette == (palette.Stagger{}) {
		cfg.Palette = d.Palette
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = d.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error
	if c.Editor.MinScale <= 0 {
		errs = append(errs, fmt.Errorf("editor.minScale must be positive, got %v", c.Editor.MinScale))
	}
	if c.Editor.MinScale > c.Editor.MaxScale {
		errs = append(errs, fmt.Errorf("editor.minScale %v exceeds maxScale %v", c.Editor.MinScale, c.Editor.MaxScale))
	}
	if c.Editor.ZoomSensitivity <= 0 {
		errs = append(errs, fmt.Errorf("editor.zoomSensitivity must be positive, got %v", c.Editor.ZoomSensitivity))
	}
	if c.Editor.DropRadius <= 0 {
		errs = append(errs, fmt.Errorf("editor.dropRadius must be positive, got %v", c.Editor.DropRadius))
	}
	if c.Editor.PortRadius <= 0 {
		errs = append(errs, fmt.Errorf("editor.portRadius must be positive, got %v", c.Editor.PortRadius))
	}
	if c.Wire.Min > c.Wire.Max {
		errs = append(errs, fmt.Errorf("wire.minBend %v exceeds maxBend %v", c.Wire.Min, c.Wire.Max))
	}
	if c.Palette.ModX <= 0 || c.Palette.ModY <= 0 {
		errs = append(errs, errors.New("palette.modX and palette.modY must be positive"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// EditorOptions maps the config onto editor options. The logger is left for
// the caller to set.
func (c *Config) EditorOptions() editor.Options {
	return editor.Options{
		Viewport: viewport.Options{
			MinScale:        c.Editor.MinScale,
			MaxScale:        c.Editor.MaxScale,
			ZoomSensitivity: c.Editor.ZoomSensitivity,
		},
		DropRadius: c.Editor.DropRadius,
		PortRadius: c.Editor.PortRadius,
		Bend:       c.Wire,
		Stagger:    c.Palette,
	}
}

// Addr returns host:port for the server
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
