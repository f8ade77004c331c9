package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/georgyangelov/react-obs/internal/errors"
	"github.com/georgyangelov/react-obs/pkg/protocol"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "reactobs.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "reactobs.yaml"

	// DefaultAddress is the default protocol listen address.
	DefaultAddress = ":6666"

	// DefaultTickInterval is the default layout tick interval (one frame
	// at 60 fps).
	DefaultTickInterval = 16 * time.Millisecond

	// DefaultShutdownTimeout bounds how long Stop waits for connections.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "text"
)

// Config represents the complete reactobs configuration.
type Config struct {
	// Server contains the protocol and admin listener configuration.
	Server ServerConfig `json:"server" yaml:"server"`

	// Layout contains layout scheduler configuration.
	Layout LayoutConfig `json:"layout" yaml:"layout"`

	// Log contains logging configuration.
	Log LogConfig `json:"log" yaml:"log"`

	// Compositor describes the in-memory compositor the server drives.
	Compositor CompositorConfig `json:"compositor" yaml:"compositor"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains listener settings.
type ServerConfig struct {
	// Address is the TCP address of the protocol listener.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// AdminAddress is the HTTP address serving health, metrics, debug
	// and WebSocket endpoints. Empty disables the admin server.
	AdminAddress string `json:"adminAddress,omitempty" yaml:"adminAddress,omitempty"`

	// MaxFrameSize caps the payload size of a single frame.
	MaxFrameSize uint32 `json:"maxFrameSize,omitempty" yaml:"maxFrameSize,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "5s").
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
}

// LayoutConfig contains layout scheduler settings.
type LayoutConfig struct {
	// TickInterval is how often the scheduler runs (e.g., "16ms").
	TickInterval Duration `json:"tickInterval,omitempty" yaml:"tickInterval,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// CompositorConfig describes the in-memory compositor.
type CompositorConfig struct {
	// CanvasWidth and CanvasHeight are the size reported by scenes.
	CanvasWidth  uint32 `json:"canvasWidth,omitempty" yaml:"canvasWidth,omitempty"`
	CanvasHeight uint32 `json:"canvasHeight,omitempty" yaml:"canvasHeight,omitempty"`

	// Sources are pre-existing sources that clients can find by name.
	Sources []SourceConfig `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// SourceConfig is one pre-existing compositor source.
type SourceConfig struct {
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Width  uint32 `json:"width,omitempty" yaml:"width,omitempty"`
	Height uint32 `json:"height,omitempty" yaml:"height,omitempty"`
}

// Source kinds.
const (
	KindSource = "source"
	KindScene  = "scene"
)

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory. It looks for
// reactobs.json first, then reactobs.yaml and reactobs.yml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "reactobs.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithSubject(dir).
		WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).WithSubject(path)
		}
		return nil, errors.New(errors.CodeConfigInvalid).WithSubject(path).Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithSubject(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.MaxFrameSize == 0 {
		c.Server.MaxFrameSize = protocol.MaxPayloadSize
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.Layout.TickInterval == 0 {
		c.Layout.TickInterval = Duration(DefaultTickInterval)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	for i := range c.Compositor.Sources {
		if c.Compositor.Sources[i].Kind == "" {
			c.Compositor.Sources[i].Kind = KindSource
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateAddress("server.address", c.Server.Address); err != nil {
		return err
	}
	if c.Server.AdminAddress != "" {
		if err := validateAddress("server.adminAddress", c.Server.AdminAddress); err != nil {
			return err
		}
	}
	if c.Server.MaxFrameSize > protocol.MaxPayloadSize {
		return errors.New(errors.CodeConfigValue).
			WithSubject("server.maxFrameSize").
			WithDetail(fmt.Sprintf("Frame size must not exceed %d bytes", protocol.MaxPayloadSize))
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New(errors.CodeConfigValue).
			WithSubject("server.shutdownTimeout").
			WithDetail("Shutdown timeout must not be negative")
	}
	if c.Layout.TickInterval <= 0 {
		return errors.New(errors.CodeConfigValue).
			WithSubject("layout.tickInterval").
			WithDetail("Tick interval must be positive")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New(errors.CodeConfigValue).
			WithSubject("log.format").
			WithDetail("Log format must be text or json")
	}

	seen := make(map[string]bool, len(c.Compositor.Sources))
	for i, s := range c.Compositor.Sources {
		key := fmt.Sprintf("compositor.sources[%d]", i)
		if s.Name == "" {
			return errors.New(errors.CodeConfigValue).WithSubject(key).WithDetail("Source name is required")
		}
		if seen[s.Name] {
			return errors.New(errors.CodeConfigValue).WithSubject(key).WithDetail("Duplicate source name " + s.Name)
		}
		seen[s.Name] = true
		if s.Kind != KindSource && s.Kind != KindScene {
			return errors.New(errors.CodeConfigValue).WithSubject(key).WithDetail("Kind must be source or scene")
		}
	}
	return nil
}

func validateAddress(key, addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return errors.New(errors.CodeConfigValue).WithSubject(key).Wrap(err)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New(errors.CodeConfigValue).
			WithSubject("log.level").
			WithDetail("Log level must be debug, info, warn or error")
	}
	return level, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "reactobs.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// LoadFromWorkingDir loads configuration from the current working
// directory, falling back to defaults when no file exists.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if !Exists(wd) {
		return New(), nil
	}
	return Load(wd)
}

// =============================================================================
// Duration
// =============================================================================

// Duration is a time.Duration written as a string ("250ms", "5s") in
// config files.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. Plain numbers are read as
// milliseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var ms float64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("duration must be a string or number of milliseconds: %s", data)
		}
		*d = Duration(ms * float64(time.Millisecond))
		return nil
	}
	return d.parse(s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" || node.Tag == "!!float" {
		var ms float64
		if err := node.Decode(&ms); err != nil {
			return err
		}
		*d = Duration(ms * float64(time.Millisecond))
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
