package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/five82/kimaideck/internal/kimai"
)

// Config is the parsed kimaideck configuration document.
type Config struct {
	Path    string
	Remote  Remote
	Device  Device
	Display Display
	Preview Preview
	Log     Log
}

// Remote holds the Kimai API credentials.
type Remote struct {
	URL   string
	User  string
	Token string
}

// Device selects and shapes the tile device driver.
type Device struct {
	Driver   string // "terminal" or "evdev"
	Rows     int
	Cols     int
	Name     string // evdev input device name
	KeyCodes []int  // evdev key codes in tile order
}

// Display carries presentation settings.
type Display struct {
	Timezone string
}

// Preview configures the HTTP preview of the tile grid; empty Listen disables it.
type Preview struct {
	Listen string
}

// Log configures the process logger.
type Log struct {
	Level string
	File  string
}

const (
	DriverTerminal = "terminal"
	DriverEvdev    = "evdev"

	defaultRows     = 3
	defaultCols     = 5
	defaultLogLevel = "info"
)

type rawAPI struct {
	URL   string `toml:"url" yaml:"url"`
	User  string `toml:"user" yaml:"user"`
	Token string `toml:"token" yaml:"token"`
}

type rawRemote struct {
	API rawAPI `toml:"api" yaml:"api"`
}

type rawConfig struct {
	Remote rawRemote `toml:"remote" yaml:"remote"`
	Kimai  rawRemote `toml:"kimai" yaml:"kimai"`
	Device struct {
		Driver   string `toml:"driver" yaml:"driver"`
		Rows     int    `toml:"rows" yaml:"rows"`
		Cols     int    `toml:"cols" yaml:"cols"`
		Name     string `toml:"name" yaml:"name"`
		KeyCodes []int  `toml:"keycodes" yaml:"keycodes"`
	} `toml:"device" yaml:"device"`
	Display struct {
		Timezone string `toml:"timezone" yaml:"timezone"`
	} `toml:"display" yaml:"display"`
	Preview struct {
		Listen string `toml:"listen" yaml:"listen"`
	} `toml:"preview" yaml:"preview"`
	Log struct {
		Level string `toml:"level" yaml:"level"`
		File  string `toml:"file" yaml:"file"`
	} `toml:"log" yaml:"log"`
}

// Load reads and validates the configuration at path. TOML is used for
// ".toml" files, YAML for everything else.
func Load(path string) (Config, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config %s does not exist", resolved)
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".toml":
		err = toml.Unmarshal(bytes, &raw)
	default:
		err = yaml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := fromRaw(raw)
	cfg.Path = resolved
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) Config {
	api := raw.Remote.API
	if strings.TrimSpace(api.URL) == "" && strings.TrimSpace(raw.Kimai.API.URL) != "" {
		api = raw.Kimai.API
	}

	cfg := Config{
		Remote: Remote{
			URL:   strings.TrimSpace(api.URL),
			User:  strings.TrimSpace(api.User),
			Token: strings.TrimSpace(api.Token),
		},
		Device: Device{
			Driver:   strings.ToLower(strings.TrimSpace(raw.Device.Driver)),
			Rows:     raw.Device.Rows,
			Cols:     raw.Device.Cols,
			Name:     strings.TrimSpace(raw.Device.Name),
			KeyCodes: raw.Device.KeyCodes,
		},
		Display: Display{Timezone: strings.TrimSpace(raw.Display.Timezone)},
		Preview: Preview{Listen: strings.TrimSpace(raw.Preview.Listen)},
		Log: Log{
			Level: strings.ToLower(strings.TrimSpace(raw.Log.Level)),
			File:  strings.TrimSpace(raw.Log.File),
		},
	}
	if cfg.Device.Driver == "" {
		cfg.Device.Driver = DriverTerminal
	}
	if cfg.Device.Rows == 0 {
		cfg.Device.Rows = defaultRows
	}
	if cfg.Device.Cols == 0 {
		cfg.Device.Cols = defaultCols
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.File != "" {
		cfg.Log.File = mustExpand(cfg.Log.File)
	}
	return cfg
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	switch {
	case c.Remote.URL == "":
		return fmt.Errorf("config: remote.api.url is required")
	case c.Remote.User == "":
		return fmt.Errorf("config: remote.api.user is required")
	case c.Remote.Token == "":
		return fmt.Errorf("config: remote.api.token is required")
	}
	if _, err := kimai.ParseBaseURL(c.Remote.URL); err != nil {
		return fmt.Errorf("config: remote.api.url: %w", err)
	}
	switch c.Device.Driver {
	case DriverTerminal, DriverEvdev:
	default:
		return fmt.Errorf("config: unknown device.driver %q", c.Device.Driver)
	}
	if c.Device.Rows < 1 || c.Device.Cols < 1 || c.Device.Rows*c.Device.Cols < 2 {
		return fmt.Errorf("config: device grid %dx%d needs at least two tiles", c.Device.Rows, c.Device.Cols)
	}
	if len(c.Device.KeyCodes) > 0 && len(c.Device.KeyCodes) != c.Device.Rows*c.Device.Cols {
		return fmt.Errorf("config: device.keycodes has %d entries, want %d", len(c.Device.KeyCodes), c.Device.Rows*c.Device.Cols)
	}
	if _, err := c.Display.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the display timezone, defaulting to the local zone.
func (d Display) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: display.timezone: %w", err)
	}
	return loc, nil
}

// TileCount is the number of keys on the configured grid.
func (d Device) TileCount() int {
	return d.Rows * d.Cols
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
