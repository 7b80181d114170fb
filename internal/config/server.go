package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds the process-level settings from the `server:` block of
// the config file. The grid keys live at the top level of the same file
// and are validated by New.
type Server struct {
	// Listen is the HTTP listen address for the grid UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone events are displayed in. Empty means the
	// host's local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Refresh is an optional standard cron spec (e.g. "*/5 * * * *").
	// When empty, cycles run updateInterval seconds apart.
	Refresh string `yaml:"refresh" json:"refresh"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// CacheDir stores ETag/Last-Modified metadata and bodies of ICS feeds.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	HomeAssistant HomeAssistantConfig `yaml:"homeassistant" json:"homeassistant"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	Preview PreviewConfig `yaml:"preview" json:"preview"`
}

// HomeAssistantConfig points at the Home Assistant calendar API.
type HomeAssistantConfig struct {
	URL   string `yaml:"url" json:"url"`
	Token string `yaml:"token" json:"-"`
}

type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// PreviewConfig controls the headless-browser PNG capture of /calendar
// that runs after every published grid change.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Output  string `yaml:"output" json:"output"`
	Width   int    `yaml:"width" json:"width"`
	Height  int    `yaml:"height" json:"height"`
}

// File is a loaded and validated config file.
type File struct {
	Grid   *Config
	Server *Server
}

// DefaultServer returns the in-memory defaults for the server block.
func DefaultServer() *Server {
	s := &Server{}
	s.Normalize()
	return s
}

// Normalize fills in missing values with defaults.
func (s *Server) Normalize() {
	if s.Listen == "" {
		s.Listen = "127.0.0.1:8080"
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.CacheDir == "" {
		s.CacheDir = "./var/ics-cache"
	}
	if s.HomeAssistant.URL == "" {
		s.HomeAssistant.URL = "http://homeassistant.local:8123"
	}
	if s.Preview.Output == "" {
		s.Preview.Output = "./var/preview.png"
	}
}

// ApplyEnv overrides settings from WEEKCAL_* environment variables.
func (s *Server) ApplyEnv() {
	if v := os.Getenv("WEEKCAL_LISTEN"); v != "" {
		s.Listen = v
	}
	if v := os.Getenv("WEEKCAL_HA_URL"); v != "" {
		s.HomeAssistant.URL = v
	}
	if v := os.Getenv("WEEKCAL_HA_TOKEN"); v != "" {
		s.HomeAssistant.Token = v
	}
}

// Location resolves Timezone, falling back to time.Local when it is empty
// or unknown.
func (s *Server) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// starterConfig is written on first run so the service has something to
// show and the user has a file to edit.
const starterConfig = `# weekcal configuration
title: Calendar
startOfWeek: monday
weeks: 4
timeFormat: "h:mma"
calendars:
  - entity: calendar.home
    color: "#3b82f6"

server:
  listen: 127.0.0.1:8080
  log_level: info
  homeassistant:
    url: http://homeassistant.local:8123
`

// ParseFile validates both the grid keys and the server block of data.
func ParseFile(data []byte) (*File, error) {
	grid, err := Parse(data)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Server Server `yaml:"server"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	wrapper.Server.Normalize()

	return &File{Grid: grid, Server: &wrapper.Server}, nil
}

// Load reads the config file at path.
//
// Behavior:
//   - If the file does not exist, a starter config is written with 0600
//     permissions and then loaded.
//   - Otherwise the file is parsed and validated.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		data = []byte(starterConfig)
		if err := writeAtomic(path, data); err != nil {
			return nil, fmt.Errorf("write starter config: %w", err)
		}
	}

	return ParseFile(data)
}

// writeAtomic writes data to path via a temp file in the same directory,
// then renames it into place with 0600 permissions.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".weekcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
