package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobcal/internal/model"
)

// ErrEmptyPath is returned by Load/Save when no config path is given.
var ErrEmptyPath = errors.New("config path is empty")

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRemote   = "remote"
)

// StoreConfig selects where application records come from.
type StoreConfig struct {
	// Driver is one of "sqlite" (default), "postgres" or "remote".
	Driver string `yaml:"driver" json:"driver"`
	// Path is the sqlite database file.
	Path string `yaml:"path" json:"path"`
	// DSN is the postgres connection string.
	DSN string `yaml:"dsn,omitempty" json:"-"`
	// URL is the hosted backend's REST endpoint returning records as JSON.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// APIKey is sent as "apikey" and bearer token to the hosted backend.
	APIKey string `yaml:"api_key,omitempty" json:"-"`
	// CacheDir keeps the last good remote response for offline fallback.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// CaptureConfig controls headless PNG previews of the week page.
type CaptureConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Output  string `yaml:"output" json:"output"`
	Width   int    `yaml:"width" json:"width"`
	Height  int    `yaml:"height" json:"height"`
	// URL overrides the page to capture; defaults to http://<listen>/calendar.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone dates are displayed in; "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is a standard 5-field cron spec for reloading records.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Palette overrides the company color palette.
	Palette []string `yaml:"palette,omitempty" json:"palette,omitempty"`

	Store   StoreConfig   `yaml:"store" json:"store"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Local",
		LogLevel:    "info",
		RefreshCron: "*/5 * * * *",
		Store: StoreConfig{
			Driver:   DriverSQLite,
			Path:     "./var/jobcal.db",
			CacheDir: "./var/records-cache",
		},
		Capture: CaptureConfig{
			Enabled: false,
			Output:  "./var/preview.png",
			Width:   1280,
			Height:  900,
		},
	}
}

// Normalize fills in missing/zero values so that partially-filled configs
// still behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres, DriverRemote:
	default:
		c.Store.Driver = DriverSQLite
	}
	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
	if c.Store.CacheDir == "" {
		c.Store.CacheDir = def.Store.CacheDir
	}
	if c.Capture.Output == "" {
		c.Capture.Output = def.Capture.Output
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = def.Capture.Width
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = def.Capture.Height
	}
}

// Location resolves Timezone. Unknown names fall back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// ColorPalette is the configured palette or model.DefaultPalette.
func (c *Config) ColorPalette() []model.Color {
	return model.ParsePalette(c.Palette)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is unmarshalled and normalized.
//   - In both cases environment overrides are applied last (see ApplyEnv).
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.ApplyEnv()

	return &cfg, nil
}

// Environment variables that override file values. Secrets are expected
// here rather than in the YAML file.
const (
	EnvListen      = "JOBCAL_LISTEN"
	EnvStoreDriver = "JOBCAL_STORE_DRIVER"
	EnvStoreDSN    = "JOBCAL_STORE_DSN"
	EnvStoreURL    = "JOBCAL_STORE_URL"
	EnvStoreAPIKey = "JOBCAL_STORE_API_KEY"
)

// ApplyEnv loads an optional .env file from the working directory and then
// applies JOBCAL_* overrides. Variables already set in the process win over
// the .env file.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvStoreDriver); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv(EnvStoreDSN); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv(EnvStoreURL); v != "" {
		c.Store.URL = v
	}
	if v := os.Getenv(EnvStoreAPIKey); v != "" {
		c.Store.APIKey = v
	}
	c.Normalize()
}

// Save writes cfg atomically (temp file + rename) with 0600 permissions,
// creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".jobcal-config-*.tmp")
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

// Save is a convenience wrapper around the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
