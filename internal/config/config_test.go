package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobcal/internal/model"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" || cfg.Store.Driver != DriverSQLite {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected default file to be written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config perms = %o, want 600", perm)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
timezone: UTC
store:
  driver: nonsense
palette: [red, "", teal]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Fatalf("unknown driver should normalize to sqlite, got %q", cfg.Store.Driver)
	}
	if cfg.RefreshCron == "" || cfg.Capture.Width == 0 {
		t.Fatalf("missing defaults after normalize: %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("location = %v, %v", loc, err)
	}
	got := cfg.ColorPalette()
	if len(got) != 2 || got[0] != model.ColorRed || got[1] != model.ColorTeal {
		t.Fatalf("palette = %v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvStoreDriver, DriverRemote)
	t.Setenv(EnvStoreURL, "https://db.example.com/rest/v1/applications")
	t.Setenv(EnvStoreAPIKey, "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != DriverRemote || cfg.Store.APIKey != "secret" || cfg.Store.URL == "" {
		t.Fatalf("env overrides not applied: %+v", cfg.Store)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Timezone = "Asia/Seoul"
	cfg.BasicAuth = &BasicAuthConfig{Username: "me", Password: "pw"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Timezone != "Asia/Seoul" || got.BasicAuth == nil || got.BasicAuth.Username != "me" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestEmptyPath(t *testing.T) {
	if _, err := Load(""); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("Load(\"\") err = %v", err)
	}
	if err := Save("", DefaultConfig()); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("Save(\"\") err = %v", err)
	}
}
